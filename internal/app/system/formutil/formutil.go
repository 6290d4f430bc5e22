// Package formutil provides helpers for re-rendering a form with the user's
// input and per-field errors.
//
//	type listingForm struct {
//		formutil.Base
//		Address string
//	}
//
//	data := listingForm{Address: addr}
//	formutil.SetBase(&data.Base, r, "Give Food", "/")
//	data.SetFieldErrors(errs)
//	templates.Render(w, r, "givefood_index", data)
package formutil

import (
	"net/http"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
)

// Base contains common fields for form pages.
type Base struct {
	viewdata.BaseVM

	// Error is the banner shown above the form.
	Error string
	// Success is the confirmation shown above the form.
	Success string
	// Errors maps a form key to its inline message.
	Errors map[string]string
}

// SetBase populates the common fields from the request.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the banner message.
func (b *Base) SetError(msg string) {
	b.Error = msg
}

// SetFieldErrors copies validation errors for inline display.
func (b *Base) SetFieldErrors(errs apperr.ValidationErrors) {
	b.Errors = errs.Map()
}

// FieldError returns the inline message for key (used from templates).
func (b Base) FieldError(key string) string {
	return b.Errors[key]
}
