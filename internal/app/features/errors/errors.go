// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Heading string
	Message string
}

// Handler serves the router-level error pages.
// No DB needed; it just renders templates.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// NotFound is the router's catch-all.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderNotFound(w, r, "The page you were looking for does not exist.", "/")
}

// CSRFFailure is used by the CSRF middleware when a form token is missing
// or stale.
func (h *Handler) CSRFFailure(w http.ResponseWriter, r *http.Request) {
	RenderForbidden(w, r, "Your form expired. Please go back, reload the page and try again.", "")
}

func render(w http.ResponseWriter, r *http.Request, status int, heading, msg, backURL string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, heading, backURL),
		Heading: heading,
		Message: msg,
	}
	if backURL != "" {
		data.BackURL = backURL
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
