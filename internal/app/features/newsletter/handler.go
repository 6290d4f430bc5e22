// internal/app/features/newsletter/handler.go
package newsletter

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/inputval"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

const (
	msgSubscribed = "Thank you for subscribing to our newsletter!"
	msgEmail      = "Please enter a valid email address"
	msgFailed     = "Failed to subscribe. Please try again."
)

// Subscribers records newsletter sign-ups. A repeat address is not an error.
type Subscribers interface {
	Subscribe(ctx context.Context, email string) (created bool, err error)
}

type Handler struct {
	Subscribers Subscribers
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(subs Subscribers, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Subscribers: subs, ErrLog: errLog, Log: logger}
}

// resultData feeds the footer snippet. On failure the form is shown again.
type resultData struct {
	viewdata.BaseVM
	Email   string
	Error   string
	Success string
}

// HandleSubscribe handles POST /newsletter from the footer form. HTMX
// requests get the footer snippet back; plain posts are sent back to the
// page they came from with a flash.
func (h *Handler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	email := normalize.Email(r.FormValue("email"))
	back := urlutil.SafeReturn(r.FormValue("return"), "", "/")

	if !inputval.IsValidEmail(email) {
		h.respond(w, r, back, "subscribe-email", resultData{Email: email, Error: msgEmail})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	created, err := h.Subscribers.Subscribe(ctx, email)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "newsletter subscribe failed", err) {
			return
		}
		h.respond(w, r, back, "subscribe-error", resultData{Email: email, Error: msgFailed})
		return
	}
	h.Log.Info("newsletter subscription", zap.Bool("new", created))

	h.respond(w, r, back, "subscribed", resultData{Success: msgSubscribed})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, back, flash string, d resultData) {
	if r.Header.Get("HX-Request") == "true" {
		d.BaseVM = viewdata.NewBaseVM(r, "", back)
		d.CurrentPath = back
		templates.RenderSnippet(w, "newsletter_result", d)
		return
	}
	http.Redirect(w, r, viewdata.FlashURL(back, flash), http.StatusSeeOther)
}
