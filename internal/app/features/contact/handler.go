// internal/app/features/contact/handler.go
package contact

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/formutil"
	"github.com/dalemusser/takeandeat/internal/app/system/htmlsanitize"
	"github.com/dalemusser/takeandeat/internal/app/system/inputval"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

const (
	msgMissing = "Please fill in all fields"
	msgEmail   = "Please enter a valid email address"
	msgSent    = "Your message has been sent successfully. We will get back to you soon."
	msgFailed  = "Failed to send message. Please try again."
)

// Messages stores what visitors send. Nothing reads it back in the app.
type Messages interface {
	Insert(ctx context.Context, name, email, subject, message string) (models.ContactMessage, error)
}

type Handler struct {
	Messages Messages
	ErrLog   *uierrors.ErrorLogger
	Log      *zap.Logger
}

func NewHandler(messages Messages, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Messages: messages,
		ErrLog:   errLog,
		Log:      logger,
	}
}

type contactInput struct {
	Name    string `form:"name" validate:"required,max=100" label:"Name"`
	Email   string `form:"email" validate:"required,simpleemail" label:"Email"`
	Subject string `form:"subject" validate:"required,max=200" label:"Subject"`
	Message string `form:"message" validate:"required,max=5000" label:"Message"`
}

type pageData struct {
	formutil.Base
	contactInput
	Reference string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, d pageData) {
	formutil.SetBase(&d.Base, r, "Contact Support", "/")
	templates.Render(w, r, "contact", d)
}

func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{})
}

// HandleContact records the message. One banner covers the whole form:
// a missing field wins over a malformed email.
func (h *Handler) HandleContact(w http.ResponseWriter, r *http.Request) {
	in := contactInput{
		Name:    normalize.Name(r.FormValue("name")),
		Email:   normalize.Email(r.FormValue("email")),
		Subject: htmlsanitize.StripTags(normalize.Text(r.FormValue("subject"))),
		Message: htmlsanitize.StripTags(normalize.Text(r.FormValue("message"))),
	}
	d := pageData{contactInput: in}

	if msg := firstProblem(inputval.Validate(in)); msg != "" {
		d.SetError(msg)
		h.render(w, r, d)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	m, err := h.Messages.Insert(ctx, in.Name, in.Email, in.Subject, in.Message)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "insert contact message failed", err) {
			return
		}
		d.SetError(msgFailed)
		h.render(w, r, d)
		return
	}
	h.Log.Info("contact message received", zap.String("reference", m.Reference))

	h.render(w, r, pageData{
		Base:      formutil.Base{Success: msgSent},
		Reference: m.Reference,
	})
}

func firstProblem(res inputval.Result) string {
	if !res.HasErrors() {
		return ""
	}
	for _, fe := range res.Errors {
		if fe.Tag == "required" {
			return msgMissing
		}
	}
	for _, fe := range res.Errors {
		if fe.Tag == "simpleemail" {
			return msgEmail
		}
	}
	return res.First()
}
