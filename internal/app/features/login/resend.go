// internal/app/features/login/resend.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/takeandeat/internal/app/store/verifications"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgResent       = "Verification email sent. Please check your inbox."
	msgResendFailed = "Failed to resend verification email. Please try again."
)

type reminderData struct {
	viewdata.BaseVM
	Email   string
	Error   string
	Success string
}

// ServeVerifyReminder is where unverified identities land when they reach a
// page that needs a verified account.
func (h *Handler) ServeVerifyReminder(w http.ResponseWriter, r *http.Request) {
	d := reminderData{}
	if u, ok := auth.SignedInUser(r); ok {
		d.Email = u.Email
	} else if _, email, _, ok := h.SessionMgr.Pending(r); ok {
		d.Email = email
	}
	h.renderReminder(w, r, d)
}

// HandleResend mails a fresh verification link to the pending identity left
// by a refused login, or to the signed-in unverified identity.
func (h *Handler) HandleResend(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if u, ok := auth.SignedInUser(r); ok {
		userID = u.ID
	} else if id, _, _, ok := h.SessionMgr.Pending(r); ok {
		userID = id
	}
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		h.renderReminder(w, r, reminderData{Error: msgResendFailed})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Mail())
	defer cancel()

	u, err := h.Profiles.GetByID(ctx, oid)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "load pending profile failed", err) {
			return
		}
		h.renderReminder(w, r, reminderData{Error: msgResendFailed})
		return
	}
	if u.Verified() {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	d := reminderData{Email: u.Email}
	err = h.Verify.Send(ctx, *u, true)
	switch {
	case errors.Is(err, verifications.ErrTooManyResends):
		d.Error = apperr.AuthMessage(apperr.CodeTooManyRequests)
	case err != nil:
		if !h.ErrLog.LogTransient(r, "resend verification failed", err) {
			return
		}
		d.Error = msgResendFailed
	default:
		h.Log.Info("verification resent", zap.String("user_id", u.ID.Hex()))
		d.Success = msgResent
	}
	h.renderReminder(w, r, d)
}

func (h *Handler) renderReminder(w http.ResponseWriter, r *http.Request, d reminderData) {
	d.BaseVM = viewdata.NewBaseVM(r, "Verify your email", "/")
	templates.Render(w, r, "login_verify_reminder", d)
}
