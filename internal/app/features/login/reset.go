// internal/app/features/login/reset.go
package login

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/authutil"
	"github.com/dalemusser/takeandeat/internal/app/system/inputval"
	"github.com/dalemusser/takeandeat/internal/app/system/mailer"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/verifymail"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgEnterEmail       = "Please enter your email address"
	msgResetSent        = "Password reset email sent. Please check your inbox."
	msgResetSendFailed  = "Failed to send reset email. Please try again."
	msgPasswordMismatch = "Passwords do not match."
	msgResetFailed      = "Failed to update your password. Please try again."
)

type forgotData struct {
	viewdata.BaseVM
	Email   string
	Error   string
	Success string
}

type resetData struct {
	viewdata.BaseVM
	Token   string
	Invalid bool
	Error   string
	Rules   string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/POST /login/forgot                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeForgot(w http.ResponseWriter, r *http.Request) {
	h.renderForgot(w, r, forgotData{})
}

// HandleForgot mails a reset link. An unknown address gets the same success
// message so the form cannot be used to probe for accounts.
func (h *Handler) HandleForgot(w http.ResponseWriter, r *http.Request) {
	d := forgotData{Email: normalize.Email(r.FormValue("email"))}
	if d.Email == "" {
		d.Error = msgEnterEmail
		h.renderForgot(w, r, d)
		return
	}
	if !inputval.IsValidEmail(d.Email) {
		d.Error = apperr.AuthMessage(apperr.CodeInvalidEmail)
		h.renderForgot(w, r, d)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Mail())
	defer cancel()

	u, err := h.Profiles.GetByEmail(ctx, d.Email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.Log.Debug("reset requested for unknown email")
		d.Success = msgResetSent
		h.renderForgot(w, r, d)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "load profile for reset failed", err) {
			return
		}
		d.Error = msgResetSendFailed
		h.renderForgot(w, r, d)
		return
	}

	if err := h.sendReset(ctx, u); err != nil {
		if !h.ErrLog.LogTransient(r, "send reset email failed", err) {
			return
		}
		d.Error = msgResetSendFailed
		h.renderForgot(w, r, d)
		return
	}

	h.Audit.ResetRequested(r, u.ID)
	h.Log.Info("password reset email sent", zap.String("user_id", u.ID.Hex()))
	d.Success = msgResetSent
	h.renderForgot(w, r, d)
}

func (h *Handler) sendReset(ctx context.Context, u *models.User) error {
	token, err := h.Reset.Issue(u.ID.Hex(), authutil.HashFingerprint(u.PasswordHash))
	if err != nil {
		return err
	}
	link := h.BaseURL + "/login/reset?token=" + url.QueryEscape(token)
	msg := mailer.BuildPasswordResetEmail(viewdata.SiteName, u.FullName, link, verifymail.FormatExpiry(h.Reset.Expiry()))
	msg.To = u.Email
	return h.Mail.Send(ctx, msg)
}

func (h *Handler) renderForgot(w http.ResponseWriter, r *http.Request, d forgotData) {
	d.BaseVM = viewdata.NewBaseVM(r, "Forgot password", "/login")
	templates.Render(w, r, "login_forgot", d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET/POST /login/reset?token=                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// checkToken resolves a reset token to its profile. The token is only valid
// while the profile's password is the one it was issued for.
func (h *Handler) checkToken(ctx context.Context, token string) (*models.User, error) {
	claims, err := h.Reset.Parse(token)
	if err != nil {
		return nil, err
	}
	id, err := primitive.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, err
	}
	u, err := h.Profiles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, err := h.Reset.Check(token, authutil.HashFingerprint(u.PasswordHash)); err != nil {
		return nil, err
	}
	return u, nil
}

func (h *Handler) ServeReset(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	d := resetData{Token: token}
	if _, err := h.checkToken(ctx, token); err != nil {
		if apperr.IsTransient(err) && !h.ErrLog.LogTransient(r, "check reset token failed", err) {
			return
		}
		d.Invalid = true
		d.Error = apperr.AuthMessage(apperr.CodeInvalidResetToken)
	}
	h.renderReset(w, r, d)
}

// HandleReset sets the new password. Changing the hash invalidates the token.
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	d := resetData{Token: r.FormValue("token")}
	password := r.FormValue("password")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.checkToken(ctx, d.Token)
	if err != nil {
		if apperr.IsTransient(err) && !h.ErrLog.LogTransient(r, "check reset token failed", err) {
			return
		}
		d.Invalid = true
		d.Error = apperr.AuthMessage(apperr.CodeInvalidResetToken)
		h.renderReset(w, r, d)
		return
	}

	if authutil.ValidatePassword(password) != nil {
		d.Error = apperr.AuthMessage(apperr.CodeWeakPassword)
		h.renderReset(w, r, d)
		return
	}
	if password != r.FormValue("confirm") {
		d.Error = msgPasswordMismatch
		h.renderReset(w, r, d)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, msgResetFailed, "/login")
		return
	}
	if err := h.Profiles.SetPassword(ctx, u.ID, hash); err != nil {
		if !h.ErrLog.LogTransient(r, "set password failed", err) {
			return
		}
		d.Error = msgResetFailed
		h.renderReset(w, r, d)
		return
	}

	h.Audit.PasswordReset(r, u.ID)
	h.Log.Info("password reset", zap.String("user_id", u.ID.Hex()))
	http.Redirect(w, r, viewdata.FlashURL("/login", "password-reset"), http.StatusSeeOther)
}

func (h *Handler) renderReset(w http.ResponseWriter, r *http.Request, d resetData) {
	d.BaseVM = viewdata.NewBaseVM(r, "Reset password", "/login")
	d.Rules = authutil.PasswordRules()
	templates.Render(w, r, "login_reset", d)
}
