// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/store/verifications"
	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auditlog"
	"github.com/dalemusser/takeandeat/internal/app/system/authutil"
	"github.com/dalemusser/takeandeat/internal/app/system/inputval"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Profiles is the part of the profile store registration needs.
type Profiles interface {
	Create(ctx context.Context, u models.User) (models.User, error)
	MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error
}

// Tokens consumes emailed verification links.
type Tokens interface {
	VerifyToken(ctx context.Context, token string) (*verifications.Verification, error)
}

// VerificationSender mails a verification link to a new profile.
type VerificationSender interface {
	Send(ctx context.Context, u models.User, isResend bool) error
}

const (
	msgRegistered   = "Registration successful! Please check your email to verify your account before logging in."
	msgCreateFailed = "Failed to create your account. Please try again."
	msgLinkInvalid  = "This verification link is invalid or has expired. Log in to request a new one."
)

type Handler struct {
	Profiles Profiles
	Tokens   Tokens
	Verify   VerificationSender
	ErrLog   *uierrors.ErrorLogger
	Audit    *auditlog.Logger // optional
	Log      *zap.Logger
}

func NewHandler(profiles Profiles, tokens Tokens, verify VerificationSender, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Profiles: profiles, Tokens: tokens, Verify: verify, ErrLog: errLog, Log: logger}
}

type formData struct {
	viewdata.BaseVM
	FullName string
	Email    string
	Phone    string
	Error    string
	Success  string
	Rules    string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, d formData) {
	d.BaseVM = viewdata.NewBaseVM(r, "Register", "/")
	d.Rules = authutil.PasswordRules()
	templates.Render(w, r, "register", d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRegister(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, formData{})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /register                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleRegister creates an unverified password profile and mails the
// verification link. No session is created.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/register")
		return
	}

	d := formData{
		FullName: normalize.Name(r.FormValue("full_name")),
		Email:    normalize.Email(r.FormValue("email")),
		Phone:    normalize.Text(r.FormValue("phone")),
	}
	password := r.FormValue("password")

	if code := validate(registerInput{
		FullName: d.FullName,
		Email:    d.Email,
		Password: password,
		Phone:    d.Phone,
	}); code != "" {
		d.Error = apperr.AuthMessage(code)
		h.render(w, r, d)
		return
	}

	hash, err := authutil.HashPassword(password)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password failed", err, msgCreateFailed, "/register")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Profiles.Create(ctx, models.User{
		FullName:     d.FullName,
		Email:        d.Email,
		PhoneNumber:  d.Phone,
		PasswordHash: hash,
		AuthMethod:   authutil.MethodPassword,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateEmail):
		d.Error = apperr.AuthMessage(apperr.CodeEmailInUse)
		h.render(w, r, d)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "create profile failed", err) {
			return
		}
		d.Error = msgCreateFailed
		h.render(w, r, d)
		return
	}

	h.Audit.Registered(r, u.ID, authutil.MethodPassword)
	h.Log.Info("profile registered", zap.String("user_id", u.ID.Hex()))

	// The profile exists either way; a failed send is recovered through the
	// resend button shown when the unverified user tries to log in.
	if err := h.Verify.Send(ctx, u, false); err != nil {
		h.Log.Warn("verification email not sent", zap.String("user_id", u.ID.Hex()), zap.Error(err))
	}

	h.render(w, r, formData{Success: msgRegistered})
}

type registerInput struct {
	FullName string `form:"full_name" validate:"required" label:"Full name"`
	Email    string `form:"email" validate:"required,simpleemail" label:"Email"`
	Password string `form:"password" validate:"required" label:"Password"`
	Phone    string `form:"phone" validate:"required" label:"Phone"`
}

// validate returns the auth code for the first problem, or "". Any missing
// field outranks a malformed one.
func validate(in registerInput) string {
	res := inputval.Validate(in)
	for _, e := range res.Errors {
		if e.Tag == "required" {
			return apperr.CodeMissingFields
		}
	}
	if res.HasErrors() {
		return apperr.CodeInvalidEmail
	}
	if authutil.ValidatePassword(in.Password) != nil {
		return apperr.CodeWeakPassword
	}
	return ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /register/verify?token=                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

type verifyFailedData struct {
	viewdata.BaseVM
	Message string
}

// ServeVerify consumes the single-use link token and marks the email
// verified.
func (h *Handler) ServeVerify(w http.ResponseWriter, r *http.Request) {
	token := query.Get(r, "token")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	v, err := h.Tokens.VerifyToken(ctx, token)
	switch {
	case errors.Is(err, verifications.ErrNotFound):
		h.renderVerifyFailed(w, r)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "consume verification failed", err, "Failed to verify your email. Please try again.", "/")
		return
	}

	if err := h.Profiles.MarkEmailVerified(ctx, v.UserID); err != nil {
		if apperr.IsNotFound(err) {
			h.renderVerifyFailed(w, r)
			return
		}
		h.ErrLog.LogServerError(w, r, "mark email verified failed", err, "Failed to verify your email. Please try again.", "/")
		return
	}

	h.Audit.EmailVerified(r, v.UserID)
	h.Log.Info("email verified", zap.String("user_id", v.UserID.Hex()))
	http.Redirect(w, r, viewdata.FlashURL("/login", "email-verified"), http.StatusSeeOther)
}

func (h *Handler) renderVerifyFailed(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "register_verify_failed", verifyFailedData{
		BaseVM:  viewdata.NewBaseVM(r, "Verify email", "/"),
		Message: msgLinkInvalid,
	})
}
