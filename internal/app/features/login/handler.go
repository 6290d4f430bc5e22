// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auditlog"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/authutil"
	"github.com/dalemusser/takeandeat/internal/app/system/mailer"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/resettoken"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Profiles is the part of the profile store the login pages use.
type Profiles interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error
}

// VerificationSender mails a verification link.
type VerificationSender interface {
	Send(ctx context.Context, u models.User, isResend bool) error
}

// Limiter throttles sign-in attempts per client and per account.
type Limiter interface {
	Check(r *http.Request, account string) bool
	Reset(account string)
}

type Handler struct {
	Profiles   Profiles
	SessionMgr *auth.SessionManager
	Verify     VerificationSender
	Mail       mailer.Sender
	Reset      *resettoken.Issuer
	Limiter    Limiter
	ErrLog     *uierrors.ErrorLogger
	Metrics    metrics.Recorder
	Audit      *auditlog.Logger // optional
	Log        *zap.Logger

	BaseURL       string // for reset links
	GoogleEnabled bool
}

func NewHandler(
	profiles Profiles,
	sessionMgr *auth.SessionManager,
	verify VerificationSender,
	mail mailer.Sender,
	reset *resettoken.Issuer,
	limiter Limiter,
	errLog *uierrors.ErrorLogger,
	rec metrics.Recorder,
	baseURL string,
	googleEnabled bool,
	logger *zap.Logger,
) *Handler {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &Handler{
		Profiles:      profiles,
		SessionMgr:    sessionMgr,
		Verify:        verify,
		Mail:          mail,
		Reset:         reset,
		Limiter:       limiter,
		ErrLog:        errLog,
		Metrics:       rec,
		Log:           logger,
		BaseURL:       baseURL,
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Email         string
	ReturnURL     string
	Error         string
	Success       string
	ShowResend    bool
	GoogleEnabled bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeLogin renders the form. An "error" query parameter carries an auth
// code from a provider redirect and is shown through the message table.
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	d := loginFormData{ReturnURL: query.Get(r, "return")}
	if code := query.Get(r, "error"); code != "" {
		d.Error = apperr.AuthMessage(code)
	}
	h.render(w, r, d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleLoginPost signs in with email and password. An unverified identity
// is refused: it is remembered as pending for the resend button and no
// session is established.
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	d := loginFormData{
		Email:     normalize.Email(r.FormValue("email")),
		ReturnURL: normalize.Text(r.FormValue("return")),
	}
	password := r.FormValue("password")

	fail := func(code string) {
		h.Metrics.SignIn(authutil.MethodPassword, false)
		h.Audit.SignInFailed(r, d.Email, authutil.MethodPassword, code)
		d.Error = apperr.AuthMessage(code)
		d.ShowResend = code == apperr.CodeUnverified
		h.render(w, r, d)
	}

	if d.Email == "" || password == "" {
		fail(apperr.CodeMissingFields)
		return
	}
	if h.Limiter != nil && !h.Limiter.Check(r, d.Email) {
		h.Log.Warn("login rate limited", zap.String("email", d.Email))
		fail(apperr.CodeTooManyRequests)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Profiles.GetByEmail(ctx, d.Email)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		fail(apperr.CodeUserNotFound)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "load profile failed", err) {
			return
		}
		fail("")
		return
	}

	if u.PasswordHash == "" || !authutil.CheckPassword(password, u.PasswordHash) {
		fail(apperr.CodeInvalidCredential)
		return
	}

	if !u.Verified() {
		if err := h.SessionMgr.RememberPending(w, r, u.ID.Hex(), u.Email, d.ReturnURL); err != nil {
			h.Log.Error("save pending session failed", zap.Error(err))
		}
		h.Log.Info("login refused: unverified", zap.String("user_id", u.ID.Hex()))
		fail(apperr.CodeUnverified)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		fail(apperr.CodeSessionUnavailable)
		return
	}
	if h.Limiter != nil {
		h.Limiter.Reset(d.Email)
	}
	h.Metrics.SignIn(authutil.MethodPassword, true)
	h.Audit.SignIn(r, u.ID, authutil.MethodPassword)
	h.Log.Info("login success", zap.String("user_id", u.ID.Hex()))

	http.Redirect(w, r, urlutil.SafeReturn(d.ReturnURL, "", "/"), http.StatusSeeOther)
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, d loginFormData) {
	d.BaseVM = viewdata.NewBaseVM(r, "Login", "/")
	d.GoogleEnabled = h.GoogleEnabled
	templates.Render(w, r, "login", d)
}
