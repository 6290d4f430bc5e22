// internal/app/features/phoneauth/handler.go
package phoneauth

import (
	"context"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/store/verifications"
	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auditlog"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/authutil"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/sms"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Profiles is the part of the profile store phone sign-in uses.
type Profiles interface {
	GetByPhone(ctx context.Context, e164 string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	MarkPhoneVerified(ctx context.Context, id primitive.ObjectID) error
}

// Codes issues and checks SMS codes.
type Codes interface {
	Create(ctx context.Context, userID primitive.ObjectID, ch verifications.Channel, destination string, isResend bool) (*verifications.CreateResult, error)
	VerifyCode(ctx context.Context, userID primitive.ObjectID, code string) (*verifications.Verification, error)
}

// Limiter throttles code sends and code checks per client and per number.
type Limiter interface {
	Check(r *http.Request, account string) bool
}

const msgSendFailed = "Failed to send verification code. Please try again."

const verifyKeyPrefix = "verify:"

type Handler struct {
	Profiles   Profiles
	Codes      Codes
	SMS        sms.Sender
	SessionMgr *auth.SessionManager
	Limiter    Limiter
	ErrLog     *uierrors.ErrorLogger
	Metrics    metrics.Recorder
	Audit      *auditlog.Logger // optional
	Log        *zap.Logger
}

func NewHandler(profiles Profiles, codes Codes, sender sms.Sender, sessionMgr *auth.SessionManager, limiter Limiter, errLog *uierrors.ErrorLogger, rec metrics.Recorder, logger *zap.Logger) *Handler {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &Handler{
		Profiles:   profiles,
		Codes:      codes,
		SMS:        sender,
		SessionMgr: sessionMgr,
		Limiter:    limiter,
		ErrLog:     errLog,
		Metrics:    rec,
		Log:        logger,
	}
}

type pageData struct {
	viewdata.BaseVM
	Phone     string // as typed on step one, E.164 on step two
	CodeSent  bool
	ReturnURL string
	Error     string
	Success   string
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, d pageData) {
	d.BaseVM = viewdata.NewBaseVM(r, "Sign in with phone", "/login")
	templates.Render(w, r, "phoneauth", d)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /phone-auth                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServePhone(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, pageData{ReturnURL: query.Get(r, "return")})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /phone-auth/send                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSend texts a one-time code. The phone identity is created on first
// use and stays unverified until a code is confirmed.
func (h *Handler) HandleSend(w http.ResponseWriter, r *http.Request) {
	d := pageData{
		Phone:     normalize.Text(r.FormValue("phone")),
		ReturnURL: normalize.Text(r.FormValue("return")),
	}
	isResend := r.FormValue("resend") == "1"

	e164, ok := normalize.Phone(d.Phone)
	if !ok {
		d.Error = apperr.AuthMessage(apperr.CodeInvalidPhone)
		h.render(w, r, d)
		return
	}
	if h.Limiter != nil && !h.Limiter.Check(r, e164) {
		d.Error = apperr.AuthMessage(apperr.CodeTooManyRequests)
		h.render(w, r, d)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.findOrCreate(ctx, e164)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "load phone identity failed", err) {
			return
		}
		d.Error = msgSendFailed
		h.render(w, r, d)
		return
	}

	res, err := h.Codes.Create(ctx, u.ID, verifications.ChannelSMS, e164, isResend)
	switch {
	case errors.Is(err, verifications.ErrTooManyResends):
		d.Phone, d.CodeSent = e164, true
		d.Error = apperr.AuthMessage(apperr.CodeTooManyRequests)
		h.render(w, r, d)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "create sms code failed", err) {
			return
		}
		d.Error = msgSendFailed
		h.render(w, r, d)
		return
	}

	msgID, err := h.SMS.Send(ctx, e164, sms.CodeMessage(viewdata.SiteName, res.Code))
	if err != nil {
		if !h.ErrLog.LogTransient(r, "send sms failed", err) {
			return
		}
		d.Error = msgSendFailed
		h.render(w, r, d)
		return
	}
	h.Audit.CodeSent(r, u.ID)
	h.Log.Info("sms code sent",
		zap.String("user_id", u.ID.Hex()),
		zap.String("message_id", msgID),
		zap.Int("resend_count", res.ResendCount))

	d.Phone, d.CodeSent = e164, true
	d.Success = "We sent a 6-digit code to " + e164 + "."
	h.render(w, r, d)
}

// findOrCreate returns the phone identity for e164, creating it when absent.
// A concurrent first use may win the insert; the loser re-reads.
func (h *Handler) findOrCreate(ctx context.Context, e164 string) (*models.User, error) {
	u, err := h.Profiles.GetByPhone(ctx, e164)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return nil, err
	}
	created, err := h.Profiles.Create(ctx, models.User{
		PhoneNumber: e164,
		PhoneE164:   e164,
		AuthMethod:  authutil.MethodPhone,
	})
	if errors.Is(err, userstore.ErrDuplicatePhone) {
		return h.Profiles.GetByPhone(ctx, e164)
	}
	if err != nil {
		return nil, err
	}
	h.Log.Info("phone identity created", zap.String("user_id", created.ID.Hex()))
	return &created, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /phone-auth/verify                                                     |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleVerify checks the code, marks the phone verified and signs in.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	d := pageData{
		Phone:     normalize.Text(r.FormValue("phone")),
		ReturnURL: normalize.Text(r.FormValue("return")),
		CodeSent:  true,
	}
	code := normalize.Text(r.FormValue("code"))

	fail := func(authCode string) {
		h.Metrics.SignIn(authutil.MethodPhone, false)
		h.Audit.SignInFailed(r, d.Phone, authutil.MethodPhone, authCode)
		d.Error = apperr.AuthMessage(authCode)
		h.render(w, r, d)
	}

	e164, ok := normalize.Phone(d.Phone)
	if !ok {
		d.CodeSent = false
		fail(apperr.CodeInvalidPhone)
		return
	}
	// Guesses are budgeted apart from sends so texting a code never
	// exhausts the checks.
	if h.Limiter != nil && !h.Limiter.Check(r, verifyKeyPrefix+e164) {
		fail(apperr.CodeTooManyRequests)
		return
	}
	if code == "" {
		fail(apperr.CodeMissingCode)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Profiles.GetByPhone(ctx, e164)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		fail(apperr.CodeInvalidCode)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "load phone identity failed", err) {
			return
		}
		fail("")
		return
	}

	_, err = h.Codes.VerifyCode(ctx, u.ID, code)
	switch {
	case errors.Is(err, verifications.ErrInvalidCode):
		fail(apperr.CodeInvalidCode)
		return
	case errors.Is(err, verifications.ErrNotFound):
		fail(apperr.CodeCodeExpired)
		return
	case errors.Is(err, verifications.ErrTooManyAttempts):
		fail(apperr.CodeTooManyRequests)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "verify sms code failed", err) {
			return
		}
		fail("")
		return
	}

	if !u.PhoneVerified {
		if err := h.Profiles.MarkPhoneVerified(ctx, u.ID); err != nil {
			if !h.ErrLog.LogTransient(r, "mark phone verified failed", err) {
				return
			}
			fail("")
			return
		}
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		fail(apperr.CodeSessionUnavailable)
		return
	}
	h.Metrics.SignIn(authutil.MethodPhone, true)
	h.Audit.SignIn(r, u.ID, authutil.MethodPhone)
	h.Log.Info("phone sign-in", zap.String("user_id", u.ID.Hex()))

	http.Redirect(w, r, urlutil.SafeReturn(d.ReturnURL, "", "/"), http.StatusSeeOther)
}
