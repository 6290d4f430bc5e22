// internal/app/features/authgoogle/handler.go
package authgoogle

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auditlog"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/authutil"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// StateTTL is how long a sign-in attempt may take at Google.
const StateTTL = 10 * time.Minute

const userInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// Profiles is the part of the profile store Google sign-in uses.
type Profiles interface {
	GetByGoogleID(ctx context.Context, googleID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, u models.User) (models.User, error)
	LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string) error
}

// States stores single-use OAuth state tokens.
type States interface {
	Save(ctx context.Context, state, returnURL string, expiresAt time.Time) error
	Validate(ctx context.Context, state string) (returnURL string, valid bool, err error)
}

// GoogleUser is the part of Google's userinfo response sign-in needs.
type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"verified_email"`
	Name          string `json:"name"`
}

// Handler handles Google OAuth sign-in.
type Handler struct {
	Profiles   Profiles
	States     States
	SessionMgr *auth.SessionManager
	Metrics    metrics.Recorder
	Audit      *auditlog.Logger // optional
	Log        *zap.Logger

	// Config is nil when no client credentials are configured.
	Config *oauth2.Config

	// Identify exchanges an authorization code for the Google account
	// behind it.
	Identify func(ctx context.Context, code string) (*GoogleUser, error)
}

// NewHandler creates a new Google OAuth handler. baseURL is the public
// origin, e.g. "https://takeandeat.example".
func NewHandler(profiles Profiles, states States, sessionMgr *auth.SessionManager, rec metrics.Recorder, clientID, clientSecret, baseURL string, logger *zap.Logger) *Handler {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	h := &Handler{
		Profiles:   profiles,
		States:     states,
		SessionMgr: sessionMgr,
		Metrics:    rec,
		Log:        logger,
	}
	if clientID != "" && clientSecret != "" {
		h.Config = &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  baseURL + "/auth/google/callback",
			Scopes: []string{
				"openid",
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
		h.Identify = h.exchange
	}
	return h
}

// IsConfigured returns true if Google OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.Config != nil && h.Identify != nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google                                                             |
| Redirects to Google's consent screen.                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Google OAuth not configured")
		toLogin(w, r, apperr.CodeProviderDisabled)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		toLogin(w, r, "")
		return
	}
	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.States.Save(ctx, state, returnURL, time.Now().UTC().Add(StateTTL)); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		toLogin(w, r, "")
		return
	}

	dest := h.Config.AuthCodeURL(state)
	h.Log.Debug("initiating Google OAuth flow", zap.String("return_url", returnURL))
	http.Redirect(w, r, dest, http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/google/callback                                                    |
| Exchanges the code, resolves the profile and signs in.                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		toLogin(w, r, apperr.CodeProviderDisabled)
		return
	}

	q := r.URL.Query()
	if errParam := q.Get("error"); errParam != "" {
		h.Log.Info("Google OAuth declined",
			zap.String("error", errParam),
			zap.String("description", q.Get("error_description")))
		h.Metrics.SignIn(authutil.MethodGoogle, false)
		h.Audit.SignInFailed(r, "", authutil.MethodGoogle, apperr.CodeProviderCancelled)
		toLogin(w, r, apperr.CodeProviderCancelled)
		return
	}

	state := q.Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		toLogin(w, r, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	returnURL, valid, err := h.States.Validate(ctx, state)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		toLogin(w, r, "")
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		toLogin(w, r, "")
		return
	}

	code := q.Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		toLogin(w, r, "")
		return
	}

	gu, err := h.Identify(ctx, code)
	if err != nil {
		h.Log.Error("Google identify failed", zap.Error(err))
		h.Metrics.SignIn(authutil.MethodGoogle, false)
		h.Audit.SignInFailed(r, "", authutil.MethodGoogle, codeInternal)
		toLogin(w, r, "")
		return
	}
	if gu.ID == "" || gu.Email == "" || !gu.EmailVerified {
		h.Log.Warn("Google account without a verified email", zap.String("google_id", gu.ID))
		h.Metrics.SignIn(authutil.MethodGoogle, false)
		h.Audit.SignInFailed(r, gu.Email, authutil.MethodGoogle, apperr.CodeUnverified)
		toLogin(w, r, "")
		return
	}

	u, err := h.resolve(ctx, r, gu)
	if err != nil {
		h.Log.Error("resolve Google profile failed", zap.Error(err), zap.String("google_id", gu.ID))
		h.Metrics.SignIn(authutil.MethodGoogle, false)
		h.Audit.SignInFailed(r, gu.Email, authutil.MethodGoogle, codeInternal)
		toLogin(w, r, "")
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("user_id", u.ID.Hex()))
		toLogin(w, r, apperr.CodeSessionUnavailable)
		return
	}
	h.Metrics.SignIn(authutil.MethodGoogle, true)
	h.Audit.SignIn(r, u.ID, authutil.MethodGoogle)
	h.Log.Info("user signed in via Google", zap.String("user_id", u.ID.Hex()))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Profile resolution                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

// resolve finds the profile linked to the Google account, links a profile
// with the same email, or creates a new verified one.
func (h *Handler) resolve(ctx context.Context, r *http.Request, gu *GoogleUser) (*models.User, error) {
	u, err := h.Profiles.GetByGoogleID(ctx, gu.ID)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, userstore.ErrNotFound) {
		return nil, err
	}

	u, err = h.Profiles.GetByEmail(ctx, gu.Email)
	switch {
	case err == nil:
		if err := h.Profiles.LinkGoogle(ctx, u.ID, gu.ID); err != nil {
			return nil, err
		}
		h.Audit.GoogleLinked(r, u.ID)
		h.Log.Info("linked Google account to profile", zap.String("user_id", u.ID.Hex()))
		return u, nil
	case !errors.Is(err, userstore.ErrNotFound):
		return nil, err
	}

	created, err := h.Profiles.Create(ctx, models.User{
		FullName:      gu.Name,
		Email:         normalize.Email(gu.Email),
		AuthMethod:    authutil.MethodGoogle,
		GoogleID:      gu.ID,
		EmailVerified: true,
	})
	if errors.Is(err, userstore.ErrDuplicateGoogle) || errors.Is(err, userstore.ErrDuplicateEmail) {
		// A concurrent callback for the same account won the insert.
		return h.Profiles.GetByGoogleID(ctx, gu.ID)
	}
	if err != nil {
		return nil, err
	}
	h.Audit.Registered(r, created.ID, authutil.MethodGoogle)
	h.Log.Info("profile created via Google", zap.String("user_id", created.ID.Hex()))
	return &created, nil
}

// exchange trades the code for a token and fetches the userinfo document.
func (h *Handler) exchange(ctx context.Context, code string) (*GoogleUser, error) {
	token, err := h.Config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := h.Config.Client(ctx, token)
	resp, err := client.Get(userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch user info: unexpected status code %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("decode user info: %w", err)
	}
	return &gu, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// toLogin sends the browser back to the login page with an auth code the
// page translates into a message.
// codeInternal has no entry in the message table, so the login page shows
// the generic failure text.
const codeInternal = "auth/internal-error"

func toLogin(w http.ResponseWriter, r *http.Request, code string) {
	if code == "" {
		code = codeInternal
	}
	http.Redirect(w, r, "/login?error="+url.QueryEscape(code), http.StatusSeeOther)
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
