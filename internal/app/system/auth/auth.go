package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey = "is_authenticated"
	userIDKey = "user_id"

	// Set by a login attempt that was refused because the identity is not
	// verified yet. Only the resend-verification flow reads them.
	PendingUserIDKey    = "pending_user_id"
	PendingEmailKey     = "pending_email"
	PendingReturnURLKey = "pending_return_url"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session state                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

// State is the resolved session state of a request.
type State int

const (
	// StateLoading is the zero value: LoadSessionUser has not run.
	StateLoading State = iota
	// StateAuthenticated is a signed-in, verified identity.
	StateAuthenticated
	// StateUnverified is a signed-in identity whose email/phone is not verified.
	StateUnverified
	// StateAnonymous means no valid session.
	StateAnonymous
)

func (s State) String() string {
	switch s {
	case StateAuthenticated:
		return "authenticated"
	case StateUnverified:
		return "unverified"
	case StateAnonymous:
		return "anonymous"
	default:
		return "loading"
	}
}

// SessionUser is the identity injected into r.Context().
type SessionUser struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	AuthMethod string
	Verified   bool
}

// UserFetcher loads fresh profile data for a session's user ID.
// It returns (nil, nil) when the profile no longer exists and an error only
// when the store could not answer.
type UserFetcher interface {
	FetchUser(ctx context.Context, userID string) (*SessionUser, error)
}

type ctxKey string

const (
	currentUserKey  ctxKey = "currentUser"
	currentStateKey ctxKey = "sessionState"
)

// CurrentState returns the request's resolved session state.
func CurrentState(r *http.Request) State {
	s, _ := r.Context().Value(currentStateKey).(State)
	return s
}

// CurrentUser returns the verified, signed-in user and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	if CurrentState(r) != StateAuthenticated {
		return nil, false
	}
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok && u != nil
}

// SignedInUser returns the signed-in user whether or not it is verified.
func SignedInUser(r *http.Request) (*SessionUser, bool) {
	switch CurrentState(r) {
	case StateAuthenticated, StateUnverified:
		u, ok := r.Context().Value(currentUserKey).(*SessionUser)
		return u, ok && u != nil
	}
	return nil, false
}

// WithTestUser places u on the request as an authenticated user.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return WithState(r, StateAuthenticated, u)
}

// WithState places an explicit state (and optional user) on the request.
func WithState(r *http.Request, s State, u *SessionUser) *http.Request {
	ctx := context.WithValue(r.Context(), currentStateKey, s)
	if u != nil {
		ctx = context.WithValue(ctx, currentUserKey, u)
	}
	return r.WithContext(ctx)
}

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager owns the cookie store and the guards built on it.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	fetcher UserFetcher
	logger  *zap.Logger
}

// NewSessionManager builds a cookie-backed session manager.
//
// In production (secure=true) cookies are Secure + SameSite=Lax. In local dev
// over http://localhost, use secure=false so cookies are accepted.
func NewSessionManager(sessionKey, name, domain string, maxAge time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "takeandeat-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(maxAge.Seconds()),
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("max_age", maxAge))

	return &SessionManager{store: store, name: name, logger: logger}, nil
}

// SetUserFetcher makes LoadSessionUser resolve the user from the store on
// every request instead of trusting cookie contents.
func (sm *SessionManager) SetUserFetcher(f UserFetcher) { sm.fetcher = f }

// Store exposes the underlying cookie store (used to clear cookies).
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name is the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the request's session. On a decode error it still
// returns a usable fresh session alongside the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

// SignIn marks the session authenticated for userID and clears any pending
// verification keys.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, userID string) error {
	sess, err := sm.GetSession(r)
	if sess == nil {
		return err
	}
	delete(sess.Values, PendingUserIDKey)
	delete(sess.Values, PendingEmailKey)
	delete(sess.Values, PendingReturnURLKey)
	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = userID
	return sess.Save(r, w)
}

// RememberPending records an identity whose sign-in was refused because it
// is not verified yet, so the resend flow knows whom to email. The session
// is left unauthenticated.
func (sm *SessionManager) RememberPending(w http.ResponseWriter, r *http.Request, userID, email, returnURL string) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		var scErr securecookie.Error
		if errors.As(err, &scErr) && scErr.IsDecode() {
			sm.logger.Warn("session cookie invalid, using fresh session", zap.Error(err))
		} else {
			sm.logger.Error("session store error, using fresh session", zap.Error(err))
		}
	}
	if sess == nil {
		return err
	}
	delete(sess.Values, isAuthKey)
	delete(sess.Values, userIDKey)
	sess.Values[PendingUserIDKey] = userID
	sess.Values[PendingEmailKey] = email
	sess.Values[PendingReturnURLKey] = returnURL
	return sess.Save(r, w)
}

// Pending returns what RememberPending stored.
func (sm *SessionManager) Pending(r *http.Request) (userID, email, returnURL string, ok bool) {
	sess, err := sm.GetSession(r)
	if err != nil || sess == nil {
		return "", "", "", false
	}
	userID, _ = sess.Values[PendingUserIDKey].(string)
	email, _ = sess.Values[PendingEmailKey].(string)
	returnURL, _ = sess.Values[PendingReturnURLKey].(string)
	return userID, email, returnURL, userID != ""
}

// SignOut expires the session cookie.
func (sm *SessionManager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logger.Debug("session decode failed during sign-out", zap.Error(err))
	}
	if sess == nil {
		sess = sessions.NewSession(sm.store, sm.name)
	}
	opts := *sm.store.Options
	opts.MaxAge = -1
	sess.Options = &opts
	sess.Values = map[interface{}]interface{}{}
	return sess.Save(r, w)
}

// LoadSessionUser resolves the session state and user for every request.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		state, u := sm.resolve(r)
		next.ServeHTTP(w, WithState(r, state, u))
	})
}

func (sm *SessionManager) resolve(r *http.Request) (State, *SessionUser) {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.logger.Debug("session cookie invalid; treating as anonymous", zap.Error(err))
		return StateAnonymous, nil
	}
	isAuth, _ := sess.Values[isAuthKey].(bool)
	userID, _ := sess.Values[userIDKey].(string)
	if !isAuth || userID == "" {
		return StateAnonymous, nil
	}

	var u *SessionUser
	if sm.fetcher != nil {
		var err error
		u, err = sm.fetcher.FetchUser(r.Context(), userID)
		if err != nil {
			// The cookie is still good; guards answer 503 until the store is back.
			sm.logger.Warn("profile fetch failed; session left unresolved",
				zap.String("user_id", userID), zap.Error(err))
			return StateLoading, nil
		}
	} else {
		u = &SessionUser{ID: userID, Verified: true}
	}
	if u == nil {
		return StateAnonymous, nil
	}
	if !u.Verified {
		return StateUnverified, u
	}
	return StateAuthenticated, u
}

/*─────────────────────────────────────────────────────────────────────────────*
| Guards                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// VerifyReminderPath is where unverified identities are sent.
const VerifyReminderPath = "/login/verify-reminder"

// RequireSignedIn lets through any signed-in identity, verified or not.
// If not signed in:
//   - HTMX: sends HX-Redirect to /login?return=...
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch CurrentState(r) {
		case StateAuthenticated, StateUnverified:
			next.ServeHTTP(w, r)
		case StateLoading:
			sessionUnavailable(w)
		default:
			toLogin(w, r)
		}
	})
}

// RequireVerified lets through only verified, signed-in identities.
// Unverified identities go to the verification reminder, and a request whose
// state was never resolved gets 503 rather than protected content.
func (sm *SessionManager) RequireVerified(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch CurrentState(r) {
		case StateAuthenticated:
			next.ServeHTTP(w, r)
		case StateUnverified:
			if r.Header.Get("HX-Request") == "true" {
				w.Header().Set("HX-Redirect", VerifyReminderPath)
				w.WriteHeader(http.StatusForbidden)
				return
			}
			if wantsHTML(r) {
				http.Redirect(w, r, VerifyReminderPath, http.StatusSeeOther)
				return
			}
			http.Error(w, "forbidden", http.StatusForbidden)
		case StateLoading:
			sessionUnavailable(w)
		default:
			toLogin(w, r)
		}
	})
}

func toLogin(w http.ResponseWriter, r *http.Request) {
	ret := url.QueryEscape(currentURI(r))

	// HTMX: full-page client redirect (no partial swap)
	if r.Header.Get("HX-Request") == "true" {
		w.Header().Set("HX-Redirect", "/login?return="+ret)
		w.WriteHeader(http.StatusUnauthorized)
		return
	}
	if wantsHTML(r) {
		http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
		return
	}
	http.Error(w, "unauthorized", http.StatusUnauthorized)
}

func sessionUnavailable(w http.ResponseWriter) {
	w.Header().Set("Retry-After", "1")
	http.Error(w, "session not ready", http.StatusServiceUnavailable)
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
