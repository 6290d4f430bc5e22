// internal/app/system/auditlog/logger.go
package auditlog

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/takeandeat/internal/app/store/audit"
	"github.com/dalemusser/takeandeat/internal/app/system/ratelimit"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Modes for Config.Mode.
const (
	ModeAll = "all" // MongoDB + zap
	ModeDB  = "db"  // MongoDB only
	ModeLog = "log" // zap only
	ModeOff = "off"
)

// Sink persists events. *audit.Store satisfies it.
type Sink interface {
	Log(ctx context.Context, e audit.Event) error
}

// Logger records authentication events to the store and the structured log.
// A nil *Logger records nothing, so handlers built without one need no
// special casing.
type Logger struct {
	sink   Sink
	zapLog *zap.Logger
	mode   string
}

// New creates a Logger. An unknown mode is treated as ModeAll.
func New(sink Sink, zapLog *zap.Logger, mode string) *Logger {
	switch mode {
	case ModeAll, ModeDB, ModeLog, ModeOff:
	default:
		mode = ModeAll
	}
	return &Logger{sink: sink, zapLog: zapLog, mode: mode}
}

func (l *Logger) record(r *http.Request, e audit.Event) {
	if l == nil || l.mode == ModeOff {
		return
	}
	e.IP = ratelimit.ClientIP(r)
	e.UserAgent = r.UserAgent()

	if l.mode == ModeAll || l.mode == ModeLog {
		l.logToZap(e)
	}
	if (l.mode == ModeAll || l.mode == ModeDB) && l.sink != nil {
		// The event is kept even if the client has already gone.
		ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), timeouts.Short())
		defer cancel()
		if err := l.sink.Log(ctx, e); err != nil {
			l.zapLog.Warn("audit event not stored", zap.String("event_type", e.EventType), zap.Error(err))
		}
	}
}

func (l *Logger) logToZap(e audit.Event) {
	fields := []zap.Field{
		zap.Bool("audit", true),
		zap.String("event_type", e.EventType),
		zap.Bool("success", e.Success),
		zap.String("ip", e.IP),
	}
	if e.Method != "" {
		fields = append(fields, zap.String("method", e.Method))
	}
	if e.UserID != nil {
		fields = append(fields, zap.String("user_id", e.UserID.Hex()))
	}
	if e.FailureReason != "" {
		fields = append(fields, zap.String("failure_reason", e.FailureReason))
	}
	l.zapLog.Info("audit", fields...)
}

func ok(typ, method string, userID primitive.ObjectID) audit.Event {
	return audit.Event{EventType: typ, Method: method, UserID: &userID, Success: true}
}

// SignIn records a successful sign-in.
func (l *Logger) SignIn(r *http.Request, userID primitive.ObjectID, method string) {
	l.record(r, ok(audit.EventSignIn, method, userID))
}

// SignInFailed records a refused sign-in. account is what the client typed
// and code is the auth code shown to them.
func (l *Logger) SignInFailed(r *http.Request, account, method, code string) {
	l.record(r, audit.Event{
		EventType:     audit.EventSignInFailed,
		Method:        method,
		Account:       account,
		FailureReason: Reason(code),
	})
}

// Reason turns an auth code into the stored failure reason. An empty code
// means the profile store could not be reached.
func Reason(code string) string {
	if code == "" {
		return "store_unavailable"
	}
	return strings.TrimPrefix(code, "auth/")
}

// SignOut records the end of a session.
func (l *Logger) SignOut(r *http.Request, userID primitive.ObjectID) {
	l.record(r, ok(audit.EventSignOut, "", userID))
}

// Registered records a new profile.
func (l *Logger) Registered(r *http.Request, userID primitive.ObjectID, method string) {
	l.record(r, ok(audit.EventRegistered, method, userID))
}

// EmailVerified records a consumed verification link.
func (l *Logger) EmailVerified(r *http.Request, userID primitive.ObjectID) {
	l.record(r, ok(audit.EventEmailVerified, "password", userID))
}

// CodeSent records an SMS sign-in code going out.
func (l *Logger) CodeSent(r *http.Request, userID primitive.ObjectID) {
	l.record(r, ok(audit.EventCodeSent, "phone", userID))
}

// GoogleLinked records a Google account attached to an existing profile.
func (l *Logger) GoogleLinked(r *http.Request, userID primitive.ObjectID) {
	l.record(r, ok(audit.EventGoogleLinked, "google", userID))
}

// ResetRequested records a password reset email going out.
func (l *Logger) ResetRequested(r *http.Request, userID primitive.ObjectID) {
	l.record(r, ok(audit.EventResetRequested, "password", userID))
}

// PasswordReset records a completed password reset.
func (l *Logger) PasswordReset(r *http.Request, userID primitive.ObjectID) {
	l.record(r, ok(audit.EventPasswordReset, "password", userID))
}
