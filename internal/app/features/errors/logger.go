// internal/app/features/errors/logger.go
package errors

import (
	"net/http"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"go.uber.org/zap"
)

// ErrorLogger logs a failure with request context and renders the matching
// error page, so handlers can bail out in one line.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger returns an ErrorLogger writing to logger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

func (e *ErrorLogger) fields(r *http.Request, err error) []zap.Field {
	return []zap.Field{
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	}
}

// LogServerError logs at error level and renders a 500 page with userMsg.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	if e.ClientGone(r, logMsg, err) {
		return
	}
	e.log.Error(logMsg, e.fields(r, err)...)
	RenderServerError(w, r, userMsg, backURL)
}

// LogBadRequest logs at warn level and renders a 400 page with userMsg.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg, e.fields(r, err)...)
	RenderBadRequest(w, r, userMsg, backURL)
}

// LogNotFound logs at debug level and renders the not-found state.
func (e *ErrorLogger) LogNotFound(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Debug(logMsg, e.fields(r, err)...)
	RenderNotFound(w, r, userMsg, backURL)
}

// LogTransient logs a store failure that is shown inline as a banner by the
// caller. It reports false when the client already left, in which case the
// caller must not write anything.
func (e *ErrorLogger) LogTransient(r *http.Request, op string, err error) bool {
	if e.ClientGone(r, op, err) {
		return false
	}
	e.log.Warn(op, e.fields(r, err)...)
	return true
}

// ClientGone reports whether the request was abandoned. The result of such a
// request is dropped with a debug line.
func (e *ErrorLogger) ClientGone(r *http.Request, op string, err error) bool {
	if !apperr.ClientGone(r) {
		return false
	}
	e.log.Debug("client gone; dropping result",
		zap.String("op", op),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	return true
}
