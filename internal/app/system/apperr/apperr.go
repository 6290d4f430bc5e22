// Package apperr defines the error kinds the handlers turn into UI state.
//
//   - ValidationError: bad input shape, shown inline next to the field.
//   - AuthError: credential or verification problems, shown through a fixed
//     message table.
//   - TransientError: store or network unavailability, shown as a banner;
//     the user resubmits.
//   - NotFoundError: an absent record or query target, shown as an empty state.
package apperr

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Validation                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// ValidationError names the offending form field and the message to show.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors is an ordered list of field errors.
type ValidationErrors []*ValidationError

// Add appends an error for field.
func (v *ValidationErrors) Add(field, msg string) {
	*v = append(*v, &ValidationError{Field: field, Message: msg})
}

// HasErrors reports whether any error was recorded.
func (v ValidationErrors) HasErrors() bool { return len(v) > 0 }

// For returns the first message recorded for field, or "".
func (v ValidationErrors) For(field string) string {
	for _, e := range v {
		if e.Field == field {
			return e.Message
		}
	}
	return ""
}

// First returns the first message, or "".
func (v ValidationErrors) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0].Message
}

// Map returns field → first message, convenient for templates.
func (v ValidationErrors) Map() map[string]string {
	m := make(map[string]string, len(v))
	for _, e := range v {
		if _, ok := m[e.Field]; !ok {
			m[e.Field] = e.Message
		}
	}
	return m
}

func (v ValidationErrors) Error() string {
	parts := make([]string, 0, len(v))
	for _, e := range v {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}

/*─────────────────────────────────────────────────────────────────────────────*
| Auth                                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// Auth error codes.
const (
	CodeUnverified         = "auth/unverified"
	CodeInvalidCredential  = "auth/invalid-credential"
	CodeTooManyRequests    = "auth/too-many-requests"
	CodeUserNotFound       = "auth/user-not-found"
	CodeEmailInUse         = "auth/email-already-in-use"
	CodeWeakPassword       = "auth/weak-password"
	CodeInvalidEmail       = "auth/invalid-email"
	CodeMissingFields      = "auth/missing-fields"
	CodeInvalidPhone       = "auth/invalid-phone-number"
	CodeMissingCode        = "auth/missing-verification-code"
	CodeInvalidCode        = "auth/invalid-verification-code"
	CodeCodeExpired        = "auth/code-expired"
	CodeInvalidResetToken  = "auth/invalid-action-code"
	CodeSessionUnavailable = "auth/session-unavailable"
	CodeProviderCancelled  = "auth/popup-closed-by-user"
	CodeProviderDisabled   = "auth/operation-not-allowed"
)

// DefaultAuthMessage is shown for codes missing from the table.
const DefaultAuthMessage = "Failed to log in. Please try again."

var authMessages = map[string]string{
	CodeUnverified:         "Please verify your email address before logging in.",
	CodeInvalidCredential:  "Invalid email or password.",
	CodeTooManyRequests:    "Too many failed attempts. Please try again later.",
	CodeUserNotFound:       "No account found with this email address.",
	CodeEmailInUse:         "This email is already registered. Please use a different email or try logging in.",
	CodeWeakPassword:       "Password should be at least 6 characters long.",
	CodeInvalidEmail:       "Please enter a valid email address.",
	CodeMissingFields:      "Please fill in all fields",
	CodeInvalidPhone:       "Please enter a valid phone number",
	CodeMissingCode:        "Please enter the verification code",
	CodeInvalidCode:        "Invalid verification code",
	CodeCodeExpired:        "This code has expired. Please request a new one.",
	CodeInvalidResetToken:  "This password reset link is invalid or has expired. Please request a new one.",
	CodeSessionUnavailable: "Unable to create session. Please try again.",
	CodeProviderCancelled:  "Google sign-in was cancelled.",
	CodeProviderDisabled:   "Google sign-in is not available.",
}

// AuthMessage translates an auth code into the user-facing message.
func AuthMessage(code string) string {
	if msg, ok := authMessages[code]; ok {
		return msg
	}
	return DefaultAuthMessage
}

// AuthError is a credential or verification failure.
type AuthError struct {
	Code string
	Err  error
}

// NewAuth returns an AuthError for code.
func NewAuth(code string) *AuthError { return &AuthError{Code: code} }

func (e *AuthError) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e *AuthError) Unwrap() error { return e.Err }

// Message is the user-facing text for the error.
func (e *AuthError) Message() string { return AuthMessage(e.Code) }

/*─────────────────────────────────────────────────────────────────────────────*
| Transient & not found                                                       |
*─────────────────────────────────────────────────────────────────────────────*/

// TransientError wraps a store or network failure. It is never retried
// automatically.
type TransientError struct {
	Op  string
	Err error
}

// Transient wraps err. A nil err returns nil.
func Transient(op string, err error) error {
	if err == nil {
		return nil
	}
	return &TransientError{Op: op, Err: err}
}

func (e *TransientError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransientError) Unwrap() error { return e.Err }

// NotFoundError reports an absent record.
type NotFoundError struct {
	What string
}

// NotFound returns a NotFoundError for what.
func NotFound(what string) error { return &NotFoundError{What: what} }

func (e *NotFoundError) Error() string { return e.What + " not found" }

// IsNotFound reports whether err is (or wraps) a NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsTransient reports whether err is (or wraps) a TransientError.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Abandoned requests                                                          |
*─────────────────────────────────────────────────────────────────────────────*/

// ClientGone reports whether the request's client went away before the
// handler finished. Results for such requests are dropped, not rendered.
func ClientGone(r *http.Request) bool {
	return errors.Is(r.Context().Err(), context.Canceled)
}
