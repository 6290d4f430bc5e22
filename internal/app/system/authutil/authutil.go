// Package authutil holds password rules and bcrypt helpers shared by
// registration, login and password reset.
package authutil

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Auth methods stored on a profile.
const (
	MethodPassword = "password"
	MethodPhone    = "phone"
	MethodGoogle   = "google"
)

const (
	MinPasswordLength = 6
	// bcrypt ignores everything after 72 bytes.
	MaxPasswordLength = 72

	BcryptCost = 12
)

var (
	ErrPasswordTooShort = errors.New("password too short")
	ErrPasswordTooLong  = errors.New("password too long")
)

// ValidatePassword enforces the length rules.
func ValidatePassword(pw string) error {
	if len(pw) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	if len(pw) > MaxPasswordLength {
		return ErrPasswordTooLong
	}
	return nil
}

// PasswordRules is the hint shown beneath password inputs.
func PasswordRules() string {
	return fmt.Sprintf("At least %d characters.", MinPasswordLength)
}

// HashPassword returns the bcrypt hash of pw.
func HashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword reports whether pw matches the bcrypt hash.
func CheckPassword(pw, hash string) bool {
	if pw == "" || hash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// HashFingerprint is a short, stable digest of a password hash. Reset
// tokens carry it so that a token stops working once the password changes.
func HashFingerprint(hash string) string {
	sum := sha256.Sum256([]byte(hash))
	return hex.EncodeToString(sum[:8])
}

// IsValidMethod reports whether m is a known auth method.
func IsValidMethod(m string) bool {
	switch m {
	case MethodPassword, MethodPhone, MethodGoogle:
		return true
	}
	return false
}
