// Package resettoken issues and checks password-reset tokens.
//
// A token is an HS256 JWT naming the profile and carrying a fingerprint of
// the password hash current at issue time. Once the password changes the
// fingerprint no longer matches, so a token works at most once.
package resettoken

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	issuer   = "takeandeat"
	audience = "password-reset"
)

var ErrInvalidToken = errors.New("invalid or expired reset token")

// Claims carries the profile ID (as Subject) and the password fingerprint.
type Claims struct {
	jwt.RegisteredClaims
	Fingerprint string `json:"pwf"`
}

// Issuer signs reset tokens with a shared secret.
type Issuer struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

// New returns an Issuer. A zero expiry means one hour.
func New(secret string, expiry time.Duration) *Issuer {
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &Issuer{secret: []byte(secret), expiry: expiry, now: time.Now}
}

// Expiry is how long an issued token stays valid.
func (i *Issuer) Expiry() time.Duration { return i.expiry }

// Issue creates a token for userID bound to the given password fingerprint.
func (i *Issuer) Issue(userID, fingerprint string) (string, error) {
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Audience:  jwt.ClaimStrings{audience},
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		Fingerprint: fingerprint,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
}

// Parse validates signature, issuer, audience and expiry and returns the
// claims. The caller still has to compare Fingerprint with the profile.
func (i *Issuer) Parse(token string) (*Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return i.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithAudience(audience),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// Check parses token and confirms it was issued for the password whose
// fingerprint is current. It returns the profile ID.
func (i *Issuer) Check(token, currentFingerprint string) (string, error) {
	claims, err := i.Parse(token)
	if err != nil {
		return "", err
	}
	if claims.Fingerprint != currentFingerprint {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
