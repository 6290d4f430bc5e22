// internal/app/store/verifications/store.go
package verifications

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Channel is how a verification is delivered.
type Channel string

const (
	// ChannelEmail delivers a link token by email.
	ChannelEmail Channel = "email"
	// ChannelSMS delivers a numeric code by text message.
	ChannelSMS Channel = "sms"
)

const (
	// CodeLength is the length of the verification code (6 digits).
	CodeLength = 6
	// TokenLength is the length of the link token in bytes (32 bytes = 64 hex chars).
	TokenLength = 32
	// DefaultEmailExpiry is how long an email link is valid.
	DefaultEmailExpiry = 24 * time.Hour
	// DefaultSMSExpiry is how long an SMS code is valid.
	DefaultSMSExpiry = 10 * time.Minute
	// BcryptCost for hashing codes.
	BcryptCost = 10
	// MaxVerifyAttempts is the maximum number of code checks per verification.
	MaxVerifyAttempts = 5
	// MaxResends is the maximum number of resends within ResendWindow.
	MaxResends = 3
	// ResendWindow is the time window for tracking resend rate limiting.
	ResendWindow = 10 * time.Minute
)

var (
	// ErrNotFound is returned when a verification record is not found or expired.
	ErrNotFound = errors.New("verification not found or expired")
	// ErrInvalidCode is returned when the code doesn't match.
	ErrInvalidCode = errors.New("invalid verification code")
	// ErrTooManyAttempts is returned when too many verification attempts have been made.
	ErrTooManyAttempts = errors.New("too many verification attempts")
	// ErrTooManyResends is returned when too many resend requests have been made.
	ErrTooManyResends = errors.New("too many resend requests")
)

// Verification is one pending verification for a (user, channel) pair.
type Verification struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id"`
	Channel     Channel            `bson:"channel"`
	Destination string             `bson:"destination"`         // email address or E.164 number
	CodeHash    string             `bson:"code_hash,omitempty"` // sms: bcrypt hash of the code
	Token       string             `bson:"token,omitempty"`     // email: link token
	ExpiresAt   time.Time          `bson:"expires_at"`          // TTL index field
	CreatedAt   time.Time          `bson:"created_at"`
	Attempts    int                `bson:"attempts"`
	ResendCount int                `bson:"resend_count"`
	WindowStart time.Time          `bson:"window_start"`
}

// Config sets per-channel expiry. Zero values use the defaults.
type Config struct {
	EmailExpiry time.Duration
	SMSExpiry   time.Duration
}

// Store manages verification records in the "verifications" collection.
type Store struct {
	c   *mongo.Collection
	cfg Config
	now func() time.Time
}

// New creates a new Store.
func New(db *mongo.Database, cfg Config) *Store {
	if cfg.EmailExpiry <= 0 {
		cfg.EmailExpiry = DefaultEmailExpiry
	}
	if cfg.SMSExpiry <= 0 {
		cfg.SMSExpiry = DefaultSMSExpiry
	}
	return &Store{
		c:   db.Collection("verifications"),
		cfg: cfg,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Expiry returns how long a verification on ch stays valid.
func (s *Store) Expiry(ch Channel) time.Duration {
	if ch == ChannelSMS {
		return s.cfg.SMSExpiry
	}
	return s.cfg.EmailExpiry
}

// CreateResult carries the secret to deliver.
type CreateResult struct {
	Code        string // sms only: plain text code
	Token       string // email only: link token
	ResendCount int
}

// Create replaces any pending verification for (userID, ch) with a new one.
// If isResend is true, this counts against the resend rate limit.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, ch Channel, destination string, isResend bool) (*CreateResult, error) {
	now := s.now()
	key := bson.M{"user_id": userID, "channel": ch}

	var existing Verification
	err := s.c.FindOne(ctx, key).Decode(&existing)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.Transient("load verification", err)
	}
	existingFound := err == nil
	inWindow := existingFound && now.Before(existing.WindowStart.Add(ResendWindow))

	if isResend && inWindow && existing.ResendCount >= MaxResends {
		return nil, ErrTooManyResends
	}

	resendCount := 0
	windowStart := now
	if inWindow {
		windowStart = existing.WindowStart
		resendCount = existing.ResendCount
		if isResend {
			resendCount++
		}
	}

	v := Verification{
		ID:          primitive.NewObjectID(),
		UserID:      userID,
		Channel:     ch,
		Destination: destination,
		ExpiresAt:   now.Add(s.Expiry(ch)),
		CreatedAt:   now,
		ResendCount: resendCount,
		WindowStart: windowStart,
	}
	res := &CreateResult{ResendCount: resendCount}

	switch ch {
	case ChannelSMS:
		res.Code = generateCode()
		hash, err := bcrypt.GenerateFromPassword([]byte(res.Code), BcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash code: %w", err)
		}
		v.CodeHash = string(hash)
	case ChannelEmail:
		res.Token = generateToken()
		v.Token = res.Token
	default:
		return nil, fmt.Errorf("unknown verification channel %q", ch)
	}

	if _, err := s.c.DeleteMany(ctx, key); err != nil {
		return nil, apperr.Transient("replace verification", err)
	}
	if _, err := s.c.InsertOne(ctx, v); err != nil {
		return nil, apperr.Transient("insert verification", err)
	}
	return res, nil
}

// VerifyCode checks an SMS code for userID. Each call claims one attempt
// atomically before the hash is compared, so concurrent guesses cannot exceed
// MaxVerifyAttempts. A matching code consumes the record.
func (s *Store) VerifyCode(ctx context.Context, userID primitive.ObjectID, code string) (*Verification, error) {
	now := s.now()
	live := bson.M{
		"user_id":    userID,
		"channel":    ChannelSMS,
		"expires_at": bson.M{"$gt": now},
	}

	claim := bson.M{
		"user_id":    userID,
		"channel":    ChannelSMS,
		"expires_at": bson.M{"$gt": now},
		"attempts":   bson.M{"$lt": MaxVerifyAttempts},
	}
	var v Verification
	err := s.c.FindOneAndUpdate(ctx, claim,
		bson.M{"$inc": bson.M{"attempts": 1}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Either nothing is pending or every attempt is used up.
		n, cerr := s.c.CountDocuments(ctx, live)
		if cerr != nil {
			return nil, apperr.Transient("load verification", cerr)
		}
		if n > 0 {
			return nil, ErrTooManyAttempts
		}
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("count attempt", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(v.CodeHash), []byte(code)); err != nil {
		return nil, ErrInvalidCode
	}

	// Only one caller can consume a matching code.
	err = s.c.FindOneAndDelete(ctx, bson.M{"_id": v.ID, "code_hash": v.CodeHash}).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("consume verification", err)
	}
	return &v, nil
}

// VerifyToken consumes an email link token.
func (s *Store) VerifyToken(ctx context.Context, token string) (*Verification, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	var v Verification
	err := s.c.FindOneAndDelete(ctx, bson.M{
		"token":      token,
		"channel":    ChannelEmail,
		"expires_at": bson.M{"$gt": s.now()},
	}).Decode(&v)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("consume verification", err)
	}
	return &v, nil
}

// DeleteByUser deletes all verification records for a user.
func (s *Store) DeleteByUser(ctx context.Context, userID primitive.ObjectID) error {
	if _, err := s.c.DeleteMany(ctx, bson.M{"user_id": userID}); err != nil {
		return apperr.Transient("delete verifications", err)
	}
	return nil
}

// generateCode returns a uniformly random 6-digit code.
// Panics if the system's cryptographic random number generator fails.
func generateCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		panic("crypto/rand failed: " + err.Error())
	}
	return fmt.Sprintf("%06d", n.Int64()+100000)
}

// generateToken generates a random token for email links.
// Panics if the system's cryptographic random number generator fails.
func generateToken() string {
	b := make([]byte, TokenLength)
	if _, err := rand.Read(b); err != nil {
		panic("crypto/rand.Read failed: " + err.Error())
	}
	return hex.EncodeToString(b)
}
