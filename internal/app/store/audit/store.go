// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Auth event types
const (
	EventSignIn         = "sign_in"
	EventSignInFailed   = "sign_in_failed"
	EventSignOut        = "sign_out"
	EventRegistered     = "registered"
	EventEmailVerified  = "email_verified"
	EventCodeSent       = "code_sent"
	EventPasswordReset  = "password_reset"
	EventGoogleLinked   = "google_linked"
	EventResetRequested = "reset_requested"
)

// Retention is how long events are kept before the TTL index removes them.
const Retention = 90 * 24 * time.Hour

// Event is one authentication event. Account holds the email or phone the
// client typed when there is no profile to point at.
type Event struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty"`
	Timestamp time.Time           `bson:"timestamp"`
	EventType string              `bson:"event_type"`
	Method    string              `bson:"method,omitempty"` // password, phone, google
	UserID    *primitive.ObjectID `bson:"user_id,omitempty"`
	Account   string              `bson:"account,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`
}

// Store manages the append-only "audit_events" collection.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

// New creates a new audit Store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("audit_events"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Log inserts e, stamping the time when it is unset.
func (s *Store) Log(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = s.now()
	}
	e.ID = primitive.NewObjectID()
	_, err := s.c.InsertOne(ctx, e)
	return err
}

// ListByUser returns the newest events for userID, at most limit of them.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Event, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountFailures counts failed sign-ins for account since the given time.
func (s *Store) CountFailures(ctx context.Context, account string, since time.Time) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{
		"event_type": EventSignInFailed,
		"account":    account,
		"timestamp":  bson.M{"$gte": since},
	})
}
