// internal/app/store/contactmessages/store.go
package contactmessages

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// StatusNew is the status of every message the app writes.
const StatusNew = "new"

// Store appends to the "contact_messages" collection. Messages are read by
// support staff outside the app.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("contact_messages")}
}

// Insert records a message and returns it with its reference filled in.
func (s *Store) Insert(ctx context.Context, name, email, subject, message string) (models.ContactMessage, error) {
	m := models.ContactMessage{
		ID:        primitive.NewObjectID(),
		Reference: strings.ToUpper(strings.SplitN(uuid.NewString(), "-", 2)[0]),
		Name:      name,
		Email:     email,
		Subject:   subject,
		Message:   message,
		Status:    StatusNew,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.c.InsertOne(ctx, m); err != nil {
		return models.ContactMessage{}, apperr.Transient("insert contact message", err)
	}
	return m, nil
}
