// internal/domain/models/contactmessage.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContactMessage is a support request. Written once, never read back by the app.
type ContactMessage struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	Reference string             `bson:"reference"` // shown to the sender
	Name      string             `bson:"name"`
	Email     string             `bson:"email"`
	Subject   string             `bson:"subject"`
	Message   string             `bson:"message"`
	Status    string             `bson:"status"` // "new"
	CreatedAt time.Time          `bson:"created_at"`
}

// Subscriber is a newsletter sign-up, unique by email.
type Subscriber struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Email        string             `bson:"email"`
	Status       string             `bson:"status"` // "active"
	SubscribedAt time.Time          `bson:"subscribed_at"`
}
