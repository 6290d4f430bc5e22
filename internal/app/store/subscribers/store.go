// internal/app/store/subscribers/store.go
package subscribers

import (
	"context"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// StatusActive is the status of every subscription the app writes.
const StatusActive = "active"

// Store is the "newsletter_subscribers" collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("newsletter_subscribers")}
}

// Subscribe records email as an active subscriber. Subscribing twice is not
// an error; created reports whether this call added the address.
func (s *Store) Subscribe(ctx context.Context, email string) (created bool, err error) {
	email = normalize.Email(email)
	res, err := s.c.UpdateOne(ctx,
		bson.M{"email": email},
		bson.M{
			"$set":         bson.M{"status": StatusActive},
			"$setOnInsert": bson.M{"subscribed_at": time.Now().UTC()},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// Two concurrent upserts of the same address: the other one won.
		if wafflemongo.IsDup(err) {
			return false, nil
		}
		return false, apperr.Transient("subscribe", err)
	}
	return res.UpsertedCount == 1, nil
}
