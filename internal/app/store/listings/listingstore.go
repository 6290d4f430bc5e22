// internal/app/store/listings/listingstore.go
package listingstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a listing does not exist or belongs to
// someone else. It satisfies apperr.IsNotFound.
var ErrNotFound = apperr.NotFound("listing")

// Store is the "listings" collection.
//
// Every mutation is filtered by {_id, owner_id}; a caller can never change a
// listing it does not own. There is no version check: the last write wins.
type Store struct {
	c   *mongo.Collection
	now func() time.Time
}

func New(db *mongo.Database) *Store {
	return &Store{
		c:   db.Collection("listings"),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Create inserts a new, unclaimed listing owned by owner.
// The fields are expected to be validated and normalised already.
func (s *Store) Create(ctx context.Context, owner primitive.ObjectID, f models.ListingFields) (models.Listing, error) {
	now := s.now()
	l := models.Listing{
		ID:          primitive.NewObjectID(),
		OwnerID:     owner,
		Country:     f.Country,
		City:        f.City,
		Address:     f.Address,
		FoodType:    f.FoodType,
		AvailableOn: f.AvailableOn,
		Quantity:    f.Quantity,
		Phone:       f.Phone,
		IsTaken:     false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.Listing{}, apperr.Transient("insert listing", err)
	}
	return l, nil
}

// GetOwned loads a listing only when owner owns it.
func (s *Store) GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Listing, error) {
	var l models.Listing
	err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": owner}).Decode(&l)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("load listing", err)
	}
	return &l, nil
}

// Update overwrites every owner-editable field. owner_id, created_at and
// is_taken are left as they are.
func (s *Store) Update(ctx context.Context, id, owner primitive.ObjectID, f models.ListingFields) error {
	set := bson.M{
		"country":      f.Country,
		"city":         f.City,
		"address":      f.Address,
		"food_type":    f.FoodType,
		"available_on": f.AvailableOn,
		"quantity":     f.Quantity,
		"phone":        f.Phone,
		"updated_at":   s.now(),
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id, "owner_id": owner}, bson.M{"$set": set})
	if err != nil {
		return apperr.Transient("update listing", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetTaken flips the claimed flag.
func (s *Store) SetTaken(ctx context.Context, id, owner primitive.ObjectID, taken bool) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "owner_id": owner},
		bson.M{"$set": bson.M{"is_taken": taken, "updated_at": s.now()}},
	)
	if err != nil {
		return apperr.Transient("mark listing", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the listing. Deleting a listing that is already gone is
// not an error.
func (s *Store) Delete(ctx context.Context, id, owner primitive.ObjectID) error {
	if _, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": owner}); err != nil {
		return apperr.Transient("delete listing", err)
	}
	return nil
}

// ListByOwner returns owner's listings, newest first.
func (s *Store) ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Listing, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	return s.find(ctx, "list listings", bson.M{"owner_id": owner}, opts)
}

// Search returns the unclaimed listings in country/city in store order.
// An empty result is not an error.
func (s *Store) Search(ctx context.Context, country, city string) ([]models.Listing, error) {
	return s.find(ctx, "search listings", bson.M{
		"country":  country,
		"city":     city,
		"is_taken": false,
	})
}

func (s *Store) find(ctx context.Context, op string, filter bson.M, opts ...*options.FindOptions) ([]models.Listing, error) {
	cur, err := s.c.Find(ctx, filter, opts...)
	if err != nil {
		return nil, apperr.Transient(op, err)
	}
	defer cur.Close(ctx)

	out := []models.Listing{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, apperr.Transient(op, err)
	}
	return out, nil
}
