package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser inserts a password profile. The password is "password123".
func (f *Fixtures) CreateUser(ctx context.Context, fullName, email string, verified bool) models.User {
	f.t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		f.t.Fatalf("hash password: %v", err)
	}
	now := time.Now().UTC()
	u := models.User{
		ID:            primitive.NewObjectID(),
		FullName:      fullName,
		Email:         email,
		PhoneNumber:   "+15551234567",
		PasswordHash:  string(hash),
		AuthMethod:    "password",
		EmailVerified: verified,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if _, err := f.db.Collection("profiles").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateListing inserts a listing for owner in country/city.
// createdAt lets tests control ordering.
func (f *Fixtures) CreateListing(ctx context.Context, owner primitive.ObjectID, country, city string, createdAt time.Time) models.Listing {
	f.t.Helper()

	l := models.Listing{
		ID:          primitive.NewObjectID(),
		OwnerID:     owner,
		Country:     country,
		City:        city,
		Address:     "1 Test Street",
		FoodType:    "Bread",
		AvailableOn: createdAt.Format(models.DateLayout),
		Quantity:    2,
		Phone:       "+15551234567",
		CreatedAt:   createdAt.UTC().Truncate(time.Millisecond),
		UpdatedAt:   createdAt.UTC().Truncate(time.Millisecond),
	}
	if _, err := f.db.Collection("listings").InsertOne(ctx, l); err != nil {
		f.t.Fatalf("failed to create test listing: %v", err)
	}
	return l
}

// MarkTaken flips is_taken on a listing.
func (f *Fixtures) MarkTaken(ctx context.Context, id primitive.ObjectID) {
	f.t.Helper()
	if _, err := f.db.Collection("listings").UpdateByID(ctx, id, map[string]any{"$set": map[string]any{"is_taken": true}}); err != nil {
		f.t.Fatalf("failed to mark listing taken: %v", err)
	}
}
