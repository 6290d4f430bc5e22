package userstore

import (
	"context"
	"errors"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Fetcher implements auth.UserFetcher to load fresh profile data on each request.
type Fetcher struct {
	profiles *mongo.Collection
	logger   *zap.Logger
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database, logger *zap.Logger) *Fetcher {
	return &Fetcher{profiles: db.Collection("profiles"), logger: logger}
}

// FetchUser returns (nil, nil) for a malformed id or a deleted profile, so
// the session resolves to anonymous. Store failures are returned as
// transient errors.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":            1,
		"full_name":      1,
		"email":          1,
		"phone_e164":     1,
		"auth_method":    1,
		"email_verified": 1,
		"phone_verified": 1,
	})
	err = f.profiles.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		f.logger.Warn("profile fetch failed", zap.String("user_id", userID), zap.Error(err))
		return nil, apperr.Transient("fetch profile", err)
	}

	return &auth.SessionUser{
		ID:         u.ID.Hex(),
		Name:       u.DisplayName(),
		Email:      u.Email,
		Phone:      u.PhoneE164,
		AuthMethod: u.AuthMethod,
		Verified:   u.Verified(),
	}, nil
}
