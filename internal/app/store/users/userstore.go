package userstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/authutil"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store is the "profiles" collection.
type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("profiles")}
}

var (
	// ErrNotFound is returned when no profile matches. It satisfies apperr.IsNotFound.
	ErrNotFound = apperr.NotFound("profile")
	// ErrDuplicateEmail is returned when attempting to create a profile with an email that already exists.
	ErrDuplicateEmail = errors.New("a profile with this email already exists")
	// ErrDuplicatePhone is returned when a phone identity already exists for the number.
	ErrDuplicatePhone = errors.New("a profile with this phone number already exists")
	// ErrDuplicateGoogle is returned when the Google account is already linked.
	ErrDuplicateGoogle = errors.New("a profile with this Google account already exists")

	errBadMethod = errors.New(`auth_method must be "password"|"phone"|"google"`)
)

func (s *Store) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, filter).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Transient("load profile", err)
	}
	return &u, nil
}

// GetByID loads a profile by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

// GetByEmail looks up a profile by case-insensitive email.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalize.Email(email)
	if email == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"email": email})
}

// GetByPhone looks up a phone identity by its E.164 number.
func (s *Store) GetByPhone(ctx context.Context, e164 string) (*models.User, error) {
	if e164 == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"phone_e164": e164})
}

// GetByGoogleID looks up a profile linked to a Google account.
func (s *Store) GetByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	if googleID == "" {
		return nil, ErrNotFound
	}
	return s.findOne(ctx, bson.M{"google_id": googleID})
}

// Create inserts a new profile after normalizing fields.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if !authutil.IsValidMethod(u.AuthMethod) {
		return models.User{}, errBadMethod
	}
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.Email = normalize.Email(u.Email)

	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, dupErr(err)
		}
		return models.User{}, apperr.Transient("insert profile", err)
	}
	return u, nil
}

// dupErr names the unique index the insert collided with.
func dupErr(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "phone_e164"):
		return ErrDuplicatePhone
	case strings.Contains(msg, "google_id"):
		return ErrDuplicateGoogle
	default:
		return ErrDuplicateEmail
	}
}

func (s *Store) set(ctx context.Context, op string, id primitive.ObjectID, fields bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return dupErr(err)
		}
		return apperr.Transient(op, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkEmailVerified records that the profile proved control of its email.
func (s *Store) MarkEmailVerified(ctx context.Context, id primitive.ObjectID) error {
	return s.set(ctx, "verify email", id, bson.M{"email_verified": true})
}

// MarkPhoneVerified records that the profile proved control of its phone.
func (s *Store) MarkPhoneVerified(ctx context.Context, id primitive.ObjectID) error {
	return s.set(ctx, "verify phone", id, bson.M{"phone_verified": true})
}

// SetPassword replaces the bcrypt hash. Outstanding reset tokens stop
// validating because they are bound to the previous hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	return s.set(ctx, "set password", id, bson.M{"password_hash": hash})
}

// LinkGoogle attaches a Google account to an existing profile. Google has
// verified the email, so the profile becomes verified too.
func (s *Store) LinkGoogle(ctx context.Context, id primitive.ObjectID, googleID string) error {
	return s.set(ctx, "link google", id, bson.M{"google_id": googleID, "email_verified": true})
}
