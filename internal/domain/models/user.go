// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a profile in the "profiles" collection.
//
// Email, PhoneE164 and GoogleID are omitted when empty so their sparse
// unique indexes ignore profiles that do not use them.
type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName      string             `bson:"full_name" json:"full_name"`
	Email         string             `bson:"email,omitempty" json:"email,omitempty"` // lower-cased
	PhoneNumber   string             `bson:"phone_number,omitempty" json:"phone_number,omitempty"`
	PhoneE164     string             `bson:"phone_e164,omitempty" json:"phone_e164,omitempty"`
	PasswordHash  string             `bson:"password_hash,omitempty" json:"-"`
	AuthMethod    string             `bson:"auth_method" json:"auth_method"` // password | phone | google
	GoogleID      string             `bson:"google_id,omitempty" json:"-"`
	EmailVerified bool               `bson:"email_verified" json:"email_verified"`
	PhoneVerified bool               `bson:"phone_verified" json:"phone_verified"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Verified reports whether the profile proved control of an email or phone.
func (u User) Verified() bool {
	return u.EmailVerified || u.PhoneVerified
}

// DisplayName is the name shown in the header.
func (u User) DisplayName() string {
	switch {
	case u.FullName != "":
		return u.FullName
	case u.Email != "":
		return u.Email
	default:
		return u.PhoneE164
	}
}
