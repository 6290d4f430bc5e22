// internal/domain/models/listing.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire and storage format of Listing.AvailableOn.
const DateLayout = "2006-01-02"

// Listing is one offer of surplus food.
//
// OwnerID and CreatedAt are written once on insert and never changed.
// Country/City always name a directory entry.
type Listing struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID     primitive.ObjectID `bson:"owner_id" json:"owner_id"`
	Country     string             `bson:"country" json:"country"`
	City        string             `bson:"city" json:"city"`
	Address     string             `bson:"address" json:"address"`
	FoodType    string             `bson:"food_type" json:"food_type"`
	AvailableOn string             `bson:"available_on" json:"available_on"` // YYYY-MM-DD
	Quantity    int                `bson:"quantity" json:"quantity"`
	Phone       string             `bson:"phone" json:"phone"` // E.164
	IsTaken     bool               `bson:"is_taken" json:"is_taken"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// ListingFields are the owner-editable fields of a listing.
type ListingFields struct {
	Country     string
	City        string
	Address     string
	FoodType    string
	AvailableOn string
	Quantity    int
	Phone       string
}

// Fields returns the editable part of l.
func (l Listing) Fields() ListingFields {
	return ListingFields{
		Country:     l.Country,
		City:        l.City,
		Address:     l.Address,
		FoodType:    l.FoodType,
		AvailableOn: l.AvailableOn,
		Quantity:    l.Quantity,
		Phone:       l.Phone,
	}
}
