// internal/app/features/givefood/form.go
package givefood

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/directory"
	"github.com/dalemusser/takeandeat/internal/app/system/htmlsanitize"
	"github.com/dalemusser/takeandeat/internal/app/system/inputval"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/domain/models"
)

// Quantity bounds.
const (
	MinQuantity = 1
	MaxQuantity = 10000
)

// Messages shown next to the offending field.
const (
	msgCountry  = "Please select a country"
	msgCity     = "Please select a city in the chosen country"
	msgDate     = "Available date must be a valid date."
	msgPastDate = "Available date cannot be in the past"
	msgQuantity = "Quantity must be a whole number of at least 1"
	msgPhone    = "Please enter a valid phone number with country code (e.g., +1234567890)"
)

// listingInput is the raw form. Everything is kept as typed so a failed
// submission re-renders exactly what the user entered.
type listingInput struct {
	Country     string `form:"country" validate:"required" label:"Country"`
	City        string `form:"city" validate:"required" label:"City"`
	Address     string `form:"address" validate:"required,max=300" label:"Address"`
	FoodType    string `form:"food_type" validate:"required,max=200" label:"Food type"`
	AvailableOn string `form:"available_on" validate:"required" label:"Available date"`
	Quantity    string `form:"quantity" validate:"required" label:"Quantity"`
	Phone       string `form:"phone" validate:"required" label:"Phone number"`
}

func parseListingInput(r *http.Request) listingInput {
	return listingInput{
		Country:     normalize.Text(r.FormValue("country")),
		City:        normalize.Text(r.FormValue("city")),
		Address:     htmlsanitize.StripTags(normalize.Text(r.FormValue("address"))),
		FoodType:    htmlsanitize.StripTags(normalize.Text(r.FormValue("food_type"))),
		AvailableOn: normalize.Text(r.FormValue("available_on")),
		Quantity:    normalize.Text(r.FormValue("quantity")),
		Phone:       normalize.Text(r.FormValue("phone")),
	}
}

// validate checks in and returns the fields to store. today is the current
// UTC date; keepDate, when non-empty, is a stored date that may be kept even
// if it is now in the past.
func (in listingInput) validate(today, keepDate string) (models.ListingFields, apperr.ValidationErrors) {
	var errs apperr.ValidationErrors
	for _, fe := range inputval.Validate(in).Errors {
		errs.Add(fe.Key, fe.Message)
	}
	failed := func(key string) bool { return errs.For(key) != "" }

	f := models.ListingFields{
		Country:     in.Country,
		City:        in.City,
		Address:     in.Address,
		FoodType:    in.FoodType,
		AvailableOn: in.AvailableOn,
	}

	if !failed("country") && !directory.HasRegion(in.Country) {
		errs.Add("country", msgCountry)
	}
	if !failed("city") && !failed("country") && !directory.Valid(in.Country, in.City) {
		errs.Add("city", msgCity)
	}

	if !failed("available_on") {
		d, err := time.Parse(models.DateLayout, in.AvailableOn)
		switch {
		case err != nil:
			errs.Add("available_on", msgDate)
		case in.AvailableOn != keepDate && d.Format(models.DateLayout) < today:
			errs.Add("available_on", msgPastDate)
		}
	}

	if !failed("quantity") {
		n, err := strconv.Atoi(in.Quantity)
		if err != nil || n < MinQuantity || n > MaxQuantity {
			errs.Add("quantity", msgQuantity)
		}
		f.Quantity = n
	}

	if !failed("phone") {
		e164, ok := normalize.Phone(in.Phone)
		if !ok {
			errs.Add("phone", msgPhone)
		}
		f.Phone = e164
	}

	return f, errs
}

// inputFrom pre-populates the form from a stored listing.
func inputFrom(l models.Listing) listingInput {
	return listingInput{
		Country:     l.Country,
		City:        l.City,
		Address:     l.Address,
		FoodType:    l.FoodType,
		AvailableOn: l.AvailableOn,
		Quantity:    strconv.Itoa(l.Quantity),
		Phone:       l.Phone,
	}
}
