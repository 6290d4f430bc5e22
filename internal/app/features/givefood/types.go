// internal/app/features/givefood/types.go
package givefood

import (
	"github.com/dalemusser/takeandeat/internal/app/features/locations"
	"github.com/dalemusser/takeandeat/internal/app/system/formutil"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
)

// listingFormVM backs the create and edit forms.
type listingFormVM struct {
	formutil.Base

	ID     string // empty on create
	Action string
	Input  listingInput

	Countries viewdata.Options
	Cities    viewdata.Options
	MinDate   string
}

// indexVM is the /give-food page: the create form plus "My Listings".
type indexVM struct {
	listingFormVM

	Listings  []listingRow
	ListError string
}

type listingRow struct {
	ID          string
	Country     string
	City        string
	Address     string
	FoodType    string
	AvailableOn string
	Quantity    int
	Phone       string
	IsTaken     bool
	Created     string
}

type deleteVM struct {
	viewdata.BaseVM
	Listing listingRow
}

func newFormVM(in listingInput, minDate string) listingFormVM {
	return listingFormVM{
		Input:     in,
		Countries: locations.CountryOptions(in.Country),
		Cities:    locations.CityOptions(in.Country, in.City),
		MinDate:   minDate,
	}
}

func toRow(l models.Listing) listingRow {
	return listingRow{
		ID:          l.ID.Hex(),
		Country:     l.Country,
		City:        l.City,
		Address:     l.Address,
		FoodType:    l.FoodType,
		AvailableOn: l.AvailableOn,
		Quantity:    l.Quantity,
		Phone:       l.Phone,
		IsTaken:     l.IsTaken,
		Created:     l.CreatedAt.UTC().Format("Jan 2, 2006"),
	}
}

func toRows(ls []models.Listing) []listingRow {
	rows := make([]listingRow, 0, len(ls))
	for _, l := range ls {
		rows = append(rows, toRow(l))
	}
	return rows
}
