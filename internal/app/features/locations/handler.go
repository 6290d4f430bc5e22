// internal/app/features/locations/handler.go
package locations

import (
	"net/http"

	"github.com/dalemusser/takeandeat/internal/app/system/directory"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Placeholders for the two selectors. The empty-valued first option is what
// resets the city when the country changes.
const (
	CountryPlaceholder = "Select country"
	CityPlaceholder    = "Select city"
)

// CountryOptions lists every directory region.
func CountryOptions(selected string) viewdata.Options {
	return viewdata.NewOptions(CountryPlaceholder, directory.Regions(), selected)
}

// CityOptions lists the cities of country in directory order. An unknown
// country yields only the placeholder.
func CityOptions(country, selected string) viewdata.Options {
	return viewdata.NewOptions(CityPlaceholder, directory.SubRegions(country), selected)
}

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// Cities renders the <option> list for the city selector.
// GET /locations/cities?country=France
func (h *Handler) Cities(w http.ResponseWriter, r *http.Request) {
	country := normalize.QueryParam(query.Get(r, "country"))
	if country != "" && !directory.HasRegion(country) {
		h.Log.Debug("city options for unknown country", zap.String("country", country))
	}
	w.Header().Set("Cache-Control", "public, max-age=3600")
	templates.RenderSnippet(w, "locations_city_options", CityOptions(country, ""))
}
