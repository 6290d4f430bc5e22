// internal/app/features/takefood/handler.go
package takefood

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/features/locations"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Searcher finds unclaimed listings in one city.
type Searcher interface {
	Search(ctx context.Context, country, city string) ([]models.Listing, error)
}

const (
	msgSelectBoth   = "Please select both country and city"
	msgNoneFound    = "No food listings found in this area"
	msgSearchFailed = "Failed to search for food listings. Please try again."
)

type Handler struct {
	Listings Searcher
	ErrLog   *uierrors.ErrorLogger
	Metrics  metrics.Recorder
	Log      *zap.Logger
}

func NewHandler(listings Searcher, errLog *uierrors.ErrorLogger, rec metrics.Recorder, logger *zap.Logger) *Handler {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &Handler{Listings: listings, ErrLog: errLog, Metrics: rec, Log: logger}
}

type resultRow struct {
	FoodType    string
	Quantity    int
	Address     string
	City        string
	Country     string
	AvailableOn string
	Phone       string
}

type searchVM struct {
	viewdata.BaseVM

	Countries viewdata.Options
	Cities    viewdata.Options

	Searched bool
	Error    string
	Info     string
	Results  []resultRow
}

// ServeSearch renders the lookup form and, when submitted, the unclaimed
// listings for the chosen country and city in store order.
//
// GET /take-food?search=1&country=France&city=Paris
func (h *Handler) ServeSearch(w http.ResponseWriter, r *http.Request) {
	country := normalize.QueryParam(query.Get(r, "country"))
	city := normalize.QueryParam(query.Get(r, "city"))

	vm := searchVM{
		BaseVM:    viewdata.NewBaseVM(r, "Take Food", "/"),
		Countries: locations.CountryOptions(country),
		Cities:    locations.CityOptions(country, city),
		Searched:  query.Get(r, "search") != "",
	}

	if vm.Searched && !h.search(r, &vm, country, city) {
		return
	}

	if r.Header.Get("HX-Request") == "true" && vm.Searched {
		templates.RenderSnippet(w, "takefood_results", vm)
		return
	}
	templates.Render(w, r, "takefood_search", vm)
}

// search fills vm with the lookup outcome. It returns false when the client
// went away and nothing should be written.
func (h *Handler) search(r *http.Request, vm *searchVM, country, city string) bool {
	if country == "" || city == "" {
		h.Metrics.Search(metrics.OutcomeRejected)
		vm.Error = msgSelectBoth
		return true
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	found, err := h.Listings.Search(ctx, country, city)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "search listings failed", err) {
			return false
		}
		h.Metrics.Search(metrics.OutcomeError)
		vm.Error = msgSearchFailed
		return true
	}

	if len(found) == 0 {
		h.Metrics.Search(metrics.OutcomeEmpty)
		vm.Info = msgNoneFound
		return true
	}

	h.Metrics.Search(metrics.OutcomeFound)
	vm.Results = make([]resultRow, 0, len(found))
	for _, l := range found {
		vm.Results = append(vm.Results, resultRow{
			FoodType:    l.FoodType,
			Quantity:    l.Quantity,
			Address:     l.Address,
			City:        l.City,
			Country:     l.Country,
			AvailableOn: l.AvailableOn,
			Phone:       l.Phone,
		})
	}
	h.Log.Debug("search",
		zap.String("country", country),
		zap.String("city", city),
		zap.Int("results", len(found)))
	return true
}
