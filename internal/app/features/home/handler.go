package home

import (
	"net/http"
	"sort"

	"github.com/dalemusser/takeandeat/internal/app/features/pages"
	"github.com/dalemusser/takeandeat/internal/app/system/directory"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the home page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type homeVM struct {
	viewdata.BaseVM
	Countries viewdata.Options
	Resources []pages.Resource
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET / – landing                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "home", newHomeVM(r))
}

// newHomeVM builds the landing page, narrowing the resource posts to
// ?country= when it names a known country.
func newHomeVM(r *http.Request) homeVM {
	countries := filterCountries()
	country := normalize.QueryParam(query.Get(r, "country"))
	if i := sort.SearchStrings(countries, country); i == len(countries) || countries[i] != country {
		country = ""
	}
	return homeVM{
		BaseVM:    viewdata.NewBaseVM(r, "", "/"),
		Countries: viewdata.NewOptions("All Countries", countries, country),
		Resources: pages.Resources(country),
	}
}

// filterCountries is every listing region plus every country with a
// resource post, sorted.
func filterCountries() []string {
	all := append(directory.Regions(), pages.ResourceCountries()...)
	sort.Strings(all)
	out := all[:0]
	for i, c := range all {
		if i == 0 || c != all[i-1] {
			out = append(out, c)
		}
	}
	return out
}
