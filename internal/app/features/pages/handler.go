// internal/app/features/pages/handler.go
package pages

import (
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/directory"
	"github.com/dalemusser/takeandeat/internal/app/system/normalize"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler serves the informational pages. Their content is compiled in.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

type faqVM struct {
	viewdata.BaseVM
	FAQs []QA
}

type sectionsVM struct {
	viewdata.BaseVM
	Lead     string
	Sections []Section
}

type partnersVM struct {
	viewdata.BaseVM
	Lead      string
	OffersTag string // heading over each partner's list
	Action    string // form action for the country filter
	Countries viewdata.Options
	Partners  []Partner
}

type resourceVM struct {
	viewdata.BaseVM
	Resource Resource
}

func (h *Handler) ServeFAQ(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "pages_faq", faqVM{
		BaseVM: viewdata.NewBaseVM(r, "Frequently Asked Questions", "/"),
		FAQs:   faqs,
	})
}

func (h *Handler) ServeFoodSafety(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "pages_sections", sectionsVM{
		BaseVM:   viewdata.NewBaseVM(r, "Food Safety Guidelines", "/"),
		Lead:     "Ensuring safe food handling and distribution in our community",
		Sections: foodSafety,
	})
}

func (h *Handler) ServeGuidelines(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "pages_sections", sectionsVM{
		BaseVM:   viewdata.NewBaseVM(r, "Community Guidelines", "/"),
		Lead:     "Building a safe and supportive food sharing community together",
		Sections: guidelines,
	})
}

// partnerPage renders one of the partner directories, filtered by the
// optional ?country= parameter.
func (h *Handler) partnerPage(title, lead, offersTag, action string, list []Partner) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		country := normalize.QueryParam(query.Get(r, "country"))
		if country != "" && !directory.HasRegion(country) {
			country = ""
		}
		templates.Render(w, r, "pages_partners", partnersVM{
			BaseVM:    viewdata.NewBaseVM(r, title, "/"),
			Lead:      lead,
			OffersTag: offersTag,
			Action:    action,
			Countries: viewdata.NewOptions("All Countries", directory.Regions(), country),
			Partners:  partnersIn(list, country),
		})
	}
}

// ServeResource handles GET /resource/{id}.
func (h *Handler) ServeResource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	res, ok := ResourceByID(id)
	if !ok {
		h.Log.Debug("unknown resource", zap.String("id", id))
		uierrors.RenderNotFound(w, r, "Resource not found", "/")
		return
	}
	templates.Render(w, r, "pages_resource", resourceVM{
		BaseVM:   viewdata.NewBaseVM(r, res.Title, "/"),
		Resource: res,
	})
}
