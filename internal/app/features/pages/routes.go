// internal/app/features/pages/routes.go
package pages

import "github.com/go-chi/chi/v5"

// Each page gets its own router so bootstrap can mount it at its path.

func (h *Handler) FAQRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeFAQ)
	return r
}

func (h *Handler) FoodSafetyRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeFoodSafety)
	return r
}

func (h *Handler) GuidelinesRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeGuidelines)
	return r
}

func (h *Handler) FoodBanksRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.partnerPage("Local Food Banks",
		"Partnering with food banks to maximize our impact and ensure food reaches those who need it most",
		"Services", "/local-food-banks", foodBanks))
	return r
}

func (h *Handler) RestaurantsRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.partnerPage("Restaurant Partners",
		"Collaborating with restaurants to reduce food waste and support our community",
		"Initiatives", "/restaurants", restaurants))
	return r
}

func (h *Handler) CommunityCentersRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.partnerPage("Community Centers",
		"Working with local centers to distribute food and support our communities",
		"Programs", "/community-centers", communityCenters))
	return r
}

// ResourceRouter is mounted at /resource.
func (h *Handler) ResourceRouter() chi.Router {
	r := chi.NewRouter()
	r.Get("/{id}", h.ServeResource)
	return r
}
