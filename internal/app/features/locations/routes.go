// internal/app/features/locations/routes.go
package locations

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/cities", h.Cities)
	return r
}
