// internal/app/features/contact/routes.go
package contact

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeContact)
	r.With(limit).Post("/", h.HandleContact)
	return r
}
