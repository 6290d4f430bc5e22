// internal/app/features/newsletter/routes.go
package newsletter

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.With(limit).Post("/", h.HandleSubscribe)
	return r
}
