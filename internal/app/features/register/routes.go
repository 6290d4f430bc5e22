// internal/app/features/register/routes.go
package register

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts /register. limit throttles form submissions.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeRegister)
	r.With(limit).Post("/", h.HandleRegister)
	r.Get("/verify", h.ServeVerify)
	return r
}
