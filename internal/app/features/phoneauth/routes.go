// internal/app/features/phoneauth/routes.go
package phoneauth

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts /phone-auth. limit throttles code sends and checks per client.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServePhone)
	r.With(limit).Post("/send", h.HandleSend)
	r.With(limit).Post("/verify", h.HandleVerify)
	return r
}
