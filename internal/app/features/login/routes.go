// internal/app/features/login/routes.go
package login

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Routes mounts /login. limit throttles the endpoints that send email.
func Routes(h *Handler, limit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleLoginPost)

	r.Get("/verify-reminder", h.ServeVerifyReminder)
	r.With(limit).Post("/resend-verification", h.HandleResend)

	r.Get("/forgot", h.ServeForgot)
	r.With(limit).Post("/forgot", h.HandleForgot)
	r.Get("/reset", h.ServeReset)
	r.Post("/reset", h.HandleReset)
	return r
}
