// internal/app/features/givefood/routes.go
package givefood

import (
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the give-food pages. Every route requires a verified identity.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireVerified)

	r.Get("/", h.ServeIndex)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}/edit", h.ServeEdit)
	r.Post("/{id}", h.HandleEdit)
	r.Get("/{id}/delete", h.ServeDelete)
	r.Post("/{id}/delete", h.HandleDelete)
	r.Post("/{id}/taken", h.HandleTaken)
	return r
}
