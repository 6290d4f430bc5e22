// internal/app/features/takefood/routes.go
package takefood

import (
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()
	r.Use(sm.RequireVerified)
	r.Get("/", h.ServeSearch)
	return r
}
