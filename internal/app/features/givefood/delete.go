// internal/app/features/givefood/delete.go
package givefood

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ServeDelete asks for confirmation before deleting.
func (h *Handler) ServeDelete(w http.ResponseWriter, r *http.Request) {
	_, l, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	vm := deleteVM{
		BaseVM:  viewdata.NewBaseVM(r, "Delete Listing", basePath),
		Listing: toRow(*l),
	}
	templates.Render(w, r, "givefood_delete", vm)
}

// HandleDelete removes the caller's listing. Deleting a listing that is
// already gone is reported as success.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		uierrors.RenderForbidden(w, r, "Please sign in again.", "/login")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, msgListingNotFound, basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Listings.Delete(ctx, id, uid)
	h.Metrics.ListingWrite("delete", err == nil)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "delete listing failed", err, "Failed to delete listing", basePath)
		return
	}

	h.Log.Info("listing deleted", zap.String("listing_id", id.Hex()))
	http.Redirect(w, r, viewdata.FlashURL(basePath, "listing-deleted"), http.StatusSeeOther)
}
