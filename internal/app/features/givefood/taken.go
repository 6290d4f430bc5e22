// internal/app/features/givefood/taken.go
package givefood

import (
	"context"
	"net/http"
	"strconv"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// HandleTaken sets or clears the claimed flag of the caller's listing.
// Form field "taken" is "true" or "false".
func (h *Handler) HandleTaken(w http.ResponseWriter, r *http.Request) {
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
	taken, err := strconv.ParseBool(r.FormValue("taken"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad taken value", err, "Invalid form data.", basePath)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Listings.SetTaken(ctx, id, uid, taken)
	h.Metrics.ListingWrite("mark_taken", err == nil)
	switch {
	case apperr.IsNotFound(err):
		h.ErrLog.LogNotFound(w, r, "mark taken on missing listing", err, msgListingNotFound, basePath)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "mark taken failed", err, "Failed to update listing", basePath)
		return
	}

	flash := "listing-open"
	if taken {
		flash = "listing-taken"
	}
	http.Redirect(w, r, viewdata.FlashURL(basePath, flash), http.StatusSeeOther)
}
