// internal/app/features/givefood/edit.go
package givefood

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/formutil"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const msgListingNotFound = "Listing not found."

// loadOwned resolves {id} to one of the caller's listings. It renders the
// error page itself and returns ok=false when the listing cannot be shown.
func (h *Handler) loadOwned(w http.ResponseWriter, r *http.Request) (uid primitive.ObjectID, l *models.Listing, ok bool) {
	uid, ok = owner(r)
	if !ok {
		uierrors.RenderForbidden(w, r, "Please sign in again.", "/login")
		return uid, nil, false
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, msgListingNotFound, basePath)
		return uid, nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, err = h.Listings.GetOwned(ctx, id, uid)
	switch {
	case apperr.IsNotFound(err):
		h.ErrLog.LogNotFound(w, r, "listing not owned or missing", err, msgListingNotFound, basePath)
		return uid, nil, false
	case err != nil:
		h.ErrLog.LogServerError(w, r, "load listing failed", err, "Failed to load listing. Please try again.", basePath)
		return uid, nil, false
	}
	return uid, l, true
}

// ServeEdit renders the edit form pre-populated from the stored listing.
func (h *Handler) ServeEdit(w http.ResponseWriter, r *http.Request) {
	_, l, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	h.renderEdit(w, r, l, inputFrom(*l), nil, "")
}

// HandleEdit overwrites the mutable fields of the caller's listing. Owner and
// created_at are never part of the update.
func (h *Handler) HandleEdit(w http.ResponseWriter, r *http.Request) {
	uid, l, ok := h.loadOwned(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", basePath)
		return
	}

	in := parseListingInput(r)
	fields, errs := in.validate(h.today(), l.AvailableOn)
	if errs.HasErrors() {
		h.renderEdit(w, r, l, in, errs, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err := h.Listings.Update(ctx, l.ID, uid, fields)
	h.Metrics.ListingWrite("update", err == nil)
	switch {
	case apperr.IsNotFound(err):
		// Deleted in another tab between load and save.
		h.ErrLog.LogNotFound(w, r, "listing vanished during edit", err, msgListingNotFound, basePath)
		return
	case err != nil:
		if !h.ErrLog.LogTransient(r, "update listing failed", err) {
			return
		}
		h.renderEdit(w, r, l, in, nil, msgSaveFailed)
		return
	}

	http.Redirect(w, r, viewdata.FlashURL(basePath, "listing-updated"), http.StatusSeeOther)
}

func (h *Handler) renderEdit(w http.ResponseWriter, r *http.Request, l *models.Listing, in listingInput, errs apperr.ValidationErrors, banner string) {
	minDate := h.today()
	if l.AvailableOn < minDate {
		minDate = l.AvailableOn
	}
	vm := newFormVM(in, minDate)
	formutil.SetBase(&vm.Base, r, "Edit Listing", basePath)
	vm.ID = l.ID.Hex()
	vm.Action = basePath + "/" + vm.ID
	vm.SetFieldErrors(errs)
	vm.SetError(banner)

	templates.Render(w, r, "givefood_edit", vm)
}
