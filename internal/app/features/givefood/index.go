// internal/app/features/givefood/index.go
package givefood

import (
	"context"
	"net/http"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/formutil"
	"github.com/dalemusser/takeandeat/internal/app/system/timeouts"
	"github.com/dalemusser/takeandeat/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const (
	msgSaveFailed  = "Failed to save food data. Please try again."
	msgFetchFailed = "Failed to fetch your listings"
)

// ServeIndex renders the empty listing form and the caller's listings.
func (h *Handler) ServeIndex(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		uierrors.RenderForbidden(w, r, "Please sign in again.", "/login")
		return
	}
	h.renderIndex(w, r, uid, listingInput{}, nil, "")
}

// HandleCreate validates the form and inserts a listing owned by the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	uid, ok := owner(r)
	if !ok {
		uierrors.RenderForbidden(w, r, "Please sign in again.", "/login")
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", basePath)
		return
	}

	in := parseListingInput(r)
	fields, errs := in.validate(h.today(), "")
	if errs.HasErrors() {
		h.renderIndex(w, r, uid, in, errs, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	l, err := h.Listings.Create(ctx, uid, fields)
	h.Metrics.ListingWrite("create", err == nil)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "create listing failed", err) {
			return
		}
		h.renderIndex(w, r, uid, in, nil, msgSaveFailed)
		return
	}

	h.Log.Info("listing created",
		zap.String("listing_id", l.ID.Hex()),
		zap.String("country", l.Country),
		zap.String("city", l.City))
	http.Redirect(w, r, viewdata.FlashURL(basePath, "listing-created"), http.StatusSeeOther)
}

// renderIndex draws the page. A failure to load the caller's listings is
// shown in the list area without hiding the form.
func (h *Handler) renderIndex(w http.ResponseWriter, r *http.Request, uid primitive.ObjectID, in listingInput, errs apperr.ValidationErrors, banner string) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	vm := indexVM{listingFormVM: newFormVM(in, h.today())}
	formutil.SetBase(&vm.Base, r, "Give Food", "/")
	vm.Action = basePath
	vm.SetFieldErrors(errs)
	vm.SetError(banner)

	mine, err := h.Listings.ListByOwner(ctx, uid)
	if err != nil {
		if !h.ErrLog.LogTransient(r, "list own listings failed", err) {
			return
		}
		vm.ListError = msgFetchFailed
	} else {
		vm.Listings = toRows(mine)
	}

	templates.Render(w, r, "givefood_index", vm)
}
