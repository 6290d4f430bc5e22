// internal/app/features/givefood/handler.go
package givefood

import (
	"context"
	"net/http"
	"time"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/app/system/metrics"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// ListingStore is the part of the listing store the give-food pages use.
// Every method is scoped to the owner so a caller can only touch its own
// listings.
type ListingStore interface {
	Create(ctx context.Context, owner primitive.ObjectID, f models.ListingFields) (models.Listing, error)
	GetOwned(ctx context.Context, id, owner primitive.ObjectID) (*models.Listing, error)
	Update(ctx context.Context, id, owner primitive.ObjectID, f models.ListingFields) error
	SetTaken(ctx context.Context, id, owner primitive.ObjectID, taken bool) error
	Delete(ctx context.Context, id, owner primitive.ObjectID) error
	ListByOwner(ctx context.Context, owner primitive.ObjectID) ([]models.Listing, error)
}

// Handler serves /give-food: the listing form, the owner's listings and the
// edit, delete and mark-taken actions.
type Handler struct {
	Listings ListingStore
	ErrLog   *uierrors.ErrorLogger
	Metrics  metrics.Recorder
	Log      *zap.Logger

	// Now is the clock used for the past-date rule.
	Now func() time.Time
}

func NewHandler(listings ListingStore, errLog *uierrors.ErrorLogger, rec metrics.Recorder, logger *zap.Logger) *Handler {
	if rec == nil {
		rec = (*metrics.Collector)(nil)
	}
	return &Handler{
		Listings: listings,
		ErrLog:   errLog,
		Metrics:  rec,
		Log:      logger,
		Now:      time.Now,
	}
}

const basePath = "/give-food"

// today is the current UTC calendar date in listing date format.
func (h *Handler) today() string {
	return h.Now().UTC().Format(models.DateLayout)
}

// owner returns the signed-in identity's ID. The route guard guarantees a
// verified user, so a failure here means a corrupt session.
func owner(r *http.Request) (primitive.ObjectID, bool) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, false
	}
	oid, err := primitive.ObjectIDFromHex(u.ID)
	if err != nil {
		return primitive.NilObjectID, false
	}
	return oid, true
}
