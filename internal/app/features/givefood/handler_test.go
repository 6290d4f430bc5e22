package givefood_test

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/features/givefood"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/takeandeat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeStore struct {
	listings map[primitive.ObjectID]models.Listing
	err      error

	creates, updates, deletes, setTakens, lists int
	lastFields                                  models.ListingFields
}

func newFakeStore() *fakeStore {
	return &fakeStore{listings: map[primitive.ObjectID]models.Listing{}}
}

func (f *fakeStore) Create(_ context.Context, owner primitive.ObjectID, fl models.ListingFields) (models.Listing, error) {
	f.creates++
	f.lastFields = fl
	if f.err != nil {
		return models.Listing{}, f.err
	}
	l := models.Listing{ID: primitive.NewObjectID(), OwnerID: owner, Country: fl.Country, City: fl.City}
	f.listings[l.ID] = l
	return l, nil
}

func (f *fakeStore) GetOwned(_ context.Context, id, owner primitive.ObjectID) (*models.Listing, error) {
	l, ok := f.listings[id]
	if !ok || l.OwnerID != owner {
		return nil, apperr.NotFound("listing")
	}
	return &l, nil
}

func (f *fakeStore) Update(_ context.Context, id, owner primitive.ObjectID, fl models.ListingFields) error {
	f.updates++
	f.lastFields = fl
	if f.err != nil {
		return f.err
	}
	l, ok := f.listings[id]
	if !ok || l.OwnerID != owner {
		return apperr.NotFound("listing")
	}
	return nil
}

func (f *fakeStore) SetTaken(_ context.Context, id, owner primitive.ObjectID, taken bool) error {
	f.setTakens++
	l, ok := f.listings[id]
	if !ok || l.OwnerID != owner {
		return apperr.NotFound("listing")
	}
	l.IsTaken = taken
	f.listings[id] = l
	return nil
}

func (f *fakeStore) Delete(_ context.Context, id, owner primitive.ObjectID) error {
	f.deletes++
	if f.err != nil {
		return f.err
	}
	if l, ok := f.listings[id]; ok && l.OwnerID == owner {
		delete(f.listings, id)
	}
	return nil
}

func (f *fakeStore) ListByOwner(_ context.Context, owner primitive.ObjectID) ([]models.Listing, error) {
	f.lists++
	return nil, nil
}

func newHandler(store *fakeStore) *givefood.Handler {
	h := givefood.NewHandler(store, uierrors.NewErrorLogger(zap.NewNop()), nil, zap.NewNop())
	h.Now = func() time.Time { return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC) }
	return h
}

func validForm() url.Values {
	return url.Values{
		"country":      {"France"},
		"city":         {"Paris"},
		"address":      {"12 Rue de Rivoli"},
		"food_type":    {"Bread"},
		"available_on": {"2026-03-10"},
		"quantity":     {"4"},
		"phone":        {"+33612345678"},
	}
}

func (f *fakeStore) seed(owner primitive.ObjectID) models.Listing {
	l := models.Listing{
		ID: primitive.NewObjectID(), OwnerID: owner,
		Country: "France", City: "Paris", AvailableOn: "2026-01-01", Quantity: 1,
	}
	f.listings[l.ID] = l
	return l
}

func TestHandleCreate_Success(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)
	user := testutil.VerifiedUser()

	req := testutil.WithUser(testutil.NewFormRequest("/give-food", validForm()), user)
	rec := testutil.Serve(h.HandleCreate, req)

	rec.AssertRedirect(t, "/give-food?flash=listing-created")
	if store.creates != 1 {
		t.Fatalf("Create called %d times, want 1", store.creates)
	}
	if store.lastFields.Phone != "+33612345678" || store.lastFields.Quantity != 4 {
		t.Errorf("stored fields = %+v", store.lastFields)
	}
}

func TestHandleCreate_InvalidPhoneNeverReachesStore(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)

	form := validForm()
	form.Set("phone", "not a phone")
	req := testutil.WithUser(testutil.NewFormRequest("/give-food", form), testutil.VerifiedUser())
	rec := testutil.Serve(h.HandleCreate, req)

	if store.creates != 0 {
		t.Errorf("Create called %d times, want 0", store.creates)
	}
	if rec.Header().Get("Location") != "" {
		t.Error("invalid input should re-render, not redirect")
	}
}

func TestHandleCreate_PastDateNeverReachesStore(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)

	form := validForm()
	form.Set("available_on", "2026-03-09")
	req := testutil.WithUser(testutil.NewFormRequest("/give-food", form), testutil.VerifiedUser())
	testutil.Serve(h.HandleCreate, req)

	if store.creates != 0 {
		t.Errorf("Create called %d times, want 0", store.creates)
	}
}

func TestHandleCreate_StoreFailureDoesNotRedirect(t *testing.T) {
	store := newFakeStore()
	store.err = apperr.Transient("insert listing", errors.New("connection reset"))
	h := newHandler(store)

	req := testutil.WithUser(testutil.NewFormRequest("/give-food", validForm()), testutil.VerifiedUser())
	rec := testutil.Serve(h.HandleCreate, req)

	if store.creates != 1 {
		t.Errorf("Create called %d times, want exactly 1 (no retry)", store.creates)
	}
	if rec.Header().Get("Location") != "" {
		t.Error("a failed save must not redirect with a success flash")
	}
}

func TestHandleCreate_ClientGoneDropsResult(t *testing.T) {
	store := newFakeStore()
	store.err = apperr.Transient("insert listing", context.Canceled)
	h := newHandler(store)

	req := testutil.WithUser(testutil.NewFormRequest("/give-food", validForm()), testutil.VerifiedUser())
	ctx, cancel := context.WithCancel(req.Context())
	cancel()
	rec := testutil.Serve(h.HandleCreate, req.WithContext(ctx))

	if rec.Body.Len() != 0 || rec.Header().Get("Location") != "" {
		t.Error("nothing should be written for an abandoned request")
	}
	if store.lists != 0 {
		t.Error("listings should not be reloaded for an abandoned request")
	}
}

func TestHandleEdit_UpdatesOwnedListing(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)
	user := testutil.VerifiedUser()
	oid, _ := primitive.ObjectIDFromHex(user.ID)
	l := store.seed(oid)

	form := validForm()
	form.Set("available_on", l.AvailableOn) // stored past date may be kept
	req := testutil.WithUser(testutil.NewFormRequest("/give-food/"+l.ID.Hex(), form), user)
	req = testutil.WithChiURLParam(req, "id", l.ID.Hex())
	rec := testutil.Serve(h.HandleEdit, req)

	rec.AssertRedirect(t, "/give-food?flash=listing-updated")
	if store.updates != 1 {
		t.Errorf("Update called %d times, want 1", store.updates)
	}
}

func TestHandleEdit_NotOwner(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)
	l := store.seed(primitive.NewObjectID())

	req := testutil.WithUser(testutil.NewFormRequest("/give-food/"+l.ID.Hex(), validForm()), testutil.VerifiedUser())
	req = testutil.WithChiURLParam(req, "id", l.ID.Hex())
	testutil.Serve(h.HandleEdit, req)

	if store.updates != 0 {
		t.Errorf("Update called %d times for a listing the caller does not own", store.updates)
	}
}

func TestHandleDelete_IsIdempotent(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)
	user := testutil.VerifiedUser()
	oid, _ := primitive.ObjectIDFromHex(user.ID)
	l := store.seed(oid)

	for i := 0; i < 2; i++ {
		req := testutil.WithUser(testutil.NewFormRequest("/give-food/"+l.ID.Hex()+"/delete", nil), user)
		req = testutil.WithChiURLParam(req, "id", l.ID.Hex())
		rec := testutil.Serve(h.HandleDelete, req)
		rec.AssertRedirect(t, "/give-food?flash=listing-deleted")
	}
	if len(store.listings) != 0 {
		t.Error("listing should be gone")
	}
}

func TestHandleDelete_BadID(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)

	req := testutil.WithUser(testutil.NewFormRequest("/give-food/nope/delete", nil), testutil.VerifiedUser())
	req = testutil.WithChiURLParam(req, "id", "nope")
	testutil.Serve(h.HandleDelete, req)

	if store.deletes != 0 {
		t.Error("Delete should not be called for a malformed id")
	}
}

func TestHandleTaken_Toggles(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)
	user := testutil.VerifiedUser()
	oid, _ := primitive.ObjectIDFromHex(user.ID)
	l := store.seed(oid)

	req := testutil.WithUser(testutil.NewFormRequest("/give-food/"+l.ID.Hex()+"/taken", url.Values{"taken": {"true"}}), user)
	req = testutil.WithChiURLParam(req, "id", l.ID.Hex())
	rec := testutil.Serve(h.HandleTaken, req)

	rec.AssertRedirect(t, "/give-food?flash=listing-taken")
	if !store.listings[l.ID].IsTaken {
		t.Error("listing should be marked taken")
	}

	req = testutil.WithUser(testutil.NewFormRequest("/give-food/"+l.ID.Hex()+"/taken", url.Values{"taken": {"false"}}), user)
	req = testutil.WithChiURLParam(req, "id", l.ID.Hex())
	rec = testutil.Serve(h.HandleTaken, req)

	rec.AssertRedirect(t, "/give-food?flash=listing-open")
	if store.listings[l.ID].IsTaken {
		t.Error("listing should be available again")
	}
}

func TestHandleTaken_BadValue(t *testing.T) {
	store := newFakeStore()
	h := newHandler(store)
	id := primitive.NewObjectID().Hex()

	req := testutil.WithUser(testutil.NewFormRequest("/give-food/"+id+"/taken", url.Values{"taken": {"maybe"}}), testutil.VerifiedUser())
	req = testutil.WithChiURLParam(req, "id", id)
	rec := testutil.Serve(h.HandleTaken, req)

	if store.setTakens != 0 {
		t.Error("SetTaken should not be called for a bad value")
	}
	if rec.Code == http.StatusSeeOther {
		t.Error("bad value should not redirect")
	}
}
