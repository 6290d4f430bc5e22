package listingstore_test

import (
	"errors"
	"testing"
	"time"

	listingstore "github.com/dalemusser/takeandeat/internal/app/store/listings"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/takeandeat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func fields(country, city string) models.ListingFields {
	return models.ListingFields{
		Country:     country,
		City:        city,
		Address:     "12 Rue de Rivoli",
		FoodType:    "Bread",
		AvailableOn: "2026-10-20",
		Quantity:    3,
		Phone:       "+33612345678",
	}
}

func TestCreate_SetsOwnerAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, err := store.Create(ctx, owner, fields("France", "Paris"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if l.ID.IsZero() {
		t.Error("expected ID to be assigned")
	}
	if l.OwnerID != owner {
		t.Errorf("OwnerID = %s, want %s", l.OwnerID.Hex(), owner.Hex())
	}
	if l.IsTaken {
		t.Error("new listing should not be taken")
	}
	if l.CreatedAt.IsZero() || !l.CreatedAt.Equal(l.UpdatedAt) {
		t.Errorf("timestamps not set: created=%v updated=%v", l.CreatedAt, l.UpdatedAt)
	}

	got, err := store.GetOwned(ctx, l.ID, owner)
	if err != nil {
		t.Fatalf("GetOwned failed: %v", err)
	}
	if got.Address != "12 Rue de Rivoli" || got.Quantity != 3 {
		t.Errorf("GetOwned = %+v", got)
	}
}

func TestGetOwned_OtherOwnerIsNotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	l, err := store.Create(ctx, primitive.NewObjectID(), fields("France", "Paris"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err = store.GetOwned(ctx, l.ID, primitive.NewObjectID())
	if !errors.Is(err, listingstore.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if !apperr.IsNotFound(err) {
		t.Error("ErrNotFound should satisfy apperr.IsNotFound")
	}
}

func TestUpdate_PreservesOwnerAndCreatedAt(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, err := store.Create(ctx, owner, fields("France", "Paris"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	f := fields("France", "Lyon")
	f.Quantity = 7
	f.FoodType = "Soup"
	if err := store.Update(ctx, l.ID, owner, f); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, err := store.GetOwned(ctx, l.ID, owner)
	if err != nil {
		t.Fatalf("GetOwned failed: %v", err)
	}
	if got.City != "Lyon" || got.Quantity != 7 || got.FoodType != "Soup" {
		t.Errorf("fields not updated: %+v", got)
	}
	if got.OwnerID != owner {
		t.Error("owner changed by update")
	}
	if !got.CreatedAt.Equal(l.CreatedAt.Truncate(time.Millisecond)) {
		t.Errorf("created_at changed: %v -> %v", l.CreatedAt, got.CreatedAt)
	}
}

func TestUpdate_KeepsTakenFlag(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, _ := store.Create(ctx, owner, fields("France", "Paris"))
	if err := store.SetTaken(ctx, l.ID, owner, true); err != nil {
		t.Fatalf("SetTaken failed: %v", err)
	}

	f := fields("France", "Paris")
	f.Quantity = 2
	if err := store.Update(ctx, l.ID, owner, f); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	got, _ := store.GetOwned(ctx, l.ID, owner)
	if !got.IsTaken {
		t.Error("editing a taken listing reopened it")
	}
	if res, _ := store.Search(ctx, "France", "Paris"); len(res) != 0 {
		t.Errorf("edited taken listing appears in search: %d results", len(res))
	}
}

func TestUpdate_NonOwner(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, _ := store.Create(ctx, owner, fields("France", "Paris"))

	err := store.Update(ctx, l.ID, primitive.NewObjectID(), fields("France", "Nice"))
	if !errors.Is(err, listingstore.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	got, _ := store.GetOwned(ctx, l.ID, owner)
	if got.City != "Paris" {
		t.Errorf("non-owner update changed city to %q", got.City)
	}
}

func TestDelete_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, _ := store.Create(ctx, owner, fields("France", "Paris"))

	if err := store.Delete(ctx, l.ID, owner); err != nil {
		t.Fatalf("first Delete failed: %v", err)
	}
	if err := store.Delete(ctx, l.ID, owner); err != nil {
		t.Errorf("second Delete should succeed, got %v", err)
	}
	if _, err := store.GetOwned(ctx, l.ID, owner); !errors.Is(err, listingstore.ErrNotFound) {
		t.Errorf("expected listing to be gone, got %v", err)
	}
}

func TestDelete_NonOwnerLeavesListing(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, _ := store.Create(ctx, owner, fields("France", "Paris"))

	if err := store.Delete(ctx, l.ID, primitive.NewObjectID()); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, err := store.GetOwned(ctx, l.ID, owner); err != nil {
		t.Errorf("listing should survive a non-owner delete: %v", err)
	}
}

func TestListByOwner_NewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	base := time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)
	t1 := fx.CreateListing(ctx, owner, "France", "Paris", base)
	t2 := fx.CreateListing(ctx, owner, "France", "Paris", base.Add(time.Hour))
	t3 := fx.CreateListing(ctx, owner, "France", "Lyon", base.Add(2*time.Hour))
	fx.CreateListing(ctx, primitive.NewObjectID(), "France", "Paris", base.Add(3*time.Hour))

	got, err := store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner failed: %v", err)
	}
	want := []primitive.ObjectID{t3.ID, t2.ID, t1.ID}
	if len(got) != len(want) {
		t.Fatalf("got %d listings, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].ID != want[i] {
			t.Errorf("position %d: got %s, want %s", i, got[i].ID.Hex(), want[i].Hex())
		}
	}
}

func TestSearch_OnlyUnclaimedInArea(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	now := time.Now()
	open := fx.CreateListing(ctx, primitive.NewObjectID(), "France", "Paris", now)
	taken := fx.CreateListing(ctx, primitive.NewObjectID(), "France", "Paris", now)
	fx.MarkTaken(ctx, taken.ID)
	fx.CreateListing(ctx, primitive.NewObjectID(), "France", "Lyon", now)
	fx.CreateListing(ctx, primitive.NewObjectID(), "Germany", "Berlin", now)

	got, err := store.Search(ctx, "France", "Paris")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != open.ID {
		t.Errorf("Search returned %d listings, want only %s", len(got), open.ID.Hex())
	}
}

func TestSearch_EmptyIsNotAnError(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	got, err := store.Search(ctx, "Kenya", "Nairobi")
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", got)
	}
}

func TestSetTaken(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	owner := primitive.NewObjectID()
	l, _ := store.Create(ctx, owner, fields("France", "Paris"))

	if err := store.SetTaken(ctx, l.ID, primitive.NewObjectID(), true); !errors.Is(err, listingstore.ErrNotFound) {
		t.Errorf("non-owner SetTaken: expected ErrNotFound, got %v", err)
	}
	if err := store.SetTaken(ctx, l.ID, owner, true); err != nil {
		t.Fatalf("SetTaken failed: %v", err)
	}
	res, _ := store.Search(ctx, "France", "Paris")
	if len(res) != 0 {
		t.Error("taken listing should not appear in search")
	}
	if err := store.SetTaken(ctx, l.ID, owner, false); err != nil {
		t.Fatalf("SetTaken(false) failed: %v", err)
	}
	res, _ = store.Search(ctx, "France", "Paris")
	if len(res) != 1 {
		t.Error("reopened listing should appear in search")
	}
}

func TestStoreErrorsAreTransient(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := listingstore.New(db)
	ctx, cancel := testutil.TestContext()
	cancel() // every call fails

	_, err := store.Search(ctx, "France", "Paris")
	if !apperr.IsTransient(err) {
		t.Errorf("expected transient error, got %v", err)
	}
}
