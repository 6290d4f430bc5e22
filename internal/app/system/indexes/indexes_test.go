package indexes_test

import (
	"context"
	"testing"

	"github.com/dalemusser/takeandeat/internal/app/system/indexes"
	"github.com/dalemusser/takeandeat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func indexNames(t *testing.T, ctx context.Context, coll *mongo.Collection) map[string]bool {
	t.Helper()
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		t.Fatalf("List indexes failed: %v", err)
	}
	defer cur.Close(ctx)

	names := make(map[string]bool)
	for cur.Next(ctx) {
		var idx bson.M
		if err := cur.Decode(&idx); err != nil {
			continue
		}
		if name, ok := idx["name"].(string); ok {
			names[name] = true
		}
	}
	return names
}

func TestEnsureAll_Idempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("First EnsureAll failed: %v", err)
	}
	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("Second EnsureAll failed: %v", err)
	}
}

func TestEnsureAll_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}

	want := map[string][]string{
		"listings":               {"idx_listings_owner_created", "idx_listings_country_city_taken"},
		"profiles":               {"uniq_profiles_email", "uniq_profiles_phone_e164", "uniq_profiles_google_id"},
		"verifications":          {"uniq_verifications_user_channel", "idx_verifications_token", "ttl_verifications_expires"},
		"oauth_states":           {"uniq_oauth_states_state", "ttl_oauth_states_expires"},
		"contact_messages":       {"idx_contact_messages_status_created"},
		"newsletter_subscribers": {"uniq_newsletter_subscribers_email"},
	}
	for coll, names := range want {
		got := indexNames(t, ctx, db.Collection(coll))
		for _, name := range names {
			if !got[name] {
				t.Errorf("expected index %q on %s", name, coll)
			}
		}
	}
}

func TestEnsureAll_RenamesMismatchedIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Same keys as the desired email index, but under another name and not unique.
	_, err := db.Collection("newsletter_subscribers").Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetName("email_1_legacy"),
	})
	if err != nil {
		t.Fatalf("create legacy index: %v", err)
	}

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	got := indexNames(t, ctx, db.Collection("newsletter_subscribers"))
	if got["email_1_legacy"] {
		t.Error("legacy index should have been replaced")
	}
	if !got["uniq_newsletter_subscribers_email"] {
		t.Error("desired index missing after reconcile")
	}
}

func TestEnsureAll_SparseUniqueProfiles(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll failed: %v", err)
	}
	profiles := db.Collection("profiles")

	// Two phone identities without email must coexist.
	if _, err := profiles.InsertOne(ctx, bson.M{"phone_e164": "+33612345678"}); err != nil {
		t.Fatalf("insert first phone profile: %v", err)
	}
	if _, err := profiles.InsertOne(ctx, bson.M{"phone_e164": "+33698765432"}); err != nil {
		t.Fatalf("insert second phone profile: %v", err)
	}

	if _, err := profiles.InsertOne(ctx, bson.M{"email": "a@example.com"}); err != nil {
		t.Fatalf("insert email profile: %v", err)
	}
	if _, err := profiles.InsertOne(ctx, bson.M{"email": "a@example.com"}); !mongo.IsDuplicateKeyError(err) {
		t.Errorf("expected duplicate key error on profiles.email, got %v", err)
	}
}
