package audit_test

import (
	"testing"
	"time"

	"github.com/dalemusser/takeandeat/internal/app/store/audit"
	"github.com/dalemusser/takeandeat/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestLogAndListByUser(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := audit.New(db)
	uid := primitive.NewObjectID()
	other := primitive.NewObjectID()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, typ := range []string{audit.EventRegistered, audit.EventEmailVerified, audit.EventSignIn} {
		if err := s.Log(ctx, audit.Event{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			EventType: typ,
			UserID:    &uid,
			Success:   true,
		}); err != nil {
			t.Fatalf("Log(%s): %v", typ, err)
		}
	}
	if err := s.Log(ctx, audit.Event{EventType: audit.EventSignIn, UserID: &other, Success: true}); err != nil {
		t.Fatalf("Log(other): %v", err)
	}

	got, err := s.ListByUser(ctx, uid, 2)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d events, want 2", len(got))
	}
	if got[0].EventType != audit.EventSignIn || got[1].EventType != audit.EventEmailVerified {
		t.Errorf("order = %s, %s; want newest first", got[0].EventType, got[1].EventType)
	}
}

func TestLog_StampsTime(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := audit.New(db)
	uid := primitive.NewObjectID()
	if err := s.Log(ctx, audit.Event{EventType: audit.EventSignOut, UserID: &uid, Success: true}); err != nil {
		t.Fatalf("Log: %v", err)
	}
	got, err := s.ListByUser(ctx, uid, 10)
	if err != nil || len(got) != 1 {
		t.Fatalf("ListByUser = %v, %v", got, err)
	}
	if got[0].Timestamp.IsZero() {
		t.Error("timestamp was not set")
	}
}

func TestCountFailures(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	s := audit.New(db)
	now := time.Now().UTC()
	for _, ts := range []time.Time{now.Add(-2 * time.Hour), now.Add(-time.Minute), now} {
		if err := s.Log(ctx, audit.Event{
			Timestamp:     ts,
			EventType:     audit.EventSignInFailed,
			Account:       "a@b.co",
			FailureReason: "wrong_password",
		}); err != nil {
			t.Fatalf("Log: %v", err)
		}
	}

	n, err := s.CountFailures(ctx, "a@b.co", now.Add(-time.Hour))
	if err != nil {
		t.Fatalf("CountFailures: %v", err)
	}
	if n != 2 {
		t.Errorf("CountFailures = %d, want 2", n)
	}
}
