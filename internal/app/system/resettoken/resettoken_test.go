package resettoken

import (
	"testing"
	"time"
)

const testSecret = "test-reset-secret-that-is-long-enough"

func TestIssueAndCheck(t *testing.T) {
	iss := New(testSecret, time.Hour)
	tok, err := iss.Issue("507f1f77bcf86cd799439011", "fp-1")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	id, err := iss.Check(tok, "fp-1")
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if id != "507f1f77bcf86cd799439011" {
		t.Errorf("Check returned %q", id)
	}
}

func TestCheck_RejectsAfterPasswordChange(t *testing.T) {
	iss := New(testSecret, time.Hour)
	tok, _ := iss.Issue("u1", "fp-old")

	if _, err := iss.Check(tok, "fp-new"); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_Expired(t *testing.T) {
	iss := New(testSecret, time.Minute)
	base := time.Now()
	iss.now = func() time.Time { return base }
	tok, _ := iss.Issue("u1", "fp")

	iss.now = func() time.Time { return base.Add(2 * time.Minute) }
	if _, err := iss.Parse(tok); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken for expired token, got %v", err)
	}
}

func TestParse_WrongSecret(t *testing.T) {
	tok, _ := New(testSecret, time.Hour).Issue("u1", "fp")
	if _, err := New("another-secret-entirely-0123456789", time.Hour).Parse(tok); err != ErrInvalidToken {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestParse_Garbage(t *testing.T) {
	iss := New(testSecret, time.Hour)
	for _, tok := range []string{"", "abc", "a.b.c"} {
		if _, err := iss.Parse(tok); err != ErrInvalidToken {
			t.Errorf("Parse(%q) err = %v", tok, err)
		}
	}
}

func TestNew_DefaultExpiry(t *testing.T) {
	if New(testSecret, 0).Expiry() != time.Hour {
		t.Error("zero expiry should default to one hour")
	}
}
