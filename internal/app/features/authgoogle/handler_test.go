package authgoogle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	userstore "github.com/dalemusser/takeandeat/internal/app/store/users"
	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type fakeProfiles struct {
	users  []*models.User
	linked int
}

func (f *fakeProfiles) GetByGoogleID(_ context.Context, gid string) (*models.User, error) {
	for _, u := range f.users {
		if u.GoogleID == gid {
			return u, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (f *fakeProfiles) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, userstore.ErrNotFound
}

func (f *fakeProfiles) Create(_ context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	f.users = append(f.users, &u)
	return u, nil
}

func (f *fakeProfiles) LinkGoogle(_ context.Context, id primitive.ObjectID, gid string) error {
	for _, u := range f.users {
		if u.ID == id {
			u.GoogleID = gid
			u.EmailVerified = true
			f.linked++
			return nil
		}
	}
	return userstore.ErrNotFound
}

type fakeStates struct{ m map[string]string }

func (f *fakeStates) Save(_ context.Context, state, ret string, _ time.Time) error {
	f.m[state] = ret
	return nil
}

func (f *fakeStates) Validate(_ context.Context, state string) (string, bool, error) {
	ret, ok := f.m[state]
	delete(f.m, state)
	return ret, ok, nil
}

func newHandler(t *testing.T, gu *GoogleUser, identifyErr error) (*Handler, *fakeProfiles, *fakeStates) {
	t.Helper()
	sm, err := auth.NewSessionManager("test-session-key-must-be-32-chars-long", "test-session", "", time.Hour, false, zap.NewNop())
	if err != nil {
		t.Fatal(err)
	}
	profiles := &fakeProfiles{}
	states := &fakeStates{m: map[string]string{}}
	h := NewHandler(profiles, states, sm, nil, "client-id", "client-secret", "http://localhost:8080", zap.NewNop())
	h.Identify = func(context.Context, string) (*GoogleUser, error) { return gu, identifyErr }
	return h, profiles, states
}

func callback(h *Handler, states *fakeStates, ret string) *httptest.ResponseRecorder {
	states.m["st"] = ret
	rec := httptest.NewRecorder()
	h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state=st&code=abc", nil))
	return rec
}

func TestServeLogin_NotConfigured(t *testing.T) {
	h := NewHandler(&fakeProfiles{}, &fakeStates{m: map[string]string{}}, nil, nil, "", "", "http://x", zap.NewNop())
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google", nil))

	if loc := rec.Header().Get("Location"); !strings.HasPrefix(loc, "/login?error=") {
		t.Errorf("Location = %q", loc)
	}
}

func TestServeLogin_SavesStateAndRedirects(t *testing.T) {
	h, _, states := newHandler(t, nil, nil)
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, httptest.NewRequest("GET", "/auth/google?return=/take-food", nil))

	if rec.Code != http.StatusTemporaryRedirect {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Location"), "https://accounts.google.com/") {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
	if len(states.m) != 1 {
		t.Fatalf("saved %d states, want 1", len(states.m))
	}
	for _, ret := range states.m {
		if ret != "/take-food" {
			t.Errorf("return url = %q", ret)
		}
	}
}

func TestCallback_CreatesVerifiedProfile(t *testing.T) {
	h, profiles, states := newHandler(t, &GoogleUser{ID: "g1", Email: "Ana@Example.com", EmailVerified: true, Name: "Ana"}, nil)
	rec := callback(h, states, "/give-food")

	if rec.Header().Get("Location") != "/give-food" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
	if len(profiles.users) != 1 {
		t.Fatalf("profiles = %d, want 1", len(profiles.users))
	}
	u := profiles.users[0]
	if u.GoogleID != "g1" || !u.EmailVerified || u.AuthMethod != "google" || u.Email != "ana@example.com" {
		t.Errorf("created = %+v", u)
	}
}

func TestCallback_LinksExistingEmail(t *testing.T) {
	h, profiles, states := newHandler(t, &GoogleUser{ID: "g2", Email: "bo@example.com", EmailVerified: true}, nil)
	profiles.users = append(profiles.users, &models.User{ID: primitive.NewObjectID(), Email: "bo@example.com", AuthMethod: "password"})

	rec := callback(h, states, "")
	if rec.Header().Get("Location") != "/" {
		t.Errorf("Location = %q", rec.Header().Get("Location"))
	}
	if profiles.linked != 1 || len(profiles.users) != 1 {
		t.Errorf("linked = %d, profiles = %d", profiles.linked, len(profiles.users))
	}
}

func TestCallback_Failures(t *testing.T) {
	t.Run("unknown state", func(t *testing.T) {
		h, profiles, _ := newHandler(t, &GoogleUser{ID: "g1", Email: "a@b.co", EmailVerified: true}, nil)
		rec := httptest.NewRecorder()
		h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state=forged&code=abc", nil))
		if !strings.HasPrefix(rec.Header().Get("Location"), "/login?error=") || len(profiles.users) != 0 {
			t.Errorf("Location = %q, profiles = %d", rec.Header().Get("Location"), len(profiles.users))
		}
	})
	t.Run("declined", func(t *testing.T) {
		h, _, _ := newHandler(t, nil, nil)
		rec := httptest.NewRecorder()
		h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?error=access_denied", nil))
		if rec.Header().Get("Location") != "/login?error=auth%2Fpopup-closed-by-user" {
			t.Errorf("Location = %q", rec.Header().Get("Location"))
		}
	})
	t.Run("exchange error", func(t *testing.T) {
		h, profiles, states := newHandler(t, nil, errors.New("boom"))
		rec := callback(h, states, "")
		if !strings.HasPrefix(rec.Header().Get("Location"), "/login?error=") || len(profiles.users) != 0 {
			t.Errorf("Location = %q", rec.Header().Get("Location"))
		}
	})
	t.Run("unverified google email", func(t *testing.T) {
		h, profiles, states := newHandler(t, &GoogleUser{ID: "g3", Email: "c@d.co"}, nil)
		rec := callback(h, states, "")
		if !strings.HasPrefix(rec.Header().Get("Location"), "/login?error=") || len(profiles.users) != 0 {
			t.Errorf("Location = %q", rec.Header().Get("Location"))
		}
	})
	t.Run("state is single use", func(t *testing.T) {
		h, _, states := newHandler(t, &GoogleUser{ID: "g4", Email: "e@f.co", EmailVerified: true}, nil)
		callback(h, states, "")
		rec := httptest.NewRecorder()
		h.ServeCallback(rec, httptest.NewRequest("GET", "/auth/google/callback?state=st&code=abc", nil))
		if !strings.HasPrefix(rec.Header().Get("Location"), "/login?error=") {
			t.Errorf("replayed state accepted: %q", rec.Header().Get("Location"))
		}
	})
}
