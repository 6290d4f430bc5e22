package contact

import (
	"context"
	"errors"
	"net/url"
	"testing"

	uierrors "github.com/dalemusser/takeandeat/internal/app/features/errors"
	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
	"github.com/dalemusser/takeandeat/internal/app/system/inputval"
	"github.com/dalemusser/takeandeat/internal/domain/models"
	"github.com/dalemusser/takeandeat/internal/testutil"
	"go.uber.org/zap"
)

type fakeMessages struct {
	got []models.ContactMessage
	err error
}

func (f *fakeMessages) Insert(_ context.Context, name, email, subject, message string) (models.ContactMessage, error) {
	if f.err != nil {
		return models.ContactMessage{}, f.err
	}
	m := models.ContactMessage{Reference: "ABC123", Name: name, Email: email, Subject: subject, Message: message, Status: "new"}
	f.got = append(f.got, m)
	return m, nil
}

func newHandler(store *fakeMessages) *Handler {
	return NewHandler(store, uierrors.NewErrorLogger(zap.NewNop()), zap.NewNop())
}

func validForm() url.Values {
	return url.Values{
		"name":    {"  Ana   Lopez "},
		"email":   {"Ana@Example.com"},
		"subject": {"Pickup <b>question</b>"},
		"message": {"Is the bread still available?"},
	}
}

func TestHandleContact_Stores(t *testing.T) {
	store := &fakeMessages{}
	testutil.Serve(newHandler(store).HandleContact, testutil.NewFormRequest("/contact-support", validForm()))

	if len(store.got) != 1 {
		t.Fatalf("inserted %d messages, want 1", len(store.got))
	}
	m := store.got[0]
	if m.Name != "Ana Lopez" || m.Email != "ana@example.com" || m.Subject != "Pickup question" {
		t.Errorf("stored %+v", m)
	}
}

func TestHandleContact_InvalidInputNeverStored(t *testing.T) {
	tests := []struct {
		name string
		edit  func(url.Values)
	}{
		{"missing name", func(v url.Values) { v.Del("name") }},
		{"blank message", func(v url.Values) { v.Set("message", "   ") }},
		{"bad email", func(v url.Values) { v.Set("email", "ana@example") }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeMessages{}
			form := validForm()
			tt.edit(form)
			testutil.Serve(newHandler(store).HandleContact, testutil.NewFormRequest("/contact-support", form))
			if len(store.got) != 0 {
				t.Error("invalid message reached the store")
			}
		})
	}
}

func TestFirstProblem(t *testing.T) {
	if got := firstProblem(inputval.Validate(contactInput{Email: "bad"})); got != msgMissing {
		t.Errorf("missing fields: got %q", got)
	}
	if got := firstProblem(inputval.Validate(contactInput{Name: "a", Email: "bad", Subject: "s", Message: "m"})); got != msgEmail {
		t.Errorf("bad email: got %q", got)
	}
	if got := firstProblem(inputval.Validate(contactInput{Name: "a", Email: "a@b.co", Subject: "s", Message: "m"})); got != "" {
		t.Errorf("valid: got %q", got)
	}
}

func TestHandleContact_StoreFailure(t *testing.T) {
	store := &fakeMessages{err: apperr.Transient("insert contact message", errors.New("down"))}
	rec := testutil.Serve(newHandler(store).HandleContact, testutil.NewFormRequest("/contact-support", validForm()))
	if loc := rec.Header().Get("Location"); loc != "" {
		t.Errorf("unexpected redirect to %q", loc)
	}
}
