package formutil

import (
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/takeandeat/internal/app/system/apperr"
)

func TestSetBaseAndErrors(t *testing.T) {
	var b Base
	SetBase(&b, httptest.NewRequest("GET", "/contact-support", nil), "Contact Support", "/")
	if b.Title != "Contact Support" {
		t.Errorf("Title = %q", b.Title)
	}

	var errs apperr.ValidationErrors
	errs.Add("phone", "bad phone")
	b.SetFieldErrors(errs)
	b.SetError("Please fix the errors below.")

	if b.FieldError("phone") != "bad phone" {
		t.Errorf("FieldError(phone) = %q", b.FieldError("phone"))
	}
	if b.FieldError("city") != "" {
		t.Errorf("FieldError(city) = %q", b.FieldError("city"))
	}
	if b.Error != "Please fix the errors below." {
		t.Errorf("Error = %q", b.Error)
	}
}
