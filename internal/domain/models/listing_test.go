package models

import "testing"

func TestUserVerified(t *testing.T) {
	if (User{}).Verified() {
		t.Error("zero user should not be verified")
	}
	if !(User{EmailVerified: true}).Verified() || !(User{PhoneVerified: true}).Verified() {
		t.Error("either channel should verify the user")
	}
}

func TestUserDisplayName(t *testing.T) {
	tests := []struct {
		u    User
		want string
	}{
		{User{FullName: "Jane", Email: "j@example.com"}, "Jane"},
		{User{Email: "j@example.com"}, "j@example.com"},
		{User{PhoneE164: "+15551234567"}, "+15551234567"},
	}
	for _, tt := range tests {
		if got := tt.u.DisplayName(); got != tt.want {
			t.Errorf("DisplayName() = %q, want %q", got, tt.want)
		}
	}
}

func TestListingFields(t *testing.T) {
	l := Listing{Country: "France", City: "Paris", Quantity: 3, Phone: "+33612345678", IsTaken: true}
	f := l.Fields()
	if f.Country != "France" || f.City != "Paris" || f.Quantity != 3 || f.Phone != "+33612345678" {
		t.Errorf("Fields() = %+v", f)
	}
}
