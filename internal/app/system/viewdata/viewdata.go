// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"net/http"
	"strings"

	"github.com/dalemusser/takeandeat/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/gorilla/csrf"
)

// SiteName is shown in the header, page titles and emails.
const SiteName = "Take & Eat"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashInfo    = "info"
	FlashError   = "error"
)

// Flash is a one-line banner at the top of a page.
type Flash struct {
	Kind    string
	Message string
}

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn bool
	IsVerified bool
	UserName   string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	CSRFToken string

	Flash *Flash
}

// NewBaseVM creates a populated BaseVM for a page.
func NewBaseVM(r *http.Request, title, backDefault string) BaseVM {
	vm := BaseVM{
		SiteName:    SiteName,
		Title:       title,
		BackURL:     httpnav.ResolveBackURL(r, backDefault),
		CurrentPath: httpnav.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
	}
	if u, ok := auth.SignedInUser(r); ok {
		vm.IsLoggedIn = true
		vm.IsVerified = u.Verified
		vm.UserName = u.Name
	}
	if f := FlashFromQuery(r); f != nil {
		vm.Flash = f
	}
	return vm
}

// flashMessages are the banners a redirect can ask for with ?flash=<key>.
// Only fixed keys are accepted so a crafted link cannot put text on the page.
var flashMessages = map[string]Flash{
	"listing-created": {FlashSuccess, "Food listing created successfully!"},
	"listing-updated": {FlashSuccess, "Listing updated successfully"},
	"listing-deleted": {FlashSuccess, "Listing deleted successfully"},
	"listing-taken":   {FlashSuccess, "Listing marked as taken"},
	"listing-open":    {FlashSuccess, "Listing marked as available"},
	"subscribed":      {FlashSuccess, "Thank you for subscribing to our newsletter!"},
	"subscribe-email": {FlashError, "Please enter a valid email address"},
	"subscribe-error": {FlashError, "Failed to subscribe. Please try again."},
	"signed-out":      {FlashInfo, "You have been signed out."},
	"password-reset":  {FlashSuccess, "Your password has been updated. Please log in."},
	"email-verified":  {FlashSuccess, "Your email has been verified. You can now log in."},
}

// FlashFromQuery resolves ?flash=<key> into a banner, or nil.
func FlashFromQuery(r *http.Request) *Flash {
	key := r.URL.Query().Get("flash")
	if f, ok := flashMessages[key]; ok {
		return &f
	}
	return nil
}

// FlashURL adds flash=key to path, keeping any query it already has.
func FlashURL(path, key string) string {
	if strings.Contains(path, "?") {
		return path + "&flash=" + key
	}
	return path + "?flash=" + key
}

// Options feeds the shared "select_options" template.
type Options struct {
	Placeholder string
	Items       []string
	Selected    string
}

// NewOptions builds Options; selected is cleared when it is not one of items.
func NewOptions(placeholder string, items []string, selected string) Options {
	o := Options{Placeholder: placeholder, Items: items}
	for _, it := range items {
		if it == selected {
			o.Selected = selected
			break
		}
	}
	return o
}
