// internal/domain/models/authmethods.go
package models

// AuthMethod is a way an identity signs in.
type AuthMethod struct {
	Value string // stored in profiles.auth_method
	Label string // shown in the UI
}

// AllAuthMethods lists every supported sign-in method.
var AllAuthMethods = []AuthMethod{
	{Value: "password", Label: "Email & password"},
	{Value: "phone", Label: "Phone"},
	{Value: "google", Label: "Google"},
}

// IsValidAuthMethod checks if a value is a valid auth method.
func IsValidAuthMethod(value string) bool {
	for _, m := range AllAuthMethods {
		if m.Value == value {
			return true
		}
	}
	return false
}

// AuthMethodLabel returns the display label for value, or value itself.
func AuthMethodLabel(value string) string {
	for _, m := range AllAuthMethods {
		if m.Value == value {
			return m.Label
		}
	}
	return value
}
