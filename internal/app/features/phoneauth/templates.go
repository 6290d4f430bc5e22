// internal/app/features/phoneauth/templates.go
package phoneauth

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "phoneauth",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
