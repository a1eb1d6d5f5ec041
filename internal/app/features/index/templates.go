// internal/app/features/index/templates.go
package index

import (
	"embed"

	"github.com/dalemusser/information/internal/app/system/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "index",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
