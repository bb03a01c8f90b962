// Package templates holds the embedded HTML views for the debug routes.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.tmpl
var FS embed.FS

// Parse loads all embedded templates.
func Parse() (*template.Template, error) {
	return template.ParseFS(FS, "*.tmpl")
}

// Must is Parse for wiring paths where a broken template is a programming
// error.
func Must() *template.Template {
	return template.Must(Parse())
}
