// Package templates holds the embedded HTML templates for the web UI.
package templates

import "embed"

//go:embed *.html
var FS embed.FS
