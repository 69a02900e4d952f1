package templates

import "html/template"

// ParseTemplates parses the named HTML templates from the embedded
// filesystem. Pages are rendered by executing the "base" template.
func ParseTemplates(files ...string) (*template.Template, error) {
	return template.New("").ParseFS(FS, files...)
}
