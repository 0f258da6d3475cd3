package handlers

import (
	"embed"
	"encoding/json"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(
	template.New("pages").Funcs(template.FuncMap{
		"json": toJS,
	}).ParseFS(templateFS, "templates/*.html"),
)

// toJS marshals v for use inside a <script> block.
func toJS(v any) (template.JS, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return template.JS(b), nil
}
