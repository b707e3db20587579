// Package templates embeds the HTML pages served by the application.
package templates

import (
	"embed"
	"html/template"
)

//go:embed *.html
var files embed.FS

var funcs = template.FuncMap{
	"add": func(a, b int) int {
		return a + b
	},
	"messageColor": func(isError bool) string {
		if isError {
			return "red"
		}
		return "#666"
	},
}

// Pages holds every page, each named after its file.
func Pages() *template.Template {
	return template.Must(template.New("pages").Funcs(funcs).ParseFS(files, "*.html"))
}

func Print() *template.Template {
	return template.Must(template.New("print.html").Funcs(funcs).ParseFS(files, "print.html"))
}
