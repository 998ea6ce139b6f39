package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"strings"
)

//go:embed templates/index.html
var templates embed.FS

// Page is the data rendered into index.html.
type Page struct {
	Caption string
	Accept  string
}

// Renderer renders the upload page.
type Renderer struct {
	tmpl   *template.Template
	accept string
}

// NewRenderer parses the embedded template. allowedExtensions feeds the
// file input's accept attribute.
func NewRenderer(allowedExtensions []string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templates, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	accept := make([]string, 0, len(allowedExtensions))
	for _, ext := range allowedExtensions {
		accept = append(accept, "."+ext)
	}
	return &Renderer{tmpl: tmpl, accept: strings.Join(accept, ",")}, nil
}

// Render writes the page with the given caption. An empty caption renders
// the bare upload form.
func (r *Renderer) Render(w http.ResponseWriter, status int, caption string) error {
	var buf bytes.Buffer
	if err := r.tmpl.ExecuteTemplate(&buf, "index.html", Page{Caption: caption, Accept: r.accept}); err != nil {
		return fmt.Errorf("failed to render page: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
