package view

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"

	"pouicentral/internal/model"
)

//go:embed templates/*.html templates/layouts/*.html
var files embed.FS

// pages are the renderable views; each is parsed together with the shared
// layout into its own template set.
var pages = []string{"main", "signup", "login", "home", "settings"}

// Data is the context handed to every template.
type Data struct {
	Title  string
	Errors []string
	User   *model.User
}

// Renderer implements echo.Renderer over embedded html/template files.
type Renderer struct {
	templates map[string]*template.Template
}

// NewRenderer parses all page templates at startup.
func NewRenderer() (*Renderer, error) {
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		t, err := template.ParseFS(files, "templates/layouts/layout.html", "templates/"+page+".html")
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &Renderer{templates: templates}, nil
}

// Render writes the named page wrapped in the layout.
func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("unknown template: %s", name)
	}
	return t.ExecuteTemplate(w, "layout", data)
}
