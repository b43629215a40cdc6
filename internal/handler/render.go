package handler

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"notebook-console/internal/resource"

	"github.com/rs/zerolog"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageNames = []string{"home", "list", "detail", "form", "error"}

// Page is what every template receives.
type Page struct {
	Title   string
	Active  string
	Menu    []resource.MenuItem
	Content any
}

type Renderer struct {
	pages map[string]*template.Template
	menu  []resource.MenuItem
}

func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"isBlob":     func(k resource.Kind) bool { return k == resource.KindBlob },
		"isDateTime": func(k resource.Kind) bool { return k == resource.KindDateTime },
	}

	r := &Renderer{
		pages: make(map[string]*template.Template, len(pageNames)),
		menu:  resource.Menu(),
	}
	for _, name := range pageNames {
		tmpl, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS,
			"templates/layout.html",
			"templates/"+name+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		r.pages[name] = tmpl
	}
	return r, nil
}

// Render writes page name with status. The page is rendered into a buffer
// first so a template error never leaves a half-written response.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, status int, name string, page Page) {
	tmpl, ok := r.pages[name]
	if !ok {
		http.Error(w, "unknown page "+name, http.StatusInternalServerError)
		return
	}
	page.Menu = r.menu

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", page); err != nil {
		zerolog.Ctx(req.Context()).Error().Err(err).Str("page", name).Msg("failed to render page")
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

type ErrorContent struct {
	Status  int
	Message string
}

func (r *Renderer) Error(w http.ResponseWriter, req *http.Request, status int, message string) {
	r.Render(w, req, status, "error", Page{
		Title:   http.StatusText(status),
		Content: ErrorContent{Status: status, Message: message},
	})
}

// NotFound is the page for routes no entity module serves.
func (r *Renderer) NotFound() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Error(w, req, http.StatusNotFound, "The page does not exist.")
	})
}

// Fallback is the page shown after a handler panicked.
func (r *Renderer) Fallback() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.Error(w, req, http.StatusInternalServerError, "Something went wrong.")
	})
}
