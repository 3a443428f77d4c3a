// Package handler contains the HTTP handlers: JSON endpoints under /api and
// /auth, and the server-rendered marketing pages.
//
// Handlers parse the request, call a service and write the response. They
// hold no business rules of their own.
package handler

import (
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/service"
)

//go:embed templates/*.html
var templateFS embed.FS

// homeFeaturedLimit is how many featured resources the home page shows.
const homeFeaturedLimit = 6

// page describes one server-rendered page.
type page struct {
	file  string
	title string
}

var pages = map[string]page{
	"home":      {"home.html", "Code Resources: curated developer resources and snippets"},
	"about":     {"about.html", "About"},
	"pricing":   {"pricing.html", "Pricing"},
	"contact":   {"contact.html", "Contact"},
	"legal":     {"legal.html", "Legal"},
	"advertise": {"advertise.html", "Advertise"},
}

// PageHandler renders the HTML pages. Each page is parsed together with
// base.html once at start-up; base.html renders the shared layout and pulls
// in the page's "content" block.
type PageHandler struct {
	templates map[string]*template.Template
	catalog   *service.CatalogService
	logger    *slog.Logger
}

func NewPageHandler(catalog *service.CatalogService, logger *slog.Logger) (*PageHandler, error) {
	funcs := template.FuncMap{
		"year": func() int { return time.Now().Year() },
	}

	templates := make(map[string]*template.Template, len(pages))
	for name, p := range pages {
		tmpl, err := template.New("base.html").Funcs(funcs).ParseFS(templateFS, "templates/base.html", "templates/"+p.file)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", p.file, err)
		}
		templates[name] = tmpl
	}

	return &PageHandler{
		templates: templates,
		catalog:   catalog,
		logger:    logger,
	}, nil
}

// pageData is what every template receives.
type pageData struct {
	Title      string
	Page       string
	Categories []service.CategoryWithCount
	Total      int
	Featured   []model.Resource
}

func (h *PageHandler) render(w http.ResponseWriter, name string, data pageData) {
	tmpl, ok := h.templates[name]
	if !ok {
		h.logger.Error("unknown page", slog.String("page", name))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	data.Page = name
	if data.Title == "" {
		data.Title = pages[name].title
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		h.logger.Error("failed to render template",
			slog.String("page", name),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// HandleHome renders the home page with the category list and featured
// resources.
//
// HTTP: GET /
func (h *PageHandler) HandleHome(w http.ResponseWriter, r *http.Request) {
	list := h.catalog.ListCategories(r.Context())
	h.render(w, "home", pageData{
		Categories: list.Categories,
		Total:      list.Total,
		Featured:   h.catalog.FeaturedResources(r.Context(), homeFeaturedLimit),
	})
}

// HandleStatic returns a handler for a page that needs no data.
//
// HTTP: GET /about, /pricing, /contact, /legal, /advertise
func (h *PageHandler) HandleStatic(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.render(w, name, pageData{})
	}
}
