// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render provides HTML template rendering for the catalog pages.
// It supports full-page and HTMX partial rendering, automatically detecting
// the request type via the HX-Request header.
package render

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"gameshelf/internal/validate"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData holds all data passed to page templates.
type PageData struct {
	Title   string // Page title for <title> tag
	Section string // Active navigation section ("home", "categories", "items")
	Data    any    // Page-specific data
}

// ErrorData is the page data of the error view.
type ErrorData struct {
	Status  int
	Message string
	Detail  string // only set in development mode
}

// Renderer handles template parsing and execution.
type Renderer struct {
	templates map[string]*template.Template
	funcMap   template.FuncMap
	devMode   bool
}

// New creates a Renderer by parsing all page templates from the embedded
// filesystem. Each page template is paired with the base layout. devMode
// controls whether error pages include internal detail.
func New(devMode bool) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		devMode:   devMode,
		funcMap: template.FuncMap{
			"activeClass": func(current, target string) string {
				if current == target {
					return "active"
				}
				return ""
			},
			// deref safely dereferences a string pointer for use in templates.
			"deref": func(s *string) string {
				if s == nil {
					return ""
				}
				return *s
			},
			// escaped marks a value written through validate.Escape as safe
			// so it is not escaped a second time.
			"escaped": func(v any) template.HTML {
				switch s := v.(type) {
				case string:
					return template.HTML(s)
				case *string:
					if s == nil {
						return ""
					}
					return template.HTML(*s)
				}
				return template.HTML(template.HTMLEscapeString(fmt.Sprint(v)))
			},
			// fieldErrors returns the messages recorded for one form field.
			"fieldErrors": func(errs validate.Errors, field string) []string {
				return errs.For(field)
			},
			"price": func(cents int) string {
				return "$" + strconv.Itoa(cents)
			},
			"rating": func(r float64) string {
				return strconv.FormatFloat(r, 'f', 1, 64)
			},
			"isDev": func() bool {
				return devMode
			},
		},
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("read embedded templates: %w", err)
	}

	// Parse each page template paired with the base layout.
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || name == "base.html" || !strings.HasSuffix(name, ".html") {
			continue
		}

		tmpl, err := template.New("base.html").Funcs(r.funcMap).ParseFS(
			templateFS, "templates/base.html", "templates/"+name,
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", name, err)
		}

		r.templates[strings.TrimSuffix(name, ".html")] = tmpl
	}

	return r, nil
}

// Page renders a page with status 200.
func (rn *Renderer) Page(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	rn.Status(w, r, http.StatusOK, name, data)
}

// Status renders a full page or an HTMX partial with the given status. For
// HTMX requests only the "content" block is sent. Output is buffered so a
// template failure never leaves a half-written page.
func (rn *Renderer) Status(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	tmpl, ok := rn.templates[name]
	if !ok {
		slog.Error("template not found", "template", name)
		http.Error(w, fmt.Sprintf("template %q not found", name), http.StatusInternalServerError)
		return
	}

	execName := "base.html"
	if isHTMX(r) {
		execName = "content"
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, execName, data); err != nil {
		slog.Error("template execution failed", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// Error renders the error view. err is shown only in development mode.
func (rn *Renderer) Error(w http.ResponseWriter, r *http.Request, status int, err error) {
	data := ErrorData{Status: status, Message: http.StatusText(status)}
	if rn.devMode && err != nil {
		data.Detail = err.Error()
	}
	rn.Status(w, r, status, "error", &PageData{Title: data.Message, Data: data})
}

// isHTMX returns true if the request was made by HTMX (has HX-Request header).
func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}
