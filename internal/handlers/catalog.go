// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package handlers contains the HTTP handlers for the GameShelf catalog.
// Handlers receive their dependencies through the handler struct and leave
// every catalog rule to the catalog service.
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gameshelf/internal/catalog"
	"gameshelf/internal/render"
	"gameshelf/internal/upload"
)

// Catalog groups the catalog page handlers and their dependencies.
type Catalog struct {
	renderer *render.Renderer
	service  *catalog.Service
	uploads  *upload.Handler
}

// NewCatalog creates a new Catalog handler group.
func NewCatalog(renderer *render.Renderer, service *catalog.Service, uploads *upload.Handler) *Catalog {
	return &Catalog{
		renderer: renderer,
		service:  service,
		uploads:  uploads,
	}
}

// Index renders the catalog summary.
func (c *Catalog) Index(w http.ResponseWriter, r *http.Request) {
	sum, err := c.service.Summary(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.renderer.Page(w, r, "index", &render.PageData{
		Title:   "Home",
		Section: "home",
		Data:    sum,
	})
}

// NotFound renders the 404 error view for unmatched routes.
func (c *Catalog) NotFound(w http.ResponseWriter, r *http.Request) {
	c.renderer.Error(w, r, http.StatusNotFound, nil)
}

// Fail renders the error view for err, mapping known errors to their
// status. It is also the panic handler of the router.
func (c *Catalog) Fail(w http.ResponseWriter, r *http.Request, err error) {
	c.fail(w, r, err)
}

func (c *Catalog) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		c.renderer.Error(w, r, http.StatusNotFound, err)
	case errors.Is(err, upload.ErrFileTooLarge), errors.Is(err, upload.ErrFieldTooLarge):
		slog.Warn("upload rejected", "error", err, "path", r.URL.Path)
		c.renderer.Error(w, r, http.StatusRequestEntityTooLarge, err)
	default:
		slog.Error("request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		c.renderer.Error(w, r, http.StatusInternalServerError, err)
	}
}

// stage reads the request body, staging the given file fields. The caller
// must defer Cleanup on the returned batch.
func (c *Catalog) stage(w http.ResponseWriter, r *http.Request, fields ...string) (*upload.Batch, bool) {
	batch, err := c.uploads.Stage(w, r, fields...)
	if err != nil {
		c.fail(w, r, err)
		return nil, false
	}
	return batch, true
}

// redirect sends the browser to location after a successful submit.
func redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}

// pathID parses the {id} URL parameter. Malformed IDs are reported as not
// found.
func pathID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, catalog.ErrNotFound
	}
	return id, nil
}
