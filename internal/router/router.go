// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package router sets up all HTTP routes and middleware chains for
// GameShelf. Read routes are open; form submissions additionally pass the
// rate limiter.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"gameshelf/internal/handlers"
	"gameshelf/internal/middleware"
	"gameshelf/web"
)

// New creates and returns the configured Chi router with all middleware
// and routes wired up. csp is sent as the Content-Security-Policy header.
func New(catalog *handlers.Catalog, limiter *middleware.RateLimiter, csp string) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recover(catalog.Fail))
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders(csp))

	r.NotFound(catalog.NotFound)

	r.Get("/health", healthHandler)
	r.Handle("/static/*", http.FileServerFS(web.StaticFS))

	r.Get("/", catalog.Index)

	r.Get("/categories", catalog.CategoryList)
	r.Get("/items", catalog.ItemList)

	r.Route("/category", func(r chi.Router) {
		r.Get("/create", catalog.CategoryCreateForm)
		r.Get("/{id}", catalog.CategoryDetail)
		r.Get("/{id}/update", catalog.CategoryUpdateForm)
		r.Get("/{id}/delete", catalog.CategoryDeleteForm)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/create", catalog.CategoryCreate)
			r.Post("/{id}/update", catalog.CategoryUpdate)
			r.Post("/{id}/delete", catalog.CategoryDelete)
		})
	})

	r.Route("/item", func(r chi.Router) {
		r.Get("/create", catalog.ItemCreateForm)
		r.Get("/{id}", catalog.ItemDetail)
		r.Get("/{id}/update", catalog.ItemUpdateForm)
		r.Get("/{id}/delete", catalog.ItemDeleteForm)

		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/create", catalog.ItemCreate)
			r.Post("/{id}/update", catalog.ItemUpdate)
			r.Post("/{id}/delete", catalog.ItemDelete)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
