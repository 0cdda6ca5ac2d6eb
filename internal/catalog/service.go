// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalog implements the Category and Item lifecycles: validating
// submissions, storing and discarding their images, enforcing the
// reference rule between items and categories, and the read-side queries
// behind the catalog pages.
package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"gameshelf/internal/models"
	"gameshelf/internal/validate"
)

// ErrNotFound is returned when a category or item does not exist.
var ErrNotFound = errors.New("catalog: not found")

// CategoryRepository persists categories. Lookups return (nil, nil) when the
// row does not exist; Update returns ErrNotFound in that case.
type CategoryRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Category, error)
	ListFeatured(ctx context.Context) ([]models.Category, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Category, error)
	// CountExisting returns how many of ids name an existing category.
	CountExisting(ctx context.Context, ids []uuid.UUID) (int, error)
	Create(ctx context.Context, c *models.Category) (*models.Category, error)
	Update(ctx context.Context, c *models.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// ItemRepository persists items and their category references.
type ItemRepository interface {
	Count(ctx context.Context) (int, error)
	List(ctx context.Context) ([]models.Item, error)
	ListFeatured(ctx context.Context) ([]models.Item, error)
	// ListByCategory returns the items referencing categoryID.
	ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Item, error)
	// FindByID returns the item with Categories populated.
	FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	Create(ctx context.Context, i *models.Item) (*models.Item, error)
	Update(ctx context.Context, i *models.Item) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// MediaStore hosts images. Store returns "" when no URL could be produced.
// Discard never fails the caller.
type MediaStore interface {
	Store(ctx context.Context, localPath string) string
	Discard(ctx context.Context, assetID string)
	AssetID(url string) (string, bool)
	DiscardURL(ctx context.Context, url *string)
}

// Counts is the cached part of the index summary.
type Counts struct {
	Categories int `json:"categories"`
	Items      int `json:"items"`
}

// SummaryCache caches Counts between writes.
type SummaryCache interface {
	Get(ctx context.Context) (*Counts, bool)
	Set(ctx context.Context, c Counts)
	Invalidate(ctx context.Context)
}

// Service orchestrates the catalog.
type Service struct {
	categories CategoryRepository
	items      ItemRepository
	media      MediaStore
	cache      SummaryCache
}

// New creates a Service. cache may be nil.
func New(categories CategoryRepository, items ItemRepository, media MediaStore, cache SummaryCache) *Service {
	return &Service{
		categories: categories,
		items:      items,
		media:      media,
		cache:      cache,
	}
}

// CategoryForm is the data behind the category create and update views.
// A form returned from a submit carries the rejected draft and every
// violation found.
type CategoryForm struct {
	Category models.Category
	Errors   validate.Errors
	IsEdit   bool
}

// ItemForm is the data behind the item create and update views.
type ItemForm struct {
	Item       models.Item
	Categories []models.CategoryOption
	Errors     validate.Errors
	IsEdit     bool
}

// CategoryDeletion describes a delete confirmation or attempt. Blocked is
// set when Items still reference the category.
type CategoryDeletion struct {
	Category models.Category
	Items    []models.Item
	Blocked  bool
}

// invalidate drops cached counts after a successful write.
func (s *Service) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Invalidate(ctx)
	}
}
