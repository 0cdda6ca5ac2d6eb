// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package catalog

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"gameshelf/internal/models"
)

// Summary is the data behind the index page.
type Summary struct {
	Counts
	FeaturedCategories []models.Category
	FeaturedItems      []models.Item
}

// CategoryDetail is a category together with the items referencing it.
type CategoryDetail struct {
	Category models.Category
	Items    []models.Item
}

// Summary counts both collections and lists featured entities, all
// concurrently. Counts are served from the cache when present.
func (s *Service) Summary(ctx context.Context) (*Summary, error) {
	var (
		sum    Summary
		cached bool
		g      errgroup.Group
	)

	if s.cache != nil {
		if c, ok := s.cache.Get(ctx); ok {
			sum.Counts, cached = *c, true
		}
	}

	if !cached {
		g.Go(func() error {
			n, err := s.categories.Count(ctx)
			if err != nil {
				return fmt.Errorf("count categories: %w", err)
			}
			sum.Categories = n
			return nil
		})
		g.Go(func() error {
			n, err := s.items.Count(ctx)
			if err != nil {
				return fmt.Errorf("count items: %w", err)
			}
			sum.Items = n
			return nil
		})
	}
	g.Go(func() error {
		featured, err := s.categories.ListFeatured(ctx)
		if err != nil {
			return fmt.Errorf("list featured categories: %w", err)
		}
		sum.FeaturedCategories = featured
		return nil
	})
	g.Go(func() error {
		featured, err := s.items.ListFeatured(ctx)
		if err != nil {
			return fmt.Errorf("list featured items: %w", err)
		}
		sum.FeaturedItems = featured
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	if !cached && s.cache != nil {
		s.cache.Set(ctx, sum.Counts)
	}
	return &sum, nil
}

// Categories lists every category sorted by name.
func (s *Service) Categories(ctx context.Context) ([]models.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

// Items lists every item sorted by name.
func (s *Service) Items(ctx context.Context) ([]models.Item, error) {
	items, err := s.items.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	return items, nil
}

// CategoryDetail fetches a category and its items concurrently.
func (s *Service) CategoryDetail(ctx context.Context, id uuid.UUID) (*CategoryDetail, error) {
	var (
		category *models.Category
		items    []models.Item
		g        errgroup.Group
	)
	g.Go(func() error {
		c, err := s.categories.FindByID(ctx, id)
		if err != nil {
			return fmt.Errorf("find category %s: %w", id, err)
		}
		category = c
		return nil
	})
	g.Go(func() error {
		list, err := s.items.ListByCategory(ctx, id)
		if err != nil {
			return fmt.Errorf("list items of category %s: %w", id, err)
		}
		items = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrNotFound
	}
	return &CategoryDetail{Category: *category, Items: items}, nil
}

// ItemDetail returns an item with its categories populated.
func (s *Service) ItemDetail(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.findItem(ctx, id)
}
