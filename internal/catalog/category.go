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
	"gameshelf/internal/upload"
	"gameshelf/internal/validate"
)

// CategoryImageField is the multipart field carrying a category image.
const CategoryImageField = "file"

// NewCategoryForm returns an empty create form.
func (s *Service) NewCategoryForm() *CategoryForm {
	return &CategoryForm{}
}

// EditCategoryForm returns the update form filled with the stored category.
func (s *Service) EditCategoryForm(ctx context.Context, id uuid.UUID) (*CategoryForm, error) {
	c, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	return &CategoryForm{Category: *c, IsEdit: true}, nil
}

// CreateCategory validates sub and inserts a new category. A non-nil form
// means the submission was rejected and nothing was persisted.
func (s *Service) CreateCategory(ctx context.Context, sub *upload.Batch) (*models.Category, *CategoryForm, error) {
	d := newDraft(&models.Category{}, sub)
	ok, err := run(ctx, d, categoryFields, s.categoryImage())
	if err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, err
	}
	if !ok {
		d.discardStored(ctx, s.media)
		d.value.ImageURL = nil
		return nil, &CategoryForm{Category: *d.value, Errors: d.form.Errors()}, nil
	}

	created, err := s.categories.Create(ctx, d.value)
	if err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, fmt.Errorf("create category: %w", err)
	}
	s.invalidate(ctx)
	return created, nil, nil
}

// UpdateCategory replaces the category identified by id with sub. The stored
// image is kept unless sub carries a new one; a replaced image is discarded
// while the record is written.
func (s *Service) UpdateCategory(ctx context.Context, id uuid.UUID, sub *upload.Batch) (*models.Category, *CategoryForm, error) {
	existing, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	d := newDraft(&models.Category{
		ID:        existing.ID,
		ImageURL:  existing.ImageURL,
		CreatedAt: existing.CreatedAt,
	}, sub)
	ok, err := run(ctx, d, categoryFields, s.categoryImage())
	if err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, err
	}
	if !ok {
		d.discardStored(ctx, s.media)
		d.value.ImageURL = existing.ImageURL
		return nil, &CategoryForm{Category: *d.value, Errors: d.form.Errors(), IsEdit: true}, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := s.categories.Update(ctx, d.value); err != nil {
			return fmt.Errorf("update category %s: %w", id, err)
		}
		return nil
	})
	if replacedURL(existing.ImageURL, d.value.ImageURL) {
		g.Go(func() error {
			s.media.DiscardURL(ctx, existing.ImageURL)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, err
	}

	s.invalidate(ctx)
	return d.value, nil, nil
}

// CategoryDeleteInfo returns the category and the items blocking its
// deletion, if any.
func (s *Service) CategoryDeleteInfo(ctx context.Context, id uuid.UUID) (*CategoryDeletion, error) {
	c, err := s.findCategory(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.items.ListByCategory(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list items of category %s: %w", id, err)
	}
	return &CategoryDeletion{Category: *c, Items: items, Blocked: len(items) > 0}, nil
}

// DeleteCategory deletes the category unless items reference it. A blocked
// deletion changes nothing and is reported through the returned value.
func (s *Service) DeleteCategory(ctx context.Context, id uuid.UUID) (*CategoryDeletion, error) {
	info, err := s.CategoryDeleteInfo(ctx, id)
	if err != nil {
		return nil, err
	}
	if info.Blocked {
		return info, nil
	}

	var g errgroup.Group
	g.Go(func() error {
		s.media.DiscardURL(ctx, info.Category.ImageURL)
		return nil
	})
	g.Go(func() error {
		if err := s.categories.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete category %s: %w", id, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return info, nil
}

func (s *Service) findCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	c, err := s.categories.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find category %s: %w", id, err)
	}
	if c == nil {
		return nil, ErrNotFound
	}
	return c, nil
}

func (s *Service) categoryImage() stage[models.Category] {
	return imageStage(s.media, CategoryImageField, func(c *models.Category, url string) {
		c.ImageURL = &url
	})
}

func categoryFields(_ context.Context, d *draft[models.Category]) error {
	f := d.form
	d.value.Name = f.Text("name",
		validate.MinLength(3, "Name must be at least 3 characters long."),
		validate.MaxLength(32, "Name must be a maximum of 32 characters long."),
	)
	d.value.Description = f.Text("description",
		validate.MinLength(3, "Description must be at least 3 characters long."),
		validate.MaxLength(500, "Description must be a maximum of 500 characters long."),
	)
	d.value.IsFeatured = f.Bool("isFeatured")
	return nil
}
