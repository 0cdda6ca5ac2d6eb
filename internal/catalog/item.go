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

// Multipart fields carrying item images.
const (
	TitleImageField = "titleImg"
	HeroImageField  = "heroImg"
)

// NewItemForm returns an empty create form listing every category.
func (s *Service) NewItemForm(ctx context.Context) (*ItemForm, error) {
	item := models.Item{Rating: models.DefaultRating}
	options, err := s.categoryOptions(ctx, &item)
	if err != nil {
		return nil, err
	}
	return &ItemForm{Item: item, Categories: options}, nil
}

// EditItemForm returns the update form filled with the stored item, its
// categories checked.
func (s *Service) EditItemForm(ctx context.Context, id uuid.UUID) (*ItemForm, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}
	options, err := s.categoryOptions(ctx, item)
	if err != nil {
		return nil, err
	}
	return &ItemForm{Item: *item, Categories: options, IsEdit: true}, nil
}

// CreateItem validates sub and inserts a new item. A non-nil form means the
// submission was rejected; its category options restore the selection.
func (s *Service) CreateItem(ctx context.Context, sub *upload.Batch) (*models.Item, *ItemForm, error) {
	d := newDraft(&models.Item{}, sub)
	ok, err := run(ctx, d, itemFields, s.itemReferences, s.titleImage(), s.heroImage())
	if err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, err
	}
	if !ok {
		d.discardStored(ctx, s.media)
		d.value.TitleImageURL, d.value.HeroImageURL = nil, nil
		form, err := s.rejectedItem(ctx, d, false)
		return nil, form, err
	}

	created, err := s.items.Create(ctx, d.value)
	if err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, fmt.Errorf("create item: %w", err)
	}
	s.invalidate(ctx)
	return created, nil, nil
}

// UpdateItem replaces the item identified by id with sub. Each image slot
// keeps its stored URL unless sub carries a replacement; replaced images are
// discarded while the record is written.
func (s *Service) UpdateItem(ctx context.Context, id uuid.UUID, sub *upload.Batch) (*models.Item, *ItemForm, error) {
	existing, err := s.findItem(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	d := newDraft(&models.Item{
		ID:            existing.ID,
		TitleImageURL: existing.TitleImageURL,
		HeroImageURL:  existing.HeroImageURL,
		CreatedAt:     existing.CreatedAt,
	}, sub)
	ok, err := run(ctx, d, itemFields, s.itemReferences, s.titleImage(), s.heroImage())
	if err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, err
	}
	if !ok {
		d.discardStored(ctx, s.media)
		d.value.TitleImageURL, d.value.HeroImageURL = existing.TitleImageURL, existing.HeroImageURL
		form, err := s.rejectedItem(ctx, d, true)
		return nil, form, err
	}

	var g errgroup.Group
	g.Go(func() error {
		if err := s.items.Update(ctx, d.value); err != nil {
			return fmt.Errorf("update item %s: %w", id, err)
		}
		return nil
	})
	for _, slot := range [][2]*string{
		{existing.TitleImageURL, d.value.TitleImageURL},
		{existing.HeroImageURL, d.value.HeroImageURL},
	} {
		if replacedURL(slot[0], slot[1]) {
			g.Go(func() error {
				s.media.DiscardURL(ctx, slot[0])
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		d.discardStored(ctx, s.media)
		return nil, nil, err
	}

	s.invalidate(ctx)
	return d.value, nil, nil
}

// ItemDeleteInfo returns the item shown on the delete confirmation.
func (s *Service) ItemDeleteInfo(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return s.findItem(ctx, id)
}

// DeleteItem discards both images and deletes the record concurrently.
func (s *Service) DeleteItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.findItem(ctx, id)
	if err != nil {
		return nil, err
	}

	var g errgroup.Group
	for _, url := range []*string{item.TitleImageURL, item.HeroImageURL} {
		g.Go(func() error {
			s.media.DiscardURL(ctx, url)
			return nil
		})
	}
	g.Go(func() error {
		if err := s.items.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete item %s: %w", id, err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	return item, nil
}

func (s *Service) findItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	item, err := s.items.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find item %s: %w", id, err)
	}
	if item == nil {
		return nil, ErrNotFound
	}
	return item, nil
}

// categoryOptions lists every category, checking those item references.
func (s *Service) categoryOptions(ctx context.Context, item *models.Item) ([]models.CategoryOption, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	options := make([]models.CategoryOption, len(categories))
	for i, c := range categories {
		options[i] = models.CategoryOption{Category: c, Checked: item.References(c.ID)}
	}
	return options, nil
}

func (s *Service) rejectedItem(ctx context.Context, d *draft[models.Item], edit bool) (*ItemForm, error) {
	options, err := s.categoryOptions(ctx, d.value)
	if err != nil {
		return nil, err
	}
	return &ItemForm{
		Item:       *d.value,
		Categories: options,
		Errors:     d.form.Errors(),
		IsEdit:     edit,
	}, nil
}

// itemReferences rejects references to categories that do not exist.
func (s *Service) itemReferences(ctx context.Context, d *draft[models.Item]) error {
	ids := d.value.CategoryIDs
	if len(ids) == 0 {
		return nil
	}
	n, err := s.categories.CountExisting(ctx, ids)
	if err != nil {
		return fmt.Errorf("check item categories: %w", err)
	}
	if n < len(ids) {
		d.form.Add("category", "A selected category no longer exists.")
	}
	return nil
}

func (s *Service) titleImage() stage[models.Item] {
	return imageStage(s.media, TitleImageField, func(i *models.Item, url string) {
		i.TitleImageURL = &url
	})
}

func (s *Service) heroImage() stage[models.Item] {
	return imageStage(s.media, HeroImageField, func(i *models.Item, url string) {
		i.HeroImageURL = &url
	})
}

func itemFields(_ context.Context, d *draft[models.Item]) error {
	f := d.form
	d.value.Name = f.Text("name",
		validate.MinLength(3, "Name must be at least 3 characters long."),
		validate.MaxLength(32, "Name must be a maximum of 32 characters long."),
	)
	d.value.Description = f.Text("description",
		validate.MinLength(3, "Description must be at least 3 characters long."),
		validate.MaxLength(500, "Description must be a maximum of 500 characters long."),
	)
	d.value.Price = f.Int("price", "Price must be a whole number.",
		validate.Min(1, "The minimum price should be 1."),
	)
	d.value.NumInStock = f.Int("numInStock", "Number in stock must be a whole number.",
		validate.Min(0, "The minimum number of stock should be 0."),
	)
	d.value.CategoryIDs = f.IDs("category",
		"You should select at least one category.",
		"A selected category is not valid.",
	)
	d.value.Publisher = f.OptionalText("publisher",
		validate.MinLength(3, "Publisher must be at least 3 characters long."),
		validate.MaxLength(32, "Publisher must be a maximum of 32 characters long."),
	)
	d.value.ReleaseDate = f.Date("releaseDate", "Release date must be a valid date.")
	d.value.Rating = f.Float("rating", models.DefaultRating, "Rating must be a number.",
		validate.Min(0.0, "The minimum rating should be 0."),
		validate.Max(5.0, "The maximum rating should be 5."),
	)
	d.value.IsFeatured = f.Bool("isFeatured")
	return nil
}
