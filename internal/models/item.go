// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRating is assigned when a submission leaves the rating empty.
const DefaultRating = 1.0

// Item is a single game in the catalog.
type Item struct {
	ID            uuid.UUID   `json:"id"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Price         int         `json:"price"`
	NumInStock    int         `json:"num_in_stock"`
	CategoryIDs   []uuid.UUID `json:"category_ids"`
	TitleImageURL *string     `json:"title_image_url,omitempty"`
	HeroImageURL  *string     `json:"hero_image_url,omitempty"`
	Publisher     *string     `json:"publisher,omitempty"`
	ReleaseDate   *time.Time  `json:"release_date,omitempty"`
	Rating        float64     `json:"rating"`
	IsFeatured    bool        `json:"is_featured"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`

	// Categories is populated by detail lookups, in CategoryIDs order.
	Categories []Category `json:"categories,omitempty"`
}

// URL returns the canonical detail location of the item.
func (i *Item) URL() string {
	return "/item/" + i.ID.String()
}

// References reports whether the item lists the given category.
func (i *Item) References(categoryID uuid.UUID) bool {
	for _, id := range i.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// ReleaseDateFormatted renders the release date for display, e.g. "Mon Apr 3 2000".
func (i *Item) ReleaseDateFormatted() string {
	if i.ReleaseDate == nil {
		return ""
	}
	return i.ReleaseDate.Format("Mon Jan 2 2006")
}

// ReleaseDateInput renders the release date for an <input type="date">.
func (i *Item) ReleaseDateInput() string {
	if i.ReleaseDate == nil {
		return ""
	}
	return i.ReleaseDate.Format(time.DateOnly)
}
