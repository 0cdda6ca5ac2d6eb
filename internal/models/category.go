// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Category groups catalog items, e.g. "RPGs" or "Strategy".
// Items reference categories by ID; a referenced category cannot be deleted.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	ImageURL    *string   `json:"image_url,omitempty"`
	IsFeatured  bool      `json:"is_featured"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// URL returns the canonical detail location of the category.
func (c *Category) URL() string {
	return "/category/" + c.ID.String()
}

// HasImage returns true if the category has a stored image.
func (c *Category) HasImage() bool {
	return c.ImageURL != nil && *c.ImageURL != ""
}

// CategoryOption is a category offered in the item form's checkbox list.
// Checked marks the categories the draft item already references.
type CategoryOption struct {
	Category
	Checked bool
}
