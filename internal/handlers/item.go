// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"gameshelf/internal/catalog"
	"gameshelf/internal/models"
	"gameshelf/internal/render"
)

// itemImageFields are the file fields accepted on item submissions.
var itemImageFields = []string{catalog.TitleImageField, catalog.HeroImageField}

// ItemList renders every item sorted by name.
func (c *Catalog) ItemList(w http.ResponseWriter, r *http.Request) {
	items, err := c.service.Items(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.renderer.Page(w, r, "item_list", &render.PageData{
		Title:   "Items",
		Section: "items",
		Data:    items,
	})
}

// ItemDetail renders one item with its categories.
func (c *Catalog) ItemDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	item, err := c.service.ItemDetail(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.renderer.Page(w, r, "item_detail", &render.PageData{
		Title:   item.Name,
		Section: "items",
		Data:    item,
	})
}

// ItemCreateForm renders the empty create form.
func (c *Catalog) ItemCreateForm(w http.ResponseWriter, r *http.Request) {
	form, err := c.service.NewItemForm(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.itemForm(w, r, form)
}

// ItemCreate handles the create submission.
func (c *Catalog) ItemCreate(w http.ResponseWriter, r *http.Request) {
	batch, ok := c.stage(w, r, itemImageFields...)
	if !ok {
		return
	}
	defer batch.Cleanup()

	created, form, err := c.service.CreateItem(r.Context(), batch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if form != nil {
		c.itemForm(w, r, form)
		return
	}
	redirect(w, r, created.URL())
}

// ItemUpdateForm renders the update form for an existing item.
func (c *Catalog) ItemUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	form, err := c.service.EditItemForm(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.itemForm(w, r, form)
}

// ItemUpdate handles the update submission.
func (c *Catalog) ItemUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	batch, ok := c.stage(w, r, itemImageFields...)
	if !ok {
		return
	}
	defer batch.Cleanup()

	updated, form, err := c.service.UpdateItem(r.Context(), id, batch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if form != nil {
		c.itemForm(w, r, form)
		return
	}
	redirect(w, r, updated.URL())
}

// ItemDeleteForm renders the delete confirmation. A missing item sends the
// browser back to the listing.
func (c *Catalog) ItemDeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		var item *models.Item
		item, err = c.service.ItemDeleteInfo(r.Context(), id)
		if err == nil {
			c.renderer.Page(w, r, "item_delete", &render.PageData{
				Title:   "Delete item",
				Section: "items",
				Data:    item,
			})
			return
		}
	}
	if errors.Is(err, catalog.ErrNotFound) {
		http.Redirect(w, r, "/items", http.StatusFound)
		return
	}
	c.fail(w, r, err)
}

// ItemDelete deletes the item and its images.
func (c *Catalog) ItemDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if _, err := c.service.DeleteItem(r.Context(), id); err != nil {
		c.fail(w, r, err)
		return
	}
	redirect(w, r, "/items")
}

func (c *Catalog) itemForm(w http.ResponseWriter, r *http.Request, form *catalog.ItemForm) {
	title := "Create item"
	if form.IsEdit {
		title = "Update item"
	}
	c.renderer.Page(w, r, "item_form", &render.PageData{
		Title:   title,
		Section: "items",
		Data:    form,
	})
}
