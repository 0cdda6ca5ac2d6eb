// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"errors"
	"net/http"

	"gameshelf/internal/catalog"
	"gameshelf/internal/render"
)

// CategoryList renders every category sorted by name.
func (c *Catalog) CategoryList(w http.ResponseWriter, r *http.Request) {
	categories, err := c.service.Categories(r.Context())
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.renderer.Page(w, r, "category_list", &render.PageData{
		Title:   "Categories",
		Section: "categories",
		Data:    categories,
	})
}

// CategoryDetail renders one category with its items.
func (c *Catalog) CategoryDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	detail, err := c.service.CategoryDetail(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}

	c.renderer.Page(w, r, "category_detail", &render.PageData{
		Title:   detail.Category.Name,
		Section: "categories",
		Data:    detail,
	})
}

// CategoryCreateForm renders the empty create form.
func (c *Catalog) CategoryCreateForm(w http.ResponseWriter, r *http.Request) {
	c.categoryForm(w, r, c.service.NewCategoryForm())
}

// CategoryCreate handles the create submission.
func (c *Catalog) CategoryCreate(w http.ResponseWriter, r *http.Request) {
	batch, ok := c.stage(w, r, catalog.CategoryImageField)
	if !ok {
		return
	}
	defer batch.Cleanup()

	created, form, err := c.service.CreateCategory(r.Context(), batch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if form != nil {
		c.categoryForm(w, r, form)
		return
	}
	redirect(w, r, created.URL())
}

// CategoryUpdateForm renders the update form for an existing category.
func (c *Catalog) CategoryUpdateForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	form, err := c.service.EditCategoryForm(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	c.categoryForm(w, r, form)
}

// CategoryUpdate handles the update submission.
func (c *Catalog) CategoryUpdate(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	batch, ok := c.stage(w, r, catalog.CategoryImageField)
	if !ok {
		return
	}
	defer batch.Cleanup()

	updated, form, err := c.service.UpdateCategory(r.Context(), id, batch)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if form != nil {
		c.categoryForm(w, r, form)
		return
	}
	redirect(w, r, updated.URL())
}

// CategoryDeleteForm renders the delete confirmation, listing the items
// that block the deletion. A missing category sends the browser back to
// the listing.
func (c *Catalog) CategoryDeleteForm(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err == nil {
		var info *catalog.CategoryDeletion
		info, err = c.service.CategoryDeleteInfo(r.Context(), id)
		if err == nil {
			c.categoryDelete(w, r, info)
			return
		}
	}
	if errors.Is(err, catalog.ErrNotFound) {
		http.Redirect(w, r, "/categories", http.StatusFound)
		return
	}
	c.fail(w, r, err)
}

// CategoryDelete deletes the category, or re-renders the confirmation when
// items still reference it.
func (c *Catalog) CategoryDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	info, err := c.service.DeleteCategory(r.Context(), id)
	if err != nil {
		c.fail(w, r, err)
		return
	}
	if info.Blocked {
		c.categoryDelete(w, r, info)
		return
	}
	redirect(w, r, "/categories")
}

func (c *Catalog) categoryForm(w http.ResponseWriter, r *http.Request, form *catalog.CategoryForm) {
	title := "Create category"
	if form.IsEdit {
		title = "Update category"
	}
	c.renderer.Page(w, r, "category_form", &render.PageData{
		Title:   title,
		Section: "categories",
		Data:    form,
	})
}

func (c *Catalog) categoryDelete(w http.ResponseWriter, r *http.Request, info *catalog.CategoryDeletion) {
	c.renderer.Page(w, r, "category_delete", &render.PageData{
		Title:   "Delete category",
		Section: "categories",
		Data:    info,
	})
}
