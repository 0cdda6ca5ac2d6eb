// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package catalogtest provides in-memory implementations of the catalog
// repositories and media store for tests.
package catalogtest

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gameshelf/internal/catalog"
	"gameshelf/internal/models"
)

// Store holds categories and items in memory. It implements both
// catalog.CategoryRepository (via Categories) and catalog.ItemRepository
// (via Items) over shared state, so reference checks see both sides.
type Store struct {
	mu         sync.Mutex
	categories map[uuid.UUID]models.Category
	items      map[uuid.UUID]models.Item
	writes     int

	// Err, when set, is returned by every call.
	Err error
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{
		categories: map[uuid.UUID]models.Category{},
		items:      map[uuid.UUID]models.Item{},
	}
}

// Categories returns the category repository view.
func (s *Store) Categories() *Categories { return &Categories{s} }

// Items returns the item repository view.
func (s *Store) Items() *Items { return &Items{s} }

// Writes returns how many create, update and delete calls succeeded.
func (s *Store) Writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

// AddCategory inserts c directly, assigning an ID when missing.
func (s *Store) AddCategory(c models.Category) models.Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	s.categories[c.ID] = c
	return c
}

// AddItem inserts i directly, assigning an ID when missing.
func (s *Store) AddItem(i models.Item) models.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	i.Categories = nil
	s.items[i.ID] = i
	return i
}

func byName[T any](list []T, name func(T) string) []T {
	slices.SortFunc(list, func(a, b T) int { return strings.Compare(name(a), name(b)) })
	return list
}

// Categories implements catalog.CategoryRepository.
type Categories struct{ s *Store }

var _ catalog.CategoryRepository = (*Categories)(nil)

func (r *Categories) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return len(r.s.categories), nil
}

func (r *Categories) List(context.Context) ([]models.Category, error) {
	return r.list(func(models.Category) bool { return true })
}

func (r *Categories) ListFeatured(context.Context) ([]models.Category, error) {
	return r.list(func(c models.Category) bool { return c.IsFeatured })
}

func (r *Categories) list(keep func(models.Category) bool) ([]models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.Category
	for _, c := range r.s.categories {
		if keep(c) {
			out = append(out, c)
		}
	}
	return byName(out, func(c models.Category) string { return c.Name }), nil
}

func (r *Categories) FindByID(_ context.Context, id uuid.UUID) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	c, ok := r.s.categories[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (r *Categories) CountExisting(_ context.Context, ids []uuid.UUID) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	n := 0
	for _, id := range ids {
		if _, ok := r.s.categories[id]; ok {
			n++
		}
	}
	return n, nil
}

func (r *Categories) Create(_ context.Context, c *models.Category) (*models.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	created := *c
	created.ID = uuid.New()
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.s.categories[created.ID] = created
	r.s.writes++
	return &created, nil
}

func (r *Categories) Update(_ context.Context, c *models.Category) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	prev, ok := r.s.categories[c.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	updated := *c
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.categories[c.ID] = updated
	r.s.writes++
	return nil
}

// Delete refuses to remove a referenced category, like the foreign key
// in the database.
func (r *Categories) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	for _, i := range r.s.items {
		if i.References(id) {
			return errors.New("catalogtest: category is referenced")
		}
	}
	delete(r.s.categories, id)
	r.s.writes++
	return nil
}

// Items implements catalog.ItemRepository.
type Items struct{ s *Store }

var _ catalog.ItemRepository = (*Items)(nil)

func (r *Items) Count(context.Context) (int, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return 0, r.s.Err
	}
	return len(r.s.items), nil
}

func (r *Items) List(context.Context) ([]models.Item, error) {
	return r.list(func(models.Item) bool { return true })
}

func (r *Items) ListFeatured(context.Context) ([]models.Item, error) {
	return r.list(func(i models.Item) bool { return i.IsFeatured })
}

func (r *Items) ListByCategory(_ context.Context, categoryID uuid.UUID) ([]models.Item, error) {
	return r.list(func(i models.Item) bool { return i.References(categoryID) })
}

func (r *Items) list(keep func(models.Item) bool) ([]models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	var out []models.Item
	for _, i := range r.s.items {
		if keep(i) {
			out = append(out, i)
		}
	}
	return byName(out, func(i models.Item) string { return i.Name }), nil
}

func (r *Items) FindByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	i, ok := r.s.items[id]
	if !ok {
		return nil, nil
	}
	i.CategoryIDs = slices.Clone(i.CategoryIDs)
	for _, cid := range i.CategoryIDs {
		if c, ok := r.s.categories[cid]; ok {
			i.Categories = append(i.Categories, c)
		}
	}
	return &i, nil
}

func (r *Items) Create(_ context.Context, i *models.Item) (*models.Item, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return nil, r.s.Err
	}
	created := *i
	created.ID = uuid.New()
	created.CategoryIDs = slices.Clone(i.CategoryIDs)
	created.Categories = nil
	created.CreatedAt = time.Now()
	created.UpdatedAt = created.CreatedAt
	r.s.items[created.ID] = created
	r.s.writes++
	return &created, nil
}

func (r *Items) Update(_ context.Context, i *models.Item) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	prev, ok := r.s.items[i.ID]
	if !ok {
		return catalog.ErrNotFound
	}
	updated := *i
	updated.CategoryIDs = slices.Clone(i.CategoryIDs)
	updated.Categories = nil
	updated.CreatedAt = prev.CreatedAt
	updated.UpdatedAt = time.Now()
	r.s.items[i.ID] = updated
	r.s.writes++
	return nil
}

func (r *Items) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.Err != nil {
		return r.s.Err
	}
	delete(r.s.items, id)
	r.s.writes++
	return nil
}

// Media is an in-memory catalog.MediaStore. Stored URLs have the form
// BaseURL + basename(localPath).
type Media struct {
	mu        sync.Mutex
	stored    []string
	discarded []string

	// FailStore makes Store return "" for every path.
	FailStore bool
}

// BaseURL prefixes every URL produced by Media.
const BaseURL = "https://media.test/"

var _ catalog.MediaStore = (*Media)(nil)

// NewMedia returns an empty Media.
func NewMedia() *Media { return &Media{} }

func (m *Media) Store(_ context.Context, localPath string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailStore {
		return ""
	}
	url := BaseURL + filepath.Base(localPath)
	m.stored = append(m.stored, url)
	return url
}

func (m *Media) Discard(_ context.Context, assetID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discarded = append(m.discarded, assetID)
}

func (m *Media) AssetID(url string) (string, bool) {
	id, ok := strings.CutPrefix(url, BaseURL)
	return id, ok && id != ""
}

func (m *Media) DiscardURL(ctx context.Context, url *string) {
	if url == nil {
		return
	}
	if id, ok := m.AssetID(*url); ok {
		m.Discard(ctx, id)
	}
}

// Stored returns every URL produced so far.
func (m *Media) Stored() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.stored)
}

// Discarded returns every asset ID discarded so far, in call order.
func (m *Media) Discarded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.discarded)
}

// URL returns the URL Media would produce for an asset ID.
func URL(assetID string) *string {
	u := BaseURL + assetID
	return &u
}
