// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"gameshelf/internal/catalog"
	"gameshelf/internal/models"
)

// ItemStore manages items and their category references.
type ItemStore struct {
	db *sql.DB
}

var _ catalog.ItemRepository = (*ItemStore)(nil)

// NewItemStore returns a new ItemStore.
func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

const itemColumns = `id, name, description, price, num_in_stock,
	title_image_url, hero_image_url, publisher, release_date,
	rating, is_featured, created_at, updated_at`

// itemSummaryColumns is the projection used by listings.
const itemSummaryColumns = `i.id, i.name, i.title_image_url`

func scanItem(scanner interface{ Scan(...any) error }) (*models.Item, error) {
	var i models.Item
	err := scanner.Scan(
		&i.ID, &i.Name, &i.Description, &i.Price, &i.NumInStock,
		&i.TitleImageURL, &i.HeroImageURL, &i.Publisher, &i.ReleaseDate,
		&i.Rating, &i.IsFeatured, &i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Count returns the number of items.
func (s *ItemStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM items`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count items: %w", err)
	}
	return n, nil
}

// List returns every item ordered by name, projected to its summary.
func (s *ItemStore) List(ctx context.Context) ([]models.Item, error) {
	return s.summaries(ctx, `SELECT `+itemSummaryColumns+` FROM items i ORDER BY i.name, i.id`)
}

// ListFeatured returns featured items ordered by name.
func (s *ItemStore) ListFeatured(ctx context.Context) ([]models.Item, error) {
	return s.summaries(ctx, `SELECT `+itemSummaryColumns+` FROM items i WHERE i.is_featured ORDER BY i.name, i.id`)
}

// ListByCategory returns the items referencing categoryID, ordered by name.
func (s *ItemStore) ListByCategory(ctx context.Context, categoryID uuid.UUID) ([]models.Item, error) {
	return s.summaries(ctx, `
		SELECT `+itemSummaryColumns+`
		FROM items i
		JOIN item_categories ic ON ic.item_id = i.id
		WHERE ic.category_id = $1
		ORDER BY i.name, i.id
	`, categoryID)
}

func (s *ItemStore) summaries(ctx context.Context, q string, args ...any) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		var i models.Item
		if err := rows.Scan(&i.ID, &i.Name, &i.TitleImageURL); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

// FindByID retrieves an item with its category references and the
// referenced categories. Returns nil if not found.
func (s *ItemStore) FindByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+itemColumns+` FROM items WHERE id = $1`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find item by id: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT c.id, c.name, c.description, c.image_url, c.is_featured,
		       c.created_at, c.updated_at
		FROM item_categories ic
		JOIN categories c ON c.id = ic.category_id
		WHERE ic.item_id = $1
		ORDER BY ic.position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("find item categories: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item category: %w", err)
		}
		item.CategoryIDs = append(item.CategoryIDs, c.ID)
		item.Categories = append(item.Categories, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("find item categories: %w", err)
	}
	return item, nil
}

// Create inserts an item and its category references in one transaction.
func (s *ItemStore) Create(ctx context.Context, i *models.Item) (*models.Item, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		INSERT INTO items (name, description, price, num_in_stock,
			title_image_url, hero_image_url, publisher, release_date,
			rating, is_featured)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+itemColumns,
		i.Name, i.Description, i.Price, i.NumInStock,
		i.TitleImageURL, i.HeroImageURL, i.Publisher, i.ReleaseDate,
		i.Rating, i.IsFeatured,
	)
	created, err := scanItem(row)
	if err != nil {
		return nil, fmt.Errorf("create item: %w", err)
	}

	if err := insertReferences(ctx, tx, created.ID, i.CategoryIDs); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit create item: %w", err)
	}

	created.CategoryIDs = append([]uuid.UUID(nil), i.CategoryIDs...)
	return created, nil
}

// Update replaces an item and its category references in one transaction.
// Returns catalog.ErrNotFound when no row has the item's ID.
func (s *ItemStore) Update(ctx context.Context, i *models.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		UPDATE items SET
			name = $1, description = $2, price = $3, num_in_stock = $4,
			title_image_url = $5, hero_image_url = $6, publisher = $7,
			release_date = $8, rating = $9, is_featured = $10,
			updated_at = NOW()
		WHERE id = $11
	`, i.Name, i.Description, i.Price, i.NumInStock,
		i.TitleImageURL, i.HeroImageURL, i.Publisher,
		i.ReleaseDate, i.Rating, i.IsFeatured, i.ID)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if err := requireRow(res); err != nil {
		return err
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM item_categories WHERE item_id = $1`, i.ID); err != nil {
		return fmt.Errorf("clear item categories: %w", err)
	}
	if err := insertReferences(ctx, tx, i.ID, i.CategoryIDs); err != nil {
		return err
	}
	return tx.Commit()
}

// Delete removes an item. Its references go with it (ON DELETE CASCADE).
func (s *ItemStore) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// insertReferences writes the ordered category references of an item.
func insertReferences(ctx context.Context, tx *sql.Tx, itemID uuid.UUID, categoryIDs []uuid.UUID) error {
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO item_categories (item_id, category_id, position)
		VALUES ($1, $2, $3)`)
	if err != nil {
		return fmt.Errorf("prepare item categories: %w", err)
	}
	defer stmt.Close()

	for pos, cid := range categoryIDs {
		if _, err := stmt.ExecContext(ctx, itemID, cid, pos); err != nil {
			return fmt.Errorf("insert item category %s: %w", cid, err)
		}
	}
	return nil
}
