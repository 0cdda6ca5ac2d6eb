// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package database

import (
	"database/sql"
	"fmt"
	"log/slog"
)

// seedCategories are inserted into an empty development database.
var seedCategories = []struct {
	name, description string
	featured          bool
}{
	{"RPGs", "Role playing games", true},
	{"Strategy", "Turn-based and real-time strategy games", false},
}

// Seed populates an empty database with sample categories for development.
// It is a no-op when any category exists already.
func Seed(db *sql.DB) error {
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM categories").Scan(&count); err != nil {
		return fmt.Errorf("seed check categories: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	for _, c := range seedCategories {
		_, err := db.Exec(`
			INSERT INTO categories (name, description, is_featured)
			VALUES ($1, $2, $3)
		`, c.name, c.description, c.featured)
		if err != nil {
			return fmt.Errorf("seed insert category %q: %w", c.name, err)
		}
	}

	slog.Info("database seeded with sample categories", "count", len(seedCategories))
	return nil
}
