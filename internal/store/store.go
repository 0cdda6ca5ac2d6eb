// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package store implements the catalog repositories on PostgreSQL.
package store

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"gameshelf/internal/catalog"
)

// requireRow maps an UPDATE that touched nothing to catalog.ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// uuidArray encodes ids for a uuid[] parameter.
func uuidArray(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}
