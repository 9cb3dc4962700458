package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/oskarw/kassa/internal/common"
	"github.com/oskarw/kassa/internal/model"
)

// GetCategories returns every category, ordered by ID so the built-in
// precedence order survives the round trip.
func (s *SQLiteStorage) GetCategories(ctx context.Context) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, keywords FROM categories ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query categories: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var categories []model.Category
	for rows.Next() {
		cat, scanErr := scanCategory(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		categories = append(categories, *cat)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate categories: %w", err)
	}
	return categories, nil
}

// GetCategoryByName returns the category with the given name, or
// common.ErrNotFound.
func (s *SQLiteStorage) GetCategoryByName(ctx context.Context, name string) (*model.Category, error) {
	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, keywords FROM categories WHERE name = ?", name)

	cat, err := scanCategory(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("category %s: %w", name, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return cat, nil
}

func scanCategory(row rowScanner) (*model.Category, error) {
	var (
		cat      model.Category
		keywords string
	)
	if err := row.Scan(&cat.ID, &cat.Name, &keywords); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan category: %w", err)
	}
	if keywords != "" {
		cat.Keywords = strings.Split(keywords, ",")
	}
	return &cat, nil
}
