package store

import (
	"context"
	"fmt"

	"github.com/tally-dev/tally/internal/model"
)

// ResolveCategory returns the ID of the user's category called name, creating
// the row on first use.
func (s *Store) ResolveCategory(ctx context.Context, userID, name string) (int64, error) {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (user_id, name) VALUES (?, ?)
		ON CONFLICT (user_id, name) DO NOTHING
	`, userID, name)
	if err != nil {
		return 0, fmt.Errorf("creating category %q: %w", name, err)
	}

	var id int64
	err = s.db.QueryRowContext(ctx, `
		SELECT id FROM categories WHERE user_id = ? AND name = ?
	`, userID, name).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("querying category %q: %w", name, err)
	}
	return id, nil
}

// SeedCategories creates any of names the user does not have yet.
func (s *Store) SeedCategories(ctx context.Context, userID string, names []string) error {
	return s.ExecTx(ctx, func(tx *Store) error {
		for _, name := range names {
			if _, err := tx.ResolveCategory(ctx, userID, name); err != nil {
				return err
			}
		}
		return nil
	})
}

// Categories lists a user's categories by name.
func (s *Store) Categories(ctx context.Context, userID string) ([]model.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name FROM categories WHERE user_id = ? ORDER BY name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying categories: %w", err)
	}
	defer rows.Close()

	var cats []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name); err != nil {
			return nil, fmt.Errorf("scanning category: %w", err)
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}
