package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

var _ repository.CategoryRepository = (*DB)(nil)

const categoryColumns = `id, name, slug, description, color, icon, parent_id, created_at`

// ListCategories returns every category ordered by name.
func (db *DB) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories := []model.Category{}
	err := db.conn.SelectContext(ctx, &categories,
		`SELECT `+categoryColumns+` FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing categories: %w", err)
	}
	return categories, nil
}

// GetCategoryBySlug retrieves a category by its URL slug.
func (db *DB) GetCategoryBySlug(ctx context.Context, slug string) (*model.Category, error) {
	var c model.Category
	err := db.conn.GetContext(ctx, &c,
		`SELECT `+categoryColumns+` FROM categories WHERE slug = ?`, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("category", slug)
		}
		return nil, fmt.Errorf("sqlite: getting category by slug %s: %w", slug, err)
	}
	return &c, nil
}

// UpsertCategory inserts the category, or updates the row with the same slug.
// On return category.ID and CreatedAt hold the stored values.
func (db *DB) UpsertCategory(ctx context.Context, category *model.Category) error {
	if category.ID == "" {
		category.ID = xid.New().String()
	}
	if category.CreatedAt.IsZero() {
		category.CreatedAt = time.Now()
	}

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO categories (id, name, slug, description, color, icon, parent_id, created_at)
		VALUES (:id, :name, :slug, :description, :color, :icon, :parent_id, :created_at)
		ON CONFLICT(slug) DO UPDATE SET
			name        = excluded.name,
			description = excluded.description,
			color       = excluded.color,
			icon        = excluded.icon,
			parent_id   = excluded.parent_id`,
		category,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting category %s: %w", category.Slug, err)
	}

	// The slug may already have belonged to a row with a different ID.
	stored, err := db.GetCategoryBySlug(ctx, category.Slug)
	if err != nil {
		return err
	}
	category.ID = stored.ID
	category.CreatedAt = stored.CreatedAt
	return nil
}
