package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

var _ repository.ResourceRepository = (*DB)(nil)

const resourceColumns = `id, title, description, url, image, category_id, tags, featured,
	date_added, views_count, likes_count, clicks_count`

// ListAllResources returns the whole catalog, newest first.
// The catalog is small enough to filter in memory.
func (db *DB) ListAllResources(ctx context.Context) ([]model.Resource, error) {
	resources := []model.Resource{}
	err := db.conn.SelectContext(ctx, &resources,
		`SELECT `+resourceColumns+` FROM resources ORDER BY date_added DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing resources: %w", err)
	}
	return resources, nil
}

// UpsertResource inserts the resource or replaces its editable fields.
// Counters are never overwritten by an upsert.
func (db *DB) UpsertResource(ctx context.Context, resource *model.Resource) error {
	if resource.ID == "" {
		resource.ID = xid.New().String()
	}
	if resource.DateAdded.IsZero() {
		resource.DateAdded = time.Now()
	}
	if resource.Tags == nil {
		resource.Tags = model.Tags{}
	}

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO resources (id, title, description, url, image, category_id, tags, featured, date_added)
		VALUES (:id, :title, :description, :url, :image, :category_id, :tags, :featured, :date_added)
		ON CONFLICT(id) DO UPDATE SET
			title       = excluded.title,
			description = excluded.description,
			url         = excluded.url,
			image       = excluded.image,
			category_id = excluded.category_id,
			tags        = excluded.tags,
			featured    = excluded.featured`,
		resource,
	)
	if err != nil {
		return fmt.Errorf("sqlite: upserting resource %s: %w", resource.ID, err)
	}
	return nil
}
