package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

var _ repository.AnalyticsRepository = (*DB)(nil)

// viewDedupWindow is how long a repeat view from the same client is ignored.
const viewDedupWindow = 24 * time.Hour

// RecordEvent stores a view or click and bumps the matching counter in one
// transaction. A view from a client IP that already viewed the resource
// within the dedup window is dropped and reported as not counted.
func (db *DB) RecordEvent(ctx context.Context, event *model.ResourceEvent) (bool, error) {
	var column string
	switch event.Kind {
	case model.EventView:
		column = "views_count"
	case model.EventClick:
		column = "clicks_count"
	default:
		return false, apperror.ValidationFailed("kind", fmt.Sprintf("unknown event kind %q", event.Kind))
	}
	// occurred_at is compared as text, so every stored time must be UTC.
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	event.OccurredAt = event.OccurredAt.UTC()

	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("sqlite: beginning event tx: %w", err)
	}
	defer tx.Rollback()

	if event.Kind == model.EventView && event.ClientIP != "" {
		var seen int
		err := tx.GetContext(ctx, &seen, `
			SELECT COUNT(*) FROM resource_events
			WHERE resource_id = ? AND kind = ? AND client_ip = ? AND occurred_at > ?`,
			event.ResourceID, event.Kind, event.ClientIP, event.OccurredAt.Add(-viewDedupWindow),
		)
		if err != nil {
			return false, fmt.Errorf("sqlite: checking recent views: %w", err)
		}
		if seen > 0 {
			return false, nil
		}
	}

	result, err := tx.ExecContext(ctx,
		fmt.Sprintf(`UPDATE resources SET %[1]s = %[1]s + 1 WHERE id = ?`, column),
		event.ResourceID,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: incrementing %s: %w", column, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return false, apperror.NotFound("resource", event.ResourceID)
	}

	_, err = tx.NamedExecContext(ctx, `
		INSERT INTO resource_events (resource_id, kind, user_id, client_ip, source, occurred_at)
		VALUES (:resource_id, :kind, :user_id, :client_ip, :source, :occurred_at)`,
		event,
	)
	if err != nil {
		return false, fmt.Errorf("sqlite: inserting event: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("sqlite: committing event: %w", err)
	}
	return true, nil
}

// PruneEvents deletes events older than before and returns how many went.
// Counters on resources are left untouched.
func (db *DB) PruneEvents(ctx context.Context, before time.Time) (int64, error) {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM resource_events WHERE occurred_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("sqlite: pruning events: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	return n, nil
}
