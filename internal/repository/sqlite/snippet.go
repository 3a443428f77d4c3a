package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

var _ repository.SnippetRepository = (*DB)(nil)

const snippetColumns = `id, title, description, language, code, tags, user_id, created_at, updated_at`

// Create inserts a new snippet, filling in its ID and timestamps.
func (db *DB) Create(ctx context.Context, snippet *model.Snippet) error {
	snippet.ID = xid.New().String()
	now := time.Now()
	snippet.CreatedAt = now
	snippet.UpdatedAt = now
	if snippet.Tags == nil {
		snippet.Tags = model.Tags{}
	}

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO snippets (id, title, description, language, code, tags, user_id, created_at, updated_at)
		VALUES (:id, :title, :description, :language, :code, :tags, :user_id, :created_at, :updated_at)`,
		snippet,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating snippet: %w", err)
	}
	return nil
}

// GetByID retrieves a single snippet by its ID.
func (db *DB) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	var s model.Snippet
	err := db.conn.GetContext(ctx, &s,
		`SELECT `+snippetColumns+` FROM snippets WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("snippet", id)
		}
		return nil, fmt.Errorf("sqlite: getting snippet %s: %w", id, err)
	}
	return &s, nil
}

// List returns a page of snippets, newest first.
func (db *DB) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	offset := max(opts.Offset, 0)

	var (
		where []string
		args  []any
	)
	if opts.Language != "" {
		where = append(where, "language = ?")
		args = append(args, opts.Language)
	}
	if opts.UserID != "" {
		where = append(where, "user_id = ?")
		args = append(args, opts.UserID)
	}

	query := `SELECT ` + snippetColumns + ` FROM snippets`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	snippets := make([]model.Snippet, 0, limit)
	if err := db.conn.SelectContext(ctx, &snippets, query, args...); err != nil {
		return nil, fmt.Errorf("sqlite: listing snippets: %w", err)
	}
	return snippets, nil
}

// ListAllSnippets returns every snippet. Used to build the search index.
func (db *DB) ListAllSnippets(ctx context.Context) ([]model.Snippet, error) {
	snippets := []model.Snippet{}
	err := db.conn.SelectContext(ctx, &snippets,
		`SELECT `+snippetColumns+` FROM snippets ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing all snippets: %w", err)
	}
	return snippets, nil
}

// Update writes the editable fields of an existing snippet.
// id, user_id and created_at are immutable.
func (db *DB) Update(ctx context.Context, snippet *model.Snippet) error {
	snippet.UpdatedAt = time.Now()
	if snippet.Tags == nil {
		snippet.Tags = model.Tags{}
	}

	result, err := db.conn.NamedExecContext(ctx, `
		UPDATE snippets
		SET title = :title, description = :description, language = :language,
		    code = :code, tags = :tags, updated_at = :updated_at
		WHERE id = :id`,
		snippet,
	)
	if err != nil {
		return fmt.Errorf("sqlite: updating snippet %s: %w", snippet.ID, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", snippet.ID)
	}
	return nil
}

// Delete removes a snippet by its ID.
func (db *DB) Delete(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx, `DELETE FROM snippets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting snippet %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("snippet", id)
	}
	return nil
}
