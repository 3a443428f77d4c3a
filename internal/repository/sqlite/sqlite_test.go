package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/sakif/code-resources/internal/model"
)

// newTestDB returns a fresh in-memory database closed at the end of the test.
func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createTestCategory(t *testing.T, db *DB, name, slug string) *model.Category {
	t.Helper()
	c := &model.Category{Name: name, Slug: slug}
	if err := db.UpsertCategory(context.Background(), c); err != nil {
		t.Fatalf("failed to create test category: %v", err)
	}
	return c
}

func createTestResource(t *testing.T, db *DB, title, categoryID string, added time.Time, tags ...string) *model.Resource {
	t.Helper()
	r := &model.Resource{
		Title:      title,
		URL:        "https://example.com/" + title,
		CategoryID: categoryID,
		Tags:       tags,
		DateAdded:  added,
	}
	if err := db.UpsertResource(context.Background(), r); err != nil {
		t.Fatalf("failed to create test resource: %v", err)
	}
	return r
}

// getTestResource reads a resource row straight from the table.
func getTestResource(t *testing.T, db *DB, id string) *model.Resource {
	t.Helper()
	var r model.Resource
	if err := db.conn.Get(&r, `SELECT `+resourceColumns+` FROM resources WHERE id = ?`, id); err != nil {
		t.Fatalf("failed to read resource %s: %v", id, err)
	}
	return &r
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	db := newTestDB(t)

	if err := db.migrate(); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}
