// Package seed imports a catalogue of categories and resources from JSON.
//
// Importing is idempotent: categories are matched by slug and resources by
// ID, so re-running a seed file updates rows instead of duplicating them.
// View, like and click counters are never reset.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/slug"
)

// File is the on-disk format.
//
//	{
//	  "categories": [{"name": "React", "description": "..."}],
//	  "resources": [{"id": "react-docs", "title": "React docs", "url": "https://react.dev", "category": "react", "tags": ["docs"]}]
//	}
type File struct {
	Categories []Category `json:"categories"`
	Resources  []Resource `json:"resources"`
}

// Category is a category entry. Slug defaults to slug.Make(Name).
type Category struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Color       string `json:"color"`
	Icon        string `json:"icon"`
	Parent      string `json:"parent"` // parent category slug
}

// Resource is a resource entry. Category is a category slug or name; ID
// defaults to slug.Make(Title).
type Resource struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	URL         string    `json:"url"`
	Image       string    `json:"image"`
	Category    string    `json:"category"`
	Tags        []string  `json:"tags"`
	Featured    bool      `json:"featured"`
	DateAdded   time.Time `json:"dateAdded"`
}

// Store is what Apply writes to; the sqlite repository implements it.
type Store interface {
	UpsertCategory(ctx context.Context, category *model.Category) error
	UpsertResource(ctx context.Context, resource *model.Resource) error
}

// Stats summarises an import.
type Stats struct {
	Categories int
	Resources  int
}

// Decode reads and validates a seed file. Every problem is reported, not
// just the first.
func Decode(r io.Reader) (*File, error) {
	var f File
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("seed: decoding: %w", err)
	}

	f.normalize()
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) normalize() {
	for i := range f.Categories {
		c := &f.Categories[i]
		c.Name = strings.TrimSpace(c.Name)
		if c.Slug == "" {
			c.Slug = c.Name
		}
		c.Slug = slug.Make(c.Slug)
		if c.Parent != "" {
			c.Parent = slug.Make(c.Parent)
		}
	}
	for i := range f.Resources {
		r := &f.Resources[i]
		r.Title = strings.TrimSpace(r.Title)
		if r.ID == "" {
			r.ID = r.Title
		}
		r.ID = slug.Make(r.ID)
		r.Category = slug.Make(r.Category)
		r.Tags = model.Tags(r.Tags).Normalize()
	}
}

func (f *File) validate() error {
	var errs []error

	slugs := make(map[string]bool, len(f.Categories))
	for i, c := range f.Categories {
		switch {
		case c.Name == "":
			errs = append(errs, fmt.Errorf("seed: category %d: name is required", i))
		case c.Slug == "":
			errs = append(errs, fmt.Errorf("seed: category %q: name yields an empty slug", c.Name))
		case slugs[c.Slug]:
			errs = append(errs, fmt.Errorf("seed: category %q: duplicate slug %q", c.Name, c.Slug))
		}
		slugs[c.Slug] = true
	}
	for _, c := range f.Categories {
		if c.Parent != "" && !slugs[c.Parent] {
			errs = append(errs, fmt.Errorf("seed: category %q: unknown parent %q", c.Name, c.Parent))
		}
	}

	ids := make(map[string]bool, len(f.Resources))
	for i, r := range f.Resources {
		label := r.Title
		if label == "" {
			label = fmt.Sprintf("#%d", i)
		}
		if r.Title == "" {
			errs = append(errs, fmt.Errorf("seed: resource %s: title is required", label))
		}
		if !strings.HasPrefix(r.URL, "http://") && !strings.HasPrefix(r.URL, "https://") {
			errs = append(errs, fmt.Errorf("seed: resource %s: url must be http(s)", label))
		}
		if !slugs[r.Category] {
			errs = append(errs, fmt.Errorf("seed: resource %s: unknown category %q", label, r.Category))
		}
		if r.ID != "" && ids[r.ID] {
			errs = append(errs, fmt.Errorf("seed: resource %s: duplicate id %q", label, r.ID))
		}
		ids[r.ID] = true
	}

	return errors.Join(errs...)
}

// Apply upserts the file's contents. Parents are written before their
// children so the parent ID is known.
func Apply(ctx context.Context, store Store, f *File, logger *slog.Logger) (Stats, error) {
	var stats Stats
	ids := make(map[string]string, len(f.Categories))

	roots, children := lo.FilterReject(f.Categories, func(c Category, _ int) bool { return c.Parent == "" })
	pending := append(roots, children...)

	// Parents may be nested; loop until every category is placed.
	for len(pending) > 0 {
		var next []Category
		for _, c := range pending {
			var parentID *string
			if c.Parent != "" {
				id, ok := ids[c.Parent]
				if !ok {
					next = append(next, c)
					continue
				}
				parentID = &id
			}

			cat := &model.Category{
				Name:        c.Name,
				Slug:        c.Slug,
				Description: c.Description,
				Color:       c.Color,
				Icon:        c.Icon,
				ParentID:    parentID,
			}
			if err := store.UpsertCategory(ctx, cat); err != nil {
				return stats, fmt.Errorf("seed: category %q: %w", c.Slug, err)
			}
			ids[c.Slug] = cat.ID
			stats.Categories++
		}
		if len(next) == len(pending) {
			return stats, fmt.Errorf("seed: categories %v form a parent cycle",
				lo.Map(next, func(c Category, _ int) string { return c.Slug }))
		}
		pending = next
	}

	now := time.Now().UTC()
	for _, r := range f.Resources {
		added := r.DateAdded
		if added.IsZero() {
			added = now
		}
		res := &model.Resource{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			URL:         r.URL,
			Image:       r.Image,
			CategoryID:  ids[r.Category],
			Tags:        r.Tags,
			Featured:    r.Featured,
			DateAdded:   added,
		}
		if err := store.UpsertResource(ctx, res); err != nil {
			return stats, fmt.Errorf("seed: resource %q: %w", r.ID, err)
		}
		stats.Resources++
	}

	logger.Info("seed applied",
		slog.Int("categories", stats.Categories),
		slog.Int("resources", stats.Resources),
	)
	return stats, nil
}
