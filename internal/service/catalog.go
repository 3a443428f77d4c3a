package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

const (
	MaxQueryLength     = 200
	MaxResourcesLimit  = 500
	MaxEventSourceSize = 64
)

// CategoryWithCount is a category plus the number of resources in it.
type CategoryWithCount struct {
	model.Category
	ResourceCount int `json:"resourceCount"`
}

// CategoryList is the category sidebar: every category with its count,
// plus the total for the "all" selection.
type CategoryList struct {
	Categories []CategoryWithCount `json:"categories"`
	Total      int                 `json:"total"`
}

// CatalogService answers catalog reads from the in-memory snapshot and
// records analytics events against the database.
type CatalogService struct {
	store     *catalog.Store
	analytics repository.AnalyticsRepository
	logger    *slog.Logger
}

func NewCatalogService(store *catalog.Store, analytics repository.AnalyticsRepository, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		store:     store,
		analytics: analytics,
		logger:    logger,
	}
}

// ListCategories returns every category with its resource count.
func (s *CatalogService) ListCategories(_ context.Context) CategoryList {
	snap := s.store.Snapshot()
	counts := snap.Counts()

	list := CategoryList{
		Categories: make([]CategoryWithCount, 0, len(snap.Categories)),
		Total:      counts[model.AllCategories],
	}
	for _, c := range snap.Categories {
		list.Categories = append(list.Categories, CategoryWithCount{
			Category:      c,
			ResourceCount: counts[c.Slug],
		})
	}
	return list
}

// GetCategory returns the category with the given slug.
func (s *CatalogService) GetCategory(_ context.Context, slug string) (*model.Category, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, apperror.ValidationFailed("slug", "category slug is required")
	}

	c, ok := s.store.Snapshot().CategoryBySlug(slug)
	if !ok {
		return nil, apperror.NotFound("category", slug)
	}
	return c, nil
}

// QueryResources filters the catalog. An unknown category selection yields
// an empty result rather than an error.
func (s *CatalogService) QueryResources(_ context.Context, q catalog.Query) (catalog.Result, error) {
	if len(q.Text) > MaxQueryLength {
		return catalog.Result{}, apperror.ValidationFailed("q",
			"search query is too long")
	}
	if q.Limit < 0 {
		return catalog.Result{}, apperror.ValidationFailed("limit", "limit must not be negative")
	}
	if q.Limit > MaxResourcesLimit {
		q.Limit = MaxResourcesLimit
	}
	q.Tags = model.Tags(q.Tags).Normalize()

	return s.store.Snapshot().Query(q), nil
}

// FeaturedResources returns up to limit featured resources, newest first.
func (s *CatalogService) FeaturedResources(ctx context.Context, limit int) []model.Resource {
	featured := true
	res, _ := s.QueryResources(ctx, catalog.Query{Featured: &featured, Limit: limit})
	return res.Resources
}

// GetResource returns a resource together with its category.
func (s *CatalogService) GetResource(_ context.Context, id string) (*model.ResourceWithCategory, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "resource ID is required")
	}

	snap := s.store.Snapshot()
	r, ok := snap.ResourceByID(id)
	if !ok {
		return nil, apperror.NotFound("resource", id)
	}
	c, _ := snap.CategoryByID(r.CategoryID)
	return &model.ResourceWithCategory{Resource: r, Category: c}, nil
}

// RecordEvent counts a view or click. It reports whether the event was
// counted; repeat views from the same client are not. Counted events
// schedule a catalog refresh so the new totals show up.
func (s *CatalogService) RecordEvent(ctx context.Context, event *model.ResourceEvent) (bool, error) {
	if event.ResourceID == "" {
		return false, apperror.ValidationFailed("id", "resource ID is required")
	}
	if event.Kind != model.EventView && event.Kind != model.EventClick {
		return false, apperror.ValidationFailed("kind", "event must be a view or a click")
	}
	if len(event.Source) > MaxEventSourceSize {
		event.Source = event.Source[:MaxEventSourceSize]
	}

	counted, err := s.analytics.RecordEvent(ctx, event)
	if err != nil {
		return false, err
	}

	if counted {
		s.logger.Debug("resource event recorded",
			slog.String("resource_id", event.ResourceID),
			slog.String("kind", string(event.Kind)),
		)
		s.store.Invalidate()
	}
	return counted, nil
}
