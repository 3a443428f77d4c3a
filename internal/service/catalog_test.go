package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/model"
)

func newTestCatalog(t *testing.T, analytics *fakeAnalyticsRepo) (*CatalogService, *catalog.Store, *fakeLoader) {
	t.Helper()
	loader := sampleCatalog()
	store := catalog.NewStore(loader, 10*time.Millisecond, discardLogger())
	t.Cleanup(store.Close)
	require.NoError(t, store.Refresh(context.Background()))
	if analytics == nil {
		analytics = &fakeAnalyticsRepo{}
	}
	return NewCatalogService(store, analytics, discardLogger()), store, loader
}

func TestCatalogService_ListCategories(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)

	list := svc.ListCategories(context.Background())

	assert.Equal(t, 3, list.Total)
	require.Len(t, list.Categories, 3)
	counts := map[string]int{}
	for _, c := range list.Categories {
		counts[c.Slug] = c.ResourceCount
	}
	assert.Equal(t, map[string]int{"react": 2, "vue": 1, "svelte": 0}, counts)
}

func TestCatalogService_GetCategory(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)
	ctx := context.Background()

	c, err := svc.GetCategory(ctx, "vue")
	require.NoError(t, err)
	assert.Equal(t, "c-vue", c.ID)

	_, err = svc.GetCategory(ctx, "angular")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))

	_, err = svc.GetCategory(ctx, "  ")
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCatalogService_QueryResources(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		q    catalog.Query
		want []string
	}{
		{"all", catalog.Query{Category: "all"}, []string{"r1", "r2", "r3"}},
		{"by slug", catalog.Query{Category: "react"}, []string{"r1", "r3"}},
		{"by slug and text", catalog.Query{Category: "react", Text: "hooks"}, []string{"r1"}},
		{"unknown slug", catalog.Query{Category: "angular"}, []string{}},
		{"tags are normalised", catalog.Query{Tags: []string{" Testing "}}, []string{"r3"}},
		{"featured first", catalog.Query{FeaturedFirst: true}, []string{"r2", "r3", "r1"}},
		{"limit", catalog.Query{Limit: 1}, []string{"r1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.QueryResources(ctx, tt.q)
			require.NoError(t, err)

			ids := make([]string, 0, len(res.Resources))
			for _, r := range res.Resources {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.want, ids)
			assert.Equal(t, len(tt.want), res.Total)
			assert.Equal(t, 3, res.Counts[model.AllCategories], "counts cover the whole catalog")
		})
	}
}

func TestCatalogService_QueryResources_Validation(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)
	ctx := context.Background()

	_, err := svc.QueryResources(ctx, catalog.Query{Text: strings.Repeat("x", MaxQueryLength+1)})
	assert.True(t, errors.Is(err, apperror.ErrValidation))

	_, err = svc.QueryResources(ctx, catalog.Query{Limit: -1})
	assert.True(t, errors.Is(err, apperror.ErrValidation))
}

func TestCatalogService_FeaturedResources(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)

	featured := svc.FeaturedResources(context.Background(), 10)

	require.Len(t, featured, 2)
	for _, r := range featured {
		assert.True(t, r.Featured)
	}
}

func TestCatalogService_GetResource(t *testing.T) {
	svc, _, _ := newTestCatalog(t, nil)
	ctx := context.Background()

	got, err := svc.GetResource(ctx, "r2")
	require.NoError(t, err)
	assert.Equal(t, "Vue Router", got.Resource.Title)
	require.NotNil(t, got.Category)
	assert.Equal(t, "vue", got.Category.Slug)

	_, err = svc.GetResource(ctx, "nope")
	assert.True(t, errors.Is(err, apperror.ErrNotFound))
}

func TestCatalogService_RecordEvent(t *testing.T) {
	t.Run("counted event refreshes the catalog", func(t *testing.T) {
		analytics := &fakeAnalyticsRepo{counted: true}
		svc, _, loader := newTestCatalog(t, analytics)
		before := loader.loadCount()

		counted, err := svc.RecordEvent(context.Background(), &model.ResourceEvent{ResourceID: "r1", Kind: model.EventClick})
		require.NoError(t, err)
		assert.True(t, counted)

		assert.Eventually(t, func() bool { return loader.loadCount() > before },
			time.Second, 5*time.Millisecond)
	})

	t.Run("duplicate view does not refresh", func(t *testing.T) {
		analytics := &fakeAnalyticsRepo{counted: false}
		svc, _, loader := newTestCatalog(t, analytics)
		before := loader.loadCount()

		counted, err := svc.RecordEvent(context.Background(), &model.ResourceEvent{ResourceID: "r1", Kind: model.EventView})
		require.NoError(t, err)
		assert.False(t, counted)

		time.Sleep(50 * time.Millisecond)
		assert.Equal(t, before, loader.loadCount())
	})

	t.Run("unknown kind", func(t *testing.T) {
		svc, _, _ := newTestCatalog(t, nil)

		_, err := svc.RecordEvent(context.Background(), &model.ResourceEvent{ResourceID: "r1", Kind: "like"})
		assert.True(t, errors.Is(err, apperror.ErrValidation))
	})

	t.Run("source is truncated", func(t *testing.T) {
		analytics := &fakeAnalyticsRepo{counted: true}
		svc, _, _ := newTestCatalog(t, analytics)

		_, err := svc.RecordEvent(context.Background(), &model.ResourceEvent{
			ResourceID: "r1", Kind: model.EventClick, Source: strings.Repeat("s", 100),
		})
		require.NoError(t, err)
		require.Len(t, analytics.events, 1)
		assert.Len(t, analytics.events[0].Source, MaxEventSourceSize)
	})
}
