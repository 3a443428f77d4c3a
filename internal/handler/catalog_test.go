package handler_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/handler"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/service"
)

func TestCatalogHandler_ListCategories(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/categories", "", "")

	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[service.CategoryList](t, rec)
	assert.Equal(t, 2, list.Total)
	require.Len(t, list.Categories, 2)
	for _, c := range list.Categories {
		assert.Equal(t, 1, c.ResourceCount, c.Slug)
	}
}

func TestCatalogHandler_GetCategory(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/categories/react", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "React", decode[model.Category](t, rec).Name)

	rec = env.do(t, http.MethodGet, "/api/categories/angular", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decode[handler.ErrorResponse](t, rec).Error)
}

func TestCatalogHandler_ListResources(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name       string
		query      string
		wantStatus int
		wantTitles []string
	}{
		{"all", "", http.StatusOK, []string{"React Hooks", "Vue Basics"}},
		{"by category", "?category=vue", http.StatusOK, []string{"Vue Basics"}},
		{"by text", "?q=REACT", http.StatusOK, []string{"React Hooks"}},
		{"category and text disagree", "?category=vue&q=hooks", http.StatusOK, []string{}},
		{"unknown category", "?category=angular", http.StatusOK, []string{}},
		{"featured only", "?featured=true", http.StatusOK, []string{"React Hooks"}},
		{"by tag", "?tags=vue", http.StatusOK, []string{"Vue Basics"}},
		{"limit", "?limit=1", http.StatusOK, []string{"React Hooks"}},
		{"bad featured", "?featured=maybe", http.StatusBadRequest, nil},
		{"bad limit", "?limit=ten", http.StatusBadRequest, nil},
		{"negative limit", "?limit=-1", http.StatusBadRequest, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodGet, "/api/resources"+tt.query, "", "")
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantStatus != http.StatusOK {
				return
			}

			res := decode[catalog.Result](t, rec)
			titles := make([]string, 0, len(res.Resources))
			for _, r := range res.Resources {
				titles = append(titles, r.Title)
			}
			assert.Equal(t, tt.wantTitles, titles)
			assert.Equal(t, len(tt.wantTitles), res.Total)
			assert.Equal(t, 2, res.Counts[model.AllCategories], "counts ignore the filter")
		})
	}
}

func TestCatalogHandler_ValidationErrorShape(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/resources?featured=maybe", "", "")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	resp := decode[handler.ErrorResponse](t, rec)
	assert.Equal(t, "validation_error", resp.Error)
	assert.Contains(t, resp.Fields, "featured")
}

func TestCatalogHandler_GetResource(t *testing.T) {
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/resources/"+env.hooks.ID, "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[model.ResourceWithCategory](t, rec)
	assert.Equal(t, "React Hooks", got.Resource.Title)
	require.NotNil(t, got.Category)
	assert.Equal(t, "react", got.Category.Slug)

	rec = env.do(t, http.MethodGet, "/api/resources/missing", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCatalogHandler_RecordEvents(t *testing.T) {
	env := newTestEnv(t, nil)
	path := "/api/resources/" + env.hooks.ID

	type counted struct {
		Counted bool `json:"counted"`
	}

	rec := env.do(t, http.MethodPost, path+"/view", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[counted](t, rec).Counted)

	// Same client again within the window.
	rec = env.do(t, http.MethodPost, path+"/view", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[counted](t, rec).Counted)

	rec = env.do(t, http.MethodPost, path+"/click", `{"source":"home"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[counted](t, rec).Counted)

	rec = env.do(t, http.MethodPost, path+"/click", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(t, http.MethodPost, "/api/resources/missing/view", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Counted events schedule a debounced refresh of the snapshot.
	assert.Eventually(t, func() bool {
		r, ok := env.store.Snapshot().ResourceByID(env.hooks.ID)
		return ok && r.ViewsCount == 1 && r.ClicksCount == 2
	}, 2*time.Second, 20*time.Millisecond)
}

func TestCatalogHandler_RecordClickChunkedEmptyBody(t *testing.T) {
	env := newTestEnv(t, nil)

	// A non-strings.Reader body leaves ContentLength at -1, as with chunked uploads.
	req := httptest.NewRequest(http.MethodPost, "/api/resources/"+env.hooks.ID+"/click",
		io.NopCloser(strings.NewReader("")))
	require.Equal(t, int64(-1), req.ContentLength)
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/resources/"+env.hooks.ID+"/click",
		io.NopCloser(strings.NewReader(`{"source":`)))
	rec = httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
