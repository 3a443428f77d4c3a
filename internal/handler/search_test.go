package handler_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/code-resources/internal/search"
)

func TestSearchHandler(t *testing.T) {
	env := newTestEnv(t, nil)

	t.Run("ranked hits", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/search?q=hooks", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		res := decode[search.Result](t, rec)
		require.Len(t, res.Hits, 1)
		assert.Equal(t, env.hooks.ID, res.Hits[0].ID)
		assert.Equal(t, search.DocTypeResource, res.Hits[0].Type)
	})

	t.Run("unknown category matches nothing", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/search?q=hooks&category=angular", "", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decode[search.Result](t, rec).Hits)
	})

	t.Run("invalid type", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/search?q=hooks&type=video", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("invalid offset", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/search?offset=x", "", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
