package handler

import (
	"log/slog"
	"net/http"

	"github.com/sakif/code-resources/internal/service"
)

// SearchHandler serves ranked full-text search over resources and snippets.
type SearchHandler struct {
	search *service.SearchService
	logger *slog.Logger
}

func NewSearchHandler(search *service.SearchService, logger *slog.Logger) *SearchHandler {
	return &SearchHandler{search: search, logger: logger}
}

// HandleSearch runs a ranked query.
//
// HTTP: GET /api/search?q=react+hooks&type=resource&category=react&language=go&limit=20&offset=0
func (h *SearchHandler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	q := service.SearchQuery{
		Text:     r.URL.Query().Get("q"),
		Type:     r.URL.Query().Get("type"),
		Category: r.URL.Query().Get("category"),
		Language: r.URL.Query().Get("language"),
	}

	var err error
	if q.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, h.logger, err)
		return
	}
	if q.Offset, err = queryInt(r, "offset", 0); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.search.Search(r.Context(), q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
