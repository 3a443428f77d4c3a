package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/search"
)

// HealthHandler reports liveness plus a little state useful when debugging
// a deployment.
type HealthHandler struct {
	store  *catalog.Store
	index  *search.Index
	logger *slog.Logger
}

func NewHealthHandler(store *catalog.Store, index *search.Index, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{store: store, index: index, logger: logger}
}

type healthResponse struct {
	Status          string     `json:"status"`
	Resources       int        `json:"resources"`
	CatalogLoadedAt *time.Time `json:"catalogLoadedAt,omitempty"`
	IndexedDocs     uint64     `json:"indexedDocs"`
}

// HandleHealth always answers 200 while the process is serving.
//
// HTTP: GET /healthz
func (h *HealthHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.store.Snapshot()
	resp := healthResponse{
		Status:    "ok",
		Resources: len(snap.Resources),
	}
	if !snap.LoadedAt.IsZero() {
		loaded := snap.LoadedAt
		resp.CatalogLoadedAt = &loaded
	}
	if n, err := h.index.DocCount(); err == nil {
		resp.IndexedDocs = n
	} else {
		h.logger.Warn("health: reading index size", slog.String("error", err.Error()))
	}
	writeJSON(w, http.StatusOK, resp)
}
