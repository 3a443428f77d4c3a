package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/code-resources/internal/auth"
	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/middleware"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/service"
)

// CatalogHandler serves categories and resources, and records resource
// views and clicks.
type CatalogHandler struct {
	catalog *service.CatalogService
	logger  *slog.Logger
}

func NewCatalogHandler(svc *service.CatalogService, logger *slog.Logger) *CatalogHandler {
	return &CatalogHandler{catalog: svc, logger: logger}
}

// HandleListCategories returns every category with its resource count.
//
// HTTP: GET /api/categories
func (h *CatalogHandler) HandleListCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.catalog.ListCategories(r.Context()))
}

// HandleGetCategory returns one category.
//
// HTTP: GET /api/categories/{slug}
func (h *CatalogHandler) HandleGetCategory(w http.ResponseWriter, r *http.Request) {
	category, err := h.catalog.GetCategory(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, category)
}

// HandleListResources filters the catalog.
//
// HTTP: GET /api/resources?category=react&q=hooks&featured=true&tags=a,b&featured_first=true&limit=20
//
// The response always carries the per-category counts, which do not depend
// on the filter, so the sidebar can be redrawn from any response.
func (h *CatalogHandler) HandleListResources(w http.ResponseWriter, r *http.Request) {
	q := catalog.Query{
		Category: r.URL.Query().Get("category"),
		Text:     r.URL.Query().Get("q"),
		Tags:     queryList(r, "tags"),
	}

	var err error
	if q.Featured, err = queryBool(r, "featured"); err != nil {
		writeError(w, h.logger, err)
		return
	}
	featuredFirst, err := queryBool(r, "featured_first")
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	q.FeaturedFirst = featuredFirst != nil && *featuredFirst
	if q.Limit, err = queryInt(r, "limit", 0); err != nil {
		writeError(w, h.logger, err)
		return
	}

	result, err := h.catalog.QueryResources(r.Context(), q)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// HandleGetResource returns a resource with its category.
//
// HTTP: GET /api/resources/{id}
func (h *CatalogHandler) HandleGetResource(w http.ResponseWriter, r *http.Request) {
	res, err := h.catalog.GetResource(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

type eventResponse struct {
	Counted bool `json:"counted"`
}

type clickRequest struct {
	Source string `json:"source"`
}

// HandleRecordView counts a view of a resource.
//
// HTTP: POST /api/resources/{id}/view
func (h *CatalogHandler) HandleRecordView(w http.ResponseWriter, r *http.Request) {
	h.recordEvent(w, r, model.EventView, "")
}

// HandleRecordClick counts an outbound click. The body is optional.
//
// HTTP: POST /api/resources/{id}/click
// REQUEST BODY: {"source": "home"}
func (h *CatalogHandler) HandleRecordClick(w http.ResponseWriter, r *http.Request) {
	var req clickRequest
	if err := decodeOptionalJSON(w, r, &req); err != nil {
		writeError(w, h.logger, err)
		return
	}
	h.recordEvent(w, r, model.EventClick, req.Source)
}

func (h *CatalogHandler) recordEvent(w http.ResponseWriter, r *http.Request, kind model.EventKind, source string) {
	event := &model.ResourceEvent{
		ResourceID: chi.URLParam(r, "id"),
		Kind:       kind,
		ClientIP:   middleware.ClientIP(r),
		Source:     source,
		OccurredAt: time.Now().UTC(),
	}
	if userID, ok := auth.UserIDFromContext(r.Context()); ok {
		event.UserID = &userID
	}

	counted, err := h.catalog.RecordEvent(r.Context(), event)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, eventResponse{Counted: counted})
}
