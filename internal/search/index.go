// Package search provides full-text search over resources and snippets,
// backed by an in-memory bleve index that is rebuilt wholesale from the
// database.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

const batchSize = 500

// Index wraps a bleve index. All methods are safe for concurrent use;
// Rebuild swaps in a complete new index so searches never see a partial one.
type Index struct {
	mu     sync.RWMutex
	index  bleve.Index
	logger *slog.Logger
}

// NewIndex creates an empty index.
func NewIndex(logger *slog.Logger) (*Index, error) {
	idx, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("search: create index: %w", err)
	}
	return &Index{index: idx, logger: logger}, nil
}

// Rebuild indexes docs into a fresh index and replaces the current one.
// On error the current index is left in place.
func (s *Index) Rebuild(docs []*Document) error {
	fresh, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return fmt.Errorf("search: create index: %w", err)
	}

	for i := 0; i < len(docs); i += batchSize {
		end := min(i+batchSize, len(docs))

		batch := fresh.NewBatch()
		for _, doc := range docs[i:end] {
			if err := batch.Index(doc.key(), doc.toMap()); err != nil {
				fresh.Close()
				return fmt.Errorf("search: index %s: %w", doc.key(), err)
			}
		}
		if err := fresh.Batch(batch); err != nil {
			fresh.Close()
			return fmt.Errorf("search: apply batch: %w", err)
		}
	}

	s.mu.Lock()
	old := s.index
	s.index = fresh
	s.mu.Unlock()

	if err := old.Close(); err != nil {
		s.logger.Warn("closing replaced search index", "error", err)
	}

	s.logger.Debug("search index rebuilt", "documents", len(docs))
	return nil
}

// DocCount returns the number of indexed documents.
func (s *Index) DocCount() (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.index.DocCount()
}

// Close releases the index.
func (s *Index) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index.Close()
}

// Params configures a search.
type Params struct {
	Query      string
	Type       DocType // empty = all types
	CategoryID string
	Language   string
	Limit      int
	Offset     int
}

// Result is a page of ranked hits.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"tookMs"`
	Hits   []Hit  `json:"hits"`
}

// Hit is one matching document.
type Hit struct {
	ID         string   `json:"id"`
	Type       DocType  `json:"type"`
	Score      float64  `json:"score"`
	Title      string   `json:"title"`
	CategoryID string   `json:"categoryId,omitempty"`
	Language   string   `json:"language,omitempty"`
	Tags       []string `json:"tags,omitempty"`
}

// Search runs params against the index. Query terms are ANDed; an empty
// query matches every document that passes the filters.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	if params.Limit <= 0 {
		params.Limit = 20
	}
	if params.Offset < 0 {
		params.Offset = 0
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), params.Limit, params.Offset, false)
	req.Fields = []string{"id", "type", "title", "category_id", "language", "tags"}
	req.SortBy([]string{"-_score", "_id"})

	s.mu.RLock()
	res, err := s.index.SearchInContext(ctx, req)
	s.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("search: execute: %w", err)
	}

	result := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}

	for _, h := range res.Hits {
		hit := Hit{Score: h.Score}
		if v, ok := h.Fields["id"].(string); ok {
			hit.ID = v
		}
		if v, ok := h.Fields["type"].(string); ok {
			hit.Type = DocType(v)
		}
		if v, ok := h.Fields["title"].(string); ok {
			hit.Title = v
		}
		if v, ok := h.Fields["category_id"].(string); ok {
			hit.CategoryID = v
		}
		if v, ok := h.Fields["language"].(string); ok {
			hit.Language = v
		}
		hit.Tags = storedStrings(h.Fields["tags"])
		result.Hits = append(result.Hits, hit)
	}

	return result, nil
}

func buildQuery(params Params) query.Query {
	var must []query.Query

	if params.Query != "" {
		mq := bleve.NewMatchQuery(params.Query)
		mq.SetOperator(query.MatchQueryOperatorAnd)
		must = append(must, mq)
	}

	filter := func(field, value string) {
		if value == "" {
			return
		}
		tq := bleve.NewTermQuery(value)
		tq.SetField(field)
		must = append(must, tq)
	}
	filter("type", string(params.Type))
	filter("category_id", params.CategoryID)
	filter("language", params.Language)

	switch len(must) {
	case 0:
		return bleve.NewMatchAllQuery()
	case 1:
		return must[0]
	default:
		return bleve.NewConjunctionQuery(must...)
	}
}

// storedStrings normalises a stored multi-value field; bleve returns a
// single string when the array had one element.
func storedStrings(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}
