package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/catalog"
	"github.com/sakif/code-resources/internal/debounce"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/search"
)

const MaxSearchLimit = 50

// SnippetLister supplies every snippet for indexing.
type SnippetLister interface {
	ListAllSnippets(ctx context.Context) ([]model.Snippet, error)
}

// SearchQuery is a ranked search request. Category is a slug.
type SearchQuery struct {
	Text     string
	Type     string
	Category string
	Language string
	Limit    int
	Offset   int
}

// SearchService keeps the search index in step with the catalog and the
// snippets table and answers ranked queries.
type SearchService struct {
	index    *search.Index
	store    *catalog.Store
	snippets SnippetLister
	logger   *slog.Logger
	timeout  time.Duration

	seq       debounce.Sequence
	publish   sync.Mutex
	rebuilder *debounce.Debouncer[struct{}]
}

// errStaleIndex marks a rebuild that lost to a newer one.
var errStaleIndex = errors.New("search: rebuild superseded by a newer one")

// NewSearchService wires the index to its sources. Invalidate calls are
// coalesced over delay.
func NewSearchService(index *search.Index, store *catalog.Store, snippets SnippetLister, delay time.Duration, logger *slog.Logger) *SearchService {
	s := &SearchService{
		index:    index,
		store:    store,
		snippets: snippets,
		logger:   logger,
		timeout:  30 * time.Second,
	}
	s.rebuilder = debounce.New(delay, func(struct{}) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Rebuild(ctx); err != nil && !errors.Is(err, errStaleIndex) {
			s.logger.Error("debounced search rebuild failed", slog.String("error", err.Error()))
		}
	})
	return s
}

// Rebuild reindexes the current catalog snapshot and all snippets.
// A rebuild that started before a newer, already published one is dropped.
func (s *SearchService) Rebuild(ctx context.Context) error {
	ticket := s.seq.Next()

	snap := s.store.Snapshot()
	snippets, err := s.snippets.ListAllSnippets(ctx)
	if err != nil {
		return fmt.Errorf("search: loading snippets: %w", err)
	}

	docs := make([]*search.Document, 0, len(snap.Resources)+len(snippets))
	for i := range snap.Resources {
		docs = append(docs, search.ResourceDocument(&snap.Resources[i]))
	}
	for i := range snippets {
		docs = append(docs, search.SnippetDocument(&snippets[i]))
	}

	s.publish.Lock()
	defer s.publish.Unlock()
	if !s.seq.Commit(ticket) {
		return errStaleIndex
	}
	return s.index.Rebuild(docs)
}

// Invalidate schedules a debounced rebuild.
func (s *SearchService) Invalidate() {
	s.rebuilder.Call(struct{}{})
}

// Close cancels a pending rebuild. Later Invalidate calls are ignored.
func (s *SearchService) Close() {
	s.rebuilder.Close()
}

// Search runs a ranked query. An unknown category slug matches nothing.
func (s *SearchService) Search(ctx context.Context, q SearchQuery) (*search.Result, error) {
	q.Text = strings.TrimSpace(q.Text)
	if len(q.Text) > MaxQueryLength {
		return nil, apperror.ValidationFailed("q", "search query is too long")
	}

	docType := search.DocType(strings.ToLower(strings.TrimSpace(q.Type)))
	if docType != "" && !docType.Valid() {
		return nil, apperror.ValidationFailed("type", "type must be resource or snippet")
	}

	if q.Limit <= 0 {
		q.Limit = DefaultListLimit
	}
	if q.Limit > MaxSearchLimit {
		q.Limit = MaxSearchLimit
	}
	if q.Offset < 0 {
		return nil, apperror.ValidationFailed("offset", "offset must not be negative")
	}

	params := search.Params{
		Query:    q.Text,
		Type:     docType,
		Language: strings.ToLower(strings.TrimSpace(q.Language)),
		Limit:    q.Limit,
		Offset:   q.Offset,
	}

	if cat := strings.TrimSpace(q.Category); cat != "" && cat != model.AllCategories {
		c, ok := s.store.Snapshot().CategoryBySlug(cat)
		if !ok {
			return &search.Result{Query: q.Text, Hits: []search.Hit{}}, nil
		}
		params.CategoryID = c.ID
	}

	return s.index.Search(ctx, params)
}
