package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sakif/code-resources/internal/debounce"
	"github.com/sakif/code-resources/internal/model"
)

// Loader reads the full catalog from storage. The sqlite repository
// implements it.
type Loader interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	ListAllResources(ctx context.Context) ([]model.Resource, error)
}

// Snapshot is an immutable view of the catalog. Never modify its slices;
// Store replaces the whole snapshot on refresh.
type Snapshot struct {
	Categories []model.Category
	Resources  []model.Resource
	LoadedAt   time.Time

	slugs  map[string]string
	counts map[string]int
}

// NewSnapshot indexes the given categories and resources.
func NewSnapshot(categories []model.Category, resources []model.Resource, loadedAt time.Time) *Snapshot {
	if categories == nil {
		categories = []model.Category{}
	}
	if resources == nil {
		resources = []model.Resource{}
	}
	return &Snapshot{
		Categories: categories,
		Resources:  resources,
		LoadedAt:   loadedAt,
		slugs:      SlugIndex(categories),
		counts:     CountByCategory(resources, categories),
	}
}

// Result is the output of Snapshot.Query.
type Result struct {
	Resources []model.Resource `json:"resources"`
	Total     int              `json:"total"`
	Counts    map[string]int   `json:"counts"`
}

// Query runs the filter pipeline against the snapshot.
func (s *Snapshot) Query(q Query) Result {
	resources := Filter(s.Resources, s.slugs, q)
	return Result{
		Resources: resources,
		Total:     len(resources),
		Counts:    s.Counts(),
	}
}

// Counts returns a copy of the per-category counts.
func (s *Snapshot) Counts() map[string]int {
	out := make(map[string]int, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out
}

// CategoryBySlug looks a category up by slug.
func (s *Snapshot) CategoryBySlug(slug string) (*model.Category, bool) {
	id, ok := s.slugs[slug]
	if !ok {
		return nil, false
	}
	return s.CategoryByID(id)
}

// CategoryByID looks a category up by ID.
func (s *Snapshot) CategoryByID(id string) (*model.Category, bool) {
	for i := range s.Categories {
		if s.Categories[i].ID == id {
			c := s.Categories[i]
			return &c, true
		}
	}
	return nil, false
}

// ResourceByID looks a resource up by ID.
func (s *Snapshot) ResourceByID(id string) (*model.Resource, bool) {
	for i := range s.Resources {
		if s.Resources[i].ID == id {
			r := s.Resources[i]
			return &r, true
		}
	}
	return nil, false
}

// ErrStale is returned by Refresh when a newer refresh already published
// its snapshot.
var ErrStale = errors.New("catalog: refresh superseded by a newer one")

// Store owns the current catalog snapshot.
//
// Refresh may run concurrently (a scheduled refresh racing a debounced one).
// Each refresh takes a ticket before loading; only a ticket newer than the
// last published one may replace the snapshot.
type Store struct {
	loader  Loader
	logger  *slog.Logger
	timeout time.Duration

	current atomic.Pointer[Snapshot]
	seq     debounce.Sequence
	publish sync.Mutex

	refresher *debounce.Debouncer[struct{}]

	hooksMu sync.RWMutex
	hooks   []func(*Snapshot)
}

// NewStore creates a Store holding an empty snapshot. Invalidate calls are
// coalesced over delay.
func NewStore(loader Loader, delay time.Duration, logger *slog.Logger) *Store {
	s := &Store{
		loader:  loader,
		logger:  logger,
		timeout: 30 * time.Second,
	}
	s.current.Store(NewSnapshot(nil, nil, time.Time{}))
	s.refresher = debounce.New(delay, func(struct{}) {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.Refresh(ctx); err != nil && !errors.Is(err, ErrStale) {
			s.logger.Error("debounced catalog refresh failed", slog.String("error", err.Error()))
		}
	})
	return s
}

// Snapshot returns the current snapshot. It is safe to hold on to.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// OnRefresh registers fn to run after every published snapshot.
func (s *Store) OnRefresh(fn func(*Snapshot)) {
	s.hooksMu.Lock()
	defer s.hooksMu.Unlock()
	s.hooks = append(s.hooks, fn)
}

// Refresh loads the catalog and publishes it. On failure the previous
// snapshot stays in place.
func (s *Store) Refresh(ctx context.Context) error {
	ticket := s.seq.Next()

	categories, err := s.loader.ListCategories(ctx)
	if err != nil {
		return fmt.Errorf("catalog: loading categories: %w", err)
	}
	resources, err := s.loader.ListAllResources(ctx)
	if err != nil {
		return fmt.Errorf("catalog: loading resources: %w", err)
	}
	snap := NewSnapshot(categories, resources, time.Now())

	s.publish.Lock()
	if !s.seq.Commit(ticket) {
		s.publish.Unlock()
		s.logger.Debug("discarding stale catalog snapshot", slog.Uint64("ticket", uint64(ticket)))
		return ErrStale
	}
	s.current.Store(snap)
	s.publish.Unlock()

	s.logger.Info("catalog refreshed",
		slog.Int("categories", len(snap.Categories)),
		slog.Int("resources", len(snap.Resources)),
	)

	s.hooksMu.RLock()
	hooks := append([]func(*Snapshot){}, s.hooks...)
	s.hooksMu.RUnlock()
	for _, fn := range hooks {
		fn(snap)
	}
	return nil
}

// Invalidate schedules a debounced refresh.
func (s *Store) Invalidate() {
	s.refresher.Call(struct{}{})
}

// Close cancels a pending debounced refresh. Later Invalidate calls are ignored.
func (s *Store) Close() {
	s.refresher.Close()
}
