package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

// Hand-written in-memory repositories. Each stores copies so callers cannot
// mutate the fake's state through returned pointers.

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type fakeSnippetRepo struct {
	mu       sync.Mutex
	snippets map[string]*model.Snippet
	nextID   int
	err      error
}

func newFakeSnippetRepo() *fakeSnippetRepo {
	return &fakeSnippetRepo{snippets: make(map[string]*model.Snippet)}
}

var _ repository.SnippetRepository = (*fakeSnippetRepo)(nil)

func (m *fakeSnippetRepo) Create(_ context.Context, snippet *model.Snippet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.nextID++
	snippet.ID = fmt.Sprintf("snip-%d", m.nextID)
	snippet.CreatedAt = time.Now()
	snippet.UpdatedAt = snippet.CreatedAt
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *fakeSnippetRepo) GetByID(_ context.Context, id string) (*model.Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.snippets[id]
	if !ok {
		return nil, apperror.NotFound("snippet", id)
	}
	out := *s
	return &out, nil
}

func (m *fakeSnippetRepo) List(_ context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []model.Snippet{}
	for _, s := range m.snippets {
		if opts.Language != "" && s.Language != opts.Language {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if opts.Offset >= len(out) {
		return []model.Snippet{}, nil
	}
	out = out[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *fakeSnippetRepo) ListAllSnippets(ctx context.Context) ([]model.Snippet, error) {
	return m.List(ctx, repository.ListOptions{})
}

func (m *fakeSnippetRepo) Update(_ context.Context, snippet *model.Snippet) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snippets[snippet.ID]; !ok {
		return apperror.NotFound("snippet", snippet.ID)
	}
	snippet.UpdatedAt = time.Now()
	stored := *snippet
	m.snippets[snippet.ID] = &stored
	return nil
}

func (m *fakeSnippetRepo) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.snippets[id]; !ok {
		return apperror.NotFound("snippet", id)
	}
	delete(m.snippets, id)
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	users  map[string]*model.User
	nextID int
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)

func (m *fakeUserRepo) CreateUser(_ context.Context, user *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if user.Email != "" && u.Email == user.Email {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "email taken", Field: "email"}
		}
	}
	m.nextID++
	user.ID = fmt.Sprintf("user-%d", m.nextID)
	stored := *user
	m.users[user.ID] = &stored
	return nil
}

func (m *fakeUserRepo) GetUserByID(_ context.Context, id string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperror.NotFound("user", id)
	}
	out := *u
	return &out, nil
}

func (m *fakeUserRepo) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			out := *u
			return &out, nil
		}
	}
	return nil, apperror.NotFound("user", email)
}

func (m *fakeUserRepo) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	m.mu.Lock()
	for id, u := range m.users {
		if u.GitHubID != nil && user.GitHubID != nil && *u.GitHubID == *user.GitHubID {
			user.ID = id
			stored := *user
			m.users[id] = &stored
			m.mu.Unlock()
			return nil
		}
	}
	m.mu.Unlock()
	return m.CreateUser(ctx, user)
}

type fakeNewsletterRepo struct {
	mu   sync.Mutex
	subs map[string]model.NewsletterSubscription // by token
}

func newFakeNewsletterRepo() *fakeNewsletterRepo {
	return &fakeNewsletterRepo{subs: make(map[string]model.NewsletterSubscription)}
}

func (m *fakeNewsletterRepo) Subscribe(_ context.Context, sub *model.NewsletterSubscription) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.subs {
		if s.Email == sub.Email {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "already subscribed", Field: "email"}
		}
	}
	sub.ID = fmt.Sprintf("sub-%d", len(m.subs)+1)
	m.subs[sub.Token] = *sub
	return nil
}

func (m *fakeNewsletterRepo) Unsubscribe(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.subs[token]; !ok {
		return apperror.NotFound("subscription", token)
	}
	delete(m.subs, token)
	return nil
}

type fakeContactRepo struct {
	messages []model.ContactMessage
}

func (m *fakeContactRepo) CreateContactMessage(_ context.Context, msg *model.ContactMessage) error {
	msg.ID = fmt.Sprintf("msg-%d", len(m.messages)+1)
	m.messages = append(m.messages, *msg)
	return nil
}

type fakeAnalyticsRepo struct {
	mu      sync.Mutex
	events  []model.ResourceEvent
	counted bool
	err     error
}

func (m *fakeAnalyticsRepo) RecordEvent(_ context.Context, event *model.ResourceEvent) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	m.events = append(m.events, *event)
	return m.counted, nil
}

func (m *fakeAnalyticsRepo) PruneEvents(_ context.Context, before time.Time) (int64, error) {
	return 0, nil
}

// fakeLoader serves a fixed catalog to catalog.Store.
type fakeLoader struct {
	mu         sync.Mutex
	categories []model.Category
	resources  []model.Resource
	loads      int
}

func (f *fakeLoader) ListCategories(context.Context) ([]model.Category, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	return append([]model.Category(nil), f.categories...), nil
}

func (f *fakeLoader) ListAllResources(context.Context) ([]model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Resource(nil), f.resources...), nil
}

func (f *fakeLoader) loadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func sampleCatalog() *fakeLoader {
	return &fakeLoader{
		categories: []model.Category{
			{ID: "c-react", Name: "React", Slug: "react"},
			{ID: "c-vue", Name: "Vue", Slug: "vue"},
			{ID: "c-empty", Name: "Svelte", Slug: "svelte"},
		},
		resources: []model.Resource{
			{ID: "r1", Title: "React Hooks Guide", Description: "useState and friends", CategoryID: "c-react", Tags: model.Tags{"react", "hooks"}},
			{ID: "r2", Title: "Vue Router", Description: "Routing for Vue", CategoryID: "c-vue", Tags: model.Tags{"vue"}, Featured: true},
			{ID: "r3", Title: "React Testing Library", Description: "Test components", CategoryID: "c-react", Tags: model.Tags{"react", "testing"}, Featured: true},
		},
	}
}
