package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

const (
	MaxSnippetTitleLength = 100
	MaxCodeLength         = 100000
	MaxSnippetTags        = 10
	DefaultListLimit      = 20
	MaxListLimit          = 100
)

// SupportedLanguages lists the languages a snippet may be written in.
var SupportedLanguages = []string{
	"bash", "c", "cpp", "csharp", "css", "go", "html", "java", "javascript",
	"json", "kotlin", "php", "python", "ruby", "rust", "sql", "swift",
	"typescript", "yaml",
}

// SnippetInput carries the editable fields of a snippet.
type SnippetInput struct {
	Title       string
	Description string
	Language    string
	Code        string
	Tags        []string
}

// SnippetService holds the snippet business rules: validation, ownership,
// and notifying listeners when the set of snippets changes.
type SnippetService struct {
	repo   repository.SnippetRepository
	logger *slog.Logger

	mu       sync.RWMutex
	onChange []func()
}

func NewSnippetService(repo repository.SnippetRepository, logger *slog.Logger) *SnippetService {
	return &SnippetService{
		repo:   repo,
		logger: logger,
	}
}

// OnChange registers fn to run after every create, update or delete.
func (s *SnippetService) OnChange(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *SnippetService) changed() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.onChange {
		fn()
	}
}

// normalize trims the input and checks it against the snippet rules.
func (in *SnippetInput) normalize() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.Language = strings.ToLower(strings.TrimSpace(in.Language))
	in.Tags = model.Tags(in.Tags).Normalize()

	if in.Title == "" {
		return apperror.ValidationFailed("title", "snippet title is required")
	}
	if len(in.Title) > MaxSnippetTitleLength {
		return apperror.ValidationFailed("title",
			fmt.Sprintf("snippet title must be %d characters or less", MaxSnippetTitleLength))
	}
	if in.Language == "" {
		return apperror.ValidationFailed("language", "language is required")
	}
	if !lo.Contains(SupportedLanguages, in.Language) {
		return apperror.ValidationFailed("language",
			fmt.Sprintf("unsupported language %q", in.Language))
	}
	if len(in.Code) > MaxCodeLength {
		return apperror.ValidationFailed("code",
			fmt.Sprintf("code must be %d bytes or less", MaxCodeLength))
	}
	if len(in.Tags) > MaxSnippetTags {
		return apperror.ValidationFailed("tags",
			fmt.Sprintf("at most %d tags are allowed", MaxSnippetTags))
	}
	return nil
}

// Create stores a new snippet owned by ownerID.
func (s *SnippetService) Create(ctx context.Context, ownerID string, in SnippetInput) (*model.Snippet, error) {
	if ownerID == "" {
		return nil, apperror.Unauthorized("sign in to save snippets")
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	snippet := &model.Snippet{
		Title:       in.Title,
		Description: in.Description,
		Language:    in.Language,
		Code:        in.Code,
		Tags:        in.Tags,
		UserID:      &ownerID,
	}

	if err := s.repo.Create(ctx, snippet); err != nil {
		s.logger.Error("failed to create snippet",
			slog.String("title", in.Title),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("creating snippet: %w", err)
	}

	s.logger.Info("snippet created",
		slog.String("id", snippet.ID),
		slog.String("language", snippet.Language),
	)
	s.changed()

	return snippet, nil
}

// GetByID returns a snippet. Snippets are public.
func (s *SnippetService) GetByID(ctx context.Context, id string) (*model.Snippet, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperror.ValidationFailed("id", "snippet ID is required")
	}

	return s.repo.GetByID(ctx, id)
}

// List returns a page of snippets, optionally restricted to one language.
func (s *SnippetService) List(ctx context.Context, opts repository.ListOptions) ([]model.Snippet, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}
	opts.Language = strings.ToLower(strings.TrimSpace(opts.Language))
	if opts.Language != "" && !lo.Contains(SupportedLanguages, opts.Language) {
		return nil, apperror.ValidationFailed("language",
			fmt.Sprintf("unsupported language %q", opts.Language))
	}

	snippets, err := s.repo.List(ctx, opts)
	if err != nil {
		s.logger.Error("failed to list snippets", slog.String("error", err.Error()))
		return nil, fmt.Errorf("listing snippets: %w", err)
	}

	return snippets, nil
}

// loadOwned fetches a snippet and checks that userID may modify it.
func (s *SnippetService) loadOwned(ctx context.Context, userID, id string) (*model.Snippet, error) {
	if userID == "" {
		return nil, apperror.Unauthorized("sign in to modify snippets")
	}
	snippet, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !snippet.OwnedBy(userID) {
		return nil, apperror.Forbidden("you can only modify your own snippets")
	}
	return snippet, nil
}

// Update replaces the editable fields of a snippet owned by userID.
func (s *SnippetService) Update(ctx context.Context, userID, id string, in SnippetInput) (*model.Snippet, error) {
	snippet, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if err := in.normalize(); err != nil {
		return nil, err
	}

	snippet.Title = in.Title
	snippet.Description = in.Description
	snippet.Language = in.Language
	snippet.Code = in.Code
	snippet.Tags = in.Tags

	if err := s.repo.Update(ctx, snippet); err != nil {
		s.logger.Error("failed to update snippet",
			slog.String("id", snippet.ID),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("updating snippet: %w", err)
	}

	s.logger.Info("snippet updated", slog.String("id", snippet.ID))
	s.changed()

	return snippet, nil
}

// Delete removes a snippet owned by userID.
func (s *SnippetService) Delete(ctx context.Context, userID, id string) error {
	snippet, err := s.loadOwned(ctx, userID, id)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, snippet.ID); err != nil {
		return err
	}

	s.logger.Info("snippet deleted", slog.String("id", snippet.ID))
	s.changed()
	return nil
}
