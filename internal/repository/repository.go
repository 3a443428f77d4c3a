// Package repository declares the storage contracts the services depend on.
// The sqlite subpackage is the only implementation; tests use hand-written fakes.
package repository

import (
	"context"
	"time"

	"github.com/sakif/code-resources/internal/model"
)

// ListOptions controls pagination and filtering for snippet listings.
type ListOptions struct {
	Limit    int
	Offset   int
	Language string
	UserID   string
}

type CategoryRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	UpsertCategory(ctx context.Context, category *model.Category) error
}

type ResourceRepository interface {
	// ListAllResources returns every resource, newest first.
	ListAllResources(ctx context.Context) ([]model.Resource, error)
	UpsertResource(ctx context.Context, resource *model.Resource) error
}

type SnippetRepository interface {
	Create(ctx context.Context, snippet *model.Snippet) error
	GetByID(ctx context.Context, id string) (*model.Snippet, error)
	List(ctx context.Context, opts ListOptions) ([]model.Snippet, error)
	ListAllSnippets(ctx context.Context) ([]model.Snippet, error)
	Update(ctx context.Context, snippet *model.Snippet) error
	Delete(ctx context.Context, id string) error
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	// UpsertGitHubUser creates or refreshes the account linked to user.GitHubID.
	UpsertGitHubUser(ctx context.Context, user *model.User) error
}

type NewsletterRepository interface {
	Subscribe(ctx context.Context, sub *model.NewsletterSubscription) error
	Unsubscribe(ctx context.Context, token string) error
}

type ContactRepository interface {
	CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error
}

type AnalyticsRepository interface {
	// RecordEvent stores the event and bumps the resource counter. It reports
	// false when the event was a duplicate view and nothing was counted.
	RecordEvent(ctx context.Context, event *model.ResourceEvent) (bool, error)
	PruneEvents(ctx context.Context, before time.Time) (int64, error)
}
