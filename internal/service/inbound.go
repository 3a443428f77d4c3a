package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
	"github.com/sakif/code-resources/internal/validation"
)

// NewsletterInput is the newsletter sign-up form.
type NewsletterInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// NewsletterService manages newsletter subscriptions.
type NewsletterService struct {
	repo     repository.NewsletterRepository
	validate *validation.Validator
	logger   *slog.Logger
}

func NewNewsletterService(repo repository.NewsletterRepository, validate *validation.Validator, logger *slog.Logger) *NewsletterService {
	return &NewsletterService{repo: repo, validate: validate, logger: logger}
}

// Subscribe adds an email address to the newsletter. The returned
// subscription carries the unsubscribe token.
func (s *NewsletterService) Subscribe(ctx context.Context, in NewsletterInput) (*model.NewsletterSubscription, error) {
	in.Email = normalizeEmail(in.Email)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	sub := &model.NewsletterSubscription{
		Email: in.Email,
		Token: uuid.NewString(),
	}
	if err := s.repo.Subscribe(ctx, sub); err != nil {
		return nil, err
	}

	s.logger.Info("newsletter subscription added", slog.String("id", sub.ID))
	return sub, nil
}

// Unsubscribe removes the subscription identified by token.
func (s *NewsletterService) Unsubscribe(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if err := uuid.Validate(token); err != nil {
		return apperror.ValidationFailed("token", "invalid unsubscribe token")
	}

	if err := s.repo.Unsubscribe(ctx, token); err != nil {
		return err
	}

	s.logger.Info("newsletter subscription removed")
	return nil
}

// ContactInput is the contact form.
type ContactInput struct {
	Name    string `json:"name"    validate:"required,max=100"`
	Email   string `json:"email"   validate:"required,email,max=254"`
	Subject string `json:"subject" validate:"max=200"`
	Message string `json:"message" validate:"required,min=10,max=5000"`
}

// ContactService stores messages from the contact page.
type ContactService struct {
	repo     repository.ContactRepository
	validate *validation.Validator
	logger   *slog.Logger
}

func NewContactService(repo repository.ContactRepository, validate *validation.Validator, logger *slog.Logger) *ContactService {
	return &ContactService{repo: repo, validate: validate, logger: logger}
}

// Submit validates and stores a contact message.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (*model.ContactMessage, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	in.Subject = strings.TrimSpace(in.Subject)
	in.Message = strings.TrimSpace(in.Message)
	if err := s.validate.Validate(in); err != nil {
		return nil, err
	}

	msg := &model.ContactMessage{
		Name:    in.Name,
		Email:   in.Email,
		Subject: in.Subject,
		Message: in.Message,
	}
	if err := s.repo.CreateContactMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("storing contact message: %w", err)
	}

	s.logger.Info("contact message received", slog.String("id", msg.ID))
	return msg, nil
}
