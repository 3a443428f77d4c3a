package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

var (
	_ repository.NewsletterRepository = (*DB)(nil)
	_ repository.ContactRepository    = (*DB)(nil)
)

// Subscribe stores a newsletter subscription.
// A second subscription for the same email is a conflict.
func (db *DB) Subscribe(ctx context.Context, sub *model.NewsletterSubscription) error {
	sub.ID = xid.New().String()
	sub.CreatedAt = time.Now()

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO newsletter_subscriptions (id, email, token, created_at)
		VALUES (:id, :email, :token, :created_at)`,
		sub,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "this email is already subscribed", Field: "email"}
		}
		return fmt.Errorf("sqlite: creating subscription: %w", err)
	}
	return nil
}

// Unsubscribe deletes the subscription holding token.
func (db *DB) Unsubscribe(ctx context.Context, token string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM newsletter_subscriptions WHERE token = ?`, token)
	if err != nil {
		return fmt.Errorf("sqlite: deleting subscription: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if n == 0 {
		return apperror.NotFound("subscription", token)
	}
	return nil
}

// CreateContactMessage stores a message from the contact form.
func (db *DB) CreateContactMessage(ctx context.Context, msg *model.ContactMessage) error {
	msg.ID = xid.New().String()
	msg.CreatedAt = time.Now()

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO contact_messages (id, name, email, subject, message, created_at)
		VALUES (:id, :name, :email, :subject, :message, :created_at)`,
		msg,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating contact message: %w", err)
	}
	return nil
}
