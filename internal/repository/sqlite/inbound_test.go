package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
)

func TestSubscribe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	sub := &model.NewsletterSubscription{Email: "reader@example.com", Token: "tok-1"}
	if err := db.Subscribe(ctx, sub); err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if sub.ID == "" || sub.CreatedAt.IsZero() {
		t.Errorf("Subscribe() did not fill ID/CreatedAt: %+v", sub)
	}

	err := db.Subscribe(ctx, &model.NewsletterSubscription{Email: "reader@example.com", Token: "tok-2"})
	if !errors.Is(err, apperror.ErrConflict) {
		t.Errorf("duplicate Subscribe() error = %v, want ErrConflict", err)
	}
}

func TestUnsubscribe(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	if err := db.Subscribe(ctx, &model.NewsletterSubscription{Email: "a@example.com", Token: "tok"}); err != nil {
		t.Fatal(err)
	}

	if err := db.Unsubscribe(ctx, "tok"); err != nil {
		t.Fatalf("Unsubscribe() error = %v", err)
	}
	if err := db.Unsubscribe(ctx, "tok"); !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("second Unsubscribe() error = %v, want ErrNotFound", err)
	}

	// The address can subscribe again once removed.
	if err := db.Subscribe(ctx, &model.NewsletterSubscription{Email: "a@example.com", Token: "tok-new"}); err != nil {
		t.Errorf("re-Subscribe() error = %v", err)
	}
}

func TestCreateContactMessage(t *testing.T) {
	db := newTestDB(t)

	msg := &model.ContactMessage{Name: "Sam", Email: "sam@example.com", Message: "Hello"}
	if err := db.CreateContactMessage(context.Background(), msg); err != nil {
		t.Fatalf("CreateContactMessage() error = %v", err)
	}
	if msg.ID == "" {
		t.Error("CreateContactMessage() did not set ID")
	}

	var count int
	if err := db.conn.Get(&count, `SELECT COUNT(*) FROM contact_messages`); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("stored %d messages, want 1", count)
	}
}
