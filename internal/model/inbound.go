package model

import "time"

// NewsletterSubscription is one email address signed up for the newsletter.
// Token is handed back to the subscriber and is the only way to unsubscribe.
type NewsletterSubscription struct {
	ID        string    `json:"id"        db:"id"`
	Email     string    `json:"email"     db:"email"`
	Token     string    `json:"-"         db:"token"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ContactMessage is a message submitted through the contact page.
type ContactMessage struct {
	ID        string    `json:"id"                db:"id"`
	Name      string    `json:"name"              db:"name"`
	Email     string    `json:"email"             db:"email"`
	Subject   string    `json:"subject,omitempty" db:"subject"`
	Message   string    `json:"message"           db:"message"`
	CreatedAt time.Time `json:"createdAt"         db:"created_at"`
}
