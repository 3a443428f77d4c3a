package model

import "time"

// Snippet is a stored, reusable code sample.
//
// UserID is nil for snippets created before ownership existed (or seeded
// ones); those can be read by anyone but edited by nobody.
type Snippet struct {
	ID          string    `json:"id"               db:"id"`
	Title       string    `json:"title"            db:"title"`
	Description string    `json:"description"      db:"description"`
	Language    string    `json:"language"         db:"language"`
	Code        string    `json:"code"             db:"code"`
	Tags        Tags      `json:"tags"             db:"tags"`
	UserID      *string   `json:"userId,omitempty" db:"user_id"`
	CreatedAt   time.Time `json:"createdAt"        db:"created_at"`
	UpdatedAt   time.Time `json:"updatedAt"        db:"updated_at"`
}

// OwnedBy reports whether the snippet belongs to the given user.
func (s *Snippet) OwnedBy(userID string) bool {
	return s.UserID != nil && userID != "" && *s.UserID == userID
}
