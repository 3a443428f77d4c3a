package model

import "time"

// User represents a registered account.
//
// Accounts come from two places: email/password sign-up, and GitHub OAuth.
// GitHubID is nil for email accounts; PasswordHash is empty for GitHub-only
// accounts. The hash is never serialised.
type User struct {
	ID           string    `json:"id"                  db:"id"`
	Email        string    `json:"email"               db:"email"`
	Name         string    `json:"name"                db:"name"`
	AvatarURL    string    `json:"avatarUrl,omitempty" db:"avatar_url"`
	GitHubID     *int64    `json:"githubId,omitempty"  db:"github_id"`
	PasswordHash string    `json:"-"                   db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt"           db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt"           db:"updated_at"`
}
