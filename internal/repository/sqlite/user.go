package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/code-resources/internal/apperror"
	"github.com/sakif/code-resources/internal/model"
	"github.com/sakif/code-resources/internal/repository"
)

var _ repository.UserRepository = (*DB)(nil)

const userColumns = `id, email, name, avatar_url, github_id, password_hash, created_at, updated_at`

// CreateUser inserts an email/password account.
// Returns apperror.ErrConflict when the email is already registered.
func (db *DB) CreateUser(ctx context.Context, user *model.User) error {
	now := time.Now()
	user.ID = xid.New().String()
	user.CreatedAt = now
	user.UpdatedAt = now

	_, err := db.conn.NamedExecContext(ctx, `
		INSERT INTO users (id, email, name, avatar_url, github_id, password_hash, created_at, updated_at)
		VALUES (:id, :email, :name, :avatar_url, :github_id, :password_hash, :created_at, :updated_at)`,
		user,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return &apperror.AppError{Err: apperror.ErrConflict, Message: "an account with this email already exists", Field: "email"}
		}
		return fmt.Errorf("sqlite: creating user: %w", err)
	}
	return nil
}

// GetUserByID retrieves a user by their internal ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", id)
		}
		return nil, fmt.Errorf("sqlite: getting user %s: %w", id, err)
	}
	return &u, nil
}

// GetUserByEmail retrieves a user by email address.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := db.conn.GetContext(ctx, &u, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("user", email)
		}
		return nil, fmt.Errorf("sqlite: getting user by email: %w", err)
	}
	return &u, nil
}

// UpsertGitHubUser inserts or refreshes the user linked to user.GitHubID.
// An existing account keeps its internal ID and password hash.
func (db *DB) UpsertGitHubUser(ctx context.Context, user *model.User) error {
	if user.GitHubID == nil {
		return apperror.ValidationFailed("github_id", "github id is required")
	}

	var existing model.User
	err := db.conn.GetContext(ctx, &existing,
		`SELECT `+userColumns+` FROM users WHERE github_id = ?`, *user.GitHubID)
	switch {
	case err == nil:
		user.ID = existing.ID
		user.CreatedAt = existing.CreatedAt
		user.PasswordHash = existing.PasswordHash
		user.UpdatedAt = time.Now()
		_, err = db.conn.NamedExecContext(ctx, `
			UPDATE users SET email = :email, name = :name, avatar_url = :avatar_url, updated_at = :updated_at
			WHERE id = :id`,
			user,
		)
		if err != nil {
			return fmt.Errorf("sqlite: updating user %s: %w", user.ID, err)
		}
		return nil
	case errors.Is(err, sql.ErrNoRows):
		if err := db.CreateUser(ctx, user); err != nil {
			return err
		}
		return nil
	default:
		return fmt.Errorf("sqlite: looking up user by github_id %d: %w", *user.GitHubID, err)
	}
}
