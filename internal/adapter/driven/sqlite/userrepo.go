package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mwhitfield/labserver/internal/domain/model"
	"github.com/mwhitfield/labserver/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.UserStore = (*UserRepo)(nil)

// UserRepo is the SQLite implementation of the UserStore port. It is driven
// by the offline admin CLI; the server's routes never read from it.
type UserRepo struct {
	db *DB
}

// NewUserRepo creates a new UserRepo.
func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// Upsert stores or replaces the user keyed by email. Last write wins.
func (r *UserRepo) Upsert(ctx context.Context, user model.User) error {
	const query = `INSERT OR REPLACE INTO users (email, password_hash, salt) VALUES (?, ?, ?)`

	if _, err := r.db.Writer.ExecContext(ctx, query, user.Email, user.PasswordHash, user.Salt); err != nil {
		return fmt.Errorf("upsert user %q: %w", user.Email, err)
	}
	return nil
}

// GetByEmail retrieves a user by email. Returns (nil, nil) when no row exists.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	const query = `SELECT email, password_hash, salt FROM users WHERE email = ?`

	var user model.User
	err := r.db.Reader.QueryRowContext(ctx, query, email).Scan(&user.Email, &user.PasswordHash, &user.Salt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user %q: %w", email, err)
	}
	return &user, nil
}

// ListEmails returns all registered emails, ordered alphabetically.
func (r *UserRepo) ListEmails(ctx context.Context) ([]string, error) {
	const query = `SELECT email FROM users ORDER BY email`

	rows, err := r.db.Reader.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var emails []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, fmt.Errorf("scan user email: %w", err)
		}
		emails = append(emails, email)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return emails, nil
}
