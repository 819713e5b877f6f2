package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/mwhitfield/labserver/internal/domain/model"
	"github.com/mwhitfield/labserver/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.LoginStore = (*LoginRepo)(nil)

// LoginRepo is the SQLite implementation of the LoginStore port. The
// login_history table is append-only; the timestamp column defaults to
// CURRENT_TIMESTAMP so the store assigns it at write time.
type LoginRepo struct {
	db *DB
}

// NewLoginRepo creates a new LoginRepo.
func NewLoginRepo(db *DB) *LoginRepo {
	return &LoginRepo{db: db}
}

// Append records one login event. Name may be empty; it is stored as NULL.
func (r *LoginRepo) Append(ctx context.Context, event model.LoginEvent) error {
	const query = `INSERT INTO login_history (email, name) VALUES (?, ?)`

	var name any
	if event.Name != "" {
		name = event.Name
	}

	if _, err := r.db.Writer.ExecContext(ctx, query, event.Email, name); err != nil {
		return fmt.Errorf("append login for %q: %w", event.Email, err)
	}
	return nil
}

// ListRecent returns up to limit events, newest first.
func (r *LoginRepo) ListRecent(ctx context.Context, limit int) ([]model.LoginEvent, error) {
	const query = `SELECT email, name, timestamp FROM login_history ORDER BY timestamp DESC, rowid DESC LIMIT ?`

	rows, err := r.db.Reader.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list login history: %w", err)
	}
	defer rows.Close()

	var events []model.LoginEvent
	for rows.Next() {
		var event model.LoginEvent
		var name sql.NullString
		var ts string
		if err := rows.Scan(&event.Email, &name, &ts); err != nil {
			return nil, fmt.Errorf("scan login event: %w", err)
		}
		event.Name = name.String

		event.Timestamp, err = parseTime(ts)
		if err != nil {
			return nil, fmt.Errorf("parse timestamp for %q: %w", event.Email, err)
		}

		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate login history: %w", err)
	}

	return events, nil
}

// parseTime parses the timestamp formats SQLite emits for DATETIME columns.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format %q", s)
}
