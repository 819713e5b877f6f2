package driven

import (
	"context"

	"github.com/mwhitfield/labserver/internal/domain/model"
)

// UserStore defines the driven port for user credential persistence.
// It is managed by the offline admin CLI; the server's routes do not
// consult it in this version.
type UserStore interface {
	// Upsert stores or replaces the user keyed by email (last write wins).
	Upsert(ctx context.Context, user model.User) error

	// GetByEmail retrieves a user. Returns (nil, nil) when no row exists.
	GetByEmail(ctx context.Context, email string) (*model.User, error)

	// ListEmails returns all registered emails, ordered alphabetically.
	ListEmails(ctx context.Context) ([]string, error)
}
