// Package driven defines secondary port interfaces for external adapters.
package driven

import (
	"context"

	"github.com/mwhitfield/labserver/internal/domain/model"
)

// LoginStore defines the driven port for the append-only login history.
// There is deliberately no update or delete operation.
type LoginStore interface {
	// Append records a login event. The store assigns the timestamp.
	Append(ctx context.Context, event model.LoginEvent) error

	// ListRecent returns up to limit events, newest first.
	ListRecent(ctx context.Context, limit int) ([]model.LoginEvent, error)
}
