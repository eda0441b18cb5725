// Package repository stores per-client explorer sessions.
package repository

import (
	"context"

	"github.com/okian/burden/internal/domain/model"
)

// Store provides read/write access to sessions.
type Store interface {
	// Get returns the session with id, or ErrNotFound.
	Get(ctx context.Context, id string) (model.Session, error)
	// Put creates or replaces a session.
	Put(ctx context.Context, s model.Session) error
	// Delete removes a session. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
	// Count returns the number of sessions currently held.
	Count(ctx context.Context) int
}
