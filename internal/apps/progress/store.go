package progress

import (
	"context"
	"errors"
)

var ErrUserNotFound = errors.New("user not found")

// MutateFunc edits a loaded record in place. Returning an error aborts the
// mutation and nothing is saved.
type MutateFunc func(p *UserProgress) error

// Store persists one UserProgress per user.
type Store interface {
	// Find returns a copy of the user's record or ErrUserNotFound.
	Find(ctx context.Context, userID string) (*UserProgress, error)

	// Mutate loads the user's record, applies fn and saves the whole record as
	// one atomic read-modify-write. It returns the saved record.
	Mutate(ctx context.Context, userID string, fn MutateFunc) (*UserProgress, error)

	// Create provisions a default record. Existing records are left untouched.
	Create(ctx context.Context, userID string) error
}
