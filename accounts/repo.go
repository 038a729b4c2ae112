package accounts

import (
	"context"
	"errors"
)

var (
	// ErrNotFound is returned when no account exists for a username.
	ErrNotFound = errors.New("account not found")

	// ErrDuplicateAccount is returned by Create when the username is already
	// taken. Implementations must surface this from the write itself (unique
	// constraint), not from a racy read-then-write check.
	ErrDuplicateAccount = errors.New("account already exists")
)

// Repo persists accounts keyed by unique username.
type Repo interface {
	// FindByUsername returns the account or ErrNotFound.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// Create stores a new account. Returns ErrDuplicateAccount if the
	// username is already present.
	Create(ctx context.Context, account *Account) error

	// UpdateToken atomically replaces the stored credential token.
	// Returns ErrNotFound if the username is absent.
	UpdateToken(ctx context.Context, username, token string) error
}
