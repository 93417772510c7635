package ledger

import (
	"context"
	"errors"
)

var (
	ErrNotFound        = errors.New("account not found")
	ErrAlreadyExists   = errors.New("account already exists")
	ErrVersionConflict = errors.New("account version conflict")
)

// Repository persists accounts.
//
// Create is an atomic insert-if-absent: concurrent first access for the same
// owner yields exactly one stored record, the loser gets ErrAlreadyExists.
// Update is a compare-and-swap on Account.Version: it persists the full record
// in one atomic write and bumps the version, or fails with ErrVersionConflict
// when the stored version moved.
type Repository interface {
	Get(ctx context.Context, owner string) (*Account, error)
	Create(ctx context.Context, account *Account) error
	Update(ctx context.Context, account *Account) error
}
