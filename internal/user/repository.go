package user

import (
	"context"
	"errors"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

// Repository persists credential records. Create must be atomic with respect
// to the unique-email constraint so concurrent signups cannot both succeed.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	MarkVerified(ctx context.Context, email string) error
}
