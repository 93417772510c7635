package auth

import (
	"context"
	"errors"
	"time"
)

var ErrCodeNotFound = errors.New("one-time code not found")

// Code is a short-lived verification code keyed by email. A new signup for the
// same email overwrites any live code.
type Code struct {
	Email     string    `bson:"_id"`
	Value     string    `bson:"code"`
	ExpiresAt time.Time `bson:"expires_at"`
}

// Expired reports whether the code is past its expiry instant.
func (c *Code) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CodeRepository persists one-time codes. Upsert replaces any existing code
// for the same email in one atomic write.
type CodeRepository interface {
	Upsert(ctx context.Context, code *Code) error
	Get(ctx context.Context, email string) (*Code, error)
	Delete(ctx context.Context, email string) error
}
