package notify

import "context"

// Sender delivers a one-time verification code to a user. Delivery is best
// effort: callers log failures but never fail the signup flow on them.
type Sender interface {
	SendCode(ctx context.Context, email, code string) error
}
