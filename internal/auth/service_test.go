package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/user"
)

// captureSender records delivered codes instead of sending them.
type captureSender struct {
	mu    sync.Mutex
	codes map[string]string
}

func newCaptureSender() *captureSender {
	return &captureSender{codes: make(map[string]string)}
}

func (s *captureSender) SendCode(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[email] = code
	return nil
}

func (s *captureSender) codeFor(email string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[email]
}

type serviceFixture struct {
	service *Service
	users   *user.MemoryRepository
	codes   *MemoryCodeRepository
	sender  *captureSender
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	users := user.NewMemoryRepository()
	codes := NewMemoryCodeRepository()
	sender := newCaptureSender()
	service := NewService(
		users,
		codes,
		NewJWTService(testSecret),
		sender,
		logging.NewLogger(true),
		7*24*time.Hour,
		10*time.Minute,
	)

	return &serviceFixture{service: service, users: users, codes: codes, sender: sender}
}

// storedCode reads the live one-time code straight from the store; the upsert
// happens before Signup returns, so no waiting is needed.
func (f *serviceFixture) storedCode(t *testing.T, email string) string {
	t.Helper()

	rec, err := f.codes.Get(context.Background(), email)
	require.NoError(t, err)
	return rec.Value
}

func TestSignupCreatesUnverifiedUserAndCode(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "  A@X.com ", "password"))

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", u.Email)
	assert.False(t, u.Verified)
	assert.NotEqual(t, "password", u.PasswordHash)

	code := f.storedCode(t, "a@x.com")
	assert.Len(t, code, 6)

	// Delivery runs in a goroutine; wait for the sender to see the same code.
	assert.Eventually(t, func() bool {
		return f.sender.codeFor("a@x.com") == code
	}, time.Second, 10*time.Millisecond)
}

func TestSignupDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))

	// The normalized form collides with the first signup.
	err := f.service.Signup(ctx, "A@X.COM", "other-password")
	assert.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestSignupValidation(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	assert.ErrorIs(t, f.service.Signup(ctx, "", "password"), ErrEmailRequired)
	assert.ErrorIs(t, f.service.Signup(ctx, "not-an-email", "password"), ErrInvalidEmailFormat)
	assert.ErrorIs(t, f.service.Signup(ctx, "a@x.com", ""), ErrPasswordRequired)
}

func TestVerifyWrongCode(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))

	_, err := f.service.Verify(ctx, "a@x.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidCode)

	_, err = f.service.Verify(ctx, "nobody@x.com", "123456")
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyExpiredCode(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))

	// Age the stored code past its expiry instant.
	rec, err := f.codes.Get(ctx, "a@x.com")
	require.NoError(t, err)
	rec.ExpiresAt = time.Now().Add(-time.Second)
	require.NoError(t, f.codes.Upsert(ctx, rec))

	_, err = f.service.Verify(ctx, "a@x.com", rec.Value)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestVerifyMarksUserAndIssuesToken(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))
	code := f.storedCode(t, "a@x.com")

	token, err := f.service.Verify(ctx, "a@x.com", code)
	require.NoError(t, err)

	subject, err := NewJWTService(testSecret).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)

	u, err := f.users.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, u.Verified)

	// The code is consumed; a replay fails.
	_, err = f.service.Verify(ctx, "a@x.com", code)
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestLoginBeforeVerification(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))

	_, err := f.service.Login(ctx, "a@x.com", "password")
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestLoginAfterVerification(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))
	_, err := f.service.Verify(ctx, "a@x.com", f.storedCode(t, "a@x.com"))
	require.NoError(t, err)

	token, err := f.service.Login(ctx, "A@X.com", "password")
	require.NoError(t, err)

	subject, err := NewJWTService(testSecret).Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestLoginInvalidCredentials(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))
	_, err := f.service.Verify(ctx, "a@x.com", f.storedCode(t, "a@x.com"))
	require.NoError(t, err)

	_, err = f.service.Login(ctx, "a@x.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = f.service.Login(ctx, "nobody@x.com", "password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignupOverwritesPriorCode(t *testing.T) {
	t.Parallel()

	f := newServiceFixture(t)
	ctx := context.Background()

	// A second signup for the same email fails, but a code overwrite for a
	// different email never disturbs an existing one.
	require.NoError(t, f.service.Signup(ctx, "a@x.com", "password"))
	first := f.storedCode(t, "a@x.com")

	require.NoError(t, f.codes.Upsert(ctx, &Code{
		Email:     "a@x.com",
		Value:     "999999",
		ExpiresAt: time.Now().Add(10 * time.Minute),
	}))

	_, err := f.service.Verify(ctx, "a@x.com", first)
	assert.ErrorIs(t, err, ErrInvalidCode, "stale code accepted after overwrite")

	_, err = f.service.Verify(ctx, "a@x.com", "999999")
	assert.NoError(t, err)
}

func TestPasswordHashRoundTrip(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)

	assert.True(t, VerifyPassword(hash, "correct horse battery staple"))
	assert.False(t, VerifyPassword(hash, "wrong"))
	assert.False(t, VerifyPassword("not-a-hash", "anything"))

	// Salts are random, so two hashes of the same password differ.
	other, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, hash, other)
}
