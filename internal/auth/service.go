package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/notify"
	"github.com/papertrade/api/internal/user"
)

var (
	ErrEmailRequired      = errors.New("email is required")
	ErrInvalidEmailFormat = errors.New("invalid email format")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrNotVerified        = errors.New("account not verified")
	ErrInvalidCode        = errors.New("invalid or expired code")
)

// Service handles signup, code verification and login.
type Service struct {
	users    user.Repository
	codes    CodeRepository
	tokens   TokenService
	sender   notify.Sender
	logger   *logging.Logger
	tokenTTL time.Duration
	codeTTL  time.Duration
}

func NewService(
	users user.Repository,
	codes CodeRepository,
	tokens TokenService,
	sender notify.Sender,
	logger *logging.Logger,
	tokenTTL time.Duration,
	codeTTL time.Duration,
) *Service {
	return &Service{
		users:    users,
		codes:    codes,
		tokens:   tokens,
		sender:   sender,
		logger:   logger,
		tokenTTL: tokenTTL,
		codeTTL:  codeTTL,
	}
}

// NormalizeEmail canonicalizes an email address for use as a store key.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Signup creates an unverified credential and issues a one-time code. Code
// delivery runs in the background; a delivery failure is logged but never
// fails the signup.
func (s *Service) Signup(ctx context.Context, email, password string) error {
	email = NormalizeEmail(email)
	if err := validateEmail(email); err != nil {
		return err
	}
	if password == "" {
		return ErrPasswordRequired
	}

	passwordHash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	newUser := &user.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: passwordHash,
		Verified:     false,
		CreatedAt:    time.Now(),
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		if errors.Is(err, user.ErrDuplicateEmail) {
			return user.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate code: %w", err)
	}

	// Overwrites any prior unconsumed code for this email.
	err = s.codes.Upsert(ctx, &Code{
		Email:     email,
		Value:     code,
		ExpiresAt: time.Now().Add(s.codeTTL),
	})
	if err != nil {
		return fmt.Errorf("failed to store code: %w", err)
	}

	go func() {
		// Fresh context: delivery must outlive the request.
		if err := s.sender.SendCode(context.Background(), email, code); err != nil {
			s.logger.Warn("failed to deliver one-time code", "email", email, "error", err)
		}
	}()

	return nil
}

// Verify consumes a one-time code, marks the credential verified and returns
// a session token.
func (s *Service) Verify(ctx context.Context, email, code string) (string, error) {
	email = NormalizeEmail(email)
	code = strings.TrimSpace(code)

	rec, err := s.codes.Get(ctx, email)
	if err != nil {
		if errors.Is(err, ErrCodeNotFound) {
			return "", ErrInvalidCode
		}
		return "", fmt.Errorf("failed to get code: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(rec.Value), []byte(code)) != 1 || rec.Expired(time.Now()) {
		return "", ErrInvalidCode
	}

	if err := s.users.MarkVerified(ctx, email); err != nil {
		if errors.Is(err, user.ErrNotFound) {
			// Defensive: signup creates the credential before the code.
			return "", user.ErrNotFound
		}
		return "", fmt.Errorf("failed to mark user verified: %w", err)
	}

	if err := s.codes.Delete(ctx, email); err != nil {
		// The code is expendable once verified; worst case it expires on its own.
		s.logger.Warn("failed to delete consumed code", "email", email, "error", err)
	}

	token, err := s.tokens.Issue(email, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

// Login authenticates a verified credential and returns a session token.
func (s *Service) Login(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", fmt.Errorf("failed to get user: %w", err)
	}

	if !VerifyPassword(u.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	if !u.Verified {
		return "", ErrNotVerified
	}

	token, err := s.tokens.Issue(email, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("failed to issue token: %w", err)
	}
	return token, nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 254 {
		return ErrInvalidEmailFormat
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ErrInvalidEmailFormat
	}
	return nil
}

// generateCode returns a random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
