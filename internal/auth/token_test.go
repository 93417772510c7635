package auth

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func TestTokenRoundTrip(t *testing.T) {
	t.Parallel()

	svc := NewJWTService(testSecret)

	token, err := svc.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	subject, err := svc.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", subject)
}

func TestTokenExpired(t *testing.T) {
	t.Parallel()

	svc := NewJWTService(testSecret)

	token, err := svc.Issue("a@x.com", -1*time.Second)
	require.NoError(t, err)

	_, err = svc.Verify(token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenTampered(t *testing.T) {
	t.Parallel()

	svc := NewJWTService(testSecret)

	token, err := svc.Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	// Alter one character in the middle of each segment.
	segments := strings.Split(token, ".")
	require.Len(t, segments, 3)

	offset := 0
	for _, segment := range segments {
		pos := offset + len(segment)/2
		tampered := []byte(token)
		if tampered[pos] == 'A' {
			tampered[pos] = 'B'
		} else {
			tampered[pos] = 'A'
		}

		_, err := svc.Verify(string(tampered))
		assert.ErrorIs(t, err, ErrInvalidToken, "altered segment accepted")

		offset += len(segment) + 1
	}
}

func TestTokenWrongSecret(t *testing.T) {
	t.Parallel()

	token, err := NewJWTService(testSecret).Issue("a@x.com", time.Hour)
	require.NoError(t, err)

	_, err = NewJWTService([]byte("another-secret-another-secret-00")).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenMalformed(t *testing.T) {
	t.Parallel()

	svc := NewJWTService(testSecret)

	for _, tok := range []string{"", "garbage", "a.b", "a.b.c", "...."} {
		_, err := svc.Verify(tok)
		assert.Error(t, err, "token %q accepted", tok)
	}
}
