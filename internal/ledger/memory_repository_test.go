package ledger

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepositoryInsertIfAbsent(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, NewAccount("a@x.com")))
	assert.ErrorIs(t, repo.Create(ctx, NewAccount("a@x.com")), ErrAlreadyExists)

	_, err := repo.Get(ctx, "nobody@x.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepositoryVersionConflict(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, NewAccount("a@x.com")))

	first, err := repo.Get(ctx, "a@x.com")
	require.NoError(t, err)
	second, err := repo.Get(ctx, "a@x.com")
	require.NoError(t, err)

	first.Cash = decimal.NewFromInt(500)
	require.NoError(t, repo.Update(ctx, first))
	assert.Equal(t, int64(1), first.Version)

	// The second reader holds a stale version and must lose.
	second.Cash = decimal.NewFromInt(999)
	assert.ErrorIs(t, repo.Update(ctx, second), ErrVersionConflict)

	stored, err := repo.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, stored.Cash.Equal(decimal.NewFromInt(500)))
}

func TestMemoryRepositoryHandsOutCopies(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	ctx := context.Background()

	account := NewAccount("a@x.com")
	account.Positions["AAPL"] = 5
	require.NoError(t, repo.Create(ctx, account))

	got, err := repo.Get(ctx, "a@x.com")
	require.NoError(t, err)
	got.Positions["AAPL"] = 999
	got.Cash = decimal.Zero

	stored, err := repo.Get(ctx, "a@x.com")
	require.NoError(t, err)
	assert.Equal(t, int64(5), stored.Positions["AAPL"])
	assert.True(t, stored.Cash.Equal(DefaultCash))
}

func TestMemoryRepositoryUpdateMissing(t *testing.T) {
	t.Parallel()

	repo := NewMemoryRepository()
	assert.ErrorIs(t, repo.Update(context.Background(), NewAccount("a@x.com")), ErrNotFound)
}
