package ledger

import (
	"context"
	"sync"
)

// MemoryRepository is the in-process fallback ledger store. All accounts are
// deep-copied on the way in and out so stored state is only ever mutated under
// the repository lock.
type MemoryRepository struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{accounts: make(map[string]*Account)}
}

func (r *MemoryRepository) Get(ctx context.Context, owner string) (*Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	account, ok := r.accounts[owner]
	if !ok {
		return nil, ErrNotFound
	}
	return account.Clone(), nil
}

func (r *MemoryRepository) Create(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.accounts[account.Owner]; exists {
		return ErrAlreadyExists
	}
	r.accounts[account.Owner] = account.Clone()
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, account *Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.accounts[account.Owner]
	if !ok {
		return ErrNotFound
	}
	if stored.Version != account.Version {
		return ErrVersionConflict
	}

	account.Version++
	r.accounts[account.Owner] = account.Clone()
	return nil
}
