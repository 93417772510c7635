package user

import (
	"context"
	"sync"
)

// MemoryRepository is the in-process fallback credential store.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by email
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.users[u.Email]; exists {
		return ErrDuplicateEmail
	}
	r.users[u.Email] = *u
	return nil
}

func (r *MemoryRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[email]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (r *MemoryRepository) MarkVerified(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[email]
	if !ok {
		return ErrNotFound
	}
	u.Verified = true
	r.users[email] = u
	return nil
}
