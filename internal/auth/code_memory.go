package auth

import (
	"context"
	"sync"
)

// MemoryCodeRepository is the in-process fallback one-time-code store.
type MemoryCodeRepository struct {
	mu    sync.RWMutex
	codes map[string]Code
}

func NewMemoryCodeRepository() *MemoryCodeRepository {
	return &MemoryCodeRepository{codes: make(map[string]Code)}
}

func (r *MemoryCodeRepository) Upsert(ctx context.Context, code *Code) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.codes[code.Email] = *code
	return nil
}

func (r *MemoryCodeRepository) Get(ctx context.Context, email string) (*Code, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.codes[email]
	if !ok {
		return nil, ErrCodeNotFound
	}
	return &c, nil
}

func (r *MemoryCodeRepository) Delete(ctx context.Context, email string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.codes, email)
	return nil
}
