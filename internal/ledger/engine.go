package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/pricing"
	"github.com/papertrade/api/internal/storage"
)

var (
	ErrInvalidTrade       = errors.New("invalid trade")
	ErrInsufficientFunds  = errors.New("insufficient cash")
	ErrInsufficientShares = errors.New("insufficient shares")
)

// casRetries bounds the reload-and-retry loop for version conflicts caused by
// writers in other processes. In-process writers are already serialized by the
// per-owner lock, so a retry here is rare.
const casRetries = 3

// Engine is the sole authority for mutating accounts. It serializes
// read-modify-write cycles per owner and prices trades through the oracle.
type Engine struct {
	repo   Repository
	oracle pricing.Oracle
	logger *logging.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewEngine(repo Repository, oracle pricing.Oracle, logger *logging.Logger) *Engine {
	return &Engine{
		repo:   repo,
		oracle: oracle,
		logger: logger,
		locks:  make(map[string]*sync.Mutex),
	}
}

// Account returns the owner's account, creating the default-funded record on
// first access. Creation is idempotent under concurrency: the store's
// insert-if-absent guarantees at most one record per owner.
func (e *Engine) Account(ctx context.Context, owner string) (*Account, error) {
	account, err := e.repo.Get(ctx, owner)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	fresh := NewAccount(owner)
	if err := e.repo.Create(ctx, fresh); err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			// Lost the race; the winner's record is authoritative.
			return e.repo.Get(ctx, owner)
		}
		return nil, err
	}

	e.logger.Info("account created", "owner", owner)
	return fresh, nil
}

// ExecuteTrade validates and applies a buy or sell, persisting the full
// account in one atomic write. A rejected trade leaves the stored account
// completely unchanged. Returns the updated account and the executed price.
func (e *Engine) ExecuteTrade(ctx context.Context, owner, symbol string, side Side, shares int64) (*Account, decimal.Decimal, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))
	if symbol == "" || shares <= 0 {
		return nil, decimal.Decimal{}, ErrInvalidTrade
	}
	if side != SideBuy && side != SideSell {
		return nil, decimal.Decimal{}, ErrInvalidTrade
	}

	// Resolved once so the whole trade executes at a single price.
	price := e.oracle.PriceFor(symbol)

	lock := e.ownerLock(owner)
	lock.Lock()
	defer lock.Unlock()

	for attempt := 0; attempt < casRetries; attempt++ {
		account, err := e.Account(ctx, owner)
		if err != nil {
			return nil, decimal.Decimal{}, err
		}

		if err := applyTrade(account, symbol, side, shares, price); err != nil {
			return nil, decimal.Decimal{}, err
		}

		err = e.repo.Update(ctx, account)
		if err == nil {
			e.logger.Info("trade executed",
				"owner", owner,
				"symbol", symbol,
				"side", string(side),
				"shares", shares,
				"price", price.String(),
			)
			return account, price, nil
		}
		if !errors.Is(err, ErrVersionConflict) {
			return nil, decimal.Decimal{}, err
		}
		// A writer in another process won the race; reload and retry.
	}

	return nil, decimal.Decimal{}, storage.Unavailable(
		fmt.Sprintf("trade for %s", owner), ErrVersionConflict)
}

// applyTrade mutates the given account copy in place. Validation failures
// return before any mutation reaches the store.
func applyTrade(account *Account, symbol string, side Side, shares int64, price decimal.Decimal) error {
	amount := price.Mul(decimal.NewFromInt(shares))

	switch side {
	case SideBuy:
		if account.Cash.LessThan(amount) {
			return ErrInsufficientFunds
		}
		account.Cash = account.Cash.Sub(amount)
		account.Positions[symbol] += shares
	case SideSell:
		held := account.Positions[symbol]
		if held < shares {
			return ErrInsufficientShares
		}
		account.Positions[symbol] = held - shares
		account.Cash = account.Cash.Add(amount)
	}

	return nil
}

// ownerLock returns the mutex serializing trades for an owner. Entries are
// never evicted; the table is bounded by the number of distinct owners seen
// by this process.
func (e *Engine) ownerLock(owner string) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()

	lock, ok := e.locks[owner]
	if !ok {
		lock = &sync.Mutex{}
		e.locks[owner] = lock
	}
	return lock
}
