package ledger

import "github.com/shopspring/decimal"

// Side is the direction of a trade.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
)

// ParseSide parses a request-supplied side value.
func ParseSide(s string) (Side, bool) {
	switch Side(s) {
	case SideBuy, SideSell:
		return Side(s), true
	default:
		return "", false
	}
}

// DefaultCash is the starting balance of a freshly created account.
var DefaultCash = decimal.NewFromInt(100000)

// Account is a user's paper-trading ledger: cash plus per-symbol share counts.
// Invariants: cash is never negative and every position count is non-negative.
// Accounts are mutated only through the Engine.
type Account struct {
	Owner     string           `json:"owner"`
	Cash      decimal.Decimal  `json:"cash"`
	Positions map[string]int64 `json:"positions"`

	// Version is the optimistic-concurrency counter used by Repository.Update.
	// Not part of the API surface.
	Version int64 `json:"-"`
}

// NewAccount returns the default-funded account for an owner.
func NewAccount(owner string) *Account {
	return &Account{
		Owner:     owner,
		Cash:      DefaultCash,
		Positions: make(map[string]int64),
	}
}

// Clone returns a deep copy. Repositories hand out clones so callers can never
// alias stored state.
func (a *Account) Clone() *Account {
	positions := make(map[string]int64, len(a.Positions))
	for symbol, shares := range a.Positions {
		positions[symbol] = shares
	}
	return &Account{
		Owner:     a.Owner,
		Cash:      a.Cash,
		Positions: positions,
		Version:   a.Version,
	}
}
