package pricing

import (
	"hash/fnv"

	"github.com/shopspring/decimal"
)

// Oracle resolves a trade price for a symbol. Implementations must be
// deterministic within a single call site so that a trade is priced exactly
// once.
type Oracle interface {
	PriceFor(symbol string) decimal.Decimal
}

// MockOracle derives a stable pseudo-price from the symbol itself.
// Prices fall in [100.0, 119.9] with one decimal place.
type MockOracle struct{}

func NewMockOracle() *MockOracle {
	return &MockOracle{}
}

func (MockOracle) PriceFor(symbol string) decimal.Decimal {
	base := decimal.NewFromInt(100)
	spread := decimal.NewFromInt(int64(hashSymbol(symbol) % 200)).Div(decimal.NewFromInt(10))
	return base.Add(spread)
}

// hashSymbol maps a symbol to a stable non-negative integer. FNV-1a keeps the
// mapping identical across processes and restarts, unlike runtime map hashes.
func hashSymbol(symbol string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return h.Sum32()
}
