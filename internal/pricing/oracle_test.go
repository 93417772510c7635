package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockOracleDeterministic(t *testing.T) {
	t.Parallel()

	oracle := NewMockOracle()
	first := oracle.PriceFor("AAPL")
	for i := 0; i < 10; i++ {
		require.True(t, first.Equal(oracle.PriceFor("AAPL")), "price changed between calls")
	}
}

func TestMockOracleRange(t *testing.T) {
	t.Parallel()

	oracle := NewMockOracle()
	low := decimal.NewFromInt(100)
	high := decimal.RequireFromString("119.9")

	for _, symbol := range []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "X", ""} {
		price := oracle.PriceFor(symbol)
		assert.True(t, price.GreaterThanOrEqual(low), "price %s below range for %q", price, symbol)
		assert.True(t, price.LessThanOrEqual(high), "price %s above range for %q", price, symbol)
	}
}

func TestMockOracleVariesBySymbol(t *testing.T) {
	t.Parallel()

	oracle := NewMockOracle()
	assert.True(t, oracle.PriceFor("AAPL").Equal(decimal.RequireFromString("115.5")))
	assert.True(t, oracle.PriceFor("TSLA").Equal(decimal.RequireFromString("117.5")))
}
