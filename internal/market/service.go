package market

import (
	"fmt"
	"hash/fnv"

	"github.com/shopspring/decimal"
)

// Tickers is the static symbol universe the mock market exposes.
var Tickers = []string{"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA"}

// PredictionPoint is one entry of a mock close/predicted series.
type PredictionPoint struct {
	Date      string          `json:"date"`
	Close     decimal.Decimal `json:"close"`
	Predicted decimal.Decimal `json:"predicted"`
}

const predictionPoints = 30

// Predict produces a deterministic 30-point mock series for a symbol. The
// series is synthetic; it exists so clients have something to chart until a
// real model is plugged in.
func Predict(symbol string) []PredictionPoint {
	h := fnv.New32a()
	h.Write([]byte(symbol))

	base := decimal.NewFromInt(150).
		Add(decimal.NewFromInt(int64(h.Sum32() % 300)).Div(decimal.NewFromInt(10)))
	step := decimal.RequireFromString("0.5")

	series := make([]PredictionPoint, 0, predictionPoints)
	for i := 0; i < predictionPoints; i++ {
		close := base.Add(decimal.NewFromInt(int64(i%5) - 2))
		series = append(series, PredictionPoint{
			Date:      fmt.Sprintf("D%d", i+1),
			Close:     close,
			Predicted: close.Add(step),
		})
	}
	return series
}
