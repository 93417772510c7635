package market

import (
	"net/http"
	"strings"

	"github.com/papertrade/api/internal/httputil"
)

// Handler serves the mock market endpoints.
type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

// TickersResponse lists the tradable symbols.
type TickersResponse struct {
	Tickers []string `json:"tickers"`
}

// PredictResponse carries a mock prediction series for a symbol.
type PredictResponse struct {
	Symbol string            `json:"symbol"`
	Series []PredictionPoint `json:"series"`
}

func (h *Handler) Tickers(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, TickersResponse{Tickers: Tickers}, http.StatusOK)
}

func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("symbol")))
	if symbol == "" {
		symbol = "AAPL"
	}

	httputil.RespondJSON(w, PredictResponse{
		Symbol: symbol,
		Series: Predict(symbol),
	}, http.StatusOK)
}
