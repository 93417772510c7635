package ledger

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/papertrade/api/internal/auth"
	"github.com/papertrade/api/internal/httputil"
	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/storage"
)

// Handler contains HTTP handlers for the portfolio endpoints. All routes are
// mounted behind the auth middleware.
type Handler struct {
	engine *Engine
}

func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// TradeRequest is the trade request body.
type TradeRequest struct {
	Symbol string `json:"symbol"`
	Side   string `json:"side"`
	Shares int64  `json:"shares"`
}

// TradeResponse carries the updated account and the price the trade executed
// at. Executed prices are not persisted; this is the caller's only view of it.
type TradeResponse struct {
	Account *Account        `json:"account"`
	Price   decimal.Decimal `json:"price"`
}

// GetPortfolio returns the caller's account, creating it on first access.
func (h *Handler) GetPortfolio(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	account, err := h.engine.Account(r.Context(), owner)
	if err != nil {
		if errors.Is(err, storage.ErrUnavailable) {
			httputil.RespondErrorWithCode(w, "storage temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
			return
		}
		logger.Error("failed to load account", "owner", owner, "error", err.Error())
		httputil.RespondErrorWithCode(w, "failed to load account", httputil.CodeInternalError, http.StatusInternalServerError)
		return
	}

	httputil.RespondJSON(w, account, http.StatusOK)
}

// Trade executes a buy or sell for the caller's account.
func (h *Handler) Trade(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	owner, ok := auth.SubjectFromContext(r.Context())
	if !ok {
		httputil.RespondErrorWithCode(w, "missing authentication", httputil.CodeMissingAuth, http.StatusUnauthorized)
		return
	}

	var req TradeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	side, validSide := ParseSide(req.Side)
	if !validSide {
		httputil.RespondErrorWithCode(w, "side must be buy or sell", httputil.CodeInvalidTrade, http.StatusBadRequest)
		return
	}

	account, price, err := h.engine.ExecuteTrade(r.Context(), owner, req.Symbol, side, req.Shares)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidTrade):
			httputil.RespondErrorWithCode(w, "invalid trade", httputil.CodeInvalidTrade, http.StatusBadRequest)
		case errors.Is(err, ErrInsufficientFunds):
			httputil.RespondErrorWithCode(w, "insufficient cash", httputil.CodeInsufficientFunds, http.StatusBadRequest)
		case errors.Is(err, ErrInsufficientShares):
			httputil.RespondErrorWithCode(w, "insufficient shares", httputil.CodeInsufficientShares, http.StatusBadRequest)
		case errors.Is(err, storage.ErrUnavailable):
			httputil.RespondErrorWithCode(w, "storage temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("trade failed", "owner", owner, "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to execute trade", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	httputil.RespondJSON(w, TradeResponse{Account: account, Price: price}, http.StatusOK)
}
