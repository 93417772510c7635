package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/papertrade/api/internal/auth"
	"github.com/papertrade/api/internal/config"
	"github.com/papertrade/api/internal/httputil"
	"github.com/papertrade/api/internal/ledger"
	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/market"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(
	cfg *config.Config,
	authHandler *auth.Handler,
	authMiddleware *auth.Middleware,
	ledgerHandler *ledger.Handler,
	marketHandler *market.Handler,
	logger *logging.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// CORS - must be first
	if len(cfg.Server.TrustedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.Server.TrustedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
			ExposedHeaders:   []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           300, // 5 minutes
		}))
	}

	r.Use(SecurityHeaders)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logging.RequestLogger(logger))
	r.Use(middleware.Compress(5))

	r.Get("/health", handleHealth)

	// Auth routes (public)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/verify", authHandler.Verify)
		r.Post("/login", authHandler.Login)
	})

	// Market routes (public, mock data)
	r.Route("/market", func(r chi.Router) {
		r.Get("/tickers", marketHandler.Tickers)
		r.Get("/predict", marketHandler.Predict)
	})

	// Portfolio routes (require a bearer token)
	r.Group(func(r chi.Router) {
		r.Use(authMiddleware.RequireAuth)
		r.Get("/portfolio", ledgerHandler.GetPortfolio)
		r.Post("/portfolio/trade", ledgerHandler.Trade)
	})

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, map[string]string{"status": "api is running"}, http.StatusOK)
}
