package auth

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"

	"github.com/papertrade/api/internal/httputil"
	"github.com/papertrade/api/internal/logging"
	"github.com/papertrade/api/internal/ratelimit"
	"github.com/papertrade/api/internal/storage"
	"github.com/papertrade/api/internal/user"
)

// Handler contains HTTP handlers for the authentication endpoints.
type Handler struct {
	service *Service
	limiter ratelimit.Limiter
}

func NewHandler(service *Service, limiter ratelimit.Limiter) *Handler {
	return &Handler{service: service, limiter: limiter}
}

// SignupRequest is the signup request body.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// VerifyRequest is the code-verification request body.
type VerifyRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

// LoginRequest is the login request body.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// MessageResponse is a plain informational response.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenResponse carries a session token.
type TokenResponse struct {
	Token string `json:"token"`
}

// Signup creates an unverified account and sends a one-time code.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.rateLimited(w, r, "signup") {
		return
	}

	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	if err := h.service.Signup(r.Context(), req.Email, req.Password); err != nil {
		switch {
		case errors.Is(err, user.ErrDuplicateEmail):
			httputil.RespondErrorWithCode(w, "email already exists", httputil.CodeEmailAlreadyExists, http.StatusConflict)
		case errors.Is(err, ErrEmailRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeEmailRequired, http.StatusBadRequest)
		case errors.Is(err, ErrInvalidEmailFormat):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodeInvalidEmailFormat, http.StatusBadRequest)
		case errors.Is(err, ErrPasswordRequired):
			httputil.RespondErrorWithCode(w, err.Error(), httputil.CodePasswordRequired, http.StatusBadRequest)
		case errors.Is(err, storage.ErrUnavailable):
			httputil.RespondErrorWithCode(w, "storage temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("signup failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to sign up", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user signed up", "email", NormalizeEmail(req.Email))
	httputil.RespondJSON(w, MessageResponse{Message: "verification code sent"}, http.StatusCreated)
}

// Verify consumes a one-time code and returns a session token.
func (h *Handler) Verify(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.rateLimited(w, r, "verify") {
		return
	}

	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	token, err := h.service.Verify(r.Context(), req.Email, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCode):
			httputil.RespondErrorWithCode(w, "invalid or expired code", httputil.CodeInvalidCode, http.StatusBadRequest)
		case errors.Is(err, user.ErrNotFound):
			httputil.RespondErrorWithCode(w, "user not found", httputil.CodeNotFound, http.StatusNotFound)
		case errors.Is(err, storage.ErrUnavailable):
			httputil.RespondErrorWithCode(w, "storage temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("verification failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to verify", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user verified", "email", NormalizeEmail(req.Email))
	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

// Login authenticates a verified account and returns a session token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	logger := logging.GetLoggerFromContext(r.Context())

	if h.rateLimited(w, r, "login") {
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.RespondErrorWithCode(w, "invalid request body", httputil.CodeInvalidRequestBody, http.StatusBadRequest)
		return
	}

	token, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			httputil.RespondErrorWithCode(w, "invalid email or password", httputil.CodeInvalidCredentials, http.StatusUnauthorized)
		case errors.Is(err, ErrNotVerified):
			httputil.RespondErrorWithCode(w, "account not verified", httputil.CodeNotVerified, http.StatusForbidden)
		case errors.Is(err, storage.ErrUnavailable):
			httputil.RespondErrorWithCode(w, "storage temporarily unavailable", httputil.CodeStoreUnavailable, http.StatusServiceUnavailable)
		default:
			logger.Error("login failed", "error", err.Error())
			httputil.RespondErrorWithCode(w, "failed to log in", httputil.CodeInternalError, http.StatusInternalServerError)
		}
		return
	}

	logger.Info("user logged in", "email", NormalizeEmail(req.Email))
	httputil.RespondJSON(w, TokenResponse{Token: token}, http.StatusOK)
}

// rateLimited applies the per-IP limit for a purpose and writes the 429
// response itself when the limit is hit. Limiter failures fail open.
func (h *Handler) rateLimited(w http.ResponseWriter, r *http.Request, purpose string) bool {
	logger := logging.GetLoggerFromContext(r.Context())

	allowed, err := h.limiter.Allow(r.Context(), clientIP(r), purpose)
	if err != nil {
		logger.Error("rate limiter check failed", "error", err.Error())
		return false
	}
	if !allowed {
		logger.Warn("rate limit exceeded", "purpose", purpose)
		httputil.RespondErrorWithCode(w, "too many requests, please try again later", httputil.CodeTooManyRequests, http.StatusTooManyRequests)
		return true
	}
	return false
}

func clientIP(r *http.Request) string {
	// chi's RealIP middleware already rewrote RemoteAddr from the usual
	// forwarding headers.
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
