package httputil

// Machine-readable error codes. Clients branch on these, so they are part of
// the API contract and must stay stable.
const (
	CodeInvalidRequestBody = "INVALID_REQUEST_BODY"
	CodeEmailRequired      = "EMAIL_REQUIRED"
	CodeInvalidEmailFormat = "INVALID_EMAIL_FORMAT"
	CodePasswordRequired   = "PASSWORD_REQUIRED"
	CodeEmailAlreadyExists = "EMAIL_ALREADY_EXISTS"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNotVerified        = "NOT_VERIFIED"
	CodeInvalidCode        = "INVALID_CODE"
	CodeNotFound           = "NOT_FOUND"

	CodeMissingAuth       = "MISSING_AUTH"
	CodeInvalidAuthHeader = "INVALID_AUTH_HEADER"
	CodeInvalidToken      = "INVALID_TOKEN"
	CodeTokenExpired      = "TOKEN_EXPIRED"

	CodeInvalidTrade       = "INVALID_TRADE"
	CodeInsufficientFunds  = "INSUFFICIENT_FUNDS"
	CodeInsufficientShares = "INSUFFICIENT_SHARES"

	CodeStoreUnavailable = "STORE_UNAVAILABLE"
	CodeTooManyRequests  = "TOO_MANY_REQUESTS"
	CodeInternalError    = "INTERNAL_ERROR"
)
