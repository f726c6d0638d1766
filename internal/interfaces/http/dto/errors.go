package dto

import "net/http"

// Error codes returned in the envelope. Format: ERR_<CATEGORY>_<DESCRIPTION>
const (
	ErrCodeInternal = "ERR_INTERNAL"

	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"

	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	ErrCodeForbidden    = "ERR_FORBIDDEN"
	ErrCodeTokenExpired = "ERR_TOKEN_EXPIRED"
	ErrCodeTokenInvalid = "ERR_TOKEN_INVALID"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"

	ErrCodeNotFound      = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	ErrCodeConflict      = "ERR_CONFLICT"

	// ErrCodeInvalidState covers payout and sync transitions the current state forbids
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeDataIntegrity is used when a linked record (e.g. a commission config) is missing
	ErrCodeDataIntegrity = "ERR_DATA_INTEGRITY"
)

// Provider error codes
const (
	// ErrCodeInvalidSignature is used when a webhook signature does not verify
	ErrCodeInvalidSignature = "ERR_INVALID_SIGNATURE"
	// ErrCodeProviderNotConfigured is used when an integration has no credentials
	ErrCodeProviderNotConfigured = "ERR_PROVIDER_NOT_CONFIGURED"
	// ErrCodeProviderNotConnected is used when the tenant has not connected the provider
	ErrCodeProviderNotConnected = "ERR_PROVIDER_NOT_CONNECTED"
	// ErrCodeProviderFailed is used when the provider rejected or failed a call
	ErrCodeProviderFailed = "ERR_PROVIDER_FAILED"
	// ErrCodeProviderUnavailable is used when the provider is down or throttling
	ErrCodeProviderUnavailable = "ERR_PROVIDER_UNAVAILABLE"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	ErrCodeUnauthorized: http.StatusUnauthorized,
	ErrCodeForbidden:    http.StatusForbidden,
	ErrCodeTokenExpired: http.StatusUnauthorized,
	ErrCodeTokenInvalid: http.StatusUnauthorized,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	ErrCodeInvalidState:  http.StatusUnprocessableEntity,
	ErrCodeDataIntegrity: http.StatusUnprocessableEntity,

	ErrCodeInvalidSignature:      http.StatusUnauthorized,
	ErrCodeProviderNotConfigured: http.StatusServiceUnavailable,
	ErrCodeProviderNotConnected:  http.StatusConflict,
	ErrCodeProviderFailed:        http.StatusBadGateway,
	ErrCodeProviderUnavailable:   http.StatusBadGateway,
}

// GetHTTPStatus returns the status for code, 500 when unmapped
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping translates domain error codes to envelope codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":      ErrCodeNotFound,
	"ALREADY_EXISTS": ErrCodeAlreadyExists,
	"INVALID_INPUT":  ErrCodeInvalidInput,
	"INVALID_STATE":  ErrCodeInvalidState,
	"UNAUTHORIZED":   ErrCodeUnauthorized,
	"FORBIDDEN":      ErrCodeForbidden,
	"CONFLICT":       ErrCodeConflict,
	"DATA_INTEGRITY": ErrCodeDataIntegrity,
}

// NormalizeErrorCode converts a domain code to its envelope code.
// Codes already in envelope form, or unknown, are returned as-is.
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
