// Package errors provides custom error types for the Pennywise API.
// All service-layer errors should use AppError so every endpoint answers
// with the same envelope: {"error": {"code", "message", "context"}}.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, optional context for the
// client, and an optional wrapped internal error.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	Context    map[string]any `json:"context,omitempty"`
	StatusCode int            `json:"-"`
	Internal   error          `json:"-"`
	Retryable  bool           `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Retryable:  sentinel.Retryable,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Retryable:  sentinel.Retryable,
		Internal:   sentinel.Internal,
	}
}

// WithContext creates a new AppError carrying extra context fields that are
// returned to the client inside the error envelope.
func WithContext(sentinel *AppError, context map[string]any) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		Context:    context,
		StatusCode: sentinel.StatusCode,
		Retryable:  sentinel.Retryable,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
)

// Transaction errors.
var (
	ErrTransactionNotFound = &AppError{Code: "TRANSACTION_NOT_FOUND", Message: "Transaction not found", StatusCode: http.StatusNotFound}
)

// Ledger errors.
var (
	ErrNegativeAmount    = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Amount cannot be negative", StatusCode: http.StatusBadRequest}
	ErrInsufficientFunds = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient funds in checking", StatusCode: http.StatusBadRequest}
)

// Aggregator errors.
var (
	ErrAggregatorNotConfigured = &AppError{Code: "AGGREGATOR_NOT_CONFIGURED", Message: "Bank aggregator credentials are not set", StatusCode: http.StatusInternalServerError}
	ErrAggregator              = &AppError{Code: "AGGREGATOR_ERROR", Message: "Bank aggregator request failed", StatusCode: http.StatusBadGateway}
	ErrAggregatorTimeout       = &AppError{Code: "AGGREGATOR_TIMEOUT", Message: "Bank aggregator request timed out", StatusCode: http.StatusGatewayTimeout, Retryable: true}
)

// Classifier errors.
var (
	ErrUnencodableValue      = &AppError{Code: "UNENCODABLE_VALUE", Message: "Value was not seen during encoder fitting", StatusCode: http.StatusUnprocessableEntity}
	ErrClassifierUnavailable = &AppError{Code: "CLASSIFIER_UNAVAILABLE", Message: "Fraud classifier request failed", StatusCode: http.StatusBadGateway}
)
