// Package apperror provides structured error handling following RFC 7807 Problem Details.
// All business errors must use AppError for consistent API responses.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes following domain-driven design
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"
	CodeTimeout  = "TIMEOUT_ERROR"

	// Validation errors (400)
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"

	// Posting rule violations (422)
	CodeUnbalanced           = "UNBALANCED"
	CodeUnknownAccount       = "UNKNOWN_ACCOUNT"
	CodeManualEntryForbidden = "MANUAL_ENTRY_FORBIDDEN"
	CodeAlreadyReversed      = "ALREADY_REVERSED"
	CodeSeriesNotFound       = "SERIES_NOT_FOUND"

	// Document lifecycle violations (422)
	CodeIllegalTransition = "ILLEGAL_TRANSITION"
	CodeUnauthorizedRole  = "UNAUTHORIZED_ROLE"
	CodeReasonRequired    = "REASON_REQUIRED"

	// Concurrency (409)
	CodeConcurrentModification = "CONCURRENT_MODIFICATION"

	// Authorization errors (401, 403)
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"

	// Not found (404)
	CodeNotFound = "NOT_FOUND"

	// Conflict (409)
	CodeConflict    = "CONFLICT"
	CodeDuplicate   = "DUPLICATE_ENTRY"
	CodeIdempotency = "IDEMPOTENCY_CONFLICT"
)

// AppError is the standard error type for the platform.
// It implements error interface and provides structured details for API responses.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, totals, etc.)
	Details map[string]any `json:"details,omitempty"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"-"`

	// Err is the underlying error (not exposed in JSON)
	Err error `json:"-"`
}

// Error implements error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is/As support
func (e *AppError) Unwrap() error {
	return e.Err
}

// WithDetail adds a key-value pair to error details
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause sets the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Err = err
	return e
}

// --- Factory functions for common errors ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewNotFound creates a not found error (404)
func NewNotFound(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", entity),
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewUnbalanced creates a posting balance violation error.
// Totals are reported as strings to keep decimal precision in the payload.
func NewUnbalanced(totalDebit, totalCredit string) *AppError {
	return &AppError{
		Code:       CodeUnbalanced,
		Message:    "Journal entry is not balanced",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"total_debit":  totalDebit,
			"total_credit": totalCredit,
		},
	}
}

// NewUnknownAccount creates an error for a line referencing a missing or inactive account.
func NewUnknownAccount(accountID any) *AppError {
	return &AppError{
		Code:       CodeUnknownAccount,
		Message:    "Account does not exist or is inactive",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"account_id": accountID},
	}
}

// NewManualEntryForbidden creates an error for manual postings against a protected account.
func NewManualEntryForbidden(accountCode string) *AppError {
	return &AppError{
		Code:       CodeManualEntryForbidden,
		Message:    "Account does not allow manual journal entries",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"account_code": accountCode},
	}
}

// NewAlreadyReversed creates an error for reversing a reversal entry.
func NewAlreadyReversed(journalID any) *AppError {
	return &AppError{
		Code:       CodeAlreadyReversed,
		Message:    "Journal entry is itself a reversal and cannot be reversed again",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"journal_id": journalID},
	}
}

// NewSeriesNotFound signals a missing or inactive number series.
// The allocator treats it as a degraded-path trigger, not a hard failure.
func NewSeriesNotFound(companyID any, documentType string) *AppError {
	return &AppError{
		Code:       CodeSeriesNotFound,
		Message:    "No active number series for document type",
		HTTPStatus: http.StatusNotFound,
		Details:    map[string]any{"company_id": companyID, "document_type": documentType},
	}
}

// NewIllegalTransition creates an error for a state pair absent from the transition table.
func NewIllegalTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeIllegalTransition,
		Message:    fmt.Sprintf("Transition %s -> %s is not allowed", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewUnauthorizedRole creates an error for a role not permitted to perform a transition.
func NewUnauthorizedRole(role, from, to string) *AppError {
	return &AppError{
		Code:       CodeUnauthorizedRole,
		Message:    fmt.Sprintf("Role %s may not perform transition %s -> %s", role, from, to),
		HTTPStatus: http.StatusForbidden,
		Details:    map[string]any{"role": role, "from": from, "to": to},
	}
}

// NewReasonRequired creates an error for a transition missing its mandatory reason.
func NewReasonRequired(from, to string) *AppError {
	return &AppError{
		Code:       CodeReasonRequired,
		Message:    fmt.Sprintf("Transition %s -> %s requires a reason", from, to),
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewConcurrentModification creates an optimistic locking error
func NewConcurrentModification(entity string, id any) *AppError {
	return &AppError{
		Code:       CodeConcurrentModification,
		Message:    "Record was modified by another user. Please refresh and try again.",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "id": id},
	}
}

// NewInternal creates an internal server error (hides details from client)
func NewInternal(err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// NewUnauthorized creates an authentication error (401)
func NewUnauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewForbidden creates an authorization error (403)
func NewForbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

// NewConflict creates a conflict error (409)
func NewConflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewDuplicate creates a duplicate entry error (409)
func NewDuplicate(entity, field, value string) *AppError {
	return &AppError{
		Code:       CodeDuplicate,
		Message:    fmt.Sprintf("%s with this %s already exists", entity, field),
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"entity": entity, "field": field, "value": value},
	}
}

// NewIdempotencyConflict creates error when operation is already in progress
func NewIdempotencyConflict(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Operation already in progress or completed",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// NewIdempotencyMismatch is returned when the same idempotency key is reused for
// a different request (different user/operation/body hash).
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Idempotency key mismatch",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
	}
}

// --- Helper functions ---

// IsAppError checks if error is AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError extracts AppError from error chain
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetHTTPStatus returns appropriate HTTP status for any error
func GetHTTPStatus(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.HTTPStatus
	}
	return http.StatusInternalServerError
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}

// IsSeriesNotFound checks if error is CodeSeriesNotFound
func IsSeriesNotFound(err error) bool {
	return HasCode(err, CodeSeriesNotFound)
}

// IsConcurrentModification checks if error is CodeConcurrentModification
func IsConcurrentModification(err error) bool {
	return HasCode(err, CodeConcurrentModification)
}

// HasCode checks if error carries the given AppError code
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}
