// Package apperror provides structured error handling for API responses.
// Every business failure that reaches a handler must be an AppError.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes
const (
	// Infrastructure errors (5xx)
	CodeInternal = "INTERNAL_ERROR"
	CodeDatabase = "DATABASE_ERROR"

	// Validation errors (400)
	CodeValidation        = "VALIDATION_ERROR"
	CodeInvalidInput      = "INVALID_INPUT"
	CodeInvalidTransition = "INVALID_STATUS_TRANSITION"

	// Scheduling errors (400)
	CodeSchedulingConflict = "SCHEDULING_CONFLICT"
	CodeHoliday            = "HOLIDAY"
	CodeTariffMissing      = "TARIFF_MISSING"

	// Business rule violations (422)
	CodeBusinessRule           = "BUSINESS_RULE_VIOLATION"
	CodeOutOfStock             = "OUT_OF_STOCK"
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

// User-facing messages shown by the front office.
const (
	MsgInvalidInput      = "正しく入力されていない項目があります"
	MsgBookingBlocked    = "予約登録ができませんでした。設定条件などご確認ください。"
	MsgBookingUpdate     = "予約更新ができませんでした。設定条件などご確認ください。"
	MsgHoliday           = "指定した日が休業日である。"
	MsgTariffMissing     = "指定した会議室が、各種料金をまだ設定されません。"
	MsgItemsNotSaved     = "明細を保存しませんでした"
	MsgTariffNotChanged  = "料金の変更を予約しませんでした"
	MsgHolidayRegistered = "%sは、既に登録されていましたので、再度ご確認してください。"
)

// AppError is the standard error type of the service.
type AppError struct {
	// Code is a machine-readable error identifier
	Code string `json:"code"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Details contains additional context (field errors, ids, etc.)
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

// --- Factory functions ---

// NewValidation creates a validation error (400)
func NewValidation(message string) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidInput is the generic 400 for malformed request bodies.
func NewInvalidInput() *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    MsgInvalidInput,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewInvalidTransition rejects a booking detail status change.
func NewInvalidTransition(from, to int) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    "status transition is not allowed",
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"from": from, "to": to},
	}
}

// NewSchedulingConflict reports a double booking.
func NewSchedulingConflict(message string) *AppError {
	return &AppError{
		Code:       CodeSchedulingConflict,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewHoliday reports a booking that falls on a closed day.
func NewHoliday() *AppError {
	return &AppError{
		Code:       CodeHoliday,
		Message:    MsgHoliday,
		HTTPStatus: http.StatusBadRequest,
	}
}

// NewTariffMissing reports a room without an active room charge.
func NewTariffMissing(roomID any) *AppError {
	return &AppError{
		Code:       CodeTariffMissing,
		Message:    MsgTariffMissing,
		HTTPStatus: http.StatusBadRequest,
		Details:    map[string]any{"room_id": roomID},
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

// NewBusinessRule creates a business rule violation error (422)
func NewBusinessRule(code, message string) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewOutOfStock reports a stock-managed service without enough units left.
func NewOutOfStock(serviceID string, requested, available int) *AppError {
	return &AppError{
		Code:       CodeOutOfStock,
		Message:    "service is out of stock",
		HTTPStatus: http.StatusUnprocessableEntity,
		Details: map[string]any{
			"service_id": serviceID,
			"requested":  requested,
			"available":  available,
		},
	}
}

// NewConcurrentModification is returned when a serializable transaction lost a race.
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
// a different request (different staff/operation/body hash).
func NewIdempotencyMismatch(key string) *AppError {
	return &AppError{
		Code:       CodeIdempotency,
		Message:    "Idempotency key mismatch",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"idempotency_key": key},
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

// HasCode reports whether err carries the given code.
func HasCode(err error, code string) bool {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code == code
	}
	return false
}

// IsNotFound checks if error is CodeNotFound
func IsNotFound(err error) bool {
	return HasCode(err, CodeNotFound)
}
