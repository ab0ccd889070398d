package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with additional context
type AppError struct {
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	StatusCode int         `json:"-"`
	Internal   error       `json:"-"`
	Details    interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Internal)
	}
	return e.Message
}

// Unwrap returns the internal error for errors.Is and errors.As
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Common error codes
const (
	ErrCodeInternal         = "INTERNAL_ERROR"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeUnauthorized     = "UNAUTHORIZED"
	ErrCodeInvalidToken     = "INVALID_TOKEN"
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeMethodNotAllowed = "METHOD_NOT_ALLOWED"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidation       = "VALIDATION_ERROR"
	ErrCodeDatabase         = "DATABASE_ERROR"
	ErrCodeInvalidInput     = "INVALID_INPUT"
	ErrCodeUpsertFailed     = "UPSERT_FAILED"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeNoStripeCustomer = "NO_STRIPE_CUSTOMER"
	ErrCodeUnknownCustomer  = "UNKNOWN_CUSTOMER"
	ErrCodeMissingSignature = "MISSING_SIGNATURE"
)

// New creates a new AppError
func New(code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, code, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
		Internal:   err,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details interface{}) *AppError {
	e.Details = details
	return e
}

// AsAppError extracts an AppError from an error chain, or wraps the error
// as an internal 500 when it is not one.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err.Error(), err)
}

// Common error constructors

// Internal creates an internal server error
func Internal(message string, err error) *AppError {
	return Wrap(err, ErrCodeInternal, message, http.StatusInternalServerError)
}

// BadRequest creates a bad request error
func BadRequest(message string) *AppError {
	return New(ErrCodeBadRequest, message, http.StatusBadRequest)
}

// Unauthorized creates an unauthorized error
func Unauthorized(message string) *AppError {
	return New(ErrCodeUnauthorized, message, http.StatusUnauthorized)
}

// InvalidToken creates an invalid session token error
func InvalidToken(err error) *AppError {
	return Wrap(err, ErrCodeInvalidToken, "Invalid or expired token", http.StatusUnauthorized)
}

// NotFound creates a not found error
func NotFound(resource string) *AppError {
	return New(ErrCodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// Conflict creates a conflict error
func Conflict(message string) *AppError {
	return New(ErrCodeConflict, message, http.StatusConflict)
}

// ValidationError creates a validation error
func ValidationError(message string, details interface{}) *AppError {
	return New(ErrCodeValidation, message, http.StatusBadRequest).WithDetails(details)
}

// DatabaseError creates a database error
func DatabaseError(message string, err error) *AppError {
	return Wrap(err, ErrCodeDatabase, message, http.StatusInternalServerError)
}

// InvalidInput creates an invalid input error
func InvalidInput(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusInternalServerError)
}

// UpsertFailed creates an upsert failure error
func UpsertFailed(message string, err error) *AppError {
	return Wrap(err, ErrCodeUpsertFailed, message, http.StatusInternalServerError)
}

// UserNotFound creates a user lookup failure error
func UserNotFound(userID string) *AppError {
	return New(ErrCodeUserNotFound, fmt.Sprintf("no user with id %s", userID), http.StatusInternalServerError)
}

// NoStripeCustomer indicates the user has no provisioned payment customer
func NoStripeCustomer() *AppError {
	return New(ErrCodeNoStripeCustomer, "user has no billing customer", http.StatusInternalServerError)
}

// UnknownCustomer indicates a webhook referenced an unmapped customer
func UnknownCustomer(customerID string) *AppError {
	return New(ErrCodeUnknownCustomer, fmt.Sprintf("no user for customer %s", customerID), http.StatusInternalServerError)
}

// MissingSignature indicates the webhook signature header was absent
func MissingSignature() *AppError {
	return New(ErrCodeMissingSignature, "missing stripe-signature header", http.StatusInternalServerError)
}
