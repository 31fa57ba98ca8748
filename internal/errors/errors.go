package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeStorage    ErrorType = "storage"
	ErrorTypeAuth       ErrorType = "authentication"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeUpload     ErrorType = "upload"
	ErrorTypeInternal   ErrorType = "internal"
)

// APIError represents a structured API error
type APIError struct {
	Type      ErrorType `json:"type"`
	Message   string    `json:"message"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Details   any       `json:"details,omitempty"`
	err       error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the internal cause to errors.Is / errors.As
func (e *APIError) Unwrap() error {
	return e.err
}

// WithRequestID adds a request ID to the error
func (e *APIError) WithRequestID(id string) *APIError {
	e.RequestID = id
	return e
}

// WithDetails adds additional details to the error
func (e *APIError) WithDetails(details any) *APIError {
	e.Details = details
	return e
}

func newError(t ErrorType, code int, msg string, err error) *APIError {
	return &APIError{
		Type:    t,
		Message: msg,
		Code:    code,
		err:     err,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(msg string, err error) *APIError {
	return newError(ErrorTypeValidation, http.StatusBadRequest, msg, err)
}

// NewDatabaseError creates a new database error
func NewDatabaseError(msg string, err error) *APIError {
	return newError(ErrorTypeDatabase, http.StatusInternalServerError, msg, err)
}

// NewStorageError creates a new error for the file backed detection store
func NewStorageError(msg string, err error) *APIError {
	return newError(ErrorTypeStorage, http.StatusInternalServerError, msg, err)
}

// NewAuthError creates a new authentication error
func NewAuthError(msg string, err error) *APIError {
	return newError(ErrorTypeAuth, http.StatusForbidden, msg, err)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(msg string, err error) *APIError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, msg, err)
}

// NewUploadError creates a new error for failed report uploads
func NewUploadError(msg string, err error) *APIError {
	return newError(ErrorTypeUpload, http.StatusBadGateway, msg, err)
}

// NewInternalError creates a new internal server error
func NewInternalError(msg string, err error) *APIError {
	return newError(ErrorTypeInternal, http.StatusInternalServerError, msg, err)
}

// IsType reports whether err is, or wraps, an APIError of type t
func IsType(err error, t ErrorType) bool {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Type == t
	}
	return false
}

// IsNotFound checks if an error is a NotFound error
func IsNotFound(err error) bool {
	return IsType(err, ErrorTypeNotFound)
}

// IsValidation checks if an error is a Validation error
func IsValidation(err error) bool {
	return IsType(err, ErrorTypeValidation)
}

// StatusCode returns the HTTP status to answer err with
func StatusCode(err error) int {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr.Code
	}
	return http.StatusInternalServerError
}
