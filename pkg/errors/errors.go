package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// ErrorType represents the failure classes surfaced to screens
type ErrorType string

const (
	// ErrorTypeUnauthorized indicates rejected credentials or an expired session
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeForbidden indicates an authenticated caller lacking permission
	ErrorTypeForbidden ErrorType = "FORBIDDEN"

	// ErrorTypeValidation indicates field-level input problems
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates the server state moved underneath the caller
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeTransport indicates network failure, timeout or server unavailability
	ErrorTypeTransport ErrorType = "TRANSPORT"

	// ErrorTypeInvalidTransition indicates a status edge rejected before any request
	ErrorTypeInvalidTransition ErrorType = "INVALID_TRANSITION"
)

// AuthReason distinguishes authentication failures by cause
type AuthReason string

const (
	AuthReasonInvalidCredentials AuthReason = "INVALID_CREDENTIALS"
	AuthReasonNetwork            AuthReason = "NETWORK"
	AuthReasonServer             AuthReason = "SERVER"
	AuthReasonSessionExpired     AuthReason = "SESSION_EXPIRED"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string
	Reason  AuthReason
	Fields  map[string]string
	Status  int
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Type))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Fields) > 0 {
		keys := make([]string, 0, len(e.Fields))
		for k := range e.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+"="+e.Fields[k])
		}
		b.WriteString(" [")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("]")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// UserMessage returns text safe to show next to a form
func (e *AppError) UserMessage() string {
	if e.Type == ErrorTypeUnauthorized {
		switch e.Reason {
		case AuthReasonInvalidCredentials:
			return "Invalid username or password."
		case AuthReasonNetwork:
			return "Cannot reach the server. Check your connection and try again."
		case AuthReasonServer:
			return "The server could not process the login. Try again later."
		case AuthReasonSessionExpired:
			return "Your session has expired. Please sign in again."
		}
	}
	return e.Message
}

// HTTPStatus returns the response status a server answers with for the error
func (e *AppError) HTTPStatus() int {
	if e.Status != 0 {
		return e.Status
	}
	switch e.Type {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeUnauthorized:
		return http.StatusUnauthorized
	case ErrorTypeForbidden:
		return http.StatusForbidden
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeConflict, ErrorTypeInvalidTransition:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// NewAuthError creates a new authentication error
func NewAuthError(reason AuthReason, message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeUnauthorized,
		Reason:  reason,
		Message: message,
		Err:     err,
	}
}

// NewForbiddenError creates a new forbidden error
func NewForbiddenError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeForbidden,
		Message: message,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, fields map[string]string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
		Fields:  fields,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewInvalidTransitionError creates an error for a locally rejected status edge
func NewInvalidTransitionError(from, to string) *AppError {
	return &AppError{
		Type:    ErrorTypeInvalidTransition,
		Message: fmt.Sprintf("cannot move from %s to %s", from, to),
	}
}

// As extracts the AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// IsAuth reports whether err is an authentication failure
func IsAuth(err error) bool {
	return IsType(err, ErrorTypeUnauthorized)
}
