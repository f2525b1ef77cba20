package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

const (
	CodeValidationFailed        = "VALIDATION_FAILED"
	CodeUnknownDepartment       = "UNKNOWN_DEPARTMENT"
	CodeNotFound                = "NOT_FOUND"
	CodeStoreUnavailable        = "STORE_UNAVAILABLE"
	CodeNoDepartmentsConfigured = "NO_DEPARTMENTS_CONFIGURED"
	CodeUnauthorized            = "UNAUTHORIZED"
	CodeInternal                = "INTERNAL_ERROR"
)

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusUnprocessableEntity, details)
}

func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnknownDepartment reports a department name absent from the registry. Reads
// answer 404 (the addressed resource cannot exist); writes answer 422.
func NewUnknownDepartment(department string, status int, err error) error {
	return &DomainError{
		Code:       CodeUnknownDepartment,
		Message:    "invalid department",
		HTTPStatus: status,
		Details:    map[string]any{"department": department},
		Err:        err,
	}
}

func NewStoreUnavailable(department string, err error) error {
	return &DomainError{
		Code:       CodeStoreUnavailable,
		Message:    "department store unavailable",
		HTTPStatus: http.StatusServiceUnavailable,
		Details:    map[string]any{"department": department},
		Err:        err,
	}
}

func NewNoDepartmentsConfigured(err error) error {
	return &DomainError{
		Code:       CodeNoDepartmentsConfigured,
		Message:    "system configuration error: no departments configured",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternal,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
