package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode represents a GDD Studio error code.
type ErrorCode string

const (
	ErrInvalidRequest ErrorCode = "INVALID_REQUEST" // 400
	ErrNotFound       ErrorCode = "NOT_FOUND"       // 404
	ErrInFlight       ErrorCode = "IN_FLIGHT"       // 409
	ErrInvalidImport  ErrorCode = "INVALID_IMPORT"  // 422
	ErrParse          ErrorCode = "PARSE_ERROR"     // 422
	ErrUnavailable    ErrorCode = "UNAVAILABLE"     // 503
	ErrInternal       ErrorCode = "INTERNAL"        // 500
)

// StudioError represents a structured error with code, status, and details.
type StudioError struct {
	Code    ErrorCode
	Status  int
	Message string
	Details map[string]any
}

// Error implements the error interface.
func (e *StudioError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewInvalidRequest creates a 400 error for invalid request parameters.
func NewInvalidRequest(msg string) *StudioError {
	return &StudioError{
		Code:    ErrInvalidRequest,
		Status:  400,
		Message: msg,
	}
}

// NewNotFound creates a 404 error for a missing section, project, or diagram.
func NewNotFound(identifier string) *StudioError {
	return &StudioError{
		Code:    ErrNotFound,
		Status:  404,
		Message: fmt.Sprintf("not found: %s", identifier),
		Details: map[string]any{"identifier": identifier},
	}
}

// NewInFlight creates a 409 error for a rejected concurrent section fill.
func NewInFlight(sectionID string) *StudioError {
	return &StudioError{
		Code:    ErrInFlight,
		Status:  409,
		Message: fmt.Sprintf("section %q is already generating", sectionID),
		Details: map[string]any{"section_id": sectionID},
	}
}

// NewInvalidImport creates a 422 error for a structurally invalid import payload.
func NewInvalidImport(msg string) *StudioError {
	return &StudioError{
		Code:    ErrInvalidImport,
		Status:  422,
		Message: msg,
	}
}

// NewParse creates a 422 error for unparseable content.
func NewParse(msg string) *StudioError {
	return &StudioError{
		Code:    ErrParse,
		Status:  422,
		Message: msg,
	}
}

// NewUnavailable creates a 503 error for completion service connectivity failures.
func NewUnavailable(err error) *StudioError {
	msg := "completion service unavailable"
	if err != nil {
		msg = fmt.Sprintf("completion service unavailable: %v", err)
	}
	return &StudioError{
		Code:    ErrUnavailable,
		Status:  503,
		Message: msg,
	}
}

// NewInternal creates a 500 error for unexpected internal errors.
func NewInternal(err error) *StudioError {
	msg := "internal error"
	if err != nil {
		msg = err.Error()
	}
	return &StudioError{
		Code:    ErrInternal,
		Status:  500,
		Message: msg,
	}
}

// From extracts the StudioError from err, wrapping foreign errors as
// INTERNAL so every surface can map an error to a code and status.
func From(err error) *StudioError {
	var sErr *StudioError
	if stderrors.As(err, &sErr) {
		return sErr
	}
	return NewInternal(err)
}

// Is checks if an error is (or wraps) a StudioError with the given code.
func Is(err error, code ErrorCode) bool {
	var sErr *StudioError
	if stderrors.As(err, &sErr) {
		return sErr.Code == code
	}
	return false
}
