package common

import "net/http"

// AppError is an error that knows how it should be rendered to API clients.
// Code is the stable machine-readable identifier; Err, when set, is the
// internal cause and never reaches the response body.
type AppError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
	Details    any
}

func (e *AppError) Error() string {
	switch {
	case e == nil:
		return ""
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Message
	}
}

func (e *AppError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Is compares codes, so a sentinel still matches copies carrying details or a cause.
func (e *AppError) Is(target error) bool {
	other, ok := target.(*AppError)
	return ok && e != nil && other != nil && other.Code == e.Code
}

// WithDetails copies e and attaches details to the copy.
func (e *AppError) WithDetails(details any) *AppError {
	if e == nil {
		return nil
	}
	out := *e
	out.Details = details
	return &out
}

// NewAppError builds an AppError wrapping cause (which may be nil).
func NewAppError(code, message string, status int, cause error) *AppError {
	return &AppError{Code: code, Message: message, HTTPStatus: status, Err: cause}
}

func BadRequest(code, message string) *AppError {
	return NewAppError(code, message, http.StatusBadRequest, nil)
}

func NotFound(code, message string) *AppError {
	return NewAppError(code, message, http.StatusNotFound, nil)
}

func Conflict(code, message string) *AppError {
	return NewAppError(code, message, http.StatusConflict, nil)
}
