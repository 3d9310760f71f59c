package model

import (
	"fmt"
	"net/http"
)

const (
	CodeValidation         = "validation_error"
	CodeUnauthorized       = "unauthorized"
	CodeInvalidToken       = "invalid_token"
	CodeInvalidCredentials = "invalid_credentials"
	CodeEmailExists        = "email_exists"
	CodeNotFound           = "not_found"
	CodeSurveyNotFound     = "survey_not_found"
	CodeRateLimited        = "rate_limited"
	CodeInternal           = "internal_error"
)

// Issue locates one validation failure. Path holds JSON field names and
// array indices, outermost first.
type Issue struct {
	Path    []any  `json:"path"`
	Message string `json:"message"`
}

// Error is a failure the client is expected to handle: it carries the HTTP
// status to answer with and a machine-readable code.
type Error struct {
	Status int
	Code   string
	Issues []Issue
}

func (e *Error) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("%d %s", e.Status, e.Code)
	}
	return fmt.Sprintf("%d %s: %v", e.Status, e.Code, e.Issues)
}

// Is matches any *Error with the same code, so that
// errors.Is(err, model.ErrSurveyNotFound()) works on fresh values.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

func ErrValidation(issues ...Issue) *Error {
	return &Error{Status: http.StatusBadRequest, Code: CodeValidation, Issues: issues}
}

func ErrUnauthorized() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeUnauthorized}
}

func ErrInvalidToken() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeInvalidToken}
}

func ErrInvalidCredentials() *Error {
	return &Error{Status: http.StatusUnauthorized, Code: CodeInvalidCredentials}
}

func ErrEmailExists() *Error {
	return &Error{Status: http.StatusConflict, Code: CodeEmailExists}
}

func ErrNotFound() *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeNotFound}
}

func ErrSurveyNotFound() *Error {
	return &Error{Status: http.StatusNotFound, Code: CodeSurveyNotFound}
}

func ErrRateLimited() *Error {
	return &Error{Status: http.StatusTooManyRequests, Code: CodeRateLimited}
}
