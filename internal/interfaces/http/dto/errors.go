package dto

import (
	"net/http"
	"strings"
)

// Error codes returned by the API. Domain errors carry these codes
// directly; everything else is normalized onto them before responding.
const (
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeAlreadyExists       = "ALREADY_EXISTS"
	ErrCodeAlreadyPaid         = "ALREADY_PAID"
	ErrCodeVersionConflict     = "VERSION_CONFLICT"
	ErrCodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	ErrCodeInvalidInput        = "INVALID_INPUT"
	ErrCodeInvalidAmount       = "INVALID_AMOUNT"
	ErrCodeInvalidState        = "INVALID_STATE"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

var errorStatusMap = map[string]int{
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeAlreadyPaid:         http.StatusConflict,
	ErrCodeVersionConflict:     http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidInput:        http.StatusBadRequest,
	ErrCodeInvalidAmount:       http.StatusBadRequest,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeInternal:            http.StatusInternalServerError,
}

// GetHTTPStatus maps an error code to its HTTP status. Unknown codes map
// to 500 so new domain errors fail loudly instead of leaking as 200s.
func GetHTTPStatus(code string) int {
	if status, ok := errorStatusMap[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// NormalizeErrorCode folds variant domain error codes onto the published
// API code set. Validation errors carry specific codes (INVALID_RESIDENT,
// INVALID_DESCRIPTION, ...) which all surface as INVALID_INPUT.
func NormalizeErrorCode(code string) string {
	if code == "" {
		return ErrCodeInternal
	}
	if _, ok := errorStatusMap[code]; ok {
		return code
	}
	if strings.HasPrefix(code, "INVALID_") {
		return ErrCodeInvalidInput
	}
	return ErrCodeInternal
}
