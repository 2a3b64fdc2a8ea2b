package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeAlreadyPaid, http.StatusConflict},
		{ErrCodeVersionConflict, http.StatusConflict},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeInvalidAmount, http.StatusBadRequest},
		{ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeInternal, http.StatusInternalServerError},
		{"SOMETHING_NEW", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		code string
		want string
	}{
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeAlreadyPaid, ErrCodeAlreadyPaid},
		{"INVALID_RESIDENT", ErrCodeInvalidInput},
		{"INVALID_DESCRIPTION", ErrCodeInvalidInput},
		{"INVALID_TENANT", ErrCodeInvalidInput},
		{"INVALID_AMOUNT", ErrCodeInvalidAmount},
		{"INVALID_STATE", ErrCodeInvalidState},
		{"", ErrCodeInternal},
		{"UNKNOWN_CODE", ErrCodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeErrorCode(tt.code))
		})
	}
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(2, 20, 41)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 20, meta.PageSize)
	assert.Equal(t, int64(41), meta.Total)
	assert.Equal(t, 3, meta.TotalPages)

	empty := NewMeta(1, 20, 0)
	assert.Equal(t, 0, empty.TotalPages)
}

func TestDefaultListRequest(t *testing.T) {
	req := ListRequest{}.DefaultListRequest()
	assert.Equal(t, 1, req.Page)
	assert.Equal(t, 20, req.PageSize)

	req = ListRequest{Page: 3, PageSize: 50}.DefaultListRequest()
	assert.Equal(t, 3, req.Page)
	assert.Equal(t, 50, req.PageSize)
}
