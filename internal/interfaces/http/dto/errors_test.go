package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"not found", "NOT_FOUND", ErrCodeNotFound},
		{"already pending", "ALREADY_PENDING", ErrCodeAlreadyPending},
		{"target edit disabled", "TARGET_EDIT_DISABLED", ErrCodeTargetEditDisabled},
		{"invalid state", "INVALID_STATE", ErrCodeInvalidState},
		{"concurrency conflict", "CONCURRENCY_CONFLICT", ErrCodeConcurrencyConflict},
		{"validation error", "VALIDATION_ERROR", ErrCodeValidation},
		{"fact inactive maps to invalid state", "FACT_INACTIVE", ErrCodeInvalidState},
		{"already wire format passes through", ErrCodeNotFound, ErrCodeNotFound},
		{"unknown code passes through", "SOMETHING_ELSE", "SOMETHING_ELSE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		expected int
	}{
		{"not found is 404", ErrCodeNotFound, http.StatusNotFound},
		{"already pending is 409", ErrCodeAlreadyPending, http.StatusConflict},
		{"concurrency conflict is 409", ErrCodeConcurrencyConflict, http.StatusConflict},
		{"target edit disabled is 422", ErrCodeTargetEditDisabled, http.StatusUnprocessableEntity},
		{"invalid state is 422", ErrCodeInvalidState, http.StatusUnprocessableEntity},
		{"validation is 400", ErrCodeValidation, http.StatusBadRequest},
		{"internal is 500", ErrCodeInternal, http.StatusInternalServerError},
		{"unknown code defaults to 500", "ERR_NOBODY_KNOWS", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}
