package apierror_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dealdeskhq/dealdesk/internal/apierror"
)

func TestAPIError_Error(t *testing.T) {
	err := apierror.NewAPIError(apierror.ErrNotFound, "Deal not found", nil)
	assert.Equal(t, "NOT_FOUND: Deal not found", err.Error())
}

func TestMapErrorToHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{
			name:     "not found",
			err:      apierror.NewAPIError(apierror.ErrNotFound, "Deal not found", nil),
			expected: http.StatusNotFound,
		},
		{
			name:     "conflict",
			err:      apierror.NewAPIError(apierror.ErrConflict, "Requirement already approved", nil),
			expected: http.StatusConflict,
		},
		{
			name:     "invalid input",
			err:      apierror.NewAPIError(apierror.ErrInvalidInput, "A revision comment is required", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "bad request",
			err:      apierror.NewAPIError(apierror.ErrBadRequest, "Malformed payload", nil),
			expected: http.StatusBadRequest,
		},
		{
			name:     "internal server",
			err:      apierror.NewAPIError(apierror.ErrInternalServer, "Database error occurred", nil),
			expected: http.StatusInternalServerError,
		},
		{
			name:     "unclassified error",
			err:      errors.New("something unexpected"),
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apierror.MapErrorToHTTPStatus(tt.err))
		})
	}
}
