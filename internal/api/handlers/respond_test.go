package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/markdave123-py/insightcart/internal/core/analysis"
	"github.com/markdave123-py/insightcart/internal/services"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{services.ErrNoActiveUser, http.StatusUnauthorized},
		{services.ErrForbidden, http.StatusForbidden},
		{fmt.Errorf("wrapped: %w", services.ErrNotFound), http.StatusNotFound},
		{services.ErrInvalidRating, http.StatusBadRequest},
		{services.ErrInvalidSuggestion, http.StatusBadRequest},
		{services.ErrExportDisabled, http.StatusNotImplemented},
		{fmt.Errorf("%w: 503", analysis.ErrRequestFailed), http.StatusBadGateway},
		{analysis.ErrMalformedResponse, http.StatusBadGateway},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		status, _ := statusFor(tt.err)
		assert.Equal(t, tt.status, status, tt.err.Error())
	}

	_, msg := statusFor(analysis.ErrMalformedResponse)
	assert.Equal(t, services.AuditFailedMessage, msg)
}

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	writeError(rec, services.ErrInvalidRating)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"validation failed: rating must be between 1 and 10"}`, rec.Body.String())
}

func TestDecodeJSON(t *testing.T) {
	var v struct{ Score int }
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	require.NoError(t, decodeJSON(req, &v))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"score":4}`))
	require.NoError(t, decodeJSON(req, &v))
	assert.Equal(t, 4, v.Score)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"score":`))
	assert.Error(t, decodeJSON(req, &v))
}
