package util

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{MissingField("topic"), http.StatusBadRequest},
		{InvalidRange("progress_percentage", "must be between 0 and 100"), http.StatusBadRequest},
		{ErrUnauthenticated, http.StatusUnauthorized},
		{ErrSessionNotFound, http.StatusNotFound},
		{fmt.Errorf("wrapped: %w", ErrCourseNotFound), http.StatusNotFound},
		{ErrRevisionConflict, http.StatusConflict},
		{ErrSessionClosed, http.StatusConflict},
		{MalformedModelOutput(errors.New("bad")), http.StatusInternalServerError},
		{ProviderUnavailable(errors.New("502")), http.StatusInternalServerError},
		{ProviderTimeout(errors.New("deadline")), http.StatusInternalServerError},
		{errors.New("unknown"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.code, StatusFor(tt.err), tt.err.Error())
	}
}

func TestAppErrorIs(t *testing.T) {
	err := MissingField("topic")
	assert.ErrorIs(t, err, ErrMissingRequiredField)
	assert.NotErrorIs(t, err, ErrInvalidRange)
	assert.NotErrorIs(t, ErrSessionNotFound, ErrCourseNotFound)
	assert.ErrorIs(t, fmt.Errorf("ctx: %w", ErrSessionClosed), ErrSessionClosed)
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "topic is required", PublicMessage(MissingField("topic")))
	assert.Equal(t, "session not found", PublicMessage(ErrSessionNotFound))
	assert.Equal(t, "generation provider unavailable", PublicMessage(ProviderUnavailable(errors.New("dial tcp: refused"))))
	assert.Equal(t, "internal server error", PublicMessage(errors.New("sql: connection reset")))
}
