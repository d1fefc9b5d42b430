package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	cases := []struct {
		err  *Error
		want int
	}{
		{NotFound("Queue not found"), http.StatusNotFound},
		{InvalidState("Queue is not accepting entries"), http.StatusBadRequest},
		{Validation("queueId required"), http.StatusBadRequest},
		{Conflict("Email already registered"), http.StatusConflict},
		{Unauthorized("Invalid credentials"), http.StatusUnauthorized},
		{Upstream("Failed to initialize payment", errors.New("timeout")), http.StatusBadGateway},
		{Internal("boom", nil), http.StatusInternalServerError},
	}

	for _, tt := range cases {
		assert.Equal(t, tt.want, tt.err.StatusCode(), tt.err.Message)
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("join: %w", NotFound("Queue not found"))

	assert.Equal(t, KindNotFound, KindOf(err))
	assert.True(t, Is(err, KindNotFound))
	assert.Equal(t, KindInternal, KindOf(errors.New("plain")))
	assert.False(t, Is(nil, KindInternal))
}

func TestErrorMessageIncludesCause(t *testing.T) {
	err := Internal("failed to call next", errors.New("connection reset"))
	assert.Equal(t, "failed to call next: connection reset", err.Error())
	assert.ErrorContains(t, errors.Unwrap(err), "connection reset")
}
