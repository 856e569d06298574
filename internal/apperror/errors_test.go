package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", InvalidInput("bad"), http.StatusBadRequest},
		{"conflict", Conflict("dup"), http.StatusConflict},
		{"unauthorized", Unauthorized("no"), http.StatusUnauthorized},
		{"not found", NotFound("gone"), http.StatusNotFound},
		{"too large", TooLarge("big"), http.StatusRequestEntityTooLarge},
		{"upstream", Upstream("mail", errors.New("relay down")), http.StatusInternalServerError},
		{"internal", Internal("db", errors.New("boom")), http.StatusInternalServerError},
		{"plain error", errors.New("plain"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("ctx: %w", NotFound("gone")), http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestErrorIsSentinel(t *testing.T) {
	err := fmt.Errorf("rate: %w", NotFound("Review not found."))
	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrConflict))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("dial tcp: refused")
	err := Upstream("", cause)
	assert.True(t, errors.Is(err, cause))
	assert.True(t, errors.Is(err, ErrUpstreamFailure))
}

func TestPublicMessage(t *testing.T) {
	assert.Equal(t, "Review not found.", PublicMessage(NotFound("Review not found.")))
	assert.Equal(t, "relay down", PublicMessage(Upstream("", errors.New("relay down"))))
	assert.Equal(t, "Internal server error: relay down",
		PublicMessage(Upstream("Internal server error", errors.New("relay down"))))
	assert.Equal(t, "Internal server error", PublicMessage(Internal("insert review", errors.New("secret dsn"))))
	assert.Equal(t, "Internal server error", PublicMessage(errors.New("raw")))
}
