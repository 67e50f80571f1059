package apierr

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "nil", err: nil, want: 0},
		{name: "authentication", err: New(Authentication, "bad token"), want: 3},
		{name: "not found", err: New(NotFound, "no such sensor"), want: 4},
		{name: "validation", err: New(Validation, "bad range"), want: 5},
		{name: "rate limited", err: New(RateLimited, "slow down"), want: 2},
		{name: "transport", err: New(Transport, "connection refused"), want: 2},
		{name: "server", err: &Error{Kind: ServerError, StatusCode: 500}, want: 2},
		{name: "wrapped", err: fmt.Errorf("listing devices: %w", New(NotFound, "x")), want: 4},
		{name: "plain error", err: errors.New("boom"), want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

func TestErrorKeepsCause(t *testing.T) {
	err := Wrap(Transport, context.DeadlineExceeded, "request timed out")

	assert.True(t, errors.Is(err, context.DeadlineExceeded))
	assert.True(t, Retryable(err))
	assert.False(t, Retryable(New(NotFound, "gone")))
	assert.Equal(t, "request timed out: context deadline exceeded", err.Error())
}

func TestErrorMessageContext(t *testing.T) {
	err := (&Error{Kind: ServerError, Message: "server error", StatusCode: 502}).WithID("2001")

	assert.Equal(t, "server error (id 2001): HTTP 502", err.Error())
	assert.Equal(t, "ServerError", KindOf(err).String())
	assert.True(t, IsNotFound(New(NotFound, "x")))
	assert.True(t, IsUnauthorized(New(Authentication, "x")))
}
