package ai

import (
	"context"
	"testing"

	"golang.org/x/time/rate"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type echoResponder struct {
	calls int
}

func (r *echoResponder) Reply(ctx context.Context, userID string, text string) (string, error) {
	r.calls++
	return "echo: " + text, nil
}

func TestRateLimitedResponderAllowsWithinBurst(t *testing.T) {
	inner := &echoResponder{}
	limited := NewRateLimited(inner, rate.Limit(0), 2)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		reply, err := limited.Reply(ctx, "42", "hello")
		require.NoError(t, err)
		assert.Equal(t, "echo: hello", reply)
	}

	_, err := limited.Reply(ctx, "42", "hello")
	assert.ErrorIs(t, err, ErrRateLimited)
	assert.Equal(t, 2, inner.calls)
}

func TestRateLimitedResponderIsPerUser(t *testing.T) {
	inner := &echoResponder{}
	limited := NewRateLimited(inner, rate.Limit(0), 1)
	ctx := context.Background()

	_, err := limited.Reply(ctx, "42", "hello")
	require.NoError(t, err)
	_, err = limited.Reply(ctx, "42", "hello")
	assert.ErrorIs(t, err, ErrRateLimited)

	// A different user has their own bucket.
	_, err = limited.Reply(ctx, "43", "hello")
	assert.NoError(t, err)
}
