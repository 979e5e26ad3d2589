package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBreaker_OpensAndRecovers(t *testing.T) {
	clock := time.Unix(0, 0)
	var changes []string
	b := NewBreaker("cache", BreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Second,
		OnStateChange: func(from, to State) {
			changes = append(changes, from.String()+"->"+to.String())
		},
	})
	b.now = func() time.Time { return clock }

	down := errors.New("down")
	fail := func(context.Context) error { return down }
	ok := func(context.Context) error { return nil }
	ctx := context.Background()

	assert.ErrorIs(t, b.Do(ctx, fail), down)
	assert.Equal(t, StateClosed, b.State())
	assert.ErrorIs(t, b.Do(ctx, fail), down)
	assert.Equal(t, StateOpen, b.State())

	called := false
	err := b.Do(ctx, func(context.Context) error { called = true; return nil })
	assert.ErrorIs(t, err, ErrBreakerOpen)
	assert.False(t, called)

	clock = clock.Add(time.Second)
	require.NoError(t, b.Do(ctx, ok))
	assert.Equal(t, StateClosed, b.State())
	assert.Equal(t, []string{"closed->open", "open->half-open", "half-open->closed"}, changes)
}

func TestBreaker_FailedProbeReopens(t *testing.T) {
	clock := time.Unix(0, 0)
	b := NewBreaker("cache", BreakerConfig{FailureThreshold: 1, ResetTimeout: time.Second})
	b.now = func() time.Time { return clock }
	ctx := context.Background()
	down := errors.New("down")

	_ = b.Do(ctx, func(context.Context) error { return down })
	clock = clock.Add(2 * time.Second)
	_ = b.Do(ctx, func(context.Context) error { return down })
	assert.Equal(t, StateOpen, b.State())
	assert.ErrorIs(t, b.Do(ctx, func(context.Context) error { return nil }), ErrBreakerOpen)
}

func TestBreaker_SuccessResetsFailureCount(t *testing.T) {
	b := NewBreaker("cache", BreakerConfig{FailureThreshold: 2})
	ctx := context.Background()
	down := errors.New("down")

	_ = b.Do(ctx, func(context.Context) error { return down })
	_ = b.Do(ctx, func(context.Context) error { return nil })
	_ = b.Do(ctx, func(context.Context) error { return down })
	assert.Equal(t, StateClosed, b.State())
}

func TestBreaker_CallerCancellationIsNotAFailure(t *testing.T) {
	b := NewBreaker("cache", BreakerConfig{FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = b.Do(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.Equal(t, StateClosed, b.State())
}
