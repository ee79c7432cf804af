package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestLimiterAllowSlidingWindow(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := Limiter{Client: client, Prefix: "rl:"}
	ctx := context.Background()
	window := 2 * time.Second

	for want := 1; want >= 0; want-- {
		allowed, remaining, resetAt, err := limiter.Allow(ctx, "unlock:10.0.0.1", window, 2)
		require.NoError(t, err)
		require.True(t, allowed)
		require.Equal(t, want, remaining)
		require.WithinDuration(t, time.Now().Add(window), resetAt, window)
	}

	allowed, remaining, _, err := limiter.Allow(ctx, "unlock:10.0.0.1", window, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)

	// The key expires with the window.
	mr.FastForward(window)
	allowed, _, _, err = limiter.Allow(ctx, "unlock:10.0.0.1", window, 2)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestLimiterAllowDisabled(t *testing.T) {
	allowed, remaining, _, err := Limiter{}.Allow(context.Background(), "k", time.Minute, 5)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 5, remaining)
}
