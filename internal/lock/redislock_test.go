package lock_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-komisi/internal/lock"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestWithLockSerialises(t *testing.T) {
	_, client := newTestClient(t)
	locker := lock.Locker{R: client, RetryBackoff: 2 * time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var holders, peak, runs atomic.Int32
	g, gctx := errgroup.WithContext(ctx)
	for range 5 {
		g.Go(func() error {
			return locker.WithLock(gctx, lock.Key("invoice", "demo"), time.Second, func(context.Context) error {
				n := holders.Add(1)
				defer holders.Add(-1)
				for {
					p := peak.Load()
					if n <= p || peak.CompareAndSwap(p, n) {
						break
					}
				}
				time.Sleep(5 * time.Millisecond)
				runs.Add(1)
				return nil
			})
		})
	}
	require.NoError(t, g.Wait())
	require.EqualValues(t, 5, runs.Load())
	require.EqualValues(t, 1, peak.Load())
}

func TestWithLockBusy(t *testing.T) {
	mr, client := newTestClient(t)

	key := lock.Key("invoice", "held")
	require.NoError(t, mr.Set(key, "someone-else"))

	locker := lock.Locker{R: client, RetryBackoff: 5 * time.Millisecond, MaxWait: 30 * time.Millisecond}
	called := false
	err := locker.WithLock(context.Background(), key, time.Second, func(context.Context) error {
		called = true
		return nil
	})
	require.ErrorIs(t, err, lock.ErrBusy)
	require.False(t, called)
	require.Equal(t, "lock:invoice:held", key)
}

func TestWithLockKeepsForeignOwner(t *testing.T) {
	mr, client := newTestClient(t)

	key := lock.Key("invoice", "expired")
	locker := lock.Locker{R: client}
	err := locker.WithLock(context.Background(), key, time.Second, func(context.Context) error {
		// Simulate the TTL lapsing and another process taking the lock.
		require.NoError(t, mr.Set(key, "other-holder"))
		return nil
	})
	require.NoError(t, err)

	got, err := mr.Get(key)
	require.NoError(t, err)
	require.Equal(t, "other-holder", got)
}

func TestWithLockReturnsCallbackError(t *testing.T) {
	mr, client := newTestClient(t)

	key := lock.Key("invoice", "failing")
	boom := errors.New("boom")
	err := lock.Locker{R: client}.WithLock(context.Background(), key, time.Second, func(context.Context) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.False(t, mr.Exists(key))
}

func TestWithLockWithoutClient(t *testing.T) {
	err := lock.Locker{}.WithLock(context.Background(), "k", time.Second, func(context.Context) error { return nil })
	require.Error(t, err)
}
