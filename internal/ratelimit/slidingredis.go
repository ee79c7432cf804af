package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Limiter counts events per key over a sliding window. Each key is a Redis sorted set
// whose members are scored by their Unix nanosecond timestamp. A nil Client disables it.
type Limiter struct {
	Client *redis.Client
	Prefix string
}

// Allow records an event for key and reports whether the window still holds at most
// limit events. resetAt is when the oldest counted event leaves the window.
func (l Limiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (allowed bool, remaining int, resetAt time.Time, err error) {
	if l.Client == nil || limit <= 0 || window <= 0 {
		return true, limit, time.Now().Add(window), nil
	}
	n, err := l.Record(ctx, key, window)
	if err != nil {
		return false, 0, time.Now().Add(window), err
	}
	wait, err := l.RetryAfter(ctx, key, window)
	if err != nil || wait == 0 {
		wait = window
	}
	return n <= limit, max(limit-n, 0), time.Now().Add(wait), nil
}

// Record adds an event for key and returns how many events fall inside the window, including this one.
func (l Limiter) Record(ctx context.Context, key string, window time.Duration) (int, error) {
	if l.Client == nil || window <= 0 {
		return 0, nil
	}
	now := time.Now()
	k := l.Prefix + key
	var card *redis.IntCmd
	_, err := l.Client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.ZRemRangeByScore(ctx, k, "-inf", scoreBefore(now, window))
		p.ZAdd(ctx, k, redis.Z{Score: float64(now.UnixNano()), Member: uuid.NewString()})
		card = p.ZCard(ctx, k)
		p.PExpire(ctx, k, window)
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(card.Val()), nil
}

// Count returns the number of events inside the window without recording a new one.
func (l Limiter) Count(ctx context.Context, key string, window time.Duration) (int, error) {
	if l.Client == nil || window <= 0 {
		return 0, nil
	}
	n, err := l.Client.ZCount(ctx, l.Prefix+key, scoreBefore(time.Now(), window), "+inf").Result()
	return int(n), err
}

// RetryAfter reports how long until the oldest event in the window expires.
// It returns zero when the key has no events.
func (l Limiter) RetryAfter(ctx context.Context, key string, window time.Duration) (time.Duration, error) {
	if l.Client == nil || window <= 0 {
		return 0, nil
	}
	oldest, err := l.Client.ZRangeByScoreWithScores(ctx, l.Prefix+key, &redis.ZRangeBy{
		Min: scoreBefore(time.Now(), window), Max: "+inf", Count: 1,
	}).Result()
	if err != nil || len(oldest) == 0 {
		return 0, err
	}
	return max(time.Until(time.Unix(0, int64(oldest[0].Score)).Add(window)), 0), nil
}

// Reset drops every recorded event for key.
func (l Limiter) Reset(ctx context.Context, key string) error {
	if l.Client == nil {
		return nil
	}
	return l.Client.Del(ctx, l.Prefix+key).Err()
}

// scoreBefore is the exclusive lower bound for events still inside the window.
func scoreBefore(now time.Time, window time.Duration) string {
	return "(" + strconv.FormatInt(now.Add(-window).UnixNano(), 10)
}
