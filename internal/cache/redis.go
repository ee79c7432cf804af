package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
)

// Connect opens a Redis client from a redis:// URL, instruments it with OpenTelemetry
// and verifies it with a PING. Instrumentation failures are returned alongside a
// usable client.
func Connect(ctx context.Context, url string, withMetrics bool) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: parse url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: ping: %w", err)
	}
	var instrumentErr error
	if err := redisotel.InstrumentTracing(client); err != nil {
		instrumentErr = fmt.Errorf("cache: instrument tracing: %w", err)
	}
	if withMetrics {
		if err := redisotel.InstrumentMetrics(client); err != nil {
			instrumentErr = errors.Join(instrumentErr, fmt.Errorf("cache: instrument metrics: %w", err))
		}
	}
	return client, instrumentErr
}
