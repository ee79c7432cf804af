package health

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/noah-isme/backend-komisi/internal/common"
)

const defaultProbeTimeout = 500 * time.Millisecond

var draining atomic.Bool

// SetReady toggles readiness. The API flips it off when it starts draining on shutdown.
func SetReady(v bool) { draining.Store(!v) }

// IsReady reports whether the process still accepts traffic.
func IsReady() bool { return !draining.Load() }

// Probe is one readiness dependency.
type Probe struct {
	Name    string
	Timeout time.Duration
	Check   func(context.Context) error
}

// Postgres probes the pool with a ping.
func Postgres(pool *pgxpool.Pool, timeout time.Duration) Probe {
	return Probe{Name: "db", Timeout: timeout, Check: func(ctx context.Context) error {
		if pool == nil {
			return errors.New("db not configured")
		}
		return pool.Ping(ctx)
	}}
}

// Redis probes the client with PING.
func Redis(client *redis.Client, timeout time.Duration) Probe {
	return Probe{Name: "redis", Timeout: timeout, Check: func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis not configured")
		}
		return client.Ping(ctx).Err()
	}}
}

// Handler serves /health/live and /health/ready.
type Handler struct {
	Probes []Probe
}

// Live always answers 200 "ok" while the process runs.
func (Handler) Live(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

type readyBody struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

// Ready runs every probe concurrently and answers 503 when any fails or the process is draining.
func (h Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if !IsReady() {
		common.JSON(w, http.StatusServiceUnavailable, readyBody{Status: "draining"})
		return
	}
	results := h.run(r.Context())
	body := readyBody{Status: "ok", Checks: make(map[string]string, len(results))}
	for i, err := range results {
		body.Checks[h.Probes[i].Name] = "ok"
		if err != nil {
			body.Checks[h.Probes[i].Name] = err.Error()
			body.Status = "degraded"
		}
	}
	code := http.StatusOK
	if body.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	common.JSON(w, code, body)
}

func (h Handler) run(ctx context.Context) []error {
	results := make([]error, len(h.Probes))
	var g errgroup.Group
	for i, p := range h.Probes {
		g.Go(func() error {
			timeout := p.Timeout
			if timeout <= 0 {
				timeout = defaultProbeTimeout
			}
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			results[i] = p.Check(pctx)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
