package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-komisi/internal/dashboard"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
)

// TypeDashboardWarm recomputes the default dashboard window after invoice changes.
const TypeDashboardWarm = "dashboard:warm"

const defaultQueue = "default"

// RedisOpt points asynq at the same Redis the rest of the process uses.
func RedisOpt(client *redis.Client) asynq.RedisClientOpt {
	o := client.Options()
	return asynq.RedisClientOpt{
		Network:   o.Network,
		Addr:      o.Addr,
		Username:  o.Username,
		Password:  o.Password,
		DB:        o.DB,
		TLSConfig: o.TLSConfig,
	}
}

// WarmPayload is the body of a dashboard:warm task.
type WarmPayload struct {
	Days   int    `json:"days"`
	Seller string `json:"seller,omitempty"`
	Topic  string `json:"topic,omitempty"`
}

// NewDashboardWarmTask builds a warm task for the trailing days window.
func NewDashboardWarmTask(p WarmPayload, opts ...asynq.Option) (*asynq.Task, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("tasks: encode warm payload: %w", err)
	}
	return asynq.NewTask(TypeDashboardWarm, body, opts...), nil
}

// DecodeWarmPayload parses a dashboard:warm task body.
func DecodeWarmPayload(t *asynq.Task) (WarmPayload, error) {
	var p WarmPayload
	if t == nil {
		return p, errors.New("tasks: nil task")
	}
	if len(t.Payload()) == 0 {
		return p, nil
	}
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		return p, fmt.Errorf("tasks: decode warm payload: %w", err)
	}
	return p, nil
}

// Enqueuer schedules background work for domain events. It implements events.Scheduler.
type Enqueuer struct {
	Client *asynq.Client
	Queue  string
	Days   int
	// Unique collapses bursts of invoice events into one warm task per window.
	Unique time.Duration
	Logger zerolog.Logger
}

// Schedule enqueues a dashboard warm task for events that change invoice aggregates.
func (e Enqueuer) Schedule(ctx context.Context, ev dbgen.DomainEvent) error {
	if e.Client == nil || !events.AffectsDashboard(ev.Topic) {
		return nil
	}
	task, err := NewDashboardWarmTask(WarmPayload{Days: e.Days, Topic: ev.Topic})
	if err != nil {
		return err
	}
	_, err = e.Client.EnqueueContext(ctx, task, e.options()...)
	if errors.Is(err, asynq.ErrDuplicateTask) || errors.Is(err, asynq.ErrTaskIDConflict) {
		e.Logger.Debug().Str("topic", ev.Topic).Msg("dashboard warm already queued")
		return nil
	}
	if err != nil {
		return fmt.Errorf("tasks: enqueue %s: %w", TypeDashboardWarm, err)
	}
	return nil
}

func (e Enqueuer) options() []asynq.Option {
	queue := e.Queue
	if queue == "" {
		queue = defaultQueue
	}
	unique := e.Unique
	if unique <= 0 {
		unique = 30 * time.Second
	}
	return []asynq.Option{
		asynq.Queue(queue),
		asynq.Unique(unique),
		asynq.MaxRetry(3),
		asynq.Timeout(time.Minute),
	}
}

// Warmer is the dashboard surface the worker needs.
type Warmer interface {
	DefaultFilter(days int) dashboard.Filter
	Warm(ctx context.Context, f dashboard.Filter) error
}

// WarmHandler processes dashboard:warm tasks.
type WarmHandler struct {
	Dashboard Warmer
	Logger    zerolog.Logger
}

// ProcessTask implements asynq.Handler.
func (h WarmHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	if h.Dashboard == nil {
		return fmt.Errorf("tasks: dashboard not configured: %w", asynq.SkipRetry)
	}
	p, err := DecodeWarmPayload(t)
	if err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	f := h.Dashboard.DefaultFilter(p.Days)
	f.Seller = p.Seller
	if err := h.Dashboard.Warm(ctx, f); err != nil {
		return fmt.Errorf("tasks: warm dashboard: %w", err)
	}
	h.Logger.Info().
		Str("from", f.From.Format("2006-01-02")).
		Str("to", f.To.Format("2006-01-02")).
		Str("trigger", p.Topic).
		Msg("dashboard warmed")
	return nil
}

// NewServeMux registers every task handler served by the worker.
func NewServeMux(warm WarmHandler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Handle(TypeDashboardWarm, warm)
	return mux
}
