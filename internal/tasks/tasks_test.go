package tasks

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-komisi/internal/dashboard"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
)

type stubWarmer struct {
	days   int
	warmed []dashboard.Filter
	err    error
}

func (s *stubWarmer) DefaultFilter(days int) dashboard.Filter {
	s.days = days
	to := time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC)
	return dashboard.Filter{From: to.AddDate(0, 0, -(days - 1)), To: to}
}

func (s *stubWarmer) Warm(_ context.Context, f dashboard.Filter) error {
	s.warmed = append(s.warmed, f)
	return s.err
}

func TestWarmPayloadRoundTrip(t *testing.T) {
	task, err := NewDashboardWarmTask(WarmPayload{Days: 7, Seller: "Rina", Topic: events.TopicInvoicePaid})
	require.NoError(t, err)
	require.Equal(t, TypeDashboardWarm, task.Type())

	p, err := DecodeWarmPayload(task)
	require.NoError(t, err)
	require.Equal(t, 7, p.Days)
	require.Equal(t, "Rina", p.Seller)
}

func TestDecodeWarmPayloadRejectsGarbage(t *testing.T) {
	_, err := DecodeWarmPayload(asynq.NewTask(TypeDashboardWarm, []byte("{")))
	require.Error(t, err)
}

func TestWarmHandlerWarmsDefaultWindow(t *testing.T) {
	w := &stubWarmer{}
	task, err := NewDashboardWarmTask(WarmPayload{Days: 30, Seller: "Rina"})
	require.NoError(t, err)

	require.NoError(t, WarmHandler{Dashboard: w}.ProcessTask(context.Background(), task))
	require.Equal(t, 30, w.days)
	require.Len(t, w.warmed, 1)
	require.Equal(t, "Rina", w.warmed[0].Seller)
	require.Equal(t, "2026-03-02", w.warmed[0].From.Format("2006-01-02"))
}

func TestWarmHandlerBadPayloadSkipsRetry(t *testing.T) {
	err := WarmHandler{Dashboard: &stubWarmer{}}.ProcessTask(context.Background(), asynq.NewTask(TypeDashboardWarm, []byte("nope")))
	require.ErrorIs(t, err, asynq.SkipRetry)
}

func TestWarmHandlerPropagatesWarmFailure(t *testing.T) {
	w := &stubWarmer{err: errors.New("redis down")}
	task, err := NewDashboardWarmTask(WarmPayload{Days: 1})
	require.NoError(t, err)
	err = WarmHandler{Dashboard: w}.ProcessTask(context.Background(), task)
	require.Error(t, err)
	require.NotErrorIs(t, err, asynq.SkipRetry)
}

func TestEnqueuerIgnoresUnrelatedTopics(t *testing.T) {
	// A nil client would panic if Schedule tried to enqueue.
	e := Enqueuer{}
	require.NoError(t, e.Schedule(context.Background(), dbgen.DomainEvent{Topic: events.TopicSettingsUpdated}))
	require.NoError(t, e.Schedule(context.Background(), dbgen.DomainEvent{Topic: events.TopicInvoiceCreated}))
}

func TestEnqueuerOptionsDefaults(t *testing.T) {
	opts := Enqueuer{}.options()
	require.Len(t, opts, 4)
	require.Equal(t, asynq.QueueOpt, opts[0].Type())
	require.Equal(t, defaultQueue, opts[0].Value())
}

func TestServeMuxRoutesWarmTasks(t *testing.T) {
	w := &stubWarmer{}
	mux := NewServeMux(WarmHandler{Dashboard: w})
	task, err := NewDashboardWarmTask(WarmPayload{Days: 3})
	require.NoError(t, err)
	require.NoError(t, mux.ProcessTask(context.Background(), task))
	require.Len(t, w.warmed, 1)
}

func TestRedisOptMirrorsClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "cache:6379", DB: 2, Password: "pw"})
	t.Cleanup(func() { _ = client.Close() })
	opt := RedisOpt(client)
	require.Equal(t, "cache:6379", opt.Addr)
	require.Equal(t, 2, opt.DB)
	require.Equal(t, "pw", opt.Password)
}
