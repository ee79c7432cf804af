package dashboard_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-komisi/internal/cache"
	"github.com/noah-isme/backend-komisi/internal/dashboard"
	dbgen "github.com/noah-isme/backend-komisi/internal/db/gen"
	"github.com/noah-isme/backend-komisi/internal/events"
)

type stubQueries struct {
	summaryCalls int
	lastSummary  dbgen.GetCommissionSummaryParams
}

func (s *stubQueries) GetCommissionSummary(_ context.Context, arg dbgen.GetCommissionSummaryParams) (dbgen.GetCommissionSummaryRow, error) {
	s.summaryCalls++
	s.lastSummary = arg
	return dbgen.GetCommissionSummaryRow{InvoiceCount: 2, TotalInvoiced: 1500, TotalCommission: 300, PaidCommission: 200, PendingCommission: 100}, nil
}

func (s *stubQueries) ListMonthlyCommission(_ context.Context, _ dbgen.ListMonthlyCommissionParams) ([]dbgen.ListMonthlyCommissionRow, error) {
	return []dbgen.ListMonthlyCommissionRow{{
		Month:           pgtype.Date{Time: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), Valid: true},
		InvoiceCount:    2,
		TotalInvoiced:   1500,
		TotalCommission: 300,
	}}, nil
}

func (s *stubQueries) ListProductCommissionTotals(_ context.Context, _ dbgen.ListProductCommissionTotalsParams) ([]dbgen.ListProductCommissionTotalsRow, error) {
	return []dbgen.ListProductCommissionTotalsRow{{ProductName: "Gold", InvoiceCount: 2, TotalAmount: 500, TotalCommission: 100}}, nil
}

func newService(t *testing.T) (*dashboard.Service, *stubQueries) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	q := &stubQueries{}
	return &dashboard.Service{
		Q:            q,
		Cache:        cache.NewJSON(rdb, time.Minute),
		Logger:       zerolog.Nop(),
		DefaultRange: 30,
		Now:          func() time.Time { return time.Date(2024, 3, 31, 15, 0, 0, 0, time.UTC) },
	}, q
}

func TestSummaryCachedUntilInvalidated(t *testing.T) {
	svc, q := newService(t)
	ctx := context.Background()
	f := svc.DefaultFilter(0)

	first, err := svc.Summary(ctx, f)
	require.NoError(t, err)
	require.Equal(t, "2024-03-02", first.From)
	require.Equal(t, "2024-03-31", first.To)
	require.Equal(t, "2024-03", first.Monthly[0].Month)
	require.Equal(t, "Gold", first.Products[0].Name)

	_, err = svc.Summary(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 1, q.summaryCalls)

	inv := dashboard.Invalidator{Svc: svc}
	require.NoError(t, inv.Notify(ctx, dbgen.DomainEvent{Topic: events.TopicProductChanged}))
	_, err = svc.Summary(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 1, q.summaryCalls, "product events do not change invoice snapshots")

	require.NoError(t, inv.Notify(ctx, dbgen.DomainEvent{Topic: events.TopicInvoicePaid}))
	_, err = svc.Summary(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 2, q.summaryCalls)
}

func TestSummaryCacheKeepsSellerCase(t *testing.T) {
	svc, q := newService(t)
	ctx := context.Background()
	lower, upper := svc.DefaultFilter(0), svc.DefaultFilter(0)
	lower.Seller, upper.Seller = "ana", "Ana"

	first, err := svc.Summary(ctx, lower)
	require.NoError(t, err)
	require.Equal(t, "ana", first.Seller)

	second, err := svc.Summary(ctx, upper)
	require.NoError(t, err)
	require.Equal(t, 2, q.summaryCalls)
	require.Equal(t, "Ana", second.Seller)
	require.Equal(t, "Ana", q.lastSummary.Seller.String)
}

func TestWarmFillsCache(t *testing.T) {
	svc, q := newService(t)
	ctx := context.Background()
	f := svc.DefaultFilter(7)
	require.NoError(t, svc.Warm(ctx, f))
	_, err := svc.Summary(ctx, f)
	require.NoError(t, err)
	require.Equal(t, 1, q.summaryCalls)
}

func TestSummaryWithoutRedis(t *testing.T) {
	q := &stubQueries{}
	svc := &dashboard.Service{Q: q, Cache: cache.NewJSON(nil, time.Minute), Logger: zerolog.Nop()}
	_, err := svc.Summary(context.Background(), svc.DefaultFilter(1))
	require.NoError(t, err)
	_, err = svc.Summary(context.Background(), svc.DefaultFilter(1))
	require.NoError(t, err)
	require.Equal(t, 2, q.summaryCalls)
}

func TestHandlerParsesFilters(t *testing.T) {
	svc, q := newService(t)
	h := &dashboard.Handler{Svc: svc}

	rec := httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?from=2024-01-01&to=2024-01-31&seller=ana", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ana", q.lastSummary.Seller.String)
	require.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), q.lastSummary.ToDate.Time)

	rec = httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?from=2024-02-01&to=2024-01-01", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Summary(rec, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard/summary?from=2024-02-01", nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
}
