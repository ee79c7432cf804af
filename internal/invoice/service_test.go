package invoice

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/events"
	"github.com/noah-isme/backend-komisi/internal/lock"
)

const eps = 1e-9

type fixture struct {
	svc    *Service
	store  *memStore
	topics *topicLog
	gold   string
	silver string
	old    string
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := newMemStore()
	topics := &topicLog{}
	f := fixture{
		store:  store,
		topics: topics,
		gold:   store.addProduct("Gold", 20, true),
		silver: store.addProduct("Silver", 10, true),
		old:    store.addProduct("Legacy", 50, false),
	}
	f.svc = &Service{
		Store:    store,
		Settings: fixedRest(25),
		Locker:   lock.Locker{R: rdb, RetryBackoff: 5 * time.Millisecond, MaxWait: time.Second},
		LockTTL:  5 * time.Second,
		Events:   topics,
		Logger:   zerolog.Nop(),
		Now:      func() time.Time { return time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC) },
	}
	return f
}

func appStatus(t *testing.T, err error) (int, string) {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.HTTPStatus, appErr.Code
}

func TestPreviewUsesSettingsRest(t *testing.T) {
	f := newFixture(t)
	calc, err := f.svc.Preview(context.Background(), PreviewInput{
		TotalAmount: 1000,
		Products:    []LineInput{{ProductID: f.gold, Amount: 300}},
	})
	require.NoError(t, err)
	require.Equal(t, 700.0, calc.Result.RestAmount)
	require.InDelta(t, 175, calc.Result.RestCommission, eps)
	require.InDelta(t, 235, calc.Result.TotalCommission, eps)
	require.Equal(t, []string{f.gold}, calc.ProductIDs)
	require.False(t, calc.OverAllocated)
	require.Zero(t, f.store.txCount)
}

func TestPreviewRoundsDisplayOnly(t *testing.T) {
	f := newFixture(t)
	rest := 25.0
	calc, err := f.svc.Preview(context.Background(), PreviewInput{
		TotalAmount:    100,
		RestPercentage: &rest,
		Products:       []LineInput{{ProductID: f.silver, Amount: 33.333}},
	})
	require.NoError(t, err)
	require.InDelta(t, 3.3333, calc.Result.Breakdown[0].Commission, eps)
	require.Equal(t, 3.33, calc.Display.Breakdown[0].Commission)
}

func TestPreviewFlagsOverAllocation(t *testing.T) {
	f := newFixture(t)
	calc, err := f.svc.Preview(context.Background(), PreviewInput{
		TotalAmount: 500,
		Products:    []LineInput{{ProductID: f.silver, Amount: 600}},
	})
	require.NoError(t, err)
	require.True(t, calc.OverAllocated)
	require.Zero(t, calc.Result.RestAmount)
	require.InDelta(t, 60, calc.Result.TotalCommission, eps)
}

func TestPreviewRejectsBadForms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   PreviewInput
		code string
	}{
		{"negative total", PreviewInput{TotalAmount: -1}, "VALIDATION_FAILED"},
		{"negative amount", PreviewInput{TotalAmount: 10, Products: []LineInput{{ProductID: f.gold, Amount: -5}}}, "VALIDATION_FAILED"},
		{"duplicate", PreviewInput{TotalAmount: 10, Products: []LineInput{{ProductID: f.gold, Amount: 1}, {ProductID: f.gold, Amount: 2}}}, "DUPLICATE_PRODUCT"},
		{"unknown", PreviewInput{TotalAmount: 10, Products: []LineInput{{ProductID: uuid.NewString(), Amount: 1}}}, "UNKNOWN_PRODUCT"},
		{"inactive", PreviewInput{TotalAmount: 10, Products: []LineInput{{ProductID: f.old, Amount: 1}}}, "PRODUCT_INACTIVE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Preview(ctx, tc.in)
			status, code := appStatus(t, err)
			require.Equal(t, http.StatusUnprocessableEntity, status)
			require.Equal(t, tc.code, code)
		})
	}
}

func createSample(t *testing.T, f fixture, number string) Invoice {
	t.Helper()
	inv, err := f.svc.Create(context.Background(), Input{
		Number:       number,
		CustomerName: "PT Maju",
		Seller:       "ana",
		TotalAmount:  1000,
		Products:     []LineInput{{ProductID: f.gold, Amount: 300}, {ProductID: f.silver, Amount: 200}},
	})
	require.NoError(t, err)
	return inv
}

func TestCreatePersistsSnapshot(t *testing.T) {
	f := newFixture(t)
	inv := createSample(t, f, "INV-001")

	require.Equal(t, StatusPending, inv.Status)
	require.Equal(t, "2024-03-15", inv.IssuedOn)
	require.Equal(t, 25.0, inv.RestPercentage)
	require.Len(t, inv.Lines, 2)
	require.Equal(t, "Gold", inv.Lines[0].Name)
	require.InDelta(t, 60, inv.Lines[0].Commission, eps)
	require.InDelta(t, 20, inv.Lines[1].Commission, eps)
	require.Equal(t, 500.0, inv.RestAmount)
	require.InDelta(t, 205, inv.TotalCommission, eps)

	got, err := f.svc.Get(context.Background(), inv.ID)
	require.NoError(t, err)
	require.Equal(t, inv.Lines, got.Lines)
	require.Equal(t, []string{events.TopicInvoiceCreated}, f.topics.topics)
}

func TestCreateRejectsDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	createSample(t, f, "INV-001")
	_, err := f.svc.Create(context.Background(), Input{Number: "INV-001", CustomerName: "X", TotalAmount: 1})
	require.ErrorIs(t, err, ErrNumberTaken)
}

func TestUpdateRecomputesAndKeepsRestSnapshot(t *testing.T) {
	f := newFixture(t)
	inv := createSample(t, f, "INV-001")

	updated, err := f.svc.Update(context.Background(), inv.ID, Input{
		Number:       "INV-001",
		CustomerName: "PT Maju",
		TotalAmount:  800,
		Products:     []LineInput{{ProductID: f.silver, Amount: 400}},
	})
	require.NoError(t, err)
	require.Len(t, updated.Lines, 1)
	require.Equal(t, 400.0, updated.RestAmount)
	require.InDelta(t, 40+100, updated.TotalCommission, eps)
	require.Equal(t, 25.0, updated.RestPercentage)
}

func TestUpdateAllowsAlreadyAttachedInactiveProduct(t *testing.T) {
	f := newFixture(t)
	inv := createSample(t, f, "INV-001")
	gold := f.store.products[uuid.MustParse(f.gold)]
	gold.Active = false
	f.store.products[uuid.MustParse(f.gold)] = gold

	_, err := f.svc.Update(context.Background(), inv.ID, Input{
		Number:       "INV-001",
		CustomerName: "PT Maju",
		TotalAmount:  1000,
		Products:     []LineInput{{ProductID: f.gold, Amount: 100}},
	})
	require.NoError(t, err)
}

func TestStatusLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	inv := createSample(t, f, "INV-001")

	cancelled, err := f.svc.ChangeStatus(ctx, inv.ID, "cancelled")
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, cancelled.Status)

	reopened, err := f.svc.ChangeStatus(ctx, inv.ID, "pending")
	require.NoError(t, err)
	require.Equal(t, StatusPending, reopened.Status)

	paid, err := f.svc.ChangeStatus(ctx, inv.ID, " PAID ")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, paid.Status)
	require.NotNil(t, paid.PaidAt)

	again, err := f.svc.ChangeStatus(ctx, inv.ID, "paid")
	require.NoError(t, err)
	require.Equal(t, StatusPaid, again.Status)

	_, err = f.svc.ChangeStatus(ctx, inv.ID, "pending")
	require.ErrorIs(t, err, ErrPaidFinal)
	_, err = f.svc.Update(ctx, inv.ID, Input{Number: "INV-001", CustomerName: "x", TotalAmount: 1})
	require.ErrorIs(t, err, ErrNotEditable)
	require.ErrorIs(t, f.svc.Delete(ctx, inv.ID), ErrPaidUndeleted)

	require.Equal(t, []string{
		events.TopicInvoiceCreated,
		events.TopicInvoiceCancelled,
		events.TopicInvoiceReopened,
		events.TopicInvoicePaid,
	}, f.topics.topics)
}

func TestChangeStatusValidates(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.ChangeStatus(context.Background(), uuid.NewString(), "shipped")
	require.ErrorIs(t, err, ErrInvalidStatus)
	_, err = f.svc.ChangeStatus(context.Background(), uuid.NewString(), "paid")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = f.svc.ChangeStatus(context.Background(), "nope", "paid")
	require.ErrorIs(t, err, ErrInvalidID)
}

func TestConcurrentStatusChangesAreSerialised(t *testing.T) {
	f := newFixture(t)
	inv := createSample(t, f, "INV-001")

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ChangeStatus(context.Background(), inv.ID, StatusPaid)
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
	paid := 0
	for _, topic := range f.topics.topics {
		if topic == events.TopicInvoicePaid {
			paid++
		}
	}
	require.Equal(t, 1, paid)
}

func TestListFiltersAndPages(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	createSample(t, f, "INV-001")
	second := createSample(t, f, "INV-002")
	createSample(t, f, "INV-003")
	_, err := f.svc.ChangeStatus(ctx, second.ID, StatusPaid)
	require.NoError(t, err)

	items, total, err := f.svc.List(ctx, Filter{Limit: 2})
	require.NoError(t, err)
	require.Equal(t, int64(3), total)
	require.Len(t, items, 2)
	require.Len(t, items[0].Lines, 2)

	paid, total, err := f.svc.List(ctx, Filter{Status: StatusPaid, Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	require.Equal(t, "INV-002", paid[0].Number)

	_, _, err = f.svc.List(ctx, Filter{Status: "draft", Limit: 10})
	require.ErrorIs(t, err, ErrInvalidStatus)
}

func TestDeletePendingInvoice(t *testing.T) {
	f := newFixture(t)
	inv := createSample(t, f, "INV-001")
	require.NoError(t, f.svc.Delete(context.Background(), inv.ID))
	_, err := f.svc.Get(context.Background(), inv.ID)
	require.ErrorIs(t, err, ErrNotFound)
	require.Contains(t, f.topics.topics, events.TopicInvoiceDeleted)
}
