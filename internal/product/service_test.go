package product_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/backend-komisi/internal/common"
	"github.com/noah-isme/backend-komisi/internal/events"
	"github.com/noah-isme/backend-komisi/internal/product"
)

func newService() (*product.Service, *recordingPublisher) {
	pub := &recordingPublisher{}
	return &product.Service{Q: newFakeStore(), Events: pub, Logger: zerolog.Nop()}, pub
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	return appErr.HTTPStatus
}

func TestCreateAndList(t *testing.T) {
	svc, pub := newService()
	ctx := context.Background()

	inactive := false
	_, err := svc.Create(ctx, product.Input{Name: "  Gold  ", Percentage: 10, SortOrder: 2})
	require.NoError(t, err)
	_, err = svc.Create(ctx, product.Input{Name: "Silver", Percentage: 5, SortOrder: 1})
	require.NoError(t, err)
	_, err = svc.Create(ctx, product.Input{Name: "Bronze", Percentage: 2, Active: &inactive})
	require.NoError(t, err)

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.Equal(t, "Bronze", all[0].Name)
	require.Equal(t, "Gold", all[2].Name)

	active, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, active, 2)
	require.Equal(t, "Silver", active[0].Name)

	require.Equal(t, []string{events.TopicProductChanged, events.TopicProductChanged, events.TopicProductChanged}, pub.topics)
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Create(ctx, product.Input{Name: "Gold", Percentage: 10})
	require.NoError(t, err)

	_, err = svc.Create(ctx, product.Input{Name: "gold", Percentage: 12})
	require.ErrorIs(t, err, product.ErrNameTaken)
	require.Equal(t, http.StatusConflict, statusOf(t, err))
}

func TestCreateValidatesInput(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Create(context.Background(), product.Input{Name: " ", Percentage: 120})
	require.Equal(t, http.StatusUnprocessableEntity, statusOf(t, err))

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	fields := appErr.Details.([]common.FieldError)
	names := []string{}
	for _, f := range fields {
		names = append(names, f.Field)
	}
	require.ElementsMatch(t, []string{"name", "percentage"}, names)
}

func TestUpdateAndDelete(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	created, err := svc.Create(ctx, product.Input{Name: "Gold", Percentage: 10})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, created.ID, product.Input{Name: "Gold Plus", Percentage: 12.5})
	require.NoError(t, err)
	require.Equal(t, "Gold Plus", updated.Name)
	require.Equal(t, 12.5, updated.Percentage)
	require.True(t, updated.Active)

	require.NoError(t, svc.Delete(ctx, created.ID))
	_, err = svc.Get(ctx, created.ID)
	require.ErrorIs(t, err, product.ErrNotFound)
	require.ErrorIs(t, svc.Delete(ctx, created.ID), product.ErrNotFound)
}

func TestUpdateUnknownProduct(t *testing.T) {
	svc, _ := newService()
	_, err := svc.Update(context.Background(), uuid.NewString(), product.Input{Name: "X", Percentage: 1})
	require.ErrorIs(t, err, product.ErrNotFound)

	_, err = svc.Get(context.Background(), "not-a-uuid")
	require.ErrorIs(t, err, product.ErrInvalidID)
}
