package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehousehq/warehouse-backend/internal/order/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

type fakeOrderRepo struct {
	created    *domain.Order
	createdEvt string
	createdPay []byte
	createErr  error

	completedID string
	completeErr error

	removedID string
	removeEvt string
	removeErr error
}

func (f *fakeOrderRepo) Create(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) (domain.Order, error) {
	if f.createErr != nil {
		return domain.Order{}, f.createErr
	}
	f.created = &o
	f.createdEvt = eventType
	f.createdPay = payload
	return o, nil
}

func (f *fakeOrderRepo) Complete(ctx context.Context, orderID string, eventType string, payload []byte, traceparent string) (domain.Order, error) {
	if f.completeErr != nil {
		return domain.Order{}, f.completeErr
	}
	f.completedID = orderID
	return domain.Order{ID: orderID, Status: domain.StatusCompleted}, nil
}

func (f *fakeOrderRepo) Remove(ctx context.Context, orderID string, eventType string, payload []byte, traceparent string) error {
	if f.removeErr != nil {
		return f.removeErr
	}
	f.removedID = orderID
	f.removeEvt = eventType
	return nil
}

func (f *fakeOrderRepo) Get(ctx context.Context, orderID string) (domain.Order, error) {
	return domain.Order{}, nil
}

func (f *fakeOrderRepo) List(ctx context.Context) ([]domain.Order, error) {
	return nil, nil
}

func TestCreateOrderBuildsNewOrderWithZeroPrices(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewService(repo)

	o, err := svc.CreateOrder(context.Background(), "ACME", []CreateLine{
		{ProductID: "p-1", Quantity: 3},
		{ProductID: "p-2", Quantity: 1},
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusNew, o.Status)
	assert.NotEmpty(t, o.ID)
	require.Len(t, o.Lines, 2)
	assert.True(t, o.Lines[0].Price.IsZero())
	assert.Equal(t, "OrderCreated", repo.createdEvt)

	var evt domain.OrderCreated
	require.NoError(t, json.Unmarshal(repo.createdPay, &evt))
	assert.Equal(t, o.ID, evt.OrderID)
	require.Len(t, evt.Lines, 2)
	assert.Equal(t, domain.OrderLineEvent{ProductID: "p-1", Quantity: 3}, evt.Lines[0])
}

func TestCreateOrderValidation(t *testing.T) {
	svc := NewService(&fakeOrderRepo{})
	ctx := context.Background()

	_, err := svc.CreateOrder(ctx, "", []CreateLine{{ProductID: "p-1", Quantity: 1}})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.CreateOrder(ctx, "ACME", nil)
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.CreateOrder(ctx, "ACME", []CreateLine{{ProductID: "", Quantity: 1}})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.CreateOrder(ctx, "ACME", []CreateLine{{ProductID: "p-1", Quantity: 0}})
	assert.Equal(t, apperror.KindInvalidQuantity, apperror.KindOf(err))
}

func TestCreateOrderPropagatesInsufficientStock(t *testing.T) {
	repo := &fakeOrderRepo{createErr: apperror.InsufficientStock("Drill", 8, 5)}
	svc := NewService(repo)

	_, err := svc.CreateOrder(context.Background(), "ACME", []CreateLine{{ProductID: "p-1", Quantity: 8}})
	require.Error(t, err)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "short 3")
}

func TestCompleteOrderDelegates(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewService(repo)

	o, err := svc.CompleteOrder(context.Background(), "o-1")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, o.Status)
	assert.Equal(t, "o-1", repo.completedID)
}

func TestCompleteOrderPropagatesStateErrors(t *testing.T) {
	repo := &fakeOrderRepo{completeErr: apperror.InvalidState("order o-1 already processed")}
	svc := NewService(repo)

	_, err := svc.CompleteOrder(context.Background(), "o-1")
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))

	repo.completeErr = apperror.NotFound("order o-2 not found")
	_, err = svc.CompleteOrder(context.Background(), "o-2")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestRemoveOrderEmitsCancellation(t *testing.T) {
	repo := &fakeOrderRepo{}
	svc := NewService(repo)

	require.NoError(t, svc.RemoveOrder(context.Background(), "o-1"))
	assert.Equal(t, "o-1", repo.removedID)
	assert.Equal(t, "OrderCanceled", repo.removeEvt)
}

func TestRemoveOrderPropagatesInvalidState(t *testing.T) {
	repo := &fakeOrderRepo{removeErr: apperror.InvalidState("cannot cancel order o-1: already shipped")}
	svc := NewService(repo)

	err := svc.RemoveOrder(context.Background(), "o-1")
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}
