package application

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehousehq/warehouse-backend/internal/stock/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

type fakeLedgerRepo struct {
	received    *domain.StockBatch
	receivedEvt string
	receivedPay []byte

	consumedProduct string
	consumedQty     int
	consumeErr      error

	available int
}

func (f *fakeLedgerRepo) Receive(ctx context.Context, b domain.StockBatch, eventType string, payload []byte, traceparent string) (domain.StockBatch, error) {
	f.received = &b
	f.receivedEvt = eventType
	f.receivedPay = payload
	b.ID = 1
	return b, nil
}

func (f *fakeLedgerRepo) Consume(ctx context.Context, productID string, quantity int, eventType string, payload []byte, traceparent string) (int, error) {
	if f.consumeErr != nil {
		return 0, f.consumeErr
	}
	f.consumedProduct = productID
	f.consumedQty = quantity
	return quantity, nil
}

func (f *fakeLedgerRepo) Available(ctx context.Context, productID string) (int, error) {
	return f.available, nil
}

func (f *fakeLedgerRepo) List(ctx context.Context) ([]domain.StockBatch, error) {
	return nil, nil
}

func (f *fakeLedgerRepo) ListForProduct(ctx context.Context, productID string) ([]domain.StockBatch, error) {
	return nil, nil
}

func TestReceiveCreatesFullBatch(t *testing.T) {
	repo := &fakeLedgerRepo{}
	svc := NewService(repo)

	got, err := svc.Receive(context.Background(), ReceiveInput{
		ProductID:     "p-1",
		SupplierID:    "s-1",
		Quantity:      40,
		PurchasePrice: decimal.NewFromInt(12),
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, 40, repo.received.ReceivedQty)
	assert.Equal(t, 40, repo.received.RemainingQty)
	assert.Equal(t, "StockReceived", repo.receivedEvt)

	var evt domain.StockReceived
	require.NoError(t, json.Unmarshal(repo.receivedPay, &evt))
	assert.Equal(t, domain.StockReceived{ProductID: "p-1", SupplierID: "s-1", Quantity: 40}, evt)
}

func TestReceiveValidation(t *testing.T) {
	svc := NewService(&fakeLedgerRepo{})
	ctx := context.Background()

	_, err := svc.Receive(ctx, ReceiveInput{SupplierID: "s-1", Quantity: 1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Receive(ctx, ReceiveInput{ProductID: "p-1", Quantity: 1})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))

	_, err = svc.Receive(ctx, ReceiveInput{ProductID: "p-1", SupplierID: "s-1", Quantity: 0})
	assert.Equal(t, apperror.KindInvalidQuantity, apperror.KindOf(err))

	_, err = svc.Receive(ctx, ReceiveInput{ProductID: "p-1", SupplierID: "s-1", Quantity: 5, PurchasePrice: decimal.NewFromInt(-1)})
	assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
}

func TestConsumeDelegates(t *testing.T) {
	repo := &fakeLedgerRepo{}
	svc := NewService(repo)

	n, err := svc.Consume(context.Background(), "p-1", 7)
	require.NoError(t, err)
	assert.Equal(t, 7, n)
	assert.Equal(t, "p-1", repo.consumedProduct)
	assert.Equal(t, 7, repo.consumedQty)
}

func TestConsumeRejectsNonPositiveQuantity(t *testing.T) {
	svc := NewService(&fakeLedgerRepo{})

	_, err := svc.Consume(context.Background(), "p-1", 0)
	assert.Equal(t, apperror.KindInvalidQuantity, apperror.KindOf(err))

	_, err = svc.Consume(context.Background(), "p-1", -2)
	assert.Equal(t, apperror.KindInvalidQuantity, apperror.KindOf(err))
}

func TestConsumePropagatesInsufficientStock(t *testing.T) {
	repo := &fakeLedgerRepo{consumeErr: apperror.InsufficientStock("Drill", 7, 3)}
	svc := NewService(repo)

	_, err := svc.Consume(context.Background(), "p-1", 7)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
}
