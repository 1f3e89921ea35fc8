package application

import (
	"context"

	"github.com/warehousehq/warehouse-backend/internal/stock/domain"
)

type LedgerRepository interface {
	Receive(ctx context.Context, b domain.StockBatch, eventType string, payload []byte, traceparent string) (domain.StockBatch, error)
	Consume(ctx context.Context, productID string, quantity int, eventType string, payload []byte, traceparent string) (int, error)
	Available(ctx context.Context, productID string) (int, error)
	List(ctx context.Context) ([]domain.StockBatch, error)
	ListForProduct(ctx context.Context, productID string) ([]domain.StockBatch, error)
}
