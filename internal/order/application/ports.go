package application

import (
	"context"

	"github.com/warehousehq/warehouse-backend/internal/order/domain"
)

type OrderRepository interface {
	Create(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) (domain.Order, error)
	Complete(ctx context.Context, orderID string, eventType string, payload []byte, traceparent string) (domain.Order, error)
	Remove(ctx context.Context, orderID string, eventType string, payload []byte, traceparent string) error
	Get(ctx context.Context, orderID string) (domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
}
