package application

import (
	"context"

	"github.com/warehousehq/warehouse-backend/internal/catalog/domain"
)

type ProductRepository interface {
	Create(ctx context.Context, p domain.Product) (domain.Product, error)
	Get(ctx context.Context, id string) (domain.Product, error)
	List(ctx context.Context, f domain.ProductFilter) (domain.ProductPage, error)
	Update(ctx context.Context, id string, u domain.ProductUpdate) (domain.Product, error)
	Archive(ctx context.Context, id string, eventType string, payload []byte, traceparent string) error
}

type CategoryRepository interface {
	Create(ctx context.Context, name string) (domain.Category, error)
	List(ctx context.Context) ([]domain.Category, error)
	Delete(ctx context.Context, id string) error
}
