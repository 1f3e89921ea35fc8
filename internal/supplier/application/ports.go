package application

import (
	"context"

	"github.com/warehousehq/warehouse-backend/internal/supplier/domain"
)

type SupplierRepository interface {
	Create(ctx context.Context, s domain.Supplier) (domain.Supplier, error)
	Get(ctx context.Context, id string) (domain.Supplier, error)
	List(ctx context.Context) ([]domain.Supplier, error)
	Delete(ctx context.Context, id string) error
}
