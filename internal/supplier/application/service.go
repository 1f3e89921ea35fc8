package application

import (
	"context"

	"github.com/google/uuid"

	"github.com/warehousehq/warehouse-backend/internal/supplier/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

type Service struct {
	repo SupplierRepository
}

func NewService(repo SupplierRepository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, name, contact string) (domain.Supplier, error) {
	if name == "" {
		return domain.Supplier{}, apperror.Validation("supplier name is required")
	}
	return s.repo.Create(ctx, domain.Supplier{
		ID:      uuid.NewString(),
		Name:    name,
		Contact: contact,
	})
}

func (s *Service) Get(ctx context.Context, id string) (domain.Supplier, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]domain.Supplier, error) {
	return s.repo.List(ctx)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}
