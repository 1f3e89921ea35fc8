package application

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/internal/catalog/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
	"github.com/warehousehq/warehouse-backend/pkg/tracing"
)

const (
	defaultUnit     = "pcs"
	defaultCategory = "General"
	defaultLimit    = 10
	maxLimit        = 100
)

type Service struct {
	products   ProductRepository
	categories CategoryRepository
}

func NewService(products ProductRepository, categories CategoryRepository) *Service {
	return &Service{products: products, categories: categories}
}

type CreateProductInput struct {
	Name         string
	SKU          string
	Unit         string
	Price        decimal.Decimal
	Description  string
	CategoryName string
}

func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (domain.Product, error) {
	if in.Name == "" {
		return domain.Product{}, apperror.Validation("product name is required")
	}
	if in.SKU == "" {
		return domain.Product{}, apperror.Validation("product sku is required")
	}
	if in.Price.IsNegative() {
		return domain.Product{}, apperror.Validation("product price cannot be negative")
	}
	if in.Unit == "" {
		in.Unit = defaultUnit
	}
	if in.CategoryName == "" {
		in.CategoryName = defaultCategory
	}

	return s.products.Create(ctx, domain.Product{
		ID:           uuid.NewString(),
		Name:         in.Name,
		SKU:          in.SKU,
		Unit:         in.Unit,
		Price:        in.Price,
		Description:  in.Description,
		CategoryName: in.CategoryName,
	})
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) ListProducts(ctx context.Context, f domain.ProductFilter) (domain.ProductPage, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = defaultLimit
	}
	if f.Limit > maxLimit {
		f.Limit = maxLimit
	}
	return s.products.List(ctx, f)
}

func (s *Service) UpdateProduct(ctx context.Context, id string, u domain.ProductUpdate) (domain.Product, error) {
	if u.Price != nil && u.Price.IsNegative() {
		return domain.Product{}, apperror.Validation("product price cannot be negative")
	}
	return s.products.Update(ctx, id, u)
}

// ArchiveProduct soft-deletes: the row stays so batches and order lines keep
// their references.
func (s *Service) ArchiveProduct(ctx context.Context, id string) error {
	payload, err := json.Marshal(domain.ProductArchived{ProductID: id})
	if err != nil {
		return err
	}
	return s.products.Archive(ctx, id, "ProductArchived", payload, tracing.Traceparent(ctx))
}

func (s *Service) CreateCategory(ctx context.Context, name string) (domain.Category, error) {
	if name == "" {
		return domain.Category{}, apperror.Validation("category name is required")
	}
	return s.categories.Create(ctx, name)
}

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	return s.categories.List(ctx)
}

func (s *Service) DeleteCategory(ctx context.Context, id string) error {
	return s.categories.Delete(ctx, id)
}
