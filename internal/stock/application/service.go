package application

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/internal/stock/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
	"github.com/warehousehq/warehouse-backend/pkg/tracing"
)

type Service struct {
	repo LedgerRepository
}

func NewService(repo LedgerRepository) *Service {
	return &Service{repo: repo}
}

type ReceiveInput struct {
	ProductID     string
	SupplierID    string
	Quantity      int
	PurchasePrice decimal.Decimal
	ExpiryDate    *time.Time
}

func (s *Service) Receive(ctx context.Context, in ReceiveInput) (domain.StockBatch, error) {
	if in.ProductID == "" {
		return domain.StockBatch{}, apperror.Validation("product id is required")
	}
	if in.SupplierID == "" {
		return domain.StockBatch{}, apperror.Validation("supplier id is required")
	}
	if in.Quantity <= 0 {
		return domain.StockBatch{}, apperror.InvalidQuantity("receipt quantity must be positive, got %d", in.Quantity)
	}
	if in.PurchasePrice.IsNegative() {
		return domain.StockBatch{}, apperror.Validation("purchase price cannot be negative")
	}

	payload, err := json.Marshal(domain.StockReceived{
		ProductID:  in.ProductID,
		SupplierID: in.SupplierID,
		Quantity:   in.Quantity,
	})
	if err != nil {
		return domain.StockBatch{}, err
	}

	b := domain.StockBatch{
		ProductID:     in.ProductID,
		SupplierID:    in.SupplierID,
		ReceivedQty:   in.Quantity,
		RemainingQty:  in.Quantity,
		PurchasePrice: in.PurchasePrice,
		ExpiryDate:    in.ExpiryDate,
	}
	return s.repo.Receive(ctx, b, "StockReceived", payload, tracing.Traceparent(ctx))
}

// Consume writes off quantity units of a product oldest-batch-first. The
// write-off is all or nothing; on insufficient stock no batch is touched.
func (s *Service) Consume(ctx context.Context, productID string, quantity int) (int, error) {
	if productID == "" {
		return 0, apperror.Validation("product id is required")
	}
	if quantity <= 0 {
		return 0, apperror.InvalidQuantity("consume quantity must be positive, got %d", quantity)
	}

	payload, err := json.Marshal(domain.StockConsumed{ProductID: productID, Quantity: quantity})
	if err != nil {
		return 0, err
	}
	return s.repo.Consume(ctx, productID, quantity, "StockConsumed", payload, tracing.Traceparent(ctx))
}

// Available reports the committed aggregate remaining quantity for a product.
func (s *Service) Available(ctx context.Context, productID string) (int, error) {
	return s.repo.Available(ctx, productID)
}

func (s *Service) List(ctx context.Context) ([]domain.StockBatch, error) {
	return s.repo.List(ctx)
}

func (s *Service) ProductStock(ctx context.Context, productID string) ([]domain.StockBatch, error) {
	return s.repo.ListForProduct(ctx, productID)
}
