package application

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/internal/order/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
	"github.com/warehousehq/warehouse-backend/pkg/tracing"
)

type Service struct {
	repo OrderRepository
}

func NewService(repo OrderRepository) *Service {
	return &Service{repo: repo}
}

type CreateLine struct {
	ProductID string
	Quantity  int
}

// CreateOrder validates availability and persists the order in one
// transaction, but takes no lock and depletes nothing: a NEW order is a soft
// reservation, and CompleteOrder is the point of truth for stock sufficiency.
func (s *Service) CreateOrder(ctx context.Context, customer string, lines []CreateLine) (domain.Order, error) {
	if customer == "" {
		return domain.Order{}, apperror.Validation("customer is required")
	}
	if len(lines) == 0 {
		return domain.Order{}, apperror.Validation("order must have at least one line")
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, l := range lines {
		if l.ProductID == "" {
			return domain.Order{}, apperror.Validation("line product id is required")
		}
		if l.Quantity <= 0 {
			return domain.Order{}, apperror.InvalidQuantity("line quantity must be positive, got %d", l.Quantity)
		}
		// Line price is a placeholder at creation; it is not the batch
		// purchase price.
		orderLines = append(orderLines, domain.OrderLine{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			Price:     decimal.Zero,
		})
	}

	o := domain.NewOrder(uuid.NewString(), customer, orderLines)

	evtLines := make([]domain.OrderLineEvent, 0, len(orderLines))
	for _, l := range orderLines {
		evtLines = append(evtLines, domain.OrderLineEvent{ProductID: l.ProductID, Quantity: l.Quantity})
	}
	payload, err := json.Marshal(domain.OrderCreated{
		OrderID:  o.ID,
		Number:   o.Number,
		Customer: o.Customer,
		Lines:    evtLines,
	})
	if err != nil {
		return domain.Order{}, err
	}

	return s.repo.Create(ctx, o, "OrderCreated", payload, tracing.Traceparent(ctx))
}

// CompleteOrder flips a NEW order to COMPLETED and depletes every line via
// the stock ledger, all inside one transaction. Any line short on stock
// rolls back the whole completion.
func (s *Service) CompleteOrder(ctx context.Context, orderID string) (domain.Order, error) {
	if orderID == "" {
		return domain.Order{}, apperror.Validation("order id is required")
	}

	payload, err := json.Marshal(domain.OrderCompleted{OrderID: orderID})
	if err != nil {
		return domain.Order{}, err
	}
	return s.repo.Complete(ctx, orderID, "OrderCompleted", payload, tracing.Traceparent(ctx))
}

// RemoveOrder cancels a NEW order. No ledger compensation is needed because
// a NEW order never depleted stock.
func (s *Service) RemoveOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return apperror.Validation("order id is required")
	}

	payload, err := json.Marshal(domain.OrderCanceled{OrderID: orderID})
	if err != nil {
		return err
	}
	return s.repo.Remove(ctx, orderID, "OrderCanceled", payload, tracing.Traceparent(ctx))
}

func (s *Service) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	return s.repo.Get(ctx, orderID)
}

// ListOrders returns all orders newest first, lines and product names joined.
func (s *Service) ListOrders(ctx context.Context) ([]domain.Order, error) {
	return s.repo.List(ctx)
}
