package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

type OrderStatus string

const (
	// StatusNew is the only state orders are created in. A NEW order has not
	// touched the stock ledger; availability was only checked at creation.
	StatusNew OrderStatus = "NEW"
	// StatusCompleted is terminal. Stock was depleted; the order can no
	// longer be changed or deleted.
	StatusCompleted OrderStatus = "COMPLETED"
)

type Order struct {
	ID        string
	Number    string
	Customer  string
	Status    OrderStatus
	Lines     []OrderLine
	CreatedAt time.Time
	UpdatedAt time.Time
}

type OrderLine struct {
	ID          int64
	ProductID   string
	ProductName string
	Quantity    int
	Price       decimal.Decimal
}

func NewOrder(id, customer string, lines []OrderLine) Order {
	now := time.Now().UTC()
	return Order{
		ID:        id,
		Number:    fmt.Sprintf("ORD-%d", now.UnixMilli()),
		Customer:  customer,
		Status:    StatusNew,
		Lines:     lines,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// EnsureCompletable guards the NEW -> COMPLETED transition.
func (o Order) EnsureCompletable() error {
	if o.Status != StatusNew {
		return apperror.InvalidState("order %s already processed", o.ID)
	}
	return nil
}

// EnsureCancelable guards deletion. A completed order already depleted stock
// and must stay on record.
func (o Order) EnsureCancelable() error {
	if o.Status == StatusCompleted {
		return apperror.InvalidState("cannot cancel order %s: already shipped", o.ID)
	}
	return nil
}
