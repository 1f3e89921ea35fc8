package domain

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

// StockBatch is one received lot of a product. ReceivedQty is the historical
// receipt amount and never changes; RemainingQty only decreases. Batches are
// never deleted, so the table doubles as the receipt history.
type StockBatch struct {
	ID            int64
	ProductID     string
	ProductName   string
	SupplierID    string
	SupplierName  string
	ReceivedQty   int
	RemainingQty  int
	PurchasePrice decimal.Decimal
	ExpiryDate    *time.Time
	ReceivedAt    time.Time
}

// Depletion is one planned reduction against a batch.
type Depletion struct {
	BatchID int64
	Take    int
}

// PlanDepletion distributes quantity across batches oldest-first and returns
// the per-batch reductions. Batches must already be sorted by the FIFO key
// (received_at, id ascending). If total remaining stock is insufficient the
// plan is discarded entirely and an insufficient-stock error naming the
// product and shortfall is returned.
func PlanDepletion(product string, batches []StockBatch, quantity int) ([]Depletion, error) {
	if quantity <= 0 {
		return nil, apperror.InvalidQuantity("quantity must be positive, got %d", quantity)
	}

	var plan []Depletion
	remaining := quantity
	for _, b := range batches {
		if remaining == 0 {
			break
		}
		take := min(b.RemainingQty, remaining)
		if take == 0 {
			continue
		}
		plan = append(plan, Depletion{BatchID: b.ID, Take: take})
		remaining -= take
	}
	if remaining > 0 {
		return nil, apperror.InsufficientStock(product, quantity, quantity-remaining)
	}
	return plan, nil
}
