package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warehousehq/warehouse-backend/internal/stock/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
	"github.com/warehousehq/warehouse-backend/pkg/outbox"
)

// Ledger owns every mutation of stock_batches.remaining_qty. Each operation
// runs in one transaction; callers that need depletion inside their own
// transaction (order completion) go through ConsumeTx.
type Ledger struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewLedger(log *slog.Logger, pool *pgxpool.Pool) *Ledger {
	return &Ledger{log: log, pool: pool}
}

func (l *Ledger) Receive(ctx context.Context, b domain.StockBatch, eventType string, payload []byte, traceparent string) (domain.StockBatch, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.StockBatch{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	var archived bool
	err = tx.QueryRow(ctx, `SELECT name, is_archived FROM products WHERE id=$1`, b.ProductID).
		Scan(&b.ProductName, &archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StockBatch{}, apperror.Validation("cannot receive stock: product %s does not exist", b.ProductID)
	}
	if err != nil {
		return domain.StockBatch{}, err
	}
	if archived {
		return domain.StockBatch{}, apperror.Validation("cannot receive stock for archived product %q", b.ProductName)
	}

	err = tx.QueryRow(ctx, `SELECT name FROM suppliers WHERE id=$1`, b.SupplierID).Scan(&b.SupplierName)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StockBatch{}, apperror.NotFound("supplier %s not found", b.SupplierID)
	}
	if err != nil {
		return domain.StockBatch{}, err
	}

	err = tx.QueryRow(ctx, `INSERT INTO stock_batches (product_id, supplier_id, received_qty, remaining_qty, purchase_price, expiry_date)
		VALUES ($1,$2,$3,$4,$5,$6)
		RETURNING id, received_at`,
		b.ProductID, b.SupplierID, b.ReceivedQty, b.RemainingQty, b.PurchasePrice, b.ExpiryDate).
		Scan(&b.ID, &b.ReceivedAt)
	if err != nil {
		return domain.StockBatch{}, err
	}

	if err := outbox.Insert(ctx, tx, "stock", b.ProductID, eventType, payload, traceparent); err != nil {
		return domain.StockBatch{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.StockBatch{}, err
	}

	l.log.Info("stock received", "batch_id", b.ID, "product_id", b.ProductID, "qty", b.ReceivedQty)
	return b, nil
}

func (l *Ledger) Consume(ctx context.Context, productID string, quantity int, eventType string, payload []byte, traceparent string) (int, error) {
	tx, err := l.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	if err := l.ConsumeTx(ctx, tx, productID, quantity); err != nil {
		return 0, err
	}
	if err := outbox.Insert(ctx, tx, "stock", productID, eventType, payload, traceparent); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	l.log.Info("stock consumed", "product_id", productID, "qty", quantity)
	return quantity, nil
}

// ConsumeTx depletes quantity units of a product oldest-batch-first within
// the caller's transaction. Candidate rows are locked so concurrent consumers
// serialize on the same batches; on insufficient stock the caller's rollback
// discards every update.
func (l *Ledger) ConsumeTx(ctx context.Context, tx pgx.Tx, productID string, quantity int) error {
	var productName string
	var archived bool
	err := tx.QueryRow(ctx, `SELECT name, is_archived FROM products WHERE id=$1`, productID).
		Scan(&productName, &archived)
	if errors.Is(err, pgx.ErrNoRows) {
		return apperror.NotFound("product %s not found", productID)
	}
	if err != nil {
		return err
	}
	if archived {
		return apperror.Validation("cannot consume stock of archived product %q", productName)
	}

	rows, err := tx.Query(ctx, `
		SELECT id, remaining_qty
		FROM stock_batches
		WHERE product_id=$1 AND remaining_qty > 0
		ORDER BY received_at ASC, id ASC
		FOR UPDATE
	`, productID)
	if err != nil {
		return err
	}
	defer rows.Close()

	var batches []domain.StockBatch
	for rows.Next() {
		var b domain.StockBatch
		if err := rows.Scan(&b.ID, &b.RemainingQty); err != nil {
			return err
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return err
	}
	rows.Close()

	plan, err := domain.PlanDepletion(productName, batches, quantity)
	if err != nil {
		return err
	}

	batch := &pgx.Batch{}
	for _, d := range plan {
		batch.Queue(`UPDATE stock_batches SET remaining_qty = remaining_qty - $1 WHERE id=$2`, d.Take, d.BatchID)
	}
	return tx.SendBatch(ctx, batch).Close()
}

// Available sums remaining quantity over all batches of a product. Reads only
// committed state; archived-product filtering is the caller's concern.
func (l *Ledger) Available(ctx context.Context, productID string) (int, error) {
	var total int
	err := l.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(remaining_qty), 0) FROM stock_batches WHERE product_id=$1`, productID).
		Scan(&total)
	return total, err
}

func (l *Ledger) List(ctx context.Context) ([]domain.StockBatch, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT b.id, b.product_id, p.name, b.supplier_id, s.name,
		       b.received_qty, b.remaining_qty, b.purchase_price, b.expiry_date, b.received_at
		FROM stock_batches b
		JOIN products p ON p.id = b.product_id
		JOIN suppliers s ON s.id = b.supplier_id
		WHERE b.remaining_qty > 0 AND NOT p.is_archived
		ORDER BY b.received_at DESC, b.id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

func (l *Ledger) ListForProduct(ctx context.Context, productID string) ([]domain.StockBatch, error) {
	rows, err := l.pool.Query(ctx, `
		SELECT b.id, b.product_id, p.name, b.supplier_id, s.name,
		       b.received_qty, b.remaining_qty, b.purchase_price, b.expiry_date, b.received_at
		FROM stock_batches b
		JOIN products p ON p.id = b.product_id
		JOIN suppliers s ON s.id = b.supplier_id
		WHERE b.product_id=$1 AND NOT p.is_archived
		ORDER BY b.received_at DESC, b.id DESC
	`, productID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBatches(rows)
}

func scanBatches(rows pgx.Rows) ([]domain.StockBatch, error) {
	var out []domain.StockBatch
	for rows.Next() {
		var b domain.StockBatch
		if err := rows.Scan(&b.ID, &b.ProductID, &b.ProductName, &b.SupplierID, &b.SupplierName,
			&b.ReceivedQty, &b.RemainingQty, &b.PurchasePrice, &b.ExpiryDate, &b.ReceivedAt); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
