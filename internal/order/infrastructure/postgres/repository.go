package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/internal/order/domain"
	stockpg "github.com/warehousehq/warehouse-backend/internal/stock/infrastructure/postgres"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
	"github.com/warehousehq/warehouse-backend/pkg/outbox"
)

// Repository persists orders. Mutations run in one transaction each; order
// completion delegates batch depletion to the stock ledger inside the same
// transaction, so a failed line rolls back both the depletion and the status
// flip.
type Repository struct {
	log    *slog.Logger
	pool   *pgxpool.Pool
	ledger *stockpg.Ledger
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool, ledger *stockpg.Ledger) *Repository {
	return &Repository{log: log, pool: pool, ledger: ledger}
}

func (r *Repository) Create(ctx context.Context, o domain.Order, eventType string, payload []byte, traceparent string) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	// Availability check only: no lock, no decrement. Two concurrent creates
	// against the same scarce stock can both pass here and conflict at
	// completion.
	for i, line := range o.Lines {
		var name string
		var archived bool
		err := tx.QueryRow(ctx, `SELECT name, is_archived FROM products WHERE id=$1`, line.ProductID).
			Scan(&name, &archived)
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Order{}, apperror.NotFound("product %s not found", line.ProductID)
		}
		if err != nil {
			return domain.Order{}, err
		}
		if archived {
			return domain.Order{}, apperror.Validation("product %q is archived and cannot be ordered", name)
		}
		o.Lines[i].ProductName = name

		var available int
		err = tx.QueryRow(ctx,
			`SELECT COALESCE(SUM(remaining_qty), 0) FROM stock_batches WHERE product_id=$1`, line.ProductID).
			Scan(&available)
		if err != nil {
			return domain.Order{}, err
		}
		if available < line.Quantity {
			return domain.Order{}, apperror.InsufficientStock(name, line.Quantity, available)
		}
	}

	_, err = tx.Exec(ctx, `INSERT INTO orders (id, order_number, customer, status, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6)`,
		o.ID, o.Number, o.Customer, o.Status, o.CreatedAt, o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}

	for i, line := range o.Lines {
		err := tx.QueryRow(ctx, `INSERT INTO order_lines (order_id, product_id, quantity, price)
			VALUES ($1,$2,$3,$4) RETURNING id`,
			o.ID, line.ProductID, line.Quantity, line.Price).
			Scan(&o.Lines[i].ID)
		if err != nil {
			return domain.Order{}, err
		}
	}

	if err := outbox.Insert(ctx, tx, "order", o.ID, eventType, payload, traceparent); err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}

	r.log.Info("order created", "order_id", o.ID, "customer", o.Customer, "lines", len(o.Lines))
	return o, nil
}

func (r *Repository) Complete(ctx context.Context, orderID string, eventType string, payload []byte, traceparent string) (domain.Order, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Order{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	o, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	if err := o.EnsureCompletable(); err != nil {
		return domain.Order{}, err
	}

	o.Lines, err = queryLines(ctx, tx, orderID)
	if err != nil {
		return domain.Order{}, err
	}

	for _, line := range o.Lines {
		if err := r.ledger.ConsumeTx(ctx, tx, line.ProductID, line.Quantity); err != nil {
			return domain.Order{}, err
		}
	}

	err = tx.QueryRow(ctx, `UPDATE orders SET status=$2, updated_at=now() WHERE id=$1 RETURNING updated_at`,
		orderID, domain.StatusCompleted).Scan(&o.UpdatedAt)
	if err != nil {
		return domain.Order{}, err
	}
	o.Status = domain.StatusCompleted

	if err := outbox.Insert(ctx, tx, "order", orderID, eventType, payload, traceparent); err != nil {
		return domain.Order{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Order{}, err
	}

	r.log.Info("order completed", "order_id", orderID)
	return o, nil
}

func (r *Repository) Remove(ctx context.Context, orderID string, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	o, err := lockOrder(ctx, tx, orderID)
	if err != nil {
		return err
	}
	if err := o.EnsureCancelable(); err != nil {
		return err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM order_lines WHERE order_id=$1`, orderID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM orders WHERE id=$1`, orderID); err != nil {
		return err
	}

	if err := outbox.Insert(ctx, tx, "order", orderID, eventType, payload, traceparent); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.log.Info("order canceled", "order_id", orderID)
	return nil
}

func (r *Repository) Get(ctx context.Context, orderID string) (domain.Order, error) {
	var o domain.Order
	err := r.pool.QueryRow(ctx,
		`SELECT id, order_number, customer, status, created_at, updated_at FROM orders WHERE id=$1`, orderID).
		Scan(&o.ID, &o.Number, &o.Customer, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, apperror.NotFound("order %s not found", orderID)
	}
	if err != nil {
		return domain.Order{}, err
	}

	o.Lines, err = queryLines(ctx, r.pool, orderID)
	if err != nil {
		return domain.Order{}, err
	}
	return o, nil
}

func (r *Repository) List(ctx context.Context) ([]domain.Order, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT o.id, o.order_number, o.customer, o.status, o.created_at, o.updated_at,
		       l.id, l.product_id, p.name, l.quantity, l.price
		FROM orders o
		LEFT JOIN order_lines l ON l.order_id = o.id
		LEFT JOIN products p ON p.id = l.product_id
		ORDER BY o.created_at DESC, o.id, l.id
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.Order
	index := map[string]int{}
	for rows.Next() {
		var o domain.Order
		var line domain.OrderLine
		var lineID *int64
		var productID, productName *string
		var quantity *int
		var price decimal.NullDecimal

		if err := rows.Scan(&o.ID, &o.Number, &o.Customer, &o.Status, &o.CreatedAt, &o.UpdatedAt,
			&lineID, &productID, &productName, &quantity, &price); err != nil {
			return nil, err
		}

		i, ok := index[o.ID]
		if !ok {
			i = len(orders)
			index[o.ID] = i
			orders = append(orders, o)
		}
		if lineID != nil {
			line.ID = *lineID
			line.ProductID = *productID
			line.ProductName = *productName
			line.Quantity = *quantity
			line.Price = price.Decimal
			orders[i].Lines = append(orders[i].Lines, line)
		}
	}
	return orders, rows.Err()
}

type querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func lockOrder(ctx context.Context, tx pgx.Tx, orderID string) (domain.Order, error) {
	var o domain.Order
	err := tx.QueryRow(ctx,
		`SELECT id, order_number, customer, status, created_at, updated_at FROM orders WHERE id=$1 FOR UPDATE`,
		orderID).
		Scan(&o.ID, &o.Number, &o.Customer, &o.Status, &o.CreatedAt, &o.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Order{}, apperror.NotFound("order %s not found", orderID)
	}
	return o, err
}

func queryLines(ctx context.Context, q querier, orderID string) ([]domain.OrderLine, error) {
	rows, err := q.Query(ctx, `
		SELECT l.id, l.product_id, p.name, l.quantity, l.price
		FROM order_lines l
		JOIN products p ON p.id = l.product_id
		WHERE l.order_id=$1
		ORDER BY l.id
	`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []domain.OrderLine
	for rows.Next() {
		var l domain.OrderLine
		if err := rows.Scan(&l.ID, &l.ProductID, &l.ProductName, &l.Quantity, &l.Price); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}
