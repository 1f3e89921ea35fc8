package postgres

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warehousehq/warehouse-backend/internal/supplier/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

type Repository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewRepository(log *slog.Logger, pool *pgxpool.Pool) *Repository {
	return &Repository{log: log, pool: pool}
}

func (r *Repository) Create(ctx context.Context, s domain.Supplier) (domain.Supplier, error) {
	err := r.pool.QueryRow(ctx, `INSERT INTO suppliers (id, name, contact) VALUES ($1,$2,NULLIF($3,''))
		RETURNING created_at`,
		s.ID, s.Name, s.Contact).Scan(&s.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return domain.Supplier{}, apperror.Validation("supplier %q already exists", s.Name)
	}
	if err != nil {
		return domain.Supplier{}, err
	}
	r.log.Info("supplier created", "supplier_id", s.ID, "name", s.Name)
	return s, nil
}

func (r *Repository) Get(ctx context.Context, id string) (domain.Supplier, error) {
	var s domain.Supplier
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, COALESCE(contact, ''), created_at FROM suppliers WHERE id=$1`, id).
		Scan(&s.ID, &s.Name, &s.Contact, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Supplier{}, apperror.NotFound("supplier %s not found", id)
	}
	return s, err
}

func (r *Repository) List(ctx context.Context) ([]domain.Supplier, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, name, COALESCE(contact, ''), created_at FROM suppliers ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Supplier
	for rows.Next() {
		var s domain.Supplier
		if err := rows.Scan(&s.ID, &s.Name, &s.Contact, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *Repository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM suppliers WHERE id=$1`, id)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return apperror.Validation("supplier has stock history and cannot be deleted")
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.NotFound("supplier %s not found", id)
	}
	return nil
}
