package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/warehousehq/warehouse-backend/internal/catalog/domain"
	"github.com/warehousehq/warehouse-backend/pkg/apperror"
	"github.com/warehousehq/warehouse-backend/pkg/outbox"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

type ProductRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewProductRepository(log *slog.Logger, pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{log: log, pool: pool}
}

const productColumns = `
	p.id, p.name, p.sku, p.unit, p.price, COALESCE(p.description, ''),
	p.category_id, c.name, p.is_archived,
	COALESCE((SELECT SUM(b.remaining_qty) FROM stock_batches b WHERE b.product_id = p.id), 0),
	p.created_at, p.updated_at`

func (r *ProductRepository) Create(ctx context.Context, p domain.Product) (domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	categoryID, err := upsertCategory(ctx, tx, p.CategoryName)
	if err != nil {
		return domain.Product{}, err
	}
	p.CategoryID = categoryID

	err = tx.QueryRow(ctx, `INSERT INTO products (id, name, sku, unit, price, description, category_id)
		VALUES ($1,$2,$3,$4,$5,NULLIF($6,''),$7)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.SKU, p.Unit, p.Price, p.Description, categoryID).
		Scan(&p.CreatedAt, &p.UpdatedAt)
	if isPgErr(err, pgUniqueViolation) {
		return domain.Product{}, apperror.Validation("product sku %q already exists", p.SKU)
	}
	if err != nil {
		return domain.Product{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.Product{}, err
	}

	r.log.Info("product created", "product_id", p.ID, "sku", p.SKU)
	return p, nil
}

func (r *ProductRepository) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.pool.QueryRow(ctx, `SELECT `+productColumns+`
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE p.id=$1`, id).
		Scan(&p.ID, &p.Name, &p.SKU, &p.Unit, &p.Price, &p.Description,
			&p.CategoryID, &p.CategoryName, &p.IsArchived, &p.TotalStock, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Product{}, apperror.NotFound("product %s not found", id)
	}
	return p, err
}

func (r *ProductRepository) List(ctx context.Context, f domain.ProductFilter) (domain.ProductPage, error) {
	where := `NOT p.is_archived`
	args := []any{}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND (p.name ILIKE $%d OR p.sku ILIKE $%d)`, len(args), len(args))
	}

	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM products p WHERE `+where, args...).Scan(&total)
	if err != nil {
		return domain.ProductPage{}, err
	}

	offset := (f.Page - 1) * f.Limit
	args = append(args, f.Limit, offset)
	query := `SELECT ` + productColumns + `
		FROM products p JOIN categories c ON c.id = p.category_id
		WHERE ` + where + `
		ORDER BY p.created_at DESC
		LIMIT $` + strconv.Itoa(len(args)-1) + ` OFFSET $` + strconv.Itoa(len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return domain.ProductPage{}, err
	}
	defer rows.Close()

	items := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.SKU, &p.Unit, &p.Price, &p.Description,
			&p.CategoryID, &p.CategoryName, &p.IsArchived, &p.TotalStock, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return domain.ProductPage{}, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return domain.ProductPage{}, err
	}

	totalPages := (total + f.Limit - 1) / f.Limit
	return domain.ProductPage{Items: items, Total: total, Page: f.Page, Limit: f.Limit, TotalPages: totalPages}, nil
}

func (r *ProductRepository) Update(ctx context.Context, id string, u domain.ProductUpdate) (domain.Product, error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return domain.Product{}, err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	set := []string{"updated_at = now()"}
	args := []any{id}
	add := func(col string, v any) {
		args = append(args, v)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.SKU != nil {
		add("sku", *u.SKU)
	}
	if u.Unit != nil {
		add("unit", *u.Unit)
	}
	if u.Price != nil {
		add("price", *u.Price)
	}
	if u.Description != nil {
		add("description", *u.Description)
	}
	if u.CategoryName != nil {
		categoryID, err := upsertCategory(ctx, tx, *u.CategoryName)
		if err != nil {
			return domain.Product{}, err
		}
		add("category_id", categoryID)
	}

	ct, err := tx.Exec(ctx, `UPDATE products SET `+strings.Join(set, ", ")+` WHERE id=$1`, args...)
	if isPgErr(err, pgUniqueViolation) {
		return domain.Product{}, apperror.Validation("product sku already exists")
	}
	if err != nil {
		return domain.Product{}, err
	}
	if ct.RowsAffected() == 0 {
		return domain.Product{}, apperror.NotFound("product %s not found", id)
	}
	if err := tx.Commit(ctx); err != nil {
		return domain.Product{}, err
	}

	return r.Get(ctx, id)
}

func (r *ProductRepository) Archive(ctx context.Context, id string, eventType string, payload []byte, traceparent string) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()

	ct, err := tx.Exec(ctx, `UPDATE products SET is_archived=true, updated_at=now() WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.NotFound("product %s not found", id)
	}

	if err := outbox.Insert(ctx, tx, "product", id, eventType, payload, traceparent); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return err
	}

	r.log.Info("product archived", "product_id", id)
	return nil
}

type CategoryRepository struct {
	log  *slog.Logger
	pool *pgxpool.Pool
}

func NewCategoryRepository(log *slog.Logger, pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{log: log, pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, name string) (domain.Category, error) {
	c := domain.Category{ID: uuid.NewString(), Name: name}
	err := r.pool.QueryRow(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2) RETURNING created_at`,
		c.ID, c.Name).Scan(&c.CreatedAt)
	if isPgErr(err, pgUniqueViolation) {
		return domain.Category{}, apperror.Validation("category %q already exists", name)
	}
	return c, err
}

func (r *CategoryRepository) List(ctx context.Context) ([]domain.Category, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.id, c.name, COUNT(p.id), c.created_at
		FROM categories c
		LEFT JOIN products p ON p.category_id = c.id
		GROUP BY c.id
		ORDER BY c.name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Category
	for rows.Next() {
		var c domain.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.ProductCount, &c.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepository) Delete(ctx context.Context, id string) error {
	ct, err := r.pool.Exec(ctx, `DELETE FROM categories WHERE id=$1`, id)
	if isPgErr(err, pgForeignKeyViolation) {
		return apperror.Validation("category still has products")
	}
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return apperror.NotFound("category %s not found", id)
	}
	return nil
}

func upsertCategory(ctx context.Context, tx pgx.Tx, name string) (string, error) {
	var id string
	err := tx.QueryRow(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2)
		ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
		RETURNING id`, uuid.NewString(), name).Scan(&id)
	return id, err
}

func isPgErr(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}
