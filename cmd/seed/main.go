package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/warehousehq/warehouse-backend/pkg/config"
	"github.com/warehousehq/warehouse-backend/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New("seed", cfg.LogLevel)

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	categories := []string{"Electronics", "Tools", "Consumables"}
	categoryIDs := map[string]string{}
	for _, name := range categories {
		var id string
		err := pool.QueryRow(ctx, `INSERT INTO categories (id, name) VALUES ($1,$2)
			ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
			RETURNING id`, uuid.NewString(), name).Scan(&id)
		if err != nil {
			log.Error("seed category failed", "name", name, "err", err)
			os.Exit(1)
		}
		categoryIDs[name] = id
	}
	log.Info("categories seeded", "count", len(categories))

	suppliers := []struct{ name, contact string }{
		{"TechnoWorld Ltd", "sales@technoworld.example"},
		{"ToolTrade Wholesale", "+1 555 123 4567"},
	}
	for _, s := range suppliers {
		_, err := pool.Exec(ctx, `INSERT INTO suppliers (id, name, contact) VALUES ($1,$2,$3)
			ON CONFLICT (name) DO UPDATE SET contact=EXCLUDED.contact`,
			uuid.NewString(), s.name, s.contact)
		if err != nil {
			log.Error("seed supplier failed", "name", s.name, "err", err)
			os.Exit(1)
		}
	}
	log.Info("suppliers seeded", "count", len(suppliers))

	products := []struct {
		name, sku, unit, category string
		price                     decimal.Decimal
	}{
		{"Cordless Drill XR-20", "DRL-XR20", "pcs", "Tools", decimal.RequireFromString("129.90")},
		{"USB-C Cable 1m", "CBL-USBC1", "pcs", "Electronics", decimal.RequireFromString("7.50")},
		{"Packing Tape 50mm", "TPE-50", "roll", "Consumables", decimal.RequireFromString("2.10")},
	}
	for _, p := range products {
		_, err := pool.Exec(ctx, `INSERT INTO products (id, name, sku, unit, price, category_id)
			VALUES ($1,$2,$3,$4,$5,$6)
			ON CONFLICT (sku) DO NOTHING`,
			uuid.NewString(), p.name, p.sku, p.unit, p.price, categoryIDs[p.category])
		if err != nil {
			log.Error("seed product failed", "sku", p.sku, "err", err)
			os.Exit(1)
		}
	}
	log.Info("products seeded", "count", len(products))
}
