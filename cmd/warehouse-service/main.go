package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	catalogapp "github.com/warehousehq/warehouse-backend/internal/catalog/application"
	cataloghttp "github.com/warehousehq/warehouse-backend/internal/catalog/infrastructure/http"
	catalogpg "github.com/warehousehq/warehouse-backend/internal/catalog/infrastructure/postgres"
	orderapp "github.com/warehousehq/warehouse-backend/internal/order/application"
	orderhttp "github.com/warehousehq/warehouse-backend/internal/order/infrastructure/http"
	orderpg "github.com/warehousehq/warehouse-backend/internal/order/infrastructure/postgres"
	stockapp "github.com/warehousehq/warehouse-backend/internal/stock/application"
	stockhttp "github.com/warehousehq/warehouse-backend/internal/stock/infrastructure/http"
	stockpg "github.com/warehousehq/warehouse-backend/internal/stock/infrastructure/postgres"
	supplierapp "github.com/warehousehq/warehouse-backend/internal/supplier/application"
	supplierhttp "github.com/warehousehq/warehouse-backend/internal/supplier/infrastructure/http"
	supplierpg "github.com/warehousehq/warehouse-backend/internal/supplier/infrastructure/postgres"
	"github.com/warehousehq/warehouse-backend/pkg/config"
	"github.com/warehousehq/warehouse-backend/pkg/idempotency"
	"github.com/warehousehq/warehouse-backend/pkg/logging"
	"github.com/warehousehq/warehouse-backend/pkg/outbox"
	"github.com/warehousehq/warehouse-backend/pkg/shutdown"
	"github.com/warehousehq/warehouse-backend/pkg/tracing"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log := logging.New("warehouse-service", cfg.LogLevel)

	ctx, cancel := shutdown.WithSignals(context.Background())
	defer cancel()

	tp, err := tracing.Init(ctx, "warehouse-service", cfg.OTLPEndpoint)
	if err != nil {
		log.Error("otel init failed", "err", err)
		os.Exit(1)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	pool, err := pgxpool.New(ctx, cfg.PGURL)
	if err != nil {
		log.Error("pg connect failed", "err", err)
		os.Exit(1)
	}
	defer pool.Close()

	rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer rdb.Close()
	idem := idempotency.NewStore(rdb, 24*time.Hour)

	writer := outbox.NewWriter(cfg.KafkaBrokers)
	defer writer.Close()

	store := outbox.NewPGStore(pool)
	dispatch := outbox.NewDispatcher(log, writer, cfg.OutboxTopic)
	relay := outbox.NewRelay(log, store, dispatch, "warehouse-service-relay")

	ledger := stockpg.NewLedger(log, pool)
	stockSvc := stockapp.NewService(ledger)
	stockHandler := stockhttp.NewHandler(log, stockSvc)

	orderRepo := orderpg.NewRepository(log, pool, ledger)
	orderSvc := orderapp.NewService(orderRepo)
	orderHandler := orderhttp.NewHandler(log, orderSvc)

	catalogSvc := catalogapp.NewService(
		catalogpg.NewProductRepository(log, pool),
		catalogpg.NewCategoryRepository(log, pool),
	)
	catalogHandler := cataloghttp.NewHandler(log, catalogSvc)

	supplierSvc := supplierapp.NewService(supplierpg.NewRepository(log, pool))
	supplierHandler := supplierhttp.NewHandler(log, supplierSvc)

	r := chi.NewRouter()
	r.Use(idempotency.Middleware(log, idem))
	r.Mount("/products", catalogHandler.ProductRoutes())
	r.Mount("/categories", catalogHandler.CategoryRoutes())
	r.Mount("/suppliers", supplierHandler.Routes())
	r.Mount("/stock", stockHandler.Routes())
	r.Mount("/orders", orderHandler.Routes())
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	go func() {
		if err := relay.Run(ctx); err != nil {
			log.Error("relay stopped with error", "err", err)
		}
	}()

	go func() {
		log.Info("http listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("http server error", "err", err)
			cancel()
		}
	}()

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	log.Info("warehouse-service shutdown complete")
}
