package integration

import (
	"context"
	"time"

	"github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type Env struct {
	PG     *postgres.PostgresContainer
	Kafka  *kafka.KafkaContainer
	PGURL  string
	KAddr  []string
	cancel context.CancelFunc
}

// Setup starts Postgres and Kafka containers for end-to-end runs that
// exercise the outbox relay. Tests that only need the database should use
// SetupPostgres.
func Setup(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)

	env, err := setupPostgres(ctx, cancel)
	if err != nil {
		return nil, err
	}

	kafkaC, err := kafka.Run(ctx,
		"confluentinc/confluent-local:7.5.0",
		kafka.WithClusterID("warehouse-test"),
	)
	if err != nil {
		env.Teardown(context.Background())
		return nil, err
	}
	brokers, err := kafkaC.Brokers(ctx)
	if err != nil {
		env.Teardown(context.Background())
		return nil, err
	}

	env.Kafka = kafkaC
	env.KAddr = brokers
	return env, nil
}

// SetupPostgres starts only the Postgres container.
func SetupPostgres(ctx context.Context) (*Env, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Minute)
	return setupPostgres(ctx, cancel)
}

func setupPostgres(ctx context.Context, cancel context.CancelFunc) (*Env, error) {
	pgC, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("warehouse"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		cancel()
		return nil, err
	}

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		cancel()
		_ = pgC.Terminate(context.Background())
		return nil, err
	}

	return &Env{PG: pgC, PGURL: pgURL, cancel: cancel}, nil
}

func (e *Env) Teardown(ctx context.Context) {
	if e.Kafka != nil {
		_ = e.Kafka.Terminate(ctx)
	}
	if e.PG != nil {
		_ = e.PG.Terminate(ctx)
	}
	e.cancel()
}
