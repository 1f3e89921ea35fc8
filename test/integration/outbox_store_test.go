package integration

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehousehq/warehouse-backend/db"
	"github.com/warehousehq/warehouse-backend/pkg/migrate"
	"github.com/warehousehq/warehouse-backend/pkg/outbox"
)

// A relay that crashes between LockBatch and MarkSent leaves rows
// in_progress; once the lease runs out another relay must pick them up.
func TestLockBatchReclaimsExpiredLeases(t *testing.T) {
	if os.Getenv("INTEGRATION") == "" {
		t.Skip("set INTEGRATION=1 to run container-backed tests")
	}

	ctx := context.Background()
	env, err := SetupPostgres(ctx)
	require.NoError(t, err)
	defer env.Teardown(ctx)

	pool, err := pgxpool.New(ctx, env.PGURL)
	require.NoError(t, err)
	defer pool.Close()

	log := slog.New(slog.DiscardHandler)
	require.NoError(t, migrate.Apply(ctx, log, pool, db.Migrations))

	tx, err := pool.BeginTx(ctx, pgx.TxOptions{})
	require.NoError(t, err)
	require.NoError(t, outbox.Insert(ctx, tx, "order", "o-1", "OrderCreated", []byte(`{}`), ""))
	require.NoError(t, tx.Commit(ctx))

	store := outbox.NewPGStore(pool)

	events, err := store.LockBatch(ctx, "relay-a", 10, 100*time.Millisecond)
	require.NoError(t, err)
	require.Len(t, events, 1)

	// While the lease holds, the row is invisible to other relays.
	events, err = store.LockBatch(ctx, "relay-b", 10, 100*time.Millisecond)
	require.NoError(t, err)
	assert.Empty(t, events)

	// Relay-a never confirms; after expiry relay-b claims the row.
	time.Sleep(150 * time.Millisecond)
	events, err = store.LockBatch(ctx, "relay-b", 10, time.Minute)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "OrderCreated", events[0].Type)

	require.NoError(t, store.MarkSent(ctx, []int64{events[0].ID}))
	events, err = store.LockBatch(ctx, "relay-a", 10, time.Minute)
	require.NoError(t, err)
	assert.Empty(t, events, "sent rows must never be redelivered")
}
