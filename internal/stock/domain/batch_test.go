package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

func batch(id int64, remaining int, receivedAt time.Time) StockBatch {
	return StockBatch{ID: id, RemainingQty: remaining, ReceivedAt: receivedAt}
}

func TestPlanDepletionOldestFirst(t *testing.T) {
	day1 := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	plan, err := PlanDepletion("Drill", []StockBatch{
		batch(1, 5, day1),
		batch(2, 5, day2),
	}, 7)
	require.NoError(t, err)

	assert.Equal(t, []Depletion{
		{BatchID: 1, Take: 5},
		{BatchID: 2, Take: 2},
	}, plan)
}

func TestPlanDepletionSkipsEmptyBatches(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	plan, err := PlanDepletion("Drill", []StockBatch{
		batch(1, 0, day),
		batch(2, 3, day.Add(time.Hour)),
	}, 2)
	require.NoError(t, err)
	assert.Equal(t, []Depletion{{BatchID: 2, Take: 2}}, plan)
}

func TestPlanDepletionExactFit(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	plan, err := PlanDepletion("Drill", []StockBatch{batch(1, 4, day)}, 4)
	require.NoError(t, err)
	assert.Equal(t, []Depletion{{BatchID: 1, Take: 4}}, plan)
}

func TestPlanDepletionInsufficientReturnsNoPlan(t *testing.T) {
	day := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	plan, err := PlanDepletion("Drill", []StockBatch{
		batch(1, 3, day),
		batch(2, 2, day.AddDate(0, 0, 1)),
	}, 9)
	require.Error(t, err)
	assert.Nil(t, plan)
	assert.Equal(t, apperror.KindInsufficientStock, apperror.KindOf(err))
	assert.Contains(t, err.Error(), "short 4")
	assert.Contains(t, err.Error(), `"Drill"`)
}

func TestPlanDepletionRejectsNonPositiveQuantity(t *testing.T) {
	for _, q := range []int{0, -3} {
		_, err := PlanDepletion("Drill", nil, q)
		require.Error(t, err)
		assert.Equal(t, apperror.KindInvalidQuantity, apperror.KindOf(err))
	}
}
