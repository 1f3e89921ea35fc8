package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehousehq/warehouse-backend/pkg/apperror"
)

func TestNewOrderStartsNew(t *testing.T) {
	o := NewOrder("o-1", "ACME", []OrderLine{{ProductID: "p-1", Quantity: 2}})

	assert.Equal(t, StatusNew, o.Status)
	assert.True(t, strings.HasPrefix(o.Number, "ORD-"))
	assert.Equal(t, o.CreatedAt, o.UpdatedAt)
}

func TestEnsureCompletable(t *testing.T) {
	o := NewOrder("o-1", "ACME", nil)
	require.NoError(t, o.EnsureCompletable())

	o.Status = StatusCompleted
	err := o.EnsureCompletable()
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}

func TestEnsureCancelable(t *testing.T) {
	o := NewOrder("o-1", "ACME", nil)
	require.NoError(t, o.EnsureCancelable())

	o.Status = StatusCompleted
	err := o.EnsureCancelable()
	require.Error(t, err)
	assert.Equal(t, apperror.KindInvalidState, apperror.KindOf(err))
}
