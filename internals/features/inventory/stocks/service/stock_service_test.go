package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "edudesk_backend/internals/features/inventory/stocks/model"
	"edudesk_backend/internals/store/memstore"
)

func newSvc(t *testing.T) *StockService {
	t.Helper()
	s := NewStockService(memstore.New())
	s.Now = func() time.Time { return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC) }
	return s
}

func TestCheckUnique_NormalisedPair(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()
	st := model.Stock{ID: "s1", TenantCode: "acme", ItemName: "Note Book", ClassName: "Grade 1"}
	require.NoError(t, s.Stocks.Insert(ctx, "acme", st.ID, &st))

	assert.Error(t, s.CheckUnique(ctx, "acme", "  note   BOOK ", "grade 1", ""))
	assert.NoError(t, s.CheckUnique(ctx, "acme", "Note Book", "Grade 2", ""))
	assert.NoError(t, s.CheckUnique(ctx, "acme", "Note Book", "Grade 1", "s1"))
	assert.NoError(t, s.CheckUnique(ctx, "other", "Note Book", "Grade 1", ""))
}

func TestAdjust_NeverBelowZero(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()
	st := model.Stock{ID: "s1", TenantCode: "acme", ItemName: "Chalk", Quantity: 5}
	require.NoError(t, s.Stocks.Insert(ctx, "acme", st.ID, &st))

	got, err := s.Adjust(ctx, "acme", "s1", model.DirectionOut, 3, "class use", "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Quantity)

	_, err = s.Adjust(ctx, "acme", "s1", model.DirectionOut, 3, "", "u1")
	assert.ErrorIs(t, err, ErrInsufficientStock)

	got, err = s.Adjust(ctx, "acme", "s1", model.DirectionIn, 10, "restock", "u1")
	require.NoError(t, err)
	assert.Equal(t, 12, got.Quantity)

	stored, err := s.Stocks.Get(ctx, "acme", "s1")
	require.NoError(t, err)
	assert.Equal(t, 12, stored.Quantity)
	require.Len(t, stored.Movements, 2)
	assert.Equal(t, 2, stored.Movements[0].Balance)
	assert.Equal(t, model.DirectionIn, stored.Movements[1].Direction)

	_, err = s.Adjust(ctx, "acme", "s1", model.DirectionIn, 0, "", "")
	assert.Error(t, err)
	_, err = s.Adjust(ctx, "acme", "s1", "sideways", 1, "", "")
	assert.Error(t, err)
}

func TestNormalizeStock_CapsMovements(t *testing.T) {
	st := model.Stock{ItemName: "x"}
	for i := 0; i < model.MaxMovements+5; i++ {
		st.Movements = append(st.Movements, model.StockMovement{Direction: model.DirectionIn, Quantity: 1, Balance: i})
	}
	model.NormalizeStock(&st)
	require.Len(t, st.Movements, model.MaxMovements)
	assert.Equal(t, 5, st.Movements[0].Balance)
}
