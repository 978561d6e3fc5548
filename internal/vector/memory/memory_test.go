package memory

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/capstone-recommender/backend/internal/domain"
)

func TestQueryRanksByCosine(t *testing.T) {
	x := NewIndex(2)
	require.NoError(t, x.Upsert("aligned", []float32{1, 0}, "aligned text", nil))
	require.NoError(t, x.Upsert("diagonal", []float32{1, 1}, "diagonal text", nil))
	require.NoError(t, x.Upsert("orthogonal", []float32{0, 1}, "orthogonal text", nil))

	items, err := x.Query(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, items, 3)
	require.Equal(t, "aligned", items[0].ID)
	require.Equal(t, "diagonal", items[1].ID)
	require.Equal(t, "orthogonal", items[2].ID)
	require.InDelta(t, 1.0, items[0].Score, 1e-6)
	require.InDelta(t, 0.0, items[2].Score, 1e-6)
}

func TestQueryCapsAtTopK(t *testing.T) {
	x := NewIndex(1)
	require.NoError(t, x.Upsert("a", []float32{1}, "", nil))
	require.NoError(t, x.Upsert("b", []float32{0.5}, "", nil))
	require.NoError(t, x.Upsert("c", []float32{0.1}, "", nil))

	items, err := x.Query(context.Background(), []float32{1}, 2)
	require.NoError(t, err)
	require.Len(t, items, 2)
}

func TestUpsertReplacesByID(t *testing.T) {
	x := NewIndex(1)
	require.NoError(t, x.Upsert("a", []float32{1}, "old", nil))
	require.NoError(t, x.Upsert("a", []float32{1}, "new", nil))

	items, err := x.Query(context.Background(), []float32{1}, 10)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, "new", items[0].Text)
}

func TestDimensionMismatch(t *testing.T) {
	x := NewIndex(3)

	err := x.Upsert("a", []float32{1}, "", nil)
	require.True(t, errors.Is(err, domain.ErrDimensionMismatch))

	_, err = x.Query(context.Background(), []float32{1, 2}, 10)
	require.True(t, errors.Is(err, domain.ErrDimensionMismatch))
}

func TestQueryEmptyIndex(t *testing.T) {
	x := NewIndex(2)

	items, err := x.Query(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Empty(t, items)
}
