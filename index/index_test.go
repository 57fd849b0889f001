package index

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonafind/sonafind/core"
)

func TestNew(t *testing.T) {
	t.Run("valid vectors", func(t *testing.T) {
		ix, err := New([][]float32{{1, 0}, {0, 1}, {1, 1}})
		require.NoError(t, err)
		assert.Equal(t, 3, ix.Len())
		assert.Equal(t, 2, ix.Dim())
	})

	t.Run("no vectors", func(t *testing.T) {
		_, err := New(nil)
		assert.ErrorIs(t, err, core.ErrNoRecords)
	})

	t.Run("inconsistent dimensions", func(t *testing.T) {
		_, err := New([][]float32{{1, 0}, {0, 1, 2}})
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})

	t.Run("zero-length vector", func(t *testing.T) {
		_, err := New([][]float32{{}})
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})
}

func TestFromFlat(t *testing.T) {
	t.Run("round trip through Flat", func(t *testing.T) {
		ix, err := New([][]float32{{1, 2}, {3, 4}})
		require.NoError(t, err)

		rebuilt, err := FromFlat(ix.Flat(), ix.Len(), ix.Dim())
		require.NoError(t, err)
		assert.Equal(t, []float32{3, 4}, rebuilt.Row(1))
	})

	t.Run("buffer length disagrees with header", func(t *testing.T) {
		_, err := FromFlat([]float32{1, 2, 3}, 2, 2)
		assert.ErrorIs(t, err, core.ErrDimensionMismatch)
	})
}

func TestSearch_Ordering(t *testing.T) {
	ix, err := New([][]float32{
		{10, 0}, // distance 100 from origin
		{0, 1},  // distance 1
		{2, 0},  // distance 4
		{0, 0},  // distance 0
	})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0, 0}, 4)
	require.NoError(t, err)
	require.Len(t, hits, 4)

	assert.Equal(t, []int{3, 1, 2, 0}, []int{hits[0].Row, hits[1].Row, hits[2].Row, hits[3].Row})
	for i := 1; i < len(hits); i++ {
		assert.GreaterOrEqual(t, hits[i].Distance, hits[i-1].Distance)
	}
}

func TestSearch_TiesPreserveInsertionOrder(t *testing.T) {
	// Rows 0, 1 and 2 are all at squared distance 1 from the query.
	ix, err := New([][]float32{
		{1, 0},
		{0, 1},
		{-1, 0},
		{5, 5},
	})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0, 0}, 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, 0, hits[0].Row)
	assert.Equal(t, 1, hits[1].Row)
	assert.Equal(t, 2, hits[2].Row)
}

func TestSearch_PoolLargerThanRows(t *testing.T) {
	ix, err := New([][]float32{{1}, {2}})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 2)
}

func TestSearch_PoolTruncates(t *testing.T) {
	ix, err := New([][]float32{{1}, {2}, {3}, {4}})
	require.NoError(t, err)

	hits, err := ix.Search([]float32{0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, 0, hits[0].Row)
	assert.Equal(t, 1, hits[1].Row)
}

func TestSearch_QueryDimensionMismatch(t *testing.T) {
	ix, err := New([][]float32{{1, 0}})
	require.NoError(t, err)

	_, err = ix.Search([]float32{1, 2, 3}, 1)
	assert.ErrorIs(t, err, core.ErrDimensionMismatch)
}

func TestSearch_InvalidPool(t *testing.T) {
	ix, err := New([][]float32{{1}})
	require.NoError(t, err)

	_, err = ix.Search([]float32{1}, 0)
	assert.ErrorIs(t, err, core.ErrInvalidQuery)
}
