package index

import (
	"fmt"
	"sort"

	"github.com/sonafind/sonafind/core"
)

// Index is a flat, exact nearest-neighbor index over fixed-dimension
// embedding vectors. Row i holds the embedding of the i-th ingested product;
// that ordering is shared with the product lookup and must never diverge.
//
// An Index is immutable after construction and safe for concurrent searches.
type Index struct {
	dim  int
	rows int
	// data holds all vectors back to back, row r at data[r*dim : (r+1)*dim].
	data []float32
}

// Hit is a single nearest-neighbor result.
type Hit struct {
	Row      int
	Distance float32
}

// New builds an index from vectors in insertion order.
// All vectors must share the same dimensionality.
func New(vectors [][]float32) (*Index, error) {
	if len(vectors) == 0 {
		return nil, core.ErrNoRecords
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, fmt.Errorf("%w: zero-length vector at row 0", core.ErrDimensionMismatch)
	}

	data := make([]float32, 0, len(vectors)*dim)
	for i, vector := range vectors {
		if len(vector) != dim {
			return nil, fmt.Errorf("%w: row %d has dimension %d, expected %d",
				core.ErrDimensionMismatch, i, len(vector), dim)
		}
		data = append(data, vector...)
	}

	return &Index{dim: dim, rows: len(vectors), data: data}, nil
}

// FromFlat builds an index from an already flattened row-major buffer,
// as read back from a vector artifact file.
func FromFlat(data []float32, rows, dim int) (*Index, error) {
	if rows < 1 || dim < 1 {
		return nil, fmt.Errorf("%w: %d rows of dimension %d", core.ErrDimensionMismatch, rows, dim)
	}
	if len(data) != rows*dim {
		return nil, fmt.Errorf("%w: buffer holds %d values, header declares %d x %d",
			core.ErrDimensionMismatch, len(data), rows, dim)
	}
	return &Index{dim: dim, rows: rows, data: data}, nil
}

// Len returns the number of rows.
func (ix *Index) Len() int { return ix.rows }

// Dim returns the vector dimensionality.
func (ix *Index) Dim() int { return ix.dim }

// Row returns the vector stored at row r. The slice aliases the index
// buffer and must not be modified.
func (ix *Index) Row(r int) []float32 {
	return ix.data[r*ix.dim : (r+1)*ix.dim]
}

// Flat returns the underlying row-major buffer for persistence.
// The slice must not be modified.
func (ix *Index) Flat() []float32 { return ix.data }

// Search returns the pool nearest rows to the query vector by squared
// Euclidean distance, ascending. The square root is never taken: monotonic
// equivalence is enough for ranking. Every row is compared, so results are
// exact and reproducible; ties resolve to the earliest-inserted row.
//
// The result length is min(pool, Len()).
func (ix *Index) Search(query []float32, pool int) ([]Hit, error) {
	if len(query) != ix.dim {
		return nil, fmt.Errorf("%w: query has dimension %d, index has %d",
			core.ErrDimensionMismatch, len(query), ix.dim)
	}
	if pool < 1 {
		return nil, fmt.Errorf("%w: pool must be at least 1, got %d", core.ErrInvalidQuery, pool)
	}

	hits := make([]Hit, ix.rows)
	for r := 0; r < ix.rows; r++ {
		row := ix.data[r*ix.dim : (r+1)*ix.dim]
		var dist float32
		for i, q := range query {
			d := q - row[i]
			dist += d * d
		}
		hits[r] = Hit{Row: r, Distance: dist}
	}

	// Stable sort keeps equal-distance hits in insertion order.
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if pool < len(hits) {
		hits = hits[:pool]
	}
	return hits, nil
}
