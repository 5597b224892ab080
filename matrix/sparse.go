package matrix

import "fmt"

// Sparse is a compressed-sparse-row matrix: the in-module landing type for
// the SparseSource external collaborator (spec §1). The core never parses
// an external compressed format itself — callers convert their own
// CSR/CSC/COO representation into a Sparse via NewSparseCSR and the engine
// consumes it uniformly from there on.
type Sparse struct {
	r, c    int
	rowPtr  []int     // length r+1
	colIdx  []int     // length nnz, strictly increasing within each row
	values  []float64 // length nnz
}

var _ Matrix = (*Sparse)(nil)

// NewSparseCSR builds a Sparse matrix from standard CSR arrays. rowPtr must
// have length rows+1, colIdx/values must have matching length
// rowPtr[rows], and column indices within each row must be strictly
// increasing (callers are expected to have sorted their own ingestion
// format before calling this — this is the narrow boundary with
// SparseSource, not a general sparse-matrix ingestion library).
func NewSparseCSR(rows, cols int, rowPtr, colIdx []int, values []float64) (*Sparse, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	if len(rowPtr) != rows+1 {
		return nil, ErrDimensionMismatch
	}
	nnz := rowPtr[rows]
	if len(colIdx) != nnz || len(values) != nnz {
		return nil, ErrDimensionMismatch
	}
	for r := 0; r < rows; r++ {
		prev := -1
		for _, idx := range colIdx[rowPtr[r]:rowPtr[r+1]] {
			if idx <= prev || idx >= cols {
				return nil, ErrDimensionMismatch
			}
			prev = idx
		}
	}
	return &Sparse{r: rows, c: cols, rowPtr: rowPtr, colIdx: colIdx, values: values}, nil
}

// Rows returns the row count.
func (m *Sparse) Rows() int { return m.r }

// Cols returns the column count.
func (m *Sparse) Cols() int { return m.c }

// At retrieves the element at (row, col), binary-searching the row's
// column indices. Complexity: O(log nnz_row).
func (m *Sparse) At(row, col int) (float64, error) {
	if err := boundsCheck("At", row, col, m.r, m.c); err != nil {
		return 0, err
	}
	lo, hi := m.rowPtr[row], m.rowPtr[row+1]
	for lo < hi {
		mid := (lo + hi) / 2
		switch {
		case m.colIdx[mid] == col:
			return m.values[mid], nil
		case m.colIdx[mid] < col:
			lo = mid + 1
		default:
			hi = mid
		}
	}
	return 0, nil
}

// Set is unsupported: Sparse is an immutable ingestion view built once from
// an external CSR source; mutating it piecewise would require reallocating
// the backing arrays on every call, which defeats the point of ingesting a
// compressed format. Returns ErrNotImplemented.
func (m *Sparse) Set(row, col int, v float64) error {
	_ = row
	_ = col
	_ = v
	return fmt.Errorf("Sparse.Set: %w", ErrNotImplemented)
}

// RowEntries returns the (column, value) entries for row i without
// allocating a dense vector, the sparse counterpart of Dense.Row.
func (m *Sparse) RowEntries(i int) (idx []int, val []float64, err error) {
	if i < 0 || i >= m.r {
		return nil, nil, fmt.Errorf("Sparse.RowEntries(%d): %w", i, ErrOutOfRange)
	}
	return m.colIdx[m.rowPtr[i]:m.rowPtr[i+1]], m.values[m.rowPtr[i]:m.rowPtr[i+1]], nil
}
