package matrix

import "fmt"

// Dense is a row-major matrix of float64 values, adapted from
// lvlath/matrix's Dense: flat backing slice, O(1) bounds-checked
// accessors, no hidden allocation on the hot path.
type Dense struct {
	r, c int
	data []float64
}

var _ Matrix = (*Dense)(nil)

// NewDense creates an r x c Dense matrix initialized to zero.
// Complexity: O(r*c) time and memory.
func NewDense(rows, cols int) (*Dense, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidDimensions
	}
	return &Dense{r: rows, c: cols, data: make([]float64, rows*cols)}, nil
}

// NewDenseFromRows builds a Dense from row-major sample data, one row per
// point. All rows must share the same length.
func NewDenseFromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return nil, ErrInvalidDimensions
	}
	cols := len(rows[0])
	if cols == 0 {
		return nil, ErrInvalidDimensions
	}
	d, err := NewDense(len(rows), cols)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != cols {
			return nil, ErrDimensionMismatch
		}
		copy(d.data[i*cols:(i+1)*cols], row)
	}
	return d, nil
}

// Rows returns the row count.
func (m *Dense) Rows() int { return m.r }

// Cols returns the column count.
func (m *Dense) Cols() int { return m.c }

// At retrieves the element at (row, col).
func (m *Dense) At(row, col int) (float64, error) {
	if err := boundsCheck("At", row, col, m.r, m.c); err != nil {
		return 0, err
	}
	return m.data[row*m.c+col], nil
}

// Set assigns v at (row, col).
func (m *Dense) Set(row, col int, v float64) error {
	if err := boundsCheck("Set", row, col, m.r, m.c); err != nil {
		return err
	}
	m.data[row*m.c+col] = v
	return nil
}

// Row returns a view of row i as a dense feature vector, without copying
// when the caller promises not to mutate it; the backing slice is still
// owned by m, so Oracle.Row wraps this in oracle.Row before returning it
// to callers that may retain it across calls.
func (m *Dense) Row(i int) ([]float64, error) {
	if i < 0 || i >= m.r {
		return nil, fmt.Errorf("matrix.Row(%d): %w", i, ErrOutOfRange)
	}
	return m.data[i*m.c : (i+1)*m.c], nil
}

// Clone returns a deep, independent copy of m.
func (m *Dense) Clone() *Dense {
	out := &Dense{r: m.r, c: m.c, data: make([]float64, len(m.data))}
	copy(out.data, m.data)
	return out
}
