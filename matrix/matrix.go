// SPDX-License-Identifier: MIT
// Package matrix implements the oracle.Oracle backends: dense, sparse,
// precomputed (in-core or memory-mapped) distance providers. It mirrors
// lvlath/matrix's Matrix-interface shape (Rows/Cols/At/Set/Clone) but drops
// every adjacency/incidence/graph-adapter concern — those belong to the
// ShortestPaths external collaborator (see graphoracle), not to a generic
// numeric matrix.
package matrix

import (
	"errors"
	"fmt"
)

// Sentinel errors for matrix package operations. Priority on conflicting
// conditions: shape/index -> dimension mismatch -> backend limitation,
// following lvlath/matrix/errors.go's documented priority order.
var (
	// ErrInvalidDimensions indicates requested dimensions are non-positive.
	ErrInvalidDimensions = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange indicates a row or column index outside valid bounds.
	ErrOutOfRange = errors.New("matrix: index out of range")

	// ErrDimensionMismatch indicates incompatible shapes between operands.
	ErrDimensionMismatch = errors.New("matrix: dimension mismatch")

	// ErrNilMatrix indicates a nil Matrix receiver or argument.
	ErrNilMatrix = errors.New("matrix: nil receiver")

	// ErrNotSquare signals an operation that requires a square matrix.
	ErrNotSquare = errors.New("matrix: matrix is not square")

	// ErrNotImplemented marks a backend limitation (e.g. Row() on a
	// PrecomputedOracle, which has no natural feature row).
	ErrNotImplemented = errors.New("matrix: operation not supported by this backend")
)

// Matrix is a two-dimensional mutable array of float64 values. Dense,
// Sparse and the in-core form of Precomputed all implement it.
type Matrix interface {
	// Rows returns the number of rows. Complexity: O(1).
	Rows() int
	// Cols returns the number of columns. Complexity: O(1).
	Cols() int
	// At retrieves the element at (row, col). Complexity: O(1) for Dense,
	// O(log nnz) or O(nnz row) for Sparse depending on implementation.
	At(row, col int) (float64, error)
	// Set assigns v at (row, col). Complexity: as At.
	Set(row, col int, v float64) error
}

func boundsCheck(op string, row, col, rows, cols int) error {
	if row < 0 || row >= rows || col < 0 || col >= cols {
		return fmt.Errorf("matrix.%s(%d,%d): %w", op, row, col, ErrOutOfRange)
	}
	return nil
}
