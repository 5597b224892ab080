// SPDX-License-Identifier: MIT
// Package ops provides advanced matrix operations — eigendecomposition,
// inversion, LU and QR factorization — as thin adapters over
// gonum.org/v1/gonum/mat. It is the concrete implementation of the
// LinAlg external collaborator: core packages never call here directly,
// only callers preparing a PrecomputedDistanceMatrix (e.g. checking a
// kernel matrix is PSD, or solving a normal-equations system for a
// whitening transform) reach for it.
package ops

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/coreset/matrix"
)

// ErrNotSymmetric is returned when Eigen's input is not symmetric within tol.
var ErrNotSymmetric = errors.New("ops: matrix is not symmetric")

// ErrEigenFailed is returned when gonum's symmetric eigendecomposition fails.
var ErrEigenFailed = errors.New("ops: eigen decomposition failed")

// ErrSingular is returned when Inverse or LU encounters a singular matrix.
var ErrSingular = errors.New("ops: matrix is singular")

func toGonumDense(m matrix.Matrix) (*mat.Dense, error) {
	rows, cols := m.Rows(), m.Cols()
	data := make([]float64, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v, err := m.At(i, j)
			if err != nil {
				return nil, err
			}
			data[i*cols+j] = v
		}
	}
	return mat.NewDense(rows, cols, data), nil
}

func fromGonumDense(d *mat.Dense) (*matrix.Dense, error) {
	r, c := d.Dims()
	rows := make([][]float64, r)
	for i := 0; i < r; i++ {
		row := make([]float64, c)
		mat.Row(row, i, d)
		rows[i] = row
	}
	return matrix.NewDenseFromRows(rows)
}

// Eigen computes all eigenvalues and eigenvectors of a real symmetric
// matrix m, delegating to gonum's mat.EigenSym (a QR-algorithm
// implementation) rather than hand-rolling Jacobi rotations. tol bounds
// the symmetry check; maxIter is accepted for signature compatibility with
// callers that previously tuned an iterative solver but is unused here —
// gonum's EigenSym runs to its own internal convergence criteria.
//
// Complexity: O(n^3) time, O(n^2) memory.
func Eigen(m matrix.Matrix, tol float64, maxIter int) ([]float64, matrix.Matrix, error) {
	_ = maxIter
	n, cols := m.Rows(), m.Cols()
	if n != cols {
		return nil, nil, fmt.Errorf("ops.Eigen: non-square %dx%d: %w", n, cols, matrix.ErrDimensionMismatch)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			aij, _ := m.At(i, j)
			aji, _ := m.At(j, i)
			if diff := aij - aji; diff > tol || diff < -tol {
				return nil, nil, ErrNotSymmetric
			}
		}
	}

	gm, err := toGonumDense(m)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.Eigen: %w", err)
	}
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, gm.At(i, j))
		}
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(sym, true); !ok {
		return nil, nil, ErrEigenFailed
	}
	eigs := eig.Values(nil)

	var vecs mat.Dense
	eig.VectorsTo(&vecs)
	q, err := fromGonumDense(&vecs)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.Eigen: %w", err)
	}
	return eigs, q, nil
}

// Inverse returns the inverse of square matrix m, via gonum's LU-based
// mat.Dense.Inverse.
//
// Complexity: O(n^3) time, O(n^2) memory.
func Inverse(m matrix.Matrix) (matrix.Matrix, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows != cols {
		return nil, fmt.Errorf("ops.Inverse: non-square %dx%d: %w", rows, cols, matrix.ErrDimensionMismatch)
	}
	gm, err := toGonumDense(m)
	if err != nil {
		return nil, fmt.Errorf("ops.Inverse: %w", err)
	}
	var inv mat.Dense
	if err := inv.Inverse(gm); err != nil {
		return nil, fmt.Errorf("ops.Inverse: %w: %v", ErrSingular, err)
	}
	return fromGonumDense(&inv)
}

// LU performs an LU decomposition of square matrix m with partial
// pivoting and returns L and U such that L*U reproduces a row-permuted m;
// the row permutation itself is not returned.
func LU(m matrix.Matrix) (matrix.Matrix, matrix.Matrix, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows != cols {
		return nil, nil, fmt.Errorf("ops.LU: non-square %dx%d: %w", rows, cols, matrix.ErrDimensionMismatch)
	}
	gm, err := toGonumDense(m)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.LU: %w", err)
	}
	var lu mat.LU
	lu.Factorize(gm)
	if lu.Cond() > 1e15 {
		return nil, nil, ErrSingular
	}
	var l, u mat.Dense
	lu.LTo(&l)
	lu.UTo(&u)
	lm, err := fromGonumDense(&l)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.LU: %w", err)
	}
	um, err := fromGonumDense(&u)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.LU: %w", err)
	}
	return lm, um, nil
}

// QR performs a QR decomposition of m (rows >= cols) and returns Q
// (orthonormal columns) and R (upper triangular).
func QR(m matrix.Matrix) (matrix.Matrix, matrix.Matrix, error) {
	rows, cols := m.Rows(), m.Cols()
	if rows < cols {
		return nil, nil, fmt.Errorf("ops.QR: rows(%d) < cols(%d): %w", rows, cols, matrix.ErrDimensionMismatch)
	}
	gm, err := toGonumDense(m)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.QR: %w", err)
	}
	var qr mat.QR
	qr.Factorize(gm)
	var q, r mat.Dense
	qr.QTo(&q)
	qr.RTo(&r)
	qm, err := fromGonumDense(&q)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.QR: %w", err)
	}
	rm, err := fromGonumDense(&r)
	if err != nil {
		return nil, nil, fmt.Errorf("ops.QR: %w", err)
	}
	return qm, rm, nil
}
