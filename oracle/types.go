// SPDX-License-Identifier: MIT
// Package oracle defines the data model the coreset/clustering core operates
// over: point sets, the distance-oracle abstraction, dissimilarity measures,
// and priors. No algorithm lives here — this package is the narrow contract
// every other package (matrix, sensitivity, seeding, lloyd, minibatch,
// lsearch) programs against, mirroring how lvlath's core package defines
// Vertex/Edge/Graph without itself implementing BFS/Dijkstra/MST.
//
// Errors:
//
//	ErrInvalidArgument  - k=0, N=0, dimension mismatch, unknown measure/prior key.
//	ErrOutOfRange       - index outside [0, N) or [0, k).
//	ErrNegativeWeight   - a point weight is negative.
package oracle

import "errors"

// Sentinel errors shared by every oracle/measure/prior consumer.
var (
	// ErrInvalidArgument indicates a structurally invalid argument: k=0, N=0,
	// a dimension mismatch, or an unrecognized measure/prior key.
	ErrInvalidArgument = errors.New("oracle: invalid argument")

	// ErrOutOfRange indicates a point or center index outside its valid range.
	ErrOutOfRange = errors.New("oracle: index out of range")

	// ErrNegativeWeight indicates a negative per-point weight was supplied.
	ErrNegativeWeight = errors.New("oracle: negative weight")
)

// PointSet carries the optional non-negative per-point weights associated
// with a point collection of size N. Absent weights are semantically
// uniform weight 1 (spec §9 "Empty weights path") — Weight never special
// cases a nil slice beyond skipping the allocation.
type PointSet struct {
	n       int
	weights []float64 // len == n, or nil meaning "all weights are 1"
}

// NewPointSet builds a PointSet of size n. weights may be nil (uniform
// weight 1) or a slice of length n with every entry >= 0.
// Complexity: O(n) to validate, O(1) extra allocation (weights is retained,
// not copied).
func NewPointSet(n int, weights []float64) (*PointSet, error) {
	if n <= 0 {
		return nil, ErrInvalidArgument
	}
	if weights != nil {
		if len(weights) != n {
			return nil, ErrInvalidArgument
		}
		for _, w := range weights {
			if w < 0 {
				return nil, ErrNegativeWeight
			}
		}
	}
	return &PointSet{n: n, weights: weights}, nil
}

// N returns the number of points.
func (p *PointSet) N() int { return p.n }

// Weight returns w(i), defaulting to 1 when no weight vector was supplied.
// Complexity: O(1).
func (p *PointSet) Weight(i int) float64 {
	if p.weights == nil {
		return 1
	}
	return p.weights[i]
}

// HasWeights reports whether an explicit weight vector is present.
func (p *PointSet) HasWeights() bool { return p.weights != nil }

// Row is a tagged-union view of one row of a point matrix: either a dense
// feature vector or a sparse set of (index, value) entries. This realizes
// Design Note 1 ("tagged dispatch over numeric type ... a single entry
// accepting a tagged-union matrix, dispatching internally").
type Row struct {
	// Dense holds the feature vector when SparseIdx is nil.
	Dense []float64
	// SparseIdx/SparseVal hold parallel index/value slices when non-nil;
	// Dense is nil in that case. Indices are strictly increasing.
	SparseIdx []int
	SparseVal []float64
}

// IsSparse reports whether this row uses the sparse representation.
func (r Row) IsSparse() bool { return r.SparseIdx != nil }

// Oracle is the narrow distance-provider contract (Design Note 2): backends
// implement this once and every algorithm in the module consumes distances
// exclusively through it, never assuming dense/sparse/graph/precomputed
// storage underneath.
type Oracle interface {
	// NumPoints returns N, the number of points the oracle serves.
	NumPoints() int

	// Dim returns the feature dimension, or 0 when the oracle has no
	// natural dimension (e.g. a precomputed distance matrix).
	Dim() int

	// RowDistance returns the dissimilarity from point to center under the
	// oracle's fixed measure. Returns an error if either index is outside
	// [0, NumPoints()); which out-of-range sentinel it wraps is
	// backend-specific (graphoracle uses ErrOutOfRange, the matrix
	// backends matrix.ErrOutOfRange).
	RowDistance(center, point int) (float64, error)

	// Pairwise returns the dissimilarity between points i and j.
	Pairwise(i, j int) (float64, error)

	// Row returns point i's full feature row, dense or sparse depending on
	// the backend. Oracles with no natural row representation (e.g. a
	// precomputed distance matrix) return ErrOutOfRange-free zero Row and
	// a non-nil error identifying the limitation via errors.Is against a
	// backend-specific sentinel.
	Row(i int) (Row, error)
}
