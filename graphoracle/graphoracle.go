// SPDX-License-Identifier: MIT
// Package graphoracle adapts a caller-supplied shortest-path function into
// an oracle.Oracle, realizing the "GraphShortestPath" oracle variant named
// in spec §3 without this module ever computing a shortest path itself.
// The graph engine — vertex/edge storage, Dijkstra/Bellman-Ford search —
// stays an external collaborator exactly as lvlath's dijkstra package
// computes distances over a *core.Graph that it never owns the algorithm
// consumers of (see dijkstra/types.go's doc comment): graphoracle is the
// mirror image, a consumer that never owns the graph.
package graphoracle

import (
	"errors"

	"github.com/katalvlaran/coreset/oracle"
)

// Sentinel errors.
var (
	// ErrInvalidArgument indicates n <= 0 or a nil ShortestPaths function.
	ErrInvalidArgument = errors.New("graphoracle: invalid argument")

	// ErrNoNaturalRow indicates Row was called on a graph oracle, which has
	// no feature-vector representation of a vertex.
	ErrNoNaturalRow = errors.New("graphoracle: vertex has no feature row")
)

// ShortestPaths is the external collaborator's distance function: the
// shortest-path cost between vertex i and vertex j, addressed by the dense
// 0..n-1 indices this oracle was built over. Implementations are expected
// to memoize or precompute internally (e.g. a caller running dijkstra.Dijkstra
// once per source and caching the resulting distance map) — ShortestPathOracle
// calls this once per RowDistance/Pairwise invocation and does no caching
// of its own.
type ShortestPaths func(i, j int) (float64, error)

// ShortestPathOracle adapts a ShortestPaths function over n vertices into
// an oracle.Oracle, so the coreset/clustering core can treat graph-distance
// points exactly like dense or sparse ones.
type ShortestPathOracle struct {
	n  int
	sp ShortestPaths
}

// New builds a ShortestPathOracle over n vertices, delegating every
// distance query to sp.
func New(n int, sp ShortestPaths) (*ShortestPathOracle, error) {
	if n <= 0 || sp == nil {
		return nil, ErrInvalidArgument
	}
	return &ShortestPathOracle{n: n, sp: sp}, nil
}

// NumPoints returns n, the number of vertices.
func (o *ShortestPathOracle) NumPoints() int { return o.n }

// Dim returns 0: a graph-distance oracle has no feature dimension.
func (o *ShortestPathOracle) Dim() int { return 0 }

func (o *ShortestPathOracle) boundsCheck(i, j int) error {
	if i < 0 || i >= o.n || j < 0 || j >= o.n {
		return oracle.ErrOutOfRange
	}
	return nil
}

// RowDistance returns the shortest-path distance from center to point.
func (o *ShortestPathOracle) RowDistance(center, point int) (float64, error) {
	if err := o.boundsCheck(center, point); err != nil {
		return 0, err
	}
	return o.sp(center, point)
}

// Pairwise returns the shortest-path distance between vertices i and j.
func (o *ShortestPathOracle) Pairwise(i, j int) (float64, error) {
	if err := o.boundsCheck(i, j); err != nil {
		return 0, err
	}
	return o.sp(i, j)
}

// Row always fails: a graph-distance oracle has no dense/sparse feature
// row, only pairwise distances (spec §3's Oracle variant list: a
// GraphShortestPath oracle is distance-only).
func (o *ShortestPathOracle) Row(i int) (oracle.Row, error) {
	if i < 0 || i >= o.n {
		return oracle.Row{}, oracle.ErrOutOfRange
	}
	return oracle.Row{}, ErrNoNaturalRow
}
