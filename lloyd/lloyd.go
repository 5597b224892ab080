// SPDX-License-Identifier: MIT
// Package lloyd implements Lloyd-style hard clustering refinement:
// alternating assignment and centroid update until the relative cost
// improvement falls below a threshold. Centroid update uses the weighted
// arithmetic mean for every measure: for any Bregman divergence the sum of
// divergences to a candidate centroid is minimized exactly by the
// weighted mean of the assigned points (Banerjee et al., 2005), which
// covers L2Squared, KL, and ItakuraSaito exactly and is used as the
// standard practical heuristic for the remaining non-Bregman measures.
package lloyd

import (
	"context"
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/katalvlaran/coreset/internal/fanout"
	"github.com/katalvlaran/coreset/logx"
	"github.com/katalvlaran/coreset/oracle"
)

// Sentinel errors.
var (
	// ErrInvalidArgument indicates k <= 0, a dimension mismatch, or no
	// initial centers supplied.
	ErrInvalidArgument = errors.New("lloyd: invalid argument")
)

// Result is the outcome of Run.
type Result struct {
	Centers      [][]float64
	Asn          []int
	Costs        []float64
	InitialCost  float64
	FinalCost    float64
	IterationsUsed int
}

// Run performs Lloyd-style refinement over dense points, starting from
// initialCenters (len == k, each of length D matching points' rows),
// under measure/prior with optional per-point weights.
//
// Complexity per iteration: O(N*k*D) time (assignment), O(N*D) time
// (update); O(k*D) memory for centers.
func Run(points [][]float64, initialCenters [][]float64, measure oracle.Measure, prior oracle.Prior, weights []float64, opts ...Option) (*Result, error) {
	n := len(points)
	k := len(initialCenters)
	if n == 0 || k == 0 {
		return nil, ErrInvalidArgument
	}
	dim := len(points[0])
	for _, c := range initialCenters {
		if len(c) != dim {
			return nil, ErrInvalidArgument
		}
	}
	if weights != nil && len(weights) != n {
		return nil, ErrInvalidArgument
	}
	if err := prior.Validate(measure); err != nil {
		return nil, fmt.Errorf("lloyd.Run: %w", err)
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := logx.Or(cfg.logger)

	centers := make([][]float64, k)
	for i, c := range initialCenters {
		centers[i] = append([]float64(nil), c...)
	}

	rowSums := make([]float64, n)
	for i, row := range points {
		rowSums[i] = floats.Sum(row)
	}

	asn, costs, initialCost, err := assignAll(cfg.ctx(), cfg.workers, points, centers, measure, prior, rowSums)
	if err != nil {
		return nil, fmt.Errorf("lloyd.Run: %w", err)
	}
	prevCost := initialCost
	iterations := 0
	log.Infof("lloyd: start n=%d k=%d initialCost=%g", n, k, initialCost)

	for iterations = 0; iterations < cfg.maxIters; iterations++ {
		updateCenters(points, centers, asn, weights, dim)

		var cost float64
		asn, costs, cost, err = assignAll(cfg.ctx(), cfg.workers, points, centers, measure, prior, rowSums)
		if err != nil {
			return nil, fmt.Errorf("lloyd.Run: %w", err)
		}

		var relImprove float64
		if prevCost > 0 {
			relImprove = (prevCost - cost) / prevCost
		}
		log.Debugf("lloyd: iteration=%d cost=%g relImprove=%g", iterations, cost, relImprove)
		prevCost = cost
		if relImprove < cfg.eps {
			iterations++
			break
		}
	}
	log.Infof("lloyd: done iterations=%d finalCost=%g", iterations, prevCost)

	return &Result{
		Centers:        centers,
		Asn:            asn,
		Costs:          costs,
		InitialCost:    initialCost,
		FinalCost:      prevCost,
		IterationsUsed: iterations,
	}, nil
}

func weightOf(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}

// assignAll computes asn[i]/costs[i] for every point via fanout.Run: each
// index i writes only asn[i]/costs[i], satisfying the partitioning
// discipline spec §5 requires for lock-free parallel writes. The total
// cost is reduced deterministically afterward in index order, not inside
// the parallel loop.
func assignAll(ctx context.Context, workers int, points, centers [][]float64, measure oracle.Measure, prior oracle.Prior, rowSums []float64) ([]int, []float64, float64, error) {
	n := len(points)
	asn := make([]int, n)
	costs := make([]float64, n)
	err := fanout.Run(ctx, n, workers, func(i int) error {
		row := points[i]
		bestJ := 0
		bestCost := math.Inf(1)
		for j, c := range centers {
			cost := oracle.Eval(measure, row, c, prior, rowSums[i], 0)
			if cost < bestCost {
				bestCost = cost
				bestJ = j
			}
		}
		asn[i] = bestJ
		costs[i] = bestCost
		return nil
	})
	if err != nil {
		return nil, nil, 0, err
	}
	var total float64
	for _, c := range costs {
		total += c
	}
	return asn, costs, total, nil
}

// updateCenters recomputes each center as the weighted mean of its
// assigned points, reseeding empty clusters from the farthest point by
// cost per spec §4.4 step 2.
func updateCenters(points, centers [][]float64, asn []int, weights []float64, dim int) {
	k := len(centers)
	sums := make([][]float64, k)
	totalW := make([]float64, k)
	counts := make([]int, k)
	for j := range sums {
		sums[j] = make([]float64, dim)
	}

	for i, row := range points {
		a := asn[i]
		w := weightOf(weights, i)
		floats.AddScaled(sums[a], w, row)
		totalW[a] += w
		counts[a]++
	}

	var farthestOrder []int
	for j := 0; j < k; j++ {
		if counts[j] > 0 {
			continue
		}
		if farthestOrder == nil {
			farthestOrder = farthestPointsByCurrentCost(points, centers, weights)
		}
		reseedIdx := pickUnusedFarthest(farthestOrder, counts, asn)
		centers[j] = append([]float64(nil), points[reseedIdx]...)
		asn[reseedIdx] = j
		counts[j] = 1
		continue
	}

	for j := 0; j < k; j++ {
		if totalW[j] <= 0 {
			continue
		}
		for d := 0; d < dim; d++ {
			centers[j][d] = sums[j][d] / totalW[j]
		}
	}
}

// farthestPointsByCurrentCost ranks point indices by descending distance
// to their current nearest center, using squared L2 as a measure-agnostic
// proxy for "farthest" when reseeding (the reseed target only needs to be
// a poorly-served point, not an exact cost-ranked one).
func farthestPointsByCurrentCost(points, centers [][]float64, weights []float64) []int {
	n := len(points)
	costs := make([]float64, n)
	for i, row := range points {
		best := math.Inf(1)
		for _, c := range centers {
			var d float64
			for x := range row {
				diff := row[x] - c[x]
				d += diff * diff
			}
			if d < best {
				best = d
			}
		}
		costs[i] = best * weightOf(weights, i)
	}
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	// insertion sort, descending by cost
	for i := 1; i < n; i++ {
		j := i
		for j > 0 && costs[order[j-1]] < costs[order[j]] {
			order[j-1], order[j] = order[j], order[j-1]
			j--
		}
	}
	return order
}

func pickUnusedFarthest(order []int, counts []int, asn []int) int {
	for _, idx := range order {
		if counts[asn[idx]] > 1 {
			return idx
		}
	}
	return order[0]
}
