// SPDX-License-Identifier: MIT
// Package minibatch implements the stochastic reseeding variant of the
// hard clustering refiner (lloyd): each iteration updates centers from a
// small batch rather than the full point set, with a decaying per-center
// learning rate, and periodically checks global cost to reseed centers
// that have stopped improving.
package minibatch

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
	ErrInvalidArgument = errors.New("minibatch: invalid argument")
)

// Result is the outcome of Run.
type Result struct {
	Centers        [][]float64
	Asn            []int
	Costs          []float64
	InitialCost    float64
	FinalCost      float64
	IterationsUsed int
	ReseedsUsed    int
}

// Run performs mini-batch refinement over dense points, starting from
// initialCenters, under measure/prior with optional per-point weights.
//
// Complexity per iteration: O(B*k*D) time for assignment and update,
// O(N*k*D) at each checkin for the global-cost recomputation.
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
		return nil, fmt.Errorf("minibatch.Run: %w", err)
	}

	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	centers := make([][]float64, k)
	for i, c := range initialCenters {
		centers[i] = append([]float64(nil), c...)
	}
	countSeen := make([]int, k)

	rowSums := make([]float64, n)
	for i, row := range points {
		rowSums[i] = floats.Sum(row)
	}

	log := logx.Or(cfg.logger)
	ctx := context.Background()

	asn, costs, initialCost, err := assignAll(ctx, cfg.workers, points, centers, measure, prior, rowSums)
	if err != nil {
		return nil, fmt.Errorf("minibatch.Run: %w", err)
	}
	bestGlobalCost := initialCost
	staleCheckins := 0
	reseeds := 0
	iterations := 0
	log.Infof("minibatch: start n=%d k=%d batch=%d initialCost=%g", n, k, cfg.batchSize, initialCost)

	for iterations = 0; iterations < cfg.maxIters; iterations++ {
		batch := drawBatch(n, cfg)
		updateFromBatch(points, centers, measure, prior, weights, rowSums, countSeen, batch, dim)

		if (iterations+1)%cfg.checkinFreq == 0 {
			var globalCost float64
			asn, costs, globalCost, err = assignAll(ctx, cfg.workers, points, centers, measure, prior, rowSums)
			if err != nil {
				return nil, fmt.Errorf("minibatch.Run: %w", err)
			}
			log.Debugf("minibatch: checkin iteration=%d globalCost=%g stale=%d", iterations, globalCost, staleCheckins)
			if globalCost < bestGlobalCost-1e-12 {
				bestGlobalCost = globalCost
				staleCheckins = 0
			} else {
				staleCheckins++
				if staleCheckins >= cfg.reseedCount {
					reseedWorstCenter(points, centers, asn, costs, weights, countSeen, dim)
					staleCheckins = 0
					reseeds++
					log.Warnf("minibatch: reseeded worst center at iteration=%d (total reseeds=%d)", iterations, reseeds)
				}
			}
		}
	}

	finalAsn, finalCosts, finalCost, err := assignAll(ctx, cfg.workers, points, centers, measure, prior, rowSums)
	if err != nil {
		return nil, fmt.Errorf("minibatch.Run: %w", err)
	}
	log.Infof("minibatch: done iterations=%d reseeds=%d finalCost=%g", iterations, reseeds, finalCost)
	return &Result{
		Centers:        centers,
		Asn:            finalAsn,
		Costs:          finalCosts,
		InitialCost:    initialCost,
		FinalCost:      finalCost,
		IterationsUsed: iterations,
		ReseedsUsed:    reseeds,
	}, nil
}

func drawBatch(n int, cfg *config) []int {
	size := cfg.batchSize
	if size > n {
		size = n
	}
	batch := make([]int, size)
	if cfg.withRep {
		for i := range batch {
			batch[i] = cfg.rng.Intn(n)
		}
		return batch
	}
	perm := cfg.rng.Perm(n)
	copy(batch, perm[:size])
	return batch
}

func weightOf(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}

// assignAll recomputes the global assignment/cost over every point via
// fanout.Run, used at init, at each checkin, and at the final readout —
// the only full-N passes in an otherwise batch-scoped refiner.
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

// updateFromBatch assigns the batch's points to their nearest center, then
// applies C[j] += eta_j * (mean_batch_j - C[j]) per spec §4.5, with
// eta_j = 1/(countSeen[j]+1). countSeen[j] grows by one for each batch
// that assigns at least one point to center j, so eta_j decays with the
// number of batches that have updated it, not with the number of points.
func updateFromBatch(points, centers [][]float64, measure oracle.Measure, prior oracle.Prior, weights []float64, rowSums []float64, countSeen []int, batch []int, dim int) {
	k := len(centers)
	batchSums := make([][]float64, k)
	batchCounts := make([]float64, k)
	for j := range batchSums {
		batchSums[j] = make([]float64, dim)
	}

	for _, i := range batch {
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
		w := weightOf(weights, i)
		floats.AddScaled(batchSums[bestJ], w, row)
		batchCounts[bestJ] += w
	}

	for j := 0; j < k; j++ {
		if batchCounts[j] <= 0 {
			continue
		}
		eta := 1.0 / float64(countSeen[j]+1)
		for d := 0; d < dim; d++ {
			mean := batchSums[j][d] / batchCounts[j]
			centers[j][d] += eta * (mean - centers[j][d])
		}
		countSeen[j]++
	}
}

// reseedWorstCenter relocates the center with the highest within-cluster
// cost share to the globally farthest point, per spec §4.5 "reseed the
// worst center to the current farthest point".
func reseedWorstCenter(points, centers [][]float64, asn []int, costs []float64, weights []float64, countSeen []int, dim int) {
	k := len(centers)
	clusterCost := make([]float64, k)
	for i, a := range asn {
		clusterCost[a] += costs[i] * weightOf(weights, i)
	}
	worst := 0
	for j := 1; j < k; j++ {
		if clusterCost[j] > clusterCost[worst] {
			worst = j
		}
	}

	farthest := 0
	farthestCost := -1.0
	for i, c := range costs {
		wc := c * weightOf(weights, i)
		if wc > farthestCost {
			farthestCost = wc
			farthest = i
		}
	}

	copy(centers[worst], points[farthest][:dim])
	countSeen[worst] = 0
}
