// SPDX-License-Identifier: MIT
// Package seeding implements D²/k-means++ seeding with optional kmc²
// (Metropolis-Hastings accelerated) sampling and local-search++ (LS++)
// refinement, per the "repeatedly_get_initial_centers" family of
// bicriteria seeders referenced in the original project's pycluster.h
// (kmcrounds/lspprounds/use_exponential_skips parameter names come from
// there). No literal seeding algorithm source survived the original
// project's filtering pass, so the stepwise construction below follows
// the textbook Arthur-Vassilvitskii k-means++ / kmc² algorithms the
// parameter names describe.
package seeding

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/katalvlaran/coreset/internal/fanout"
	"github.com/katalvlaran/coreset/logx"
	"github.com/katalvlaran/coreset/oracle"
)

// Sentinel errors.
var (
	// ErrInvalidArgument indicates k <= 0, N <= 0, or k > N.
	ErrInvalidArgument = errors.New("seeding: invalid argument")

	// ErrDegenerate indicates every remaining point has zero d²-cost to
	// the centers chosen so far (spec §7: "all points identical during D²
	// seeding"), so the next center cannot be chosen proportional to d²
	// without an arbitrary tie-break among ties that are all zero.
	ErrDegenerate = errors.New("seeding: degenerate input, all points identical to chosen centers")
)

// Result is the outcome of Run: k center indices (into the oracle's point
// set), an assignment vector of length N, and the corresponding cost
// vector.
type Result struct {
	Indices []int
	Asn     []int
	Costs   []float64
	// SumSqCost is the Σd² objective the center set achieves.
	SumSqCost float64
}

func weightOf(points *oracle.PointSet, i int) float64 {
	if points == nil {
		return 1
	}
	return points.Weight(i)
}

// cost computes the dissimilarity from point i to center c under the
// oracle's fixed measure, turned into the D² cost per squaringMeasure:
// L1 and L2 are squared explicitly, while L2Squared, the KL family,
// ItakuraSaito, JensenShannon, Bhattacharyya, TotalVariation and Hellinger
// use the raw value unchanged.
func cost(o oracle.Oracle, measure squaringMeasure, c, i int) (float64, error) {
	d, err := o.RowDistance(c, i)
	if err != nil {
		return 0, err
	}
	if measure.alreadySquared() {
		return d, nil
	}
	return d * d, nil
}

// squaringMeasure reports whether a measure's raw value is used as the D²
// cost unchanged (every listed measure, including the metrics
// TotalVariation and Hellinger) or must be squared first (L1, L2, and any
// unrecognized tag).
type squaringMeasure oracle.Measure

func (m squaringMeasure) alreadySquared() bool {
	switch oracle.Measure(m) {
	case oracle.L2Squared, oracle.Bhattacharyya, oracle.KL, oracle.SymmetricKL,
		oracle.ItakuraSaito, oracle.JensenShannon, oracle.TotalVariation, oracle.Hellinger:
		return true
	default:
		return false
	}
}

// Run performs D²/k-means++ seeding over o, producing k centers. points
// supplies optional per-point weights (nil means uniform weight 1);
// measure selects how RowDistance's raw output is squared into the D²
// cost (see squaringMeasure).
//
// Complexity: O(extraSampleTries * (k * N [+ lsppRounds * k * N])) time
// without kmc², or O(extraSampleTries * k * kmc2Rounds) with it.
func Run(o oracle.Oracle, points *oracle.PointSet, measure oracle.Measure, k int, opts ...Option) (*Result, error) {
	n := o.NumPoints()
	if n <= 0 || k <= 0 || k > n {
		return nil, ErrInvalidArgument
	}
	cfg := newConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	log := logx.Or(cfg.logger)
	log.Infof("seeding: start n=%d k=%d tries=%d kmc2Rounds=%d lsppRounds=%d", n, k, cfg.extraSampleTries, cfg.kmc2Rounds, cfg.lsppRounds)

	var best *Result
	for t := 0; t < cfg.extraSampleTries; t++ {
		res, err := runOnce(o, points, squaringMeasure(measure), k, cfg)
		if err != nil {
			return nil, err
		}
		log.Debugf("seeding: try=%d sumSqCost=%g", t, res.SumSqCost)
		if best == nil || res.SumSqCost < best.SumSqCost {
			best = res
		}
	}
	log.Infof("seeding: done bestSumSqCost=%g", best.SumSqCost)
	return best, nil
}

func runOnce(o oracle.Oracle, points *oracle.PointSet, measure squaringMeasure, k int, cfg *config) (*Result, error) {
	n := o.NumPoints()
	indices := make([]int, 0, k)

	first := cfg.rng.Intn(n)
	indices = append(indices, first)

	d2 := make([]float64, n)
	if err := fanout.Run(context.Background(), n, cfg.workers, func(i int) error {
		c, err := cost(o, measure, first, i)
		if err != nil {
			return fmt.Errorf("seeding.Run: %w", err)
		}
		d2[i] = c * weightOf(points, i)
		return nil
	}); err != nil {
		return nil, err
	}

	for len(indices) < k {
		if sumD2(d2) <= 0 {
			return nil, fmt.Errorf("seeding.Run: %w", ErrDegenerate)
		}
		var next int
		var err error
		if cfg.kmc2Rounds > 0 {
			next, err = kmc2Step(o, points, measure, d2, cfg)
		} else {
			next, err = d2Step(o, points, measure, d2, indices, cfg)
		}
		if err != nil {
			return nil, err
		}
		indices = append(indices, next)
		if err := updateD2(o, points, measure, d2, next, cfg.workers); err != nil {
			return nil, err
		}
	}

	if cfg.lsppRounds > 0 {
		var err error
		indices, d2, err = localSearchPP(o, points, measure, indices, d2, cfg)
		if err != nil {
			return nil, err
		}
	}

	asn, costs, sum, err := assign(o, measure, indices)
	if err != nil {
		return nil, err
	}
	return &Result{Indices: indices, Asn: asn, Costs: costs, SumSqCost: sum}, nil
}

// d2Step draws n_local_trials independent D² candidates and keeps the one
// that most reduces Σd² (the "greedy k-means++" generalization of
// standard D² sampling, selected via WithNLocalTrials; trials=1 recovers
// plain D² sampling). Ties broken by sample index per spec §4.3.
func d2Step(o oracle.Oracle, points *oracle.PointSet, measure squaringMeasure, d2 []float64, existing []int, cfg *config) (int, error) {
	sum := sumD2(d2)
	bestIdx := -1
	bestReduction := math.Inf(-1)
	for t := 0; t < cfg.nLocalTrials; t++ {
		cand := sampleProportional(d2, sum, cfg)
		reduction, err := reductionIfAdded(o, points, measure, d2, cand)
		if err != nil {
			return 0, err
		}
		if reduction > bestReduction || (reduction == bestReduction && (bestIdx == -1 || cand < bestIdx)) {
			bestReduction = reduction
			bestIdx = cand
		}
	}
	return bestIdx, nil
}

func reductionIfAdded(o oracle.Oracle, points *oracle.PointSet, measure squaringMeasure, d2 []float64, cand int) (float64, error) {
	var reduction float64
	n := len(d2)
	for i := 0; i < n; i++ {
		c, err := cost(o, measure, cand, i)
		if err != nil {
			return 0, err
		}
		c *= weightOf(points, i)
		if c < d2[i] {
			reduction += d2[i] - c
		}
	}
	return reduction, nil
}

// sumD2 totals the current d² vector; a non-positive result mid-seeding
// (checked by runOnce before every d2Step/kmc2Step call) signals the
// ErrDegenerate condition of spec §7.
func sumD2(d2 []float64) float64 {
	var sum float64
	for _, v := range d2 {
		sum += v
	}
	return sum
}

// sampleProportional draws an index proportional to d2, falling back to a
// uniform draw when sum <= 0. The only caller that can reach that fallback
// is localSearchPP: runOnce's main seeding loop rejects a zero Σd² with
// ErrDegenerate before either d2Step or kmc2Step runs, but LS++ already
// has a complete, converged (zero-cost) center set by the time its own
// Σd² could be zero, so an arbitrary candidate draw there is harmless —
// no swap can improve on an already-zero cost.
func sampleProportional(d2 []float64, sum float64, cfg *config) int {
	if sum <= 0 {
		return cfg.rng.Intn(len(d2))
	}
	target := cfg.rng.Float64() * sum
	var acc float64
	for i, v := range d2 {
		acc += v
		if acc >= target {
			return i
		}
	}
	return len(d2) - 1
}

// kmc2Step runs a length-r Metropolis-Hastings chain with uniform
// proposals and acceptance probability d²(new)/d²(cur), starting from a
// uniform sample, per spec §4.3 "kmc² (optional)". It reads costs from
// the already-maintained d2 slice rather than recomputing against the
// current center set directly; runOnce still performs a full O(N)
// updateD2 pass after every accepted center regardless of path, so this
// does not recover kmc²'s full N-independent-per-step cost, only its
// O(r) sampling work per round. When useExpSkips is set, each step first
// draws a skip count from Exponential(1) via inverse-transform sampling
// over cfg.rng (-math.Log(1-U)/rate with rate=1) and discards that many
// uniform proposals; the accept/reject test on the next proposal is the
// same as without skips. Since proposals are independent and uniform, the
// discarded draws leave the chain's distribution unchanged. This draws directly from cfg.rng (*math/rand.Rand) rather
// than gonum/stat/distuv.Exponential, whose Src field wants an
// x/exp/rand.Source this package does not otherwise depend on.
func kmc2Step(o oracle.Oracle, points *oracle.PointSet, measure squaringMeasure, d2 []float64, cfg *config) (int, error) {
	n := len(d2)
	cur := cfg.rng.Intn(n)
	curCost := d2[cur]

	for step := 0; step < cfg.kmc2Rounds; step++ {
		if cfg.useExpSkips {
			skip := int(-math.Log(1-cfg.rng.Float64()) / 1.0)
			for s := 0; s < skip; s++ {
				_ = cfg.rng.Intn(n)
			}
		}
		cand := cfg.rng.Intn(n)
		candCost := d2[cand]
		var accept bool
		if curCost <= 0 {
			accept = true
		} else {
			threshold := candCost / curCost
			if threshold >= 1 {
				accept = true
			} else {
				accept = cfg.rng.Float64() < threshold
			}
		}
		if accept {
			cur, curCost = cand, candCost
		}
	}
	return cur, nil
}

// updateD2 folds newCenter into every entry of d2 via fanout.Run: each
// index i only ever writes d2[i], satisfying the partitioning discipline
// spec §5 requires for lock-free parallel writes over N.
func updateD2(o oracle.Oracle, points *oracle.PointSet, measure squaringMeasure, d2 []float64, newCenter int, workers int) error {
	return fanout.Run(context.Background(), len(d2), workers, func(i int) error {
		c, err := cost(o, measure, newCenter, i)
		if err != nil {
			return fmt.Errorf("seeding.Run: %w", err)
		}
		c *= weightOf(points, i)
		if c < d2[i] {
			d2[i] = c
		}
		return nil
	})
}

// localSearchPP performs l rounds of swap-if-improving refinement per
// spec §4.3 "Local-search++ (optional)": each round draws one candidate
// via D² sampling and accepts the swap against the existing center whose
// removal, combined with the candidate's addition, maximizes the
// reduction in Σd², accepting only if it is strictly positive. Ties on
// the candidate draw break by earliest candidate index.
func localSearchPP(o oracle.Oracle, points *oracle.PointSet, measure squaringMeasure, indices []int, d2 []float64, cfg *config) ([]int, []float64, error) {
	n := len(d2)
	for round := 0; round < cfg.lsppRounds; round++ {
		sum := sumD2(d2)
		cand := sampleProportional(d2, sum, cfg)

		bestSwap := -1
		bestD2 := d2
		bestSum := sum
		for slot := range indices {
			trial := make([]int, len(indices))
			copy(trial, indices)
			trial[slot] = cand

			trialD2 := make([]float64, n)
			var trialSum float64
			for i := 0; i < n; i++ {
				best := math.Inf(1)
				for _, c := range trial {
					cc, err := cost(o, measure, c, i)
					if err != nil {
						return nil, nil, err
					}
					cc *= weightOf(points, i)
					if cc < best {
						best = cc
					}
				}
				trialD2[i] = best
				trialSum += best
			}
			if trialSum < bestSum {
				bestSum = trialSum
				bestD2 = trialD2
				bestSwap = slot
			}
		}
		if bestSwap >= 0 {
			indices[bestSwap] = cand
			d2 = bestD2
		}
	}
	return indices, d2, nil
}

// assign computes the final assignment and cost vectors for a fixed
// center set, under the oracle's native (unsquared) measure, matching
// cost[i] = measure(i, C[asn[i]]) per spec §3's invariant.
func assign(o oracle.Oracle, measure squaringMeasure, indices []int) ([]int, []float64, float64, error) {
	n := o.NumPoints()
	asn := make([]int, n)
	costs := make([]float64, n)
	var sumSq float64
	for i := 0; i < n; i++ {
		bestJ := -1
		bestRaw := math.Inf(1)
		bestSq := math.Inf(1)
		for j, c := range indices {
			raw, err := o.RowDistance(c, i)
			if err != nil {
				return nil, nil, 0, fmt.Errorf("seeding.assign: %w", err)
			}
			sq := raw
			if !measure.alreadySquared() {
				sq = raw * raw
			}
			if raw < bestRaw {
				bestRaw = raw
				bestSq = sq
				bestJ = j
			}
		}
		asn[i] = bestJ
		costs[i] = bestRaw
		sumSq += bestSq
	}
	return asn, costs, sumSq, nil
}
