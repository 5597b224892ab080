// SPDX-License-Identifier: MIT
// Package sensitivity turns a bicriteria solution (per-point costs and
// center assignments) into an importance-sampling distribution and, from
// it, a weighted coreset. It is the Go counterpart of coreset.h's
// CoresetSampler/UniformSampler: Scheme selects among the same three
// probability assignments (BFL, FL, LFKF) that make_sampler dispatches on.
package sensitivity

import (
	"context"
	"errors"
	"fmt"

	"github.com/katalvlaran/coreset/aliassampler"
	"github.com/katalvlaran/coreset/internal/fanout"
	"github.com/katalvlaran/coreset/logx"
)

// Scheme selects the sensitivity-probability assignment.
type Scheme int

const (
	// BFL is Braverman-Feldman-Lang (2016): blends cost share and
	// per-cluster weight share.
	BFL Scheme = iota
	// FL is Feldman-Langberg (2011): probability proportional to cost alone.
	FL
	// LFKF is Lucic-Faulkner-Krause-Feldman (2017), for Gaussian mixture
	// models: squared costs plus an alpha-weighted cluster term.
	LFKF
)

// Sentinel errors.
var (
	// ErrNotReady indicates Sample was called before Build.
	ErrNotReady = errors.New("sensitivity: sampler not built")

	// ErrInvalidAssignment indicates an assignment index outside [0, k).
	ErrInvalidAssignment = errors.New("sensitivity: assignment index out of range")

	// ErrEmptyCluster indicates a BFL cluster received zero assigned points.
	ErrEmptyCluster = errors.New("sensitivity: empty cluster in BFL sensitivity")

	// ErrInvalidArgument indicates a structurally invalid input (N=0, k=0,
	// LFKF with a non-positive alpha estimate, mismatched slice lengths).
	ErrInvalidArgument = errors.New("sensitivity: invalid argument")
)

// Coreset is the (indices, weights) pair produced by Sample: an unbiased
// estimator of any additive cost function over the original point set,
// provided every point with nonzero cost also has nonzero probability.
type Coreset struct {
	Indices []int
	Weights []float64
}

// Compact sums the weights of duplicate indices and shrinks both slices,
// the Go counterpart of IndexCoreset::compact in coreset.h.
func (c *Coreset) Compact() {
	sums := make(map[int]float64, len(c.Indices))
	order := make([]int, 0, len(c.Indices))
	for i, idx := range c.Indices {
		if _, seen := sums[idx]; !seen {
			order = append(order, idx)
		}
		sums[idx] += c.Weights[i]
	}
	if len(order) == len(c.Indices) {
		return
	}
	newIdx := make([]int, len(order))
	newW := make([]float64, len(order))
	for i, idx := range order {
		newIdx[i] = idx
		newW[i] = sums[idx]
	}
	c.Indices = newIdx
	c.Weights = newW
}

// Sampler holds a built importance-sampling distribution and draws
// coresets from it.
type Sampler struct {
	np     int
	probs  []float64
	weight []float64 // per-point input weights, nil meaning all 1
	alias  *aliassampler.Sampler
}

func (s *Sampler) ready() bool { return s.alias != nil }

func getWeight(weights []float64, i int) float64 {
	if weights == nil {
		return 1
	}
	return weights[i]
}

// BuildOpts bundles the inputs to Build, mirroring make_sampler's
// parameter list in coreset.h.
type BuildOpts struct {
	// NumPoints is N, the number of points the costs/assignments describe.
	NumPoints int
	// NumCenters is k, the number of distinct assignment values.
	NumCenters int
	// Costs holds cost[i], the dissimilarity from point i to its assigned
	// center.
	Costs []float64
	// Assignments holds asn[i] in [0, NumCenters).
	Assignments []int
	// Weights is the optional per-point input weight vector (nil means
	// uniform weight 1).
	Weights []float64
	// Scheme selects BFL, FL, or LFKF.
	Scheme Scheme
	// Seed seeds the underlying alias sampler.
	Seed uint64
	// AlphaEst is the alpha estimator used only by LFKF; it must be > 0
	// when Scheme == LFKF (an Open Question resolved against the original
	// alpha_est=0 default: zero would flatten every probability to the
	// shared 2*TotalCost/W_a term, discarding per-point signal entirely, so
	// it is rejected rather than silently accepted).
	AlphaEst float64
	// Shards bounds the number of goroutines the per-cluster accumulation
	// pass uses (spec §5: "per-thread shards summed in a deterministic
	// order"). 0 or 1 (the default) accumulates sequentially.
	Shards int
	// Logger receives phase diagnostics; nil discards everything (spec §6).
	Logger logx.Logger
}

// clusterAccum is the per-cluster reduction shape shared by BFL and LFKF:
// weightSums[a] = Σ_{j:asn=a} w(j), centerCounts[a] = |{j:asn=a}|,
// weightedCostSums[a] = Σ_{j:asn=a} w(j)*cost(j) for whatever "cost" the
// caller's perPoint closure returns. Accumulated via per-shard partials
// summed in shard order, per spec §5's determinism requirement, rather
// than a single shared accumulator mutated from every goroutine.
func clusterAccum(shards, n, k int, perPoint func(i int) (a int, w, costTerm float64)) (weightSums, weightedCostSums []float64, centerCounts []int, total float64) {
	if shards < 1 {
		shards = 1
	}
	if shards > n {
		shards = n
	}
	type partial struct {
		weightSums       []float64
		weightedCostSums []float64
		centerCounts     []int
		total            float64
	}
	partials := make([]partial, shards)
	_ = fanout.Run(context.Background(), shards, shards, func(shard int) error {
		p := partial{
			weightSums:       make([]float64, k),
			weightedCostSums: make([]float64, k),
			centerCounts:     make([]int, k),
		}
		for i := shard; i < n; i += shards {
			a, w, costTerm := perPoint(i)
			p.weightSums[a] += w
			p.weightedCostSums[a] += costTerm
			p.centerCounts[a]++
			p.total += costTerm
		}
		partials[shard] = p
		return nil
	})

	weightSums = make([]float64, k)
	weightedCostSums = make([]float64, k)
	centerCounts = make([]int, k)
	for _, p := range partials {
		for a := 0; a < k; a++ {
			weightSums[a] += p.weightSums[a]
			weightedCostSums[a] += p.weightedCostSums[a]
			centerCounts[a] += p.centerCounts[a]
		}
		total += p.total
	}
	return weightSums, weightedCostSums, centerCounts, total
}

// Build computes a sampling distribution from a bicriteria solution per
// BuildOpts.Scheme and constructs the underlying alias table.
//
// Complexity: O(N + k) time and memory.
func Build(opts BuildOpts) (*Sampler, error) {
	n, k := opts.NumPoints, opts.NumCenters
	if n <= 0 || k <= 0 {
		return nil, ErrInvalidArgument
	}
	if len(opts.Costs) != n || len(opts.Assignments) != n {
		return nil, ErrInvalidArgument
	}
	if opts.Weights != nil && len(opts.Weights) != n {
		return nil, ErrInvalidArgument
	}
	for _, a := range opts.Assignments {
		if a < 0 || a >= k {
			return nil, fmt.Errorf("sensitivity.Build: asn=%d, k=%d: %w", a, k, ErrInvalidAssignment)
		}
	}
	if opts.Scheme == LFKF && opts.AlphaEst <= 0 {
		return nil, fmt.Errorf("sensitivity.Build: LFKF requires AlphaEst > 0: %w", ErrInvalidArgument)
	}

	log := logx.Or(opts.Logger)
	shards := opts.Shards
	if shards < 1 {
		shards = 1
	}

	var probs []float64
	var err error
	switch opts.Scheme {
	case LFKF:
		log.Infof("sensitivity: building LFKF distribution n=%d k=%d", n, k)
		probs, err = buildLFKF(shards, n, k, opts.Costs, opts.Assignments, opts.Weights, opts.AlphaEst)
	case FL:
		log.Infof("sensitivity: building FL distribution n=%d", n)
		probs, err = buildFL(shards, n, opts.Costs, opts.Weights)
	default:
		log.Infof("sensitivity: building BFL distribution n=%d k=%d", n, k)
		probs, err = buildBFL(shards, n, k, opts.Costs, opts.Assignments, opts.Weights)
	}
	if err != nil {
		return nil, err
	}

	alias, err := aliassampler.New(probs, opts.Weights, opts.Seed)
	if err != nil {
		return nil, fmt.Errorf("sensitivity.Build: %w", err)
	}
	log.Debugf("sensitivity: distribution ready, alias table built over %d points", n)
	return &Sampler{np: n, probs: alias.ProbsCopy(), weight: opts.Weights, alias: alias}, nil
}

func buildFL(shards, n int, costs, weights []float64) ([]float64, error) {
	total, err := fanout.ReduceFloat64(context.Background(), n, shards, func(i int) float64 {
		return getWeight(weights, i) * costs[i]
	})
	if err != nil {
		return nil, err
	}
	if total <= 0 {
		return nil, fmt.Errorf("sensitivity.Build: total cost is zero: %w", ErrInvalidArgument)
	}
	probs := make([]float64, n)
	for i := 0; i < n; i++ {
		probs[i] = getWeight(weights, i) * costs[i] / total
	}
	return probs, nil
}

func buildBFL(shards, n, k int, costs []float64, assignments []int, weights []float64) ([]float64, error) {
	weightSums, _, centerCounts, total := clusterAccum(shards, n, k, func(i int) (int, float64, float64) {
		w := getWeight(weights, i)
		return assignments[i], w, w * costs[i]
	})
	for a := 0; a < k; a++ {
		if centerCounts[a] == 0 {
			return nil, fmt.Errorf("sensitivity.Build: center %d: %w", a, ErrEmptyCluster)
		}
	}
	if total <= 0 {
		return nil, fmt.Errorf("sensitivity.Build: total cost is zero: %w", ErrInvalidArgument)
	}

	probs := make([]float64, n)
	var sumProbs float64
	for i := 0; i < n; i++ {
		w := getWeight(weights, i)
		a := assignments[i]
		fracCost := w * costs[i] / total
		fracW := w / (weightSums[a] * float64(centerCounts[a]))
		probs[i] = 0.5 * (fracCost + fracW)
		sumProbs += probs[i]
	}
	for i := range probs {
		probs[i] /= sumProbs
	}
	return probs, nil
}

func buildLFKF(shards, n, k int, costs []float64, assignments []int, weights []float64, alpha float64) ([]float64, error) {
	sqCosts := make([]float64, n)
	weightSums, weightedCostSums, _, totalCost := clusterAccum(shards, n, k, func(i int) (int, float64, float64) {
		w := getWeight(weights, i)
		sq := costs[i] * costs[i]
		sqCosts[i] = sq
		return assignments[i], w, w * sq
	})
	probs := make([]float64, n)
	var sum float64
	for i := 0; i < n; i++ {
		a := assignments[i]
		if weightSums[a] <= 0 {
			return nil, fmt.Errorf("sensitivity.Build: center %d: %w", a, ErrEmptyCluster)
		}
		w := getWeight(weights, i)
		probs[i] = alpha*w*(sqCosts[i]+weightedCostSums[a]/weightSums[a]) + 2*totalCost/weightSums[a]
		sum += probs[i]
	}
	if sum <= 0 {
		return nil, fmt.Errorf("sensitivity.Build: total probability is zero: %w", ErrInvalidArgument)
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs, nil
}

// Sample draws m indices and returns the corresponding unbiased-estimator
// coreset: weight[j] = getweight(idx) / (m * probs[idx]).
//
// Complexity: O(m) time.
func (s *Sampler) Sample(m int, seed uint64) (*Coreset, error) {
	if !s.ready() {
		return nil, ErrNotReady
	}
	if m <= 0 {
		return nil, ErrInvalidArgument
	}
	if seed != 0 {
		s.alias.Seed(seed)
	}
	indices := make([]int, m)
	weightsOut := make([]float64, m)
	invM := 1.0 / float64(m)
	for i := 0; i < m; i++ {
		idx := s.alias.Sample()
		indices[i] = idx
		weightsOut[i] = getWeight(s.weight, idx) * invM / s.probs[idx]
	}
	return &Coreset{Indices: indices, Weights: weightsOut}, nil
}

// Prob returns the normalized sampling probability of point i.
func (s *Sampler) Prob(i int) float64 { return s.probs[i] }

// Size returns N, the number of points the sampler was built over.
func (s *Sampler) Size() int { return s.np }

// Uniform draws a coreset of size m uniformly at random over np points,
// each with weight np/m to preserve total mass — UniformSampler from
// coreset.h, a baseline the spec's distillation omitted but which remains
// useful for A/B comparison against importance sampling.
func Uniform(np, m int, seed uint64) (*Coreset, error) {
	if np <= 0 || m <= 0 {
		return nil, ErrInvalidArgument
	}
	uniformProbs := make([]float64, np)
	for i := range uniformProbs {
		uniformProbs[i] = 1.0 / float64(np)
	}
	alias, err := aliassampler.New(uniformProbs, nil, seed)
	if err != nil {
		return nil, fmt.Errorf("sensitivity.Uniform: %w", err)
	}
	indices := make([]int, m)
	weights := make([]float64, m)
	w := float64(np) / float64(m)
	for i := 0; i < m; i++ {
		indices[i] = alias.Sample()
		weights[i] = w
	}
	return &Coreset{Indices: indices, Weights: weights}, nil
}
