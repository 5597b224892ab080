// SPDX-License-Identifier: MIT
// Package aliassampler implements Walker's alias method: O(N) construction,
// O(1) sampling from a fixed discrete distribution. It is the Go counterpart
// of fgc's alias_sampler.h, wired into CoresetSampler (see the sensitivity
// package) exactly as coreset.h's CoresetSampler wraps its own
// alias::AliasSampler.
package aliassampler

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"math/rand"
)

// weightsPresentMagic mirrors coreset.h's magic constant (1337) marking a
// present weights section in the serialized format, rather than a plain
// boolean flag — kept for exact wire-format parity with the format this
// package's binary layout is grounded on.
const weightsPresentMagic uint32 = 1337

// Sentinel errors for sampler construction and use.
var (
	// ErrInvalidDistribution indicates N == 0, a negative probability, or a
	// zero-sum probability vector.
	ErrInvalidDistribution = errors.New("aliassampler: invalid probability distribution")

	// ErrNotReady indicates Sample was called before a sampler was built.
	ErrNotReady = errors.New("aliassampler: sampler not ready")
)

// Sampler draws indices in [0, N) in O(1) per call, with P(sample() == i)
// proportional to the probability vector it was built from. It is
// immutable after construction: sampling is idempotent given the same RNG
// seed (spec "Sampler state" invariant).
type Sampler struct {
	n       int
	seed    uint64
	probs   []float64 // the original, normalized distribution (kept for serialization/Equal)
	weights []float64 // optional per-point weights, nil if absent
	prob    []float64 // alias-table probability column
	alias   []int     // alias-table alias column
	rng     *rand.Rand
}

// New builds a Sampler over probs (need not already sum to 1; New
// normalizes) with the given seed. weights is optional and carried through
// verbatim for serialization and downstream weight lookups; it plays no
// role in alias-table construction.
//
// Complexity: O(N) time and memory.
func New(probs []float64, weights []float64, seed uint64) (*Sampler, error) {
	n := len(probs)
	if n == 0 {
		return nil, ErrInvalidDistribution
	}
	if weights != nil && len(weights) != n {
		return nil, ErrInvalidDistribution
	}
	var sum float64
	for _, p := range probs {
		if p < 0 || math.IsNaN(p) {
			return nil, ErrInvalidDistribution
		}
		sum += p
	}
	if sum <= 0 {
		return nil, ErrInvalidDistribution
	}

	normalized := make([]float64, n)
	for i, p := range probs {
		normalized[i] = p / sum
	}

	prob, alias := buildAliasTable(normalized)

	var w []float64
	if weights != nil {
		w = append([]float64(nil), weights...)
	}

	return &Sampler{
		n:       n,
		seed:    seed,
		probs:   normalized,
		weights: w,
		prob:    prob,
		alias:   alias,
		rng:     rand.New(rand.NewSource(int64(seed))),
	}, nil
}

// buildAliasTable constructs Walker's alias table in O(N) from a
// distribution that already sums to 1, following the standard
// two-worklist (small/large) sweep.
func buildAliasTable(p []float64) (prob []float64, alias []int) {
	n := len(p)
	prob = make([]float64, n)
	alias = make([]int, n)

	scaled := make([]float64, n)
	small := make([]int, 0, n)
	large := make([]int, 0, n)
	for i, v := range p {
		scaled[i] = v * float64(n)
		if scaled[i] < 1.0 {
			small = append(small, i)
		} else {
			large = append(large, i)
		}
	}

	for len(small) > 0 && len(large) > 0 {
		s := small[len(small)-1]
		small = small[:len(small)-1]
		l := large[len(large)-1]
		large = large[:len(large)-1]

		prob[s] = scaled[s]
		alias[s] = l

		scaled[l] = (scaled[l] + scaled[s]) - 1.0
		if scaled[l] < 1.0 {
			small = append(small, l)
		} else {
			large = append(large, l)
		}
	}
	for _, l := range large {
		prob[l] = 1.0
	}
	for _, s := range small {
		prob[s] = 1.0
	}
	return prob, alias
}

// N returns the number of entries in the distribution.
func (s *Sampler) N() int { return s.n }

// Seed re-seeds the sampler's internal RNG, leaving the alias table
// untouched (sampling is reseedable per the spec's "Sampler state").
func (s *Sampler) Seed(seed uint64) {
	s.seed = seed
	s.rng = rand.New(rand.NewSource(int64(seed)))
}

// Prob returns the normalized probability p[i] used to build the table.
func (s *Sampler) Prob(i int) float64 { return s.probs[i] }

// ProbsCopy returns a defensive copy of the full normalized probability
// vector, for callers (e.g. sensitivity.Sampler) that need to look up
// probs[idx] repeatedly without holding a reference into the sampler's
// internals.
func (s *Sampler) ProbsCopy() []float64 {
	return append([]float64(nil), s.probs...)
}

// Weight returns the optional per-point weight, or 1 if none was supplied.
func (s *Sampler) Weight(i int) float64 {
	if s.weights == nil {
		return 1
	}
	return s.weights[i]
}

// HasWeights reports whether an explicit weight vector is present.
func (s *Sampler) HasWeights() bool { return s.weights != nil }

// Sample draws one index in O(1): one uniform integer in [0, N) selects a
// column, one uniform float in [0, 1) decides between that column's own
// entry and its alias.
func (s *Sampler) Sample() int {
	i := s.rng.Intn(s.n)
	if s.rng.Float64() < s.prob[i] {
		return i
	}
	return s.alias[i]
}

// Equal reports whether s and other were built from the same N, probs, and
// weights — the Go counterpart of CoresetSampler::operator== in coreset.h.
// Seed and RNG state are not compared: two samplers over identical
// distributions are "equal" regardless of where their respective RNGs
// currently sit.
func (s *Sampler) Equal(other *Sampler) bool {
	if other == nil || s.n != other.n {
		return false
	}
	for i := range s.probs {
		if s.probs[i] != other.probs[i] {
			return false
		}
	}
	if s.HasWeights() != other.HasWeights() {
		return false
	}
	if s.HasWeights() {
		for i := range s.weights {
			if s.weights[i] != other.weights[i] {
				return false
			}
		}
	}
	return true
}

// Write serializes the sampler per the external binary format (little
// endian): u64 N, u64 seed, f64*N probs, u32 weights_present, f64*N
// weights (if present). f32 selects the 4-byte element width for probs
// and weights instead of the 8-byte float64 default.
func (s *Sampler) Write(w io.Writer, f32 bool) error {
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, uint64(s.n)); err != nil {
		return fmt.Errorf("aliassampler.Write: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, s.seed); err != nil {
		return fmt.Errorf("aliassampler.Write: %w", err)
	}
	if err := writeFloats(bw, s.probs, f32); err != nil {
		return fmt.Errorf("aliassampler.Write: %w", err)
	}
	present := uint32(0)
	if s.weights != nil {
		present = weightsPresentMagic
	}
	if err := binary.Write(bw, binary.LittleEndian, present); err != nil {
		return fmt.Errorf("aliassampler.Write: %w", err)
	}
	if s.weights != nil {
		if err := writeFloats(bw, s.weights, f32); err != nil {
			return fmt.Errorf("aliassampler.Write: %w", err)
		}
	}
	return bw.Flush()
}

// Read deserializes a sampler written by Write, rebuilding its alias table
// from the stored probs (the table itself is never persisted).
func Read(r io.Reader, f32 bool) (*Sampler, error) {
	br := bufio.NewReader(r)
	var n uint64
	if err := binary.Read(br, binary.LittleEndian, &n); err != nil {
		return nil, fmt.Errorf("aliassampler.Read: %w", err)
	}
	var seed uint64
	if err := binary.Read(br, binary.LittleEndian, &seed); err != nil {
		return nil, fmt.Errorf("aliassampler.Read: %w", err)
	}
	probs, err := readFloats(br, int(n), f32)
	if err != nil {
		return nil, fmt.Errorf("aliassampler.Read: %w", err)
	}
	var present uint32
	if err := binary.Read(br, binary.LittleEndian, &present); err != nil {
		return nil, fmt.Errorf("aliassampler.Read: %w", err)
	}
	var weights []float64
	if present != 0 {
		weights, err = readFloats(br, int(n), f32)
		if err != nil {
			return nil, fmt.Errorf("aliassampler.Read: %w", err)
		}
	}
	return New(probs, weights, seed)
}

func writeFloats(w io.Writer, vals []float64, f32 bool) error {
	for _, v := range vals {
		if f32 {
			if err := binary.Write(w, binary.LittleEndian, float32(v)); err != nil {
				return err
			}
		} else if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return err
		}
	}
	return nil
}

func readFloats(r io.Reader, n int, f32 bool) ([]float64, error) {
	out := make([]float64, n)
	for i := range out {
		if f32 {
			var v float32
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			out[i] = float64(v)
		} else {
			var v float64
			if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
				return nil, err
			}
			out[i] = v
		}
	}
	return out, nil
}
