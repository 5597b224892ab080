package sensitivity_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/coreset/sensitivity"
)

// TestBuild_FL_MatchesExpectedProbabilities exercises scenario S2: N=100
// points on a line, costs[i]=i, single center. Expected p[i] = i/4950, and
// a size-50 sample's weights should sum to approximately N.
func TestBuild_FL_MatchesExpectedProbabilities(t *testing.T) {
	const n = 100
	costs := make([]float64, n)
	assignments := make([]int, n)
	for i := range costs {
		costs[i] = float64(i)
	}

	s, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints:   n,
		NumCenters:  1,
		Costs:       costs,
		Assignments: assignments,
		Scheme:      sensitivity.FL,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	const totalCost = 4950.0
	for i := 1; i < n; i++ {
		want := float64(i) / totalCost
		if got := s.Prob(i); math.Abs(got-want) > 1e-9 {
			t.Fatalf("prob[%d] = %v, want %v", i, got, want)
		}
	}

	cs, err := s.Sample(50, 7)
	if err != nil {
		t.Fatalf("Sample: %v", err)
	}
	var sumW float64
	for _, w := range cs.Weights {
		sumW += w
	}
	if math.Abs(sumW-float64(n)) > 5 {
		t.Fatalf("sum weights = %v, want ~%v +-5", sumW, n)
	}
}

func TestBuild_FL_ZeroCostIsRejected(t *testing.T) {
	costs := []float64{0, 0, 0}
	assignments := []int{0, 0, 0}
	_, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints: 3, NumCenters: 1, Costs: costs, Assignments: assignments, Scheme: sensitivity.FL,
	})
	if !errors.Is(err, sensitivity.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestBuild_BFL_EmptyClusterIsFatal(t *testing.T) {
	costs := []float64{1, 2, 3}
	assignments := []int{0, 0, 0} // center 1 never assigned
	_, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints: 3, NumCenters: 2, Costs: costs, Assignments: assignments, Scheme: sensitivity.BFL,
	})
	if !errors.Is(err, sensitivity.ErrEmptyCluster) {
		t.Fatalf("want ErrEmptyCluster, got %v", err)
	}
}

// TestBuild_BFL_ProbabilitiesSumToOne covers invariant 2 (probabilities
// always sum to 1 after normalization) for the blended BFL scheme.
func TestBuild_BFL_ProbabilitiesSumToOne(t *testing.T) {
	costs := []float64{1, 2, 3, 4, 5, 6}
	assignments := []int{0, 0, 1, 1, 2, 2}
	s, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints: 6, NumCenters: 3, Costs: costs, Assignments: assignments, Scheme: sensitivity.BFL, Seed: 1,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	var sum float64
	for i := 0; i < 6; i++ {
		sum += s.Prob(i)
	}
	if math.Abs(sum-1.0) > 1e-9 {
		t.Fatalf("sum of probs = %v, want 1", sum)
	}
}

// TestBuild_BFL_ExactProbabilities exercises scenario S5: a tiny
// hand-computed BFL example with an exact expected result checked to
// 1e-12.
func TestBuild_BFL_ExactProbabilities(t *testing.T) {
	costs := []float64{1, 1, 2, 2}
	assignments := []int{0, 0, 1, 1}
	weights := []float64{1, 1, 1, 1}

	s, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints: 4, NumCenters: 2, Costs: costs, Assignments: assignments,
		Weights: weights, Scheme: sensitivity.BFL, Seed: 1,
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	want := []float64{5.0 / 24, 5.0 / 24, 7.0 / 24, 7.0 / 24}
	for i, w := range want {
		if got := s.Prob(i); math.Abs(got-w) > 1e-12 {
			t.Fatalf("prob[%d] = %v, want %v", i, got, w)
		}
	}
}

func TestBuild_LFKF_RejectsNonPositiveAlpha(t *testing.T) {
	costs := []float64{1, 2, 3}
	assignments := []int{0, 0, 0}
	_, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints: 3, NumCenters: 1, Costs: costs, Assignments: assignments, Scheme: sensitivity.LFKF, AlphaEst: 0,
	})
	if !errors.Is(err, sensitivity.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument for alpha=0, got %v", err)
	}
}

func TestBuild_InvalidAssignment(t *testing.T) {
	costs := []float64{1, 2}
	assignments := []int{0, 5}
	_, err := sensitivity.Build(sensitivity.BuildOpts{
		NumPoints: 2, NumCenters: 2, Costs: costs, Assignments: assignments, Scheme: sensitivity.FL,
	})
	if !errors.Is(err, sensitivity.ErrInvalidAssignment) {
		t.Fatalf("want ErrInvalidAssignment, got %v", err)
	}
}

func TestCoreset_Compact_SumsDuplicateWeights(t *testing.T) {
	cs := &sensitivity.Coreset{
		Indices: []int{3, 1, 3, 2},
		Weights: []float64{1.0, 2.0, 1.5, 3.0},
	}
	cs.Compact()
	if len(cs.Indices) != 3 {
		t.Fatalf("expected 3 distinct indices after compact, got %d", len(cs.Indices))
	}
	total := map[int]float64{}
	for i, idx := range cs.Indices {
		total[idx] = cs.Weights[i]
	}
	if total[3] != 2.5 {
		t.Fatalf("index 3 weight = %v, want 2.5", total[3])
	}
}

func TestUniform_ProducesMassPreservingWeights(t *testing.T) {
	cs, err := sensitivity.Uniform(100, 20, 3)
	if err != nil {
		t.Fatalf("Uniform: %v", err)
	}
	if len(cs.Indices) != 20 || len(cs.Weights) != 20 {
		t.Fatalf("want 20 entries, got %d/%d", len(cs.Indices), len(cs.Weights))
	}
	for _, w := range cs.Weights {
		if math.Abs(w-5.0) > 1e-9 {
			t.Fatalf("weight = %v, want 5.0 (100/20)", w)
		}
	}
}
