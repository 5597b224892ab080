package oracle_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/coreset/oracle"
)

func TestEval_L1AndL2Squared(t *testing.T) {
	x := []float64{1, 2, 3}
	c := []float64{4, 0, 3}
	if got := oracle.Eval(oracle.L1, x, c, oracle.NoPrior, 0, 0); got != 3+2+0 {
		t.Fatalf("L1 = %g, want 5", got)
	}
	if got := oracle.Eval(oracle.L2Squared, x, c, oracle.NoPrior, 0, 0); got != 9+4+0 {
		t.Fatalf("L2Squared = %g, want 13", got)
	}
	if got := oracle.Eval(oracle.L2, x, c, oracle.NoPrior, 0, 0); math.Abs(got-math.Sqrt(13)) > 1e-9 {
		t.Fatalf("L2 = %g, want sqrt(13)", got)
	}
}

func TestEval_KLDivergenceZeroAtIdenticalDistributions(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	got := oracle.Eval(oracle.KL, x, x, oracle.Prior{Kind: oracle.PriorDirichlet, Beta: 0.1}, 0, 0)
	if math.Abs(got) > 1e-9 {
		t.Fatalf("KL(x,x) = %g, want ~0", got)
	}
}

func TestEval_SymmetricKLIsSymmetric(t *testing.T) {
	x := []float64{1, 5, 2}
	c := []float64{3, 1, 4}
	p := oracle.Prior{Kind: oracle.PriorDirichlet, Beta: 0.5}
	a := oracle.Eval(oracle.SymmetricKL, x, c, p, 0, 0)
	b := oracle.Eval(oracle.SymmetricKL, c, x, p, 0, 0)
	if math.Abs(a-b) > 1e-9 {
		t.Fatalf("SymmetricKL not symmetric: %g vs %g", a, b)
	}
}

func TestEval_JensenShannonBoundedAndSymmetric(t *testing.T) {
	x := []float64{1, 0, 0}
	c := []float64{0, 0, 1}
	p := oracle.NoPrior
	js := oracle.Eval(oracle.JensenShannon, x, c, p, 0, 0)
	if js < 0 || js > math.Ln2+1e-9 {
		t.Fatalf("JensenShannon = %g, out of [0, ln2]", js)
	}
}

func TestMeasure_Metadata(t *testing.T) {
	if !oracle.L2.IsMetric() {
		t.Fatal("L2 should be a metric")
	}
	if oracle.L2Squared.IsMetric() {
		t.Fatal("L2Squared should not be a metric")
	}
	if !oracle.KL.RequiresPrior() {
		t.Fatal("KL should require a prior")
	}
	if oracle.L1.RequiresPrior() {
		t.Fatal("L1 should not require a prior")
	}
	if !oracle.KL.NeedsNormalized() {
		t.Fatal("KL should need normalized input")
	}
	if oracle.Measure(999).Valid() {
		t.Fatal("unknown measure tag should be invalid")
	}
}

func TestPrior_ValidateRejectsMissingPriorForKL(t *testing.T) {
	if err := oracle.NoPrior.Validate(oracle.KL); !errors.Is(err, oracle.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestPrior_ValidateRejectsNonPositiveBeta(t *testing.T) {
	p := oracle.Prior{Kind: oracle.PriorDirichlet, Beta: 0}
	if err := p.Validate(oracle.KL); !errors.Is(err, oracle.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestNewPointSet_DefaultsToUniformWeight(t *testing.T) {
	ps, err := oracle.NewPointSet(3, nil)
	if err != nil {
		t.Fatalf("NewPointSet: %v", err)
	}
	for i := 0; i < 3; i++ {
		if ps.Weight(i) != 1 {
			t.Fatalf("Weight(%d) = %g, want 1", i, ps.Weight(i))
		}
	}
	if ps.HasWeights() {
		t.Fatal("HasWeights should be false for nil weights")
	}
}

func TestNewPointSet_RejectsNegativeWeight(t *testing.T) {
	if _, err := oracle.NewPointSet(2, []float64{1, -1}); !errors.Is(err, oracle.ErrNegativeWeight) {
		t.Fatalf("want ErrNegativeWeight, got %v", err)
	}
}

func TestNewPointSet_RejectsNonPositiveN(t *testing.T) {
	if _, err := oracle.NewPointSet(0, nil); !errors.Is(err, oracle.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}
