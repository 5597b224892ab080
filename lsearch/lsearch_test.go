package lsearch_test

import (
	"math"
	"testing"

	"github.com/katalvlaran/coreset/lsearch"
	"github.com/katalvlaran/coreset/matrix"
)

// abs5x5 builds the 5x5 distance matrix D[i][j] = |i-j| used by spec
// scenario S3: optimal sol = {1, 3}, cost 3.
func abs5x5(t *testing.T) *matrix.Dense {
	t.Helper()
	d, err := matrix.NewDense(5, 5)
	if err != nil {
		t.Fatalf("NewDense: %v", err)
	}
	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			if err := d.Set(i, j, math.Abs(float64(i-j))); err != nil {
				t.Fatalf("Set(%d,%d): %v", i, j, err)
			}
		}
	}
	return d
}

func TestRun_ConvergesToOptimalOnAbsoluteDifference(t *testing.T) {
	for _, seed := range []uint64{0, 1, 1337} {
		d := abs5x5(t)
		s, err := lsearch.New(d, 2, lsearch.WithEpsilon(0.01), lsearch.WithSeed(seed))
		if err != nil {
			t.Fatalf("seed=%d New: %v", seed, err)
		}
		swaps, err := s.Run()
		if err != nil {
			t.Fatalf("seed=%d Run: %v", seed, err)
		}
		if swaps > 10 {
			t.Fatalf("seed=%d took %d swaps, want <= 10", seed, swaps)
		}
		if s.CurrentCost() > 3+1e-9 {
			t.Fatalf("seed=%d final cost %g, want <= 3", seed, s.CurrentCost())
		}
	}
}

func TestRun_NoSwapExceedsThreshold(t *testing.T) {
	d := abs5x5(t)
	s, err := lsearch.New(d, 2, lsearch.WithEpsilon(0.01), lsearch.WithSeed(7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}

	sol := s.Solution()
	inSol := make(map[int]bool, len(sol))
	for _, c := range sol {
		inSol[c] = true
	}
	threshold := s.CurrentCost() * 0.01 / 2

	for oldC := range inSol {
		for cand := 0; cand < d.Rows(); cand++ {
			if inSol[cand] {
				continue
			}
			trial := append([]int(nil), sol...)
			for i, c := range trial {
				if c == oldC {
					trial[i] = cand
				}
			}
			cost := 0.0
			for j := 0; j < d.Cols(); j++ {
				best := math.Inf(1)
				for _, c := range trial {
					v, err := d.At(c, j)
					if err != nil {
						t.Fatalf("At: %v", err)
					}
					if v < best {
						best = v
					}
				}
				cost += best
			}
			gain := s.CurrentCost() - cost
			if gain > threshold+1e-9 {
				t.Fatalf("swap old=%d new=%d still improves by %g > threshold %g", oldC, cand, gain, threshold)
			}
		}
	}
}

func TestNew_RejectsKGreaterThanRows(t *testing.T) {
	d := abs5x5(t)
	if _, err := lsearch.New(d, 6); err == nil {
		t.Fatal("want error for k > nrows")
	}
}

func TestSolutionAndAssignments_AreConsistent(t *testing.T) {
	d := abs5x5(t)
	s, err := lsearch.New(d, 2, lsearch.WithSeed(3))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := s.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	sol := s.Solution()
	inSol := make(map[int]bool, len(sol))
	for _, c := range sol {
		inSol[c] = true
	}
	for j, c := range s.Assignments() {
		if !inSol[c] {
			t.Fatalf("column %d assigned to %d, which is not in the solution set", j, c)
		}
	}
}
