package minibatch_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/coreset/minibatch"
	"github.com/katalvlaran/coreset/oracle"
)

func twoClusterPoints() [][]float64 {
	rows := make([][]float64, 0, 200)
	for i := 0; i < 100; i++ {
		jitter := float64(i%5) * 0.1
		rows = append(rows, []float64{jitter, jitter})
	}
	for i := 0; i < 100; i++ {
		jitter := float64(i%5) * 0.1
		rows = append(rows, []float64{10 + jitter, jitter})
	}
	return rows
}

func TestRun_ConvergesOnTwoClusters(t *testing.T) {
	points := twoClusterPoints()
	initial := [][]float64{points[0], points[100]}

	res, err := minibatch.Run(points, initial, oracle.L2Squared, oracle.NoPrior, nil,
		minibatch.WithSeed(42), minibatch.WithBatchSize(20), minibatch.WithMaxIterations(200),
		minibatch.WithCheckinFrequency(10), minibatch.WithReseedBudget(3))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	var correct int
	for i, a := range res.Asn {
		want := 0
		if i >= 100 {
			want = 1
		}
		got := a
		if res.Centers[0][0] > 5 {
			got = 1 - a
		}
		if got == want {
			correct++
		}
	}
	if correct < 180 {
		t.Fatalf("only %d/200 points on the correct side after mini-batch refinement", correct)
	}
}

func TestRun_RejectsMismatchedCenterDimension(t *testing.T) {
	points := [][]float64{{1, 2}, {3, 4}}
	initial := [][]float64{{1, 2, 3}}
	if _, err := minibatch.Run(points, initial, oracle.L2Squared, oracle.NoPrior, nil); !errors.Is(err, minibatch.ErrInvalidArgument) {
		t.Fatalf("want ErrInvalidArgument, got %v", err)
	}
}

func TestRun_WithoutReplacement_NoCenterIsNaN(t *testing.T) {
	points := twoClusterPoints()
	initial := [][]float64{points[0], points[100]}

	res, err := minibatch.Run(points, initial, oracle.L2Squared, oracle.NoPrior, nil,
		minibatch.WithReplacement(false), minibatch.WithBatchSize(30), minibatch.WithMaxIterations(40))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	for _, c := range res.Centers {
		for _, v := range c {
			if math.IsNaN(v) {
				t.Fatalf("center contains NaN: %v", res.Centers)
			}
		}
	}
}

func TestRun_BatchSizeLargerThanN_DoesNotPanic(t *testing.T) {
	points := [][]float64{{0, 0}, {1, 0}, {10, 0}, {11, 0}}
	initial := [][]float64{{0, 0}, {10, 0}}

	res, err := minibatch.Run(points, initial, oracle.L2Squared, oracle.NoPrior, nil,
		minibatch.WithBatchSize(1000), minibatch.WithMaxIterations(10))
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Centers) != 2 {
		t.Fatalf("want 2 centers, got %d", len(res.Centers))
	}
}
