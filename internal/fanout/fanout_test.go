package fanout_test

import (
	"context"
	"errors"
	"testing"

	"github.com/katalvlaran/coreset/internal/fanout"
)

func TestRun_WritesEveryIndexExactlyOnce(t *testing.T) {
	n := 500
	seen := make([]int, n)
	if err := fanout.Run(context.Background(), n, 8, func(i int) error {
		seen[i]++
		return nil
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, c := range seen {
		if c != 1 {
			t.Fatalf("index %d written %d times, want 1", i, c)
		}
	}
}

func TestRun_SequentialWhenWorkersIsOne(t *testing.T) {
	n := 50
	order := make([]int, 0, n)
	if err := fanout.Run(context.Background(), n, 1, func(i int) error {
		order = append(order, i)
		return nil
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("sequential order violated at %d: got %d", i, v)
		}
	}
}

func TestRun_PropagatesFirstError(t *testing.T) {
	wantErr := errors.New("boom")
	err := fanout.Run(context.Background(), 10, 4, func(i int) error {
		if i == 5 {
			return wantErr
		}
		return nil
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("want %v, got %v", wantErr, err)
	}
}

func TestRun_ZeroN_IsNoop(t *testing.T) {
	called := false
	if err := fanout.Run(context.Background(), 0, 4, func(i int) error {
		called = true
		return nil
	}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if called {
		t.Fatal("fn should not be called for n=0")
	}
}

func TestReduceFloat64_MatchesSequentialSum(t *testing.T) {
	n := 1000
	want := 0.0
	for i := 0; i < n; i++ {
		want += float64(i) * 0.5
	}
	got, err := fanout.ReduceFloat64(context.Background(), n, 7, func(i int) float64 {
		return float64(i) * 0.5
	})
	if err != nil {
		t.Fatalf("ReduceFloat64: %v", err)
	}
	if got != want {
		t.Fatalf("ReduceFloat64 = %g, want %g", got, want)
	}
}

func TestReduceFloat64_DeterministicAcrossShardCounts(t *testing.T) {
	n := 777
	fn := func(i int) float64 { return float64(i%13) - 6 }
	base, err := fanout.ReduceFloat64(context.Background(), n, 1, fn)
	if err != nil {
		t.Fatalf("ReduceFloat64: %v", err)
	}
	for _, shards := range []int{2, 3, 5, 16} {
		got, err := fanout.ReduceFloat64(context.Background(), n, shards, fn)
		if err != nil {
			t.Fatalf("ReduceFloat64(shards=%d): %v", shards, err)
		}
		if got != base {
			t.Fatalf("shards=%d: got %g, want %g (must match regardless of shard count)", shards, got, base)
		}
	}
}
