// SPDX-License-Identifier: MIT
// Package fanout implements the bounded, iteration-parallel fork-join
// primitive required by the engine's concurrency model: a caller-blocking
// parallel loop over N or k with a fixed worker count, no async/coroutines,
// no cross-task suspension beyond the final barrier.
//
// This is the one place in the module that spins up goroutines for a data
// loop; every other package (sensitivity, seeding, lloyd, minibatch) calls
// through Run/ReduceFloat64 instead of managing its own worker pool.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Run partitions [0, n) across at most workers goroutines and calls fn(i)
// for every index. It blocks until the loop is done and returns the first
// non-nil error fn produced. With workers == 1 the loop stops at that
// first error; with more workers every index is still started and the
// error is returned once all goroutines finish (ctx is not consulted, and
// fn is given no context through which to observe cancellation).
//
// workers <= 0 is treated as "unbounded" (one goroutine per index up to n);
// workers == 1 runs the loop sequentially in the caller's goroutine, which
// keeps single-threaded callers free of goroutine overhead.
//
// Per-index writes performed by fn MUST target disjoint memory (fn(i) may
// only write index i of any shared slice) so no synchronization is needed
// beyond the barrier at the end of Run — this is the partitioning
// discipline spec §5 requires ("per-point writes to asn[i]/cost[i] are
// partitioned by i -> no sharing").
func Run(ctx context.Context, n, workers int, fn func(i int) error) error {
	if n <= 0 {
		return nil
	}
	if workers <= 0 || workers > n {
		workers = n
	}
	if workers == 1 {
		for i := 0; i < n; i++ {
			if err := fn(i); err != nil {
				return err
			}
		}
		return nil
	}

	g, _ := errgroup.WithContext(ctx)
	sem := make(chan struct{}, workers)
	for i := 0; i < n; i++ {
		i := i
		sem <- struct{}{}
		g.Go(func() error {
			defer func() { <-sem }()
			return fn(i)
		})
	}
	return g.Wait()
}

// ReduceFloat64 runs fn(i) -> partial contribution for every index in
// [0, n) across shards goroutines and sums the per-shard partials in shard
// index order, giving a deterministic reduction regardless of goroutine
// scheduling order (spec §5: "accumulate into per-thread partials and sum
// in index order").
//
// shards <= 0 or shards > n is clamped to n; the caller picks shards
// independent of n so the same shard count (and therefore the same
// reduction order) can be reused across repeated calls for bitwise
// reproducibility.
func ReduceFloat64(ctx context.Context, n, shards int, fn func(i int) float64) (float64, error) {
	if n <= 0 {
		return 0, nil
	}
	if shards <= 0 || shards > n {
		shards = n
	}
	partials := make([]float64, shards)
	err := Run(ctx, shards, shards, func(shard int) error {
		var sum float64
		for i := shard; i < n; i += shards {
			sum += fn(i)
		}
		partials[shard] = sum
		return nil
	})
	if err != nil {
		return 0, err
	}
	var total float64
	for _, p := range partials {
		total += p
	}
	return total, nil
}
