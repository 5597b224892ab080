package lloyd

import (
	"context"

	"github.com/katalvlaran/coreset/logx"
)

// config holds the resolved refinement configuration, following the same
// functional-options contract as the seeding package: constructors
// validate and panic on programmer error, Run itself only returns errors.
type config struct {
	eps      float64
	maxIters int
	workers  int
	logger   logx.Logger
}

func newConfig() *config {
	return &config{
		eps:      1e-4,
		maxIters: 100,
		workers:  1,
	}
}

// ctx returns the background context fanout.Run blocks on; Run has no
// cancellation surface of its own (spec §5: "cancellation ... callers
// cancel by dropping the enclosing task"), so there is nothing to derive
// this from but context.Background().
func (c *config) ctx() context.Context { return context.Background() }

// Option customizes Run's behavior.
type Option func(*config)

// WithEpsilon sets the relative-improvement termination threshold:
// iteration stops when (prevCost-cost)/prevCost < eps. Panics if eps <= 0.
func WithEpsilon(eps float64) Option {
	if eps <= 0 {
		panic("lloyd: WithEpsilon(eps<=0)")
	}
	return func(c *config) {
		c.eps = eps
	}
}

// WithMaxIterations caps the refinement loop. Panics if max < 1.
func WithMaxIterations(max int) Option {
	if max < 1 {
		panic("lloyd: WithMaxIterations(max<1)")
	}
	return func(c *config) {
		c.maxIters = max
	}
}

// WithWorkers bounds the number of goroutines the per-iteration assignment
// fork-join loop uses (spec §5's "bounded worker count"). 1 (the default)
// runs the loop sequentially in the caller's goroutine. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("lloyd: WithWorkers(n<1)")
	}
	return func(c *config) {
		c.workers = n
	}
}

// WithLogger supplies the progress/debug logger used for phase transitions
// and per-iteration cost diagnostics. A nil logger (the default) discards
// everything, per spec §6.
func WithLogger(l logx.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
