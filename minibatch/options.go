package minibatch

import (
	"math/rand"

	"github.com/katalvlaran/coreset/logx"
)

// config holds the resolved mini-batch configuration, following the same
// functional-options contract as lloyd/seeding.
type config struct {
	batchSize   int
	withRep     bool
	maxIters    int
	checkinFreq int
	reseedCount int
	rng         *rand.Rand
	workers     int
	logger      logx.Logger
}

func newConfig() *config {
	return &config{
		batchSize:   100,
		withRep:     true,
		maxIters:    100,
		checkinFreq: 10,
		reseedCount: 3,
		rng:         rand.New(rand.NewSource(1)),
		workers:     1,
	}
}

// Option customizes Run's behavior.
type Option func(*config)

// WithBatchSize sets B, the number of indices drawn per iteration. Panics
// if b < 1.
func WithBatchSize(b int) Option {
	if b < 1 {
		panic("minibatch: WithBatchSize(b<1)")
	}
	return func(c *config) {
		c.batchSize = b
	}
}

// WithReplacement selects whether each batch is drawn with (true) or
// without (false) replacement.
func WithReplacement(withRep bool) Option {
	return func(c *config) {
		c.withRep = withRep
	}
}

// WithMaxIterations caps the refinement loop. Panics if max < 1.
func WithMaxIterations(max int) Option {
	if max < 1 {
		panic("minibatch: WithMaxIterations(max<1)")
	}
	return func(c *config) {
		c.maxIters = max
	}
}

// WithCheckinFrequency sets how many iterations elapse between global-cost
// recomputations (spec's ncheckins, expressed as a period rather than a
// count). Panics if freq < 1.
func WithCheckinFrequency(freq int) Option {
	if freq < 1 {
		panic("minibatch: WithCheckinFrequency(freq<1)")
	}
	return func(c *config) {
		c.checkinFreq = freq
	}
}

// WithReseedBudget sets how many consecutive non-improving checkins are
// tolerated before the worst center is reseeded to the current farthest
// point. Panics if budget < 1.
func WithReseedBudget(budget int) Option {
	if budget < 1 {
		panic("minibatch: WithReseedBudget(budget<1)")
	}
	return func(c *config) {
		c.reseedCount = budget
	}
}

// WithSeed seeds the batch-sampling RNG.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewSource(int64(seed)))
	}
}

// WithWorkers bounds the number of goroutines the checkin-time global
// assignment fork-join loop uses. 1 (the default) runs sequentially.
// Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("minibatch: WithWorkers(n<1)")
	}
	return func(c *config) {
		c.workers = n
	}
}

// WithLogger supplies the progress/debug logger used for checkin and
// reseed diagnostics. A nil logger (the default) discards everything.
func WithLogger(l logx.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
