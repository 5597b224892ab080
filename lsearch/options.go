package lsearch

import (
	"math/rand"

	"github.com/katalvlaran/coreset/logx"
)

// config holds the resolved searcher configuration.
type config struct {
	eps    float64
	rng    *rand.Rand
	seed   uint64
	logger logx.Logger
}

func newConfig() *config {
	return &config{
		eps:  0.01,
		rng:  rand.New(rand.NewSource(0)),
		seed: 0,
	}
}

// Option customizes New's behavior.
type Option func(*config)

// WithEpsilon sets the ε in the per-swap improvement threshold
// current_cost * eps / k. Panics if eps <= 0.
func WithEpsilon(eps float64) Option {
	if eps <= 0 {
		panic("lsearch: WithEpsilon(eps<=0)")
	}
	return func(c *config) {
		c.eps = eps
	}
}

// WithSeed seeds both the k-center 2-approximation's random start and any
// other stochastic choice the searcher makes.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
		c.rng = rand.New(rand.NewSource(int64(seed)))
	}
}

// WithLogger supplies the progress/debug logger used for swap diagnostics.
// A nil logger (the default) discards everything, per spec §6.
func WithLogger(l logx.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}
