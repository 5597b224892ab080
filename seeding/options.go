package seeding

import (
	"math/rand"

	"github.com/katalvlaran/coreset/logx"
)

// config holds the resolved seeding configuration built up by Option
// values, following the builder package's functional-options contract:
// option constructors validate and panic on programmer error (a negative
// round count, a nil RNG); Run itself never panics on caller-supplied
// data, only returns errors.
type config struct {
	rng              *rand.Rand
	kmc2Rounds       int
	lsppRounds       int
	nLocalTrials     int
	extraSampleTries int
	useExpSkips      bool
	logger           logx.Logger
	workers          int
}

func newConfig() *config {
	return &config{
		rng:              rand.New(rand.NewSource(1)),
		nLocalTrials:     1,
		extraSampleTries: 1,
		workers:          1,
	}
}

// Option customizes Run's behavior.
type Option func(*config)

// WithSeed creates a new deterministic RNG from seed. Use this for
// reproducible seeding runs.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.rng = rand.New(rand.NewSource(int64(seed)))
	}
}

// WithRand provides an explicit RNG. Panics on nil.
func WithRand(r *rand.Rand) Option {
	if r == nil {
		panic("seeding: WithRand(nil)")
	}
	return func(c *config) {
		c.rng = r
	}
}

// WithKMC2Rounds enables kmc² seeding with the given per-step chain
// length r; 0 (the default) means full D² passes. Panics on a negative
// round count.
func WithKMC2Rounds(r int) Option {
	if r < 0 {
		panic("seeding: WithKMC2Rounds(r<0)")
	}
	return func(c *config) {
		c.kmc2Rounds = r
	}
}

// WithLocalSearchPP enables l rounds of local-search++ refinement after
// the initial k centers are chosen. Panics on a negative round count.
func WithLocalSearchPP(l int) Option {
	if l < 0 {
		panic("seeding: WithLocalSearchPP(l<0)")
	}
	return func(c *config) {
		c.lsppRounds = l
	}
}

// WithNLocalTrials sets the number of D² candidates drawn per step before
// keeping the best (standard k-means++ "greedy" variant). Panics if n < 1.
func WithNLocalTrials(n int) Option {
	if n < 1 {
		panic("seeding: WithNLocalTrials(n<1)")
	}
	return func(c *config) {
		c.nLocalTrials = n
	}
}

// WithExtraSampleTries sets ntimes: the whole procedure repeats this many
// times with independent seeds, keeping the center set with lowest total
// d² cost. Panics if n < 1.
func WithExtraSampleTries(n int) Option {
	if n < 1 {
		panic("seeding: WithExtraSampleTries(n<1)")
	}
	return func(c *config) {
		c.extraSampleTries = n
	}
}

// WithExponentialSkips selects the exponential-clock variant of kmc²:
// before each proposal, an Exponential(1) skip count is drawn via
// inverse-transform sampling over the existing *math/rand.Rand source and
// that many uniform proposals are discarded; the per-step accept/reject
// draw is unchanged. Only relevant when kmc² is enabled.
func WithExponentialSkips(enabled bool) Option {
	return func(c *config) {
		c.useExpSkips = enabled
	}
}

// WithLogger supplies the progress/debug logger used for per-try
// diagnostics (Σd² achieved, whether kmc²/LS++ ran). A nil logger (the
// default) discards everything, per spec §6.
func WithLogger(l logx.Logger) Option {
	return func(c *config) {
		c.logger = l
	}
}

// WithWorkers bounds the number of goroutines the per-step d² fork-join
// passes use. 1 (the default) runs sequentially. Panics if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("seeding: WithWorkers(n<1)")
	}
	return func(c *config) {
		c.workers = n
	}
}
