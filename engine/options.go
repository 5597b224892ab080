package engine

import (
	"github.com/katalvlaran/coreset/logx"
	"github.com/katalvlaran/coreset/oracle"
	"github.com/katalvlaran/coreset/sensitivity"
)

// config is SumOpts realized as the functional-options pattern from
// builder/options.go (see SPEC_FULL.md §2.3): every field below mirrors one
// row of spec §6's "Configuration (SumOpts)" table. Option constructors
// validate and panic on programmer error; Run itself only returns errors
// for caller-data problems.
type config struct {
	measure           oracle.Measure
	k                 int
	prior             oracle.Prior
	scheme            sensitivity.Scheme
	outlierFraction   float64
	maxRounds         int
	kmc2Rounds        int
	lspp              int
	useExpSkips       bool
	nLocalTrials      int
	extraSampleTries  int
	mbSize            int // -1 means off (plain Lloyd refinement)
	ncheckins         int
	reseedCount       int
	withRep           bool
	seed              uint64
	workers           int
	refineLocalSearch bool
	logger            logx.Logger
}

func newConfig() *config {
	return &config{
		measure:          oracle.L2Squared,
		prior:            oracle.NoPrior,
		scheme:           sensitivity.FL,
		maxRounds:        100,
		nLocalTrials:     1,
		extraSampleTries: 1,
		mbSize:           -1,
		ncheckins:        10,
		reseedCount:      3,
		withRep:          true,
		workers:          1,
	}
}

// Option customizes Run's behavior.
type Option func(*config)

// WithMeasure selects the dissimilarity measure. Panics on an unrecognized
// tag (oracle.Measure(n).String() == "Unknown").
func WithMeasure(m oracle.Measure) Option {
	if !m.Valid() {
		panic("engine: WithMeasure(unknown measure)")
	}
	return func(c *config) { c.measure = m }
}

// WithK sets the number of centers. Panics if k < 1.
func WithK(k int) Option {
	if k < 1 {
		panic("engine: WithK(k<1)")
	}
	return func(c *config) { c.k = k }
}

// WithPrior sets the smoothing prior applied to KL-family measures.
func WithPrior(p oracle.Prior) Option {
	return func(c *config) { c.prior = p }
}

// WithSensitivityScheme selects BFL, FL, or LFKF for coreset sampling.
func WithSensitivityScheme(s sensitivity.Scheme) Option {
	return func(c *config) { c.scheme = s }
}

// WithOutlierFraction sets the fraction (in [0,1)) of highest-cost points,
// ranked by the final per-point cost after seeding and any refinement,
// excluded from the coreset by assigning them zero
// sensitivity weight (see DESIGN.md for why this is the chosen realization
// of spec §6's "outlier_fraction: robust seeding", which the distilled spec
// names but does not define an algorithm for). Panics outside [0,1).
func WithOutlierFraction(f float64) Option {
	if f < 0 || f >= 1 {
		panic("engine: WithOutlierFraction(f) out of [0,1)")
	}
	return func(c *config) { c.outlierFraction = f }
}

// WithMaxRounds caps Lloyd/mini-batch refinement iterations. Panics if
// max < 1.
func WithMaxRounds(max int) Option {
	if max < 1 {
		panic("engine: WithMaxRounds(max<1)")
	}
	return func(c *config) { c.maxRounds = max }
}

// WithKMC2Rounds enables kmc² seeding with chain length r; 0 (default)
// means full D² passes. Panics on a negative round count.
func WithKMC2Rounds(r int) Option {
	if r < 0 {
		panic("engine: WithKMC2Rounds(r<0)")
	}
	return func(c *config) { c.kmc2Rounds = r }
}

// WithLSPP sets the number of local-search++ refinement rounds run after
// initial seeding. Panics on a negative round count.
func WithLSPP(l int) Option {
	if l < 0 {
		panic("engine: WithLSPP(l<0)")
	}
	return func(c *config) { c.lspp = l }
}

// WithExponentialSkips selects the exponential-clock kmc² proposal variant.
func WithExponentialSkips(enabled bool) Option {
	return func(c *config) { c.useExpSkips = enabled }
}

// WithNLocalTrials sets the number of D² candidates drawn per seeding step.
// Panics if n < 1.
func WithNLocalTrials(n int) Option {
	if n < 1 {
		panic("engine: WithNLocalTrials(n<1)")
	}
	return func(c *config) { c.nLocalTrials = n }
}

// WithExtraSampleTries repeats seeding this many times, keeping the best.
// Panics if n < 1.
func WithExtraSampleTries(n int) Option {
	if n < 1 {
		panic("engine: WithExtraSampleTries(n<1)")
	}
	return func(c *config) { c.extraSampleTries = n }
}

// WithMiniBatchSize switches refinement to mini-batch mode with the given
// batch size; size <= 0 (the default) selects plain Lloyd refinement over
// the full point set.
func WithMiniBatchSize(size int) Option {
	return func(c *config) { c.mbSize = size }
}

// WithCheckins sets ncheckins, the number of global-cost evaluations during
// mini-batch refinement. Panics if n < 1.
func WithCheckins(n int) Option {
	if n < 1 {
		panic("engine: WithCheckins(n<1)")
	}
	return func(c *config) { c.ncheckins = n }
}

// WithReseedCount sets the mini-batch worst-center reseed budget. Panics if
// n < 1.
func WithReseedCount(n int) Option {
	if n < 1 {
		panic("engine: WithReseedCount(n<1)")
	}
	return func(c *config) { c.reseedCount = n }
}

// WithReplacement selects mini-batch sampling with (true) or without
// (false) replacement.
func WithReplacement(withRep bool) Option {
	return func(c *config) { c.withRep = withRep }
}

// WithSeed seeds every stochastic stage (seeding, mini-batch, local-search,
// coreset sampling) from one base value.
func WithSeed(seed uint64) Option {
	return func(c *config) { c.seed = seed }
}

// WithWorkers bounds the goroutine count every fork-join stage uses. Panics
// if n < 1.
func WithWorkers(n int) Option {
	if n < 1 {
		panic("engine: WithWorkers(n<1)")
	}
	return func(c *config) { c.workers = n }
}

// WithLocalSearchRefinement enables an additional local-search k-median
// pass over a full pairwise distance matrix after Lloyd/mini-batch
// refinement. Off by default: building the pairwise matrix is O(N²) and
// is worth paying only when the caller explicitly wants the tighter
// k-median objective lsearch targets.
func WithLocalSearchRefinement(enabled bool) Option {
	return func(c *config) { c.refineLocalSearch = enabled }
}

// WithLogger supplies the progress/debug logger forwarded to every stage.
// A nil logger (the default) discards everything, per spec §6.
func WithLogger(l logx.Logger) Option {
	return func(c *config) { c.logger = l }
}
