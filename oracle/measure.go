package oracle

import (
	"fmt"
	"math"
)

// Measure tags one of the dissimilarity functions the engine understands.
// Each tag carries three facts consumed by seeding/lloyd/lsearch: whether it
// satisfies the triangle inequality (IsMetric), whether it needs a Prior for
// numerical stability (RequiresPrior), and whether its inputs must already
// be normalized to sum to 1 (NeedsNormalized) — spec §3 "Dissimilarity
// measure".
type Measure int

const (
	// L1 is the Manhattan distance. Metric; no prior; no normalization.
	L1 Measure = iota
	// L2Squared is squared Euclidean distance: the additive Bregman
	// divergence used by standard k-means/k-means++. Not a metric (fails
	// the triangle inequality in its squared form); no prior needed.
	L2Squared
	// L2 is Euclidean distance. Metric; no prior.
	L2
	// Bhattacharyya is the Bhattacharyya distance between distributions.
	Bhattacharyya
	// KL is the (asymmetric) Kullback-Leibler divergence; requires a prior
	// to stay finite when an entry is zero, and requires normalized input.
	KL
	// SymmetricKL is the sum KL(p||q) + KL(q||p). Symmetric but not a
	// metric: it still fails the triangle inequality. Requires a prior and
	// normalized input.
	SymmetricKL
	// ItakuraSaito is the Itakura-Saito divergence, a Bregman divergence
	// common in spectral/audio clustering. Requires a prior.
	ItakuraSaito
	// JensenShannon is the Jensen-Shannon divergence; bounded, symmetric,
	// requires normalized input. Not itself a metric — only its square
	// root satisfies the triangle inequality — so IsMetric reports false.
	JensenShannon
	// TotalVariation is half the L1 distance between normalized
	// distributions.
	TotalVariation
	// Hellinger is the Hellinger distance between distributions.
	Hellinger
)

// measureInfo is the static metadata table backing IsMetric/RequiresPrior/
// NeedsNormalized, following the "tagged enumeration carries facts about
// itself" shape of spec §3 rather than a scattered set of switch
// statements.
type measureInfo struct {
	name            string
	isMetric        bool
	requiresPrior   bool
	needsNormalized bool
}

var measureTable = map[Measure]measureInfo{
	L1:             {"L1", true, false, false},
	L2Squared:      {"L2Squared", false, false, false},
	L2:             {"L2", true, false, false},
	Bhattacharyya:  {"Bhattacharyya", false, false, true},
	KL:             {"KL", false, true, true},
	SymmetricKL:    {"SymmetricKL", false, true, true},
	ItakuraSaito:   {"ItakuraSaito", false, true, false},
	JensenShannon:  {"JensenShannon", false, false, true},
	TotalVariation: {"TotalVariation", true, false, true},
	Hellinger:      {"Hellinger", true, false, true},
}

// String returns the measure's canonical name, or "Unknown" for an
// unrecognized tag.
func (m Measure) String() string {
	if info, ok := measureTable[m]; ok {
		return info.name
	}
	return "Unknown"
}

// IsMetric reports whether the measure satisfies the triangle inequality.
func (m Measure) IsMetric() bool { return measureTable[m].isMetric }

// RequiresPrior reports whether the measure needs a Prior to stay finite.
func (m Measure) RequiresPrior() bool { return measureTable[m].requiresPrior }

// NeedsNormalized reports whether inputs must sum to 1 before evaluation.
func (m Measure) NeedsNormalized() bool { return measureTable[m].needsNormalized }

// Valid reports whether m is one of the recognized tags.
func (m Measure) Valid() bool {
	_, ok := measureTable[m]
	return ok
}

// PriorKind tags the smoothing family applied to KL-family measures.
type PriorKind int

const (
	// PriorNone applies no smoothing; only valid for measures with
	// RequiresPrior() == false.
	PriorNone PriorKind = iota
	// PriorDirichlet adds a symmetric Dirichlet(Beta) pseudo-count to every
	// coordinate before normalizing.
	PriorDirichlet
	// PriorGammaBeta adds Beta to every coordinate: KL-family smoothing
	// treats it exactly like PriorDirichlet, and ItakuraSaito adds Beta to
	// both inputs before taking their ratio.
	PriorGammaBeta
	// PriorFeatureSpecific applies a per-feature additive vector instead of
	// a single scalar.
	PriorFeatureSpecific
)

// Prior bundles a PriorKind with its parameters. Beta is used by
// PriorDirichlet/PriorGammaBeta; Vector is used by PriorFeatureSpecific.
type Prior struct {
	Kind   PriorKind
	Beta   float64
	Vector []float64
}

// NoPrior is the zero-value, no-smoothing Prior.
var NoPrior = Prior{Kind: PriorNone}

// Validate checks internal consistency of p against the measure it will be
// used with. Returns ErrInvalidArgument on mismatch.
func (p Prior) Validate(m Measure) error {
	if p.Kind == PriorNone {
		if m.RequiresPrior() {
			return fmt.Errorf("oracle: measure %s requires a prior: %w", m, ErrInvalidArgument)
		}
		return nil
	}
	switch p.Kind {
	case PriorDirichlet, PriorGammaBeta:
		if p.Beta <= 0 || math.IsNaN(p.Beta) {
			return fmt.Errorf("oracle: prior beta must be positive: %w", ErrInvalidArgument)
		}
	case PriorFeatureSpecific:
		if len(p.Vector) == 0 {
			return fmt.Errorf("oracle: feature-specific prior vector is empty: %w", ErrInvalidArgument)
		}
	default:
		return fmt.Errorf("oracle: unknown prior kind %d: %w", p.Kind, ErrInvalidArgument)
	}
	return nil
}
