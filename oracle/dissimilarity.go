package oracle

import "math"

// Eval computes the dissimilarity between dense vectors x and c under
// measure m with prior p. It implements the msr_with_prior contract from
// spec §4.4: callers may pass precomputed row sums (sumX, sumC) so
// KL-family measures can be evaluated in O(len) without a second pass over
// the data; pass 0 for either sum to force Eval to compute it internally
// (sumX/sumC are only a cache, never a correctness requirement).
//
// x and c must have equal length; callers are responsible for enforcing
// that (Eval trusts its inputs, as this is a hot inner-loop routine called
// once per (point, center) pair).
func Eval(m Measure, x, c []float64, p Prior, sumX, sumC float64) float64 {
	switch m {
	case L1:
		return l1(x, c)
	case L2Squared:
		return l2Squared(x, c)
	case L2:
		return math.Sqrt(l2Squared(x, c))
	case Bhattacharyya:
		return bhattacharyya(x, c, sumX, sumC)
	case KL:
		return klDivergence(x, c, p, sumX, sumC)
	case SymmetricKL:
		return klDivergence(x, c, p, sumX, sumC) + klDivergence(c, x, p, sumC, sumX)
	case ItakuraSaito:
		return itakuraSaito(x, c, p)
	case JensenShannon:
		return jensenShannon(x, c, p, sumX, sumC)
	case TotalVariation:
		return totalVariation(x, c, sumX, sumC)
	case Hellinger:
		return hellinger(x, c, sumX, sumC)
	default:
		return math.NaN()
	}
}

func l1(x, c []float64) float64 {
	var s float64
	for i := range x {
		d := x[i] - c[i]
		if d < 0 {
			d = -d
		}
		s += d
	}
	return s
}

func l2Squared(x, c []float64) float64 {
	var s float64
	for i := range x {
		d := x[i] - c[i]
		s += d * d
	}
	return s
}

func rowSum(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s
}

func normalizedSum(s, total float64) float64 {
	if total == 0 {
		return 0
	}
	return s / total
}

func bhattacharyya(x, c []float64, sumX, sumC float64) float64 {
	if sumX == 0 {
		sumX = rowSum(x)
	}
	if sumC == 0 {
		sumC = rowSum(c)
	}
	var bc float64
	for i := range x {
		bc += math.Sqrt(normalizedSum(x[i], sumX) * normalizedSum(c[i], sumC))
	}
	if bc <= 0 {
		return math.Inf(1)
	}
	return -math.Log(bc)
}

// smoothed returns the prior-adjusted, normalized probability of
// coordinate i given its raw value v, running total sum, and length n.
func smoothed(v, sum float64, n int, p Prior, i int) float64 {
	switch p.Kind {
	case PriorDirichlet:
		total := sum + p.Beta*float64(n)
		return (v + p.Beta) / total
	case PriorGammaBeta:
		total := sum + p.Beta*float64(n)
		return (v + p.Beta) / total
	case PriorFeatureSpecific:
		add := 0.0
		if i < len(p.Vector) {
			add = p.Vector[i]
		}
		total := sum
		for _, a := range p.Vector {
			total += a
		}
		return (v + add) / total
	default:
		return normalizedSum(v, sum)
	}
}

func klDivergence(x, c []float64, p Prior, sumX, sumC float64) float64 {
	if sumX == 0 {
		sumX = rowSum(x)
	}
	if sumC == 0 {
		sumC = rowSum(c)
	}
	n := len(x)
	var kl float64
	for i := range x {
		pi := smoothed(x[i], sumX, n, p, i)
		qi := smoothed(c[i], sumC, n, p, i)
		if pi <= 0 {
			continue
		}
		if qi <= 0 {
			return math.Inf(1)
		}
		kl += pi * math.Log(pi/qi)
	}
	return kl
}

func jensenShannon(x, c []float64, p Prior, sumX, sumC float64) float64 {
	n := len(x)
	m := make([]float64, n)
	if sumX == 0 {
		sumX = rowSum(x)
	}
	if sumC == 0 {
		sumC = rowSum(c)
	}
	var sumM float64
	for i := range x {
		px := smoothed(x[i], sumX, n, p, i)
		qc := smoothed(c[i], sumC, n, p, i)
		m[i] = 0.5 * (px + qc)
		sumM += m[i]
	}
	return 0.5*klDivergence(x, m, p, sumX, sumM) + 0.5*klDivergence(c, m, p, sumC, sumM)
}

func totalVariation(x, c []float64, sumX, sumC float64) float64 {
	if sumX == 0 {
		sumX = rowSum(x)
	}
	if sumC == 0 {
		sumC = rowSum(c)
	}
	var s float64
	for i := range x {
		d := normalizedSum(x[i], sumX) - normalizedSum(c[i], sumC)
		if d < 0 {
			d = -d
		}
		s += d
	}
	return 0.5 * s
}

func hellinger(x, c []float64, sumX, sumC float64) float64 {
	if sumX == 0 {
		sumX = rowSum(x)
	}
	if sumC == 0 {
		sumC = rowSum(c)
	}
	var s float64
	for i := range x {
		d := math.Sqrt(normalizedSum(x[i], sumX)) - math.Sqrt(normalizedSum(c[i], sumC))
		s += d * d
	}
	return math.Sqrt(s) / math.Sqrt2
}

func itakuraSaito(x, c []float64, p Prior) float64 {
	var s float64
	for i := range x {
		xi, ci := x[i], c[i]
		if p.Kind == PriorGammaBeta {
			xi += p.Beta
			ci += p.Beta
		} else if ci == 0 {
			continue
		}
		if ci == 0 || xi == 0 {
			continue
		}
		ratio := xi / ci
		s += ratio - math.Log(ratio) - 1
	}
	return s
}
