package multiread

import (
	"math"

	"github.com/hlatype/hlatype/internal/aligngroup"
	"github.com/hlatype/hlatype/internal/allele"
)

// MismatchCountsToLogLikelihood converts one read's per-allele mismatch
// counts into per-allele log-likelihoods via aligngroup.LogLikelihood,
// ready to fold with AddFloats — spec.md §4.5's LogLikelihood model.
func MismatchCountsToLogLikelihood(counts allele.Map[int], readLength int, er float64, alphabet int) allele.Map[float64] {
	return allele.MapValues(counts, 0.0, func(_ int, m int) float64 {
		return aligngroup.LogLikelihood(er, readLength, m, alphabet)
	})
}

// MismatchCountsToLikelihood converts one read's per-allele mismatch
// counts into per-allele likelihoods (exp of the log-likelihood), ready
// to fold with MultiplyFloats — spec.md §4.5's Likelihood model, which
// multiplies per-read likelihoods rather than summing per-read
// log-likelihoods.
func MismatchCountsToLikelihood(counts allele.Map[int], readLength int, er float64, alphabet int) allele.Map[float64] {
	return allele.MapValues(counts, 0.0, func(_ int, m int) float64 {
		return math.Exp(aligngroup.LogLikelihood(er, readLength, m, alphabet))
	})
}
