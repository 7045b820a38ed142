// Package multiread implements spec.md §4.5's MultiRead aggregation:
// folding one score map per read into a single per-allele total across a
// whole FASTQ file, with read-level failures collected rather than
// aborting the run.
package multiread

import "github.com/hlatype/hlatype/internal/allele"

// Combine folds one more read's per-allele scores into a running total.
type Combine[A any] func(dst, src A) A

// Aggregator accumulates per-read allele.Map[A] values into one running
// total under a caller-supplied Combine, and separately collects
// per-read errors so one bad read doesn't abort the whole run.
type Aggregator[A any] struct {
	total   allele.Map[A]
	combine Combine[A]
	n       int
	errs    []error
}

// NewAggregator starts an Aggregator for alleleCount alleles, seeded with
// zero and folding subsequent reads via combine. zero must be the
// identity for combine (0 for sum, 1.0 for multiply, nil for concat).
func NewAggregator[A any](alleleCount int, zero A, combine Combine[A]) *Aggregator[A] {
	return &Aggregator[A]{
		total:   allele.NewMap(alleleCount, zero),
		combine: combine,
	}
}

// Add folds one more read's per-allele scores into the running total.
func (a *Aggregator[A]) Add(scores allele.Map[A]) {
	a.total.UpdateFrom(scores, a.combine)
	a.n++
}

// AddError records a read-level failure without touching the total.
func (a *Aggregator[A]) AddError(err error) {
	a.errs = append(a.errs, err)
}

// ReadCount returns how many reads were successfully folded via Add.
func (a *Aggregator[A]) ReadCount() int { return a.n }

// Result returns the aggregated per-allele totals and every error
// recorded via AddError, in the order they were added.
func (a *Aggregator[A]) Result() (allele.Map[A], []error) {
	return a.total, a.errs
}

// SumInts combines by addition — MismatchCount's per-read aggregation.
func SumInts(dst, src int) int { return dst + src }

// ConcatPosCounts combines by concatenation — MismatchList's per-read
// aggregation (element type left generic so callers can use their own
// position-count pair, e.g. aligngroup.PosCount).
func ConcatPosCounts[T any](dst, src []T) []T {
	out := make([]T, 0, len(dst)+len(src))
	out = append(out, dst...)
	out = append(out, src...)
	return out
}

// AddFloats combines by addition — LogLikelihood and PhredLikelihood's
// per-read aggregation.
func AddFloats(dst, src float64) float64 { return dst + src }

// MultiplyFloats combines by multiplication — Likelihood's per-read
// aggregation. Use with zero=1.0 in NewAggregator, the multiplicative
// identity.
func MultiplyFloats(dst, src float64) float64 { return dst * src }
