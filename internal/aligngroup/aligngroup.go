// Package aligngroup implements the AlignmentGroup abstraction from
// spec.md §4.2: a small algebra {zero, incr, merge, accToString} plus an
// early-stop predicate, monomorphized at each call site into three
// concrete instances (MismatchCount, MismatchList, PhredLikelihood)
// rather than dispatched through a shared interface at runtime, per
// spec.md §9's note to prefer closed, monomorphic instances over virtual
// dispatch.
package aligngroup

import (
	"fmt"
	"math"
	"sort"
)

// Group is the AlignmentGroup algebra of spec.md §4.2, parameterized over
// an accumulator type A and a stop-state type S. ReadAligner is generic
// over this interface so the same traversal code monomorphizes into
// MismatchCount-, MismatchList-, or PhredLikelihood-flavored alignment at
// each call site, with no runtime dispatch.
type Group[A any, S any] interface {
	Zero() A
	Incr(pos int, v int, acc A) A
	Merge(a, b A) A
	AccToString(a A) string
	InitStop() S
	UpdateStop(stop S, acc A) S
	Stop(stop S) bool
}

// PosCount pairs a read offset (the pos the aligner passes to Incr) with an
// observed mismatch count, the element type of MismatchList's accumulator.
type PosCount struct {
	Pos   int
	Count int
}

// MismatchCountGroup accumulates a running integer mismatch count.
type MismatchCountGroup struct {
	// Threshold is the early-stop bound: once the observed value exceeds
	// Threshold, Stop reports true.
	Threshold int
}

// MismatchCountStop is the monotone running maximum used to decide early
// stop for MismatchCountGroup.
type MismatchCountStop struct {
	Max int
}

func (MismatchCountGroup) Zero() int { return 0 }

func (MismatchCountGroup) Incr(_ int, v int, acc int) int { return acc + v }

func (MismatchCountGroup) Merge(a, b int) int { return a + b }

func (MismatchCountGroup) AccToString(a int) string { return fmt.Sprintf("%d", a) }

func (MismatchCountGroup) InitStop() MismatchCountStop { return MismatchCountStop{Max: 0} }

func (MismatchCountGroup) UpdateStop(stop MismatchCountStop, acc int) MismatchCountStop {
	if acc > stop.Max {
		return MismatchCountStop{Max: acc}
	}
	return stop
}

func (g MismatchCountGroup) Stop(stop MismatchCountStop) bool {
	return stop.Max > g.Threshold
}

// MismatchListGroup accumulates a list of (position, count) pairs rather
// than a running total, so diagnostics can show where mismatches fell.
type MismatchListGroup struct {
	// Threshold is the maximum list length tolerated before early stop.
	Threshold int
}

type MismatchListStop struct {
	Len int
}

func (MismatchListGroup) Zero() []PosCount { return nil }

func (MismatchListGroup) Incr(pos int, v int, acc []PosCount) []PosCount {
	if v == 0 {
		return acc
	}
	return append(acc, PosCount{Pos: pos, Count: v})
}

func (MismatchListGroup) Merge(a, b []PosCount) []PosCount {
	out := make([]PosCount, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	return out
}

// Total sums the per-position counts, the value invariant 6 (spec.md §8)
// requires to equal MismatchCount on the same inputs.
func (MismatchListGroup) Total(acc []PosCount) int {
	sum := 0
	for _, pc := range acc {
		sum += pc.Count
	}
	return sum
}

// SortedCopy returns acc sorted by position — MismatchList ordering is
// unspecified per spec.md §5, so consumers comparing output should sort
// first; this is a convenience for tests and reporting.
func SortedCopy(acc []PosCount) []PosCount {
	out := make([]PosCount, len(acc))
	copy(out, acc)
	sort.Slice(out, func(i, j int) bool { return out[i].Pos < out[j].Pos })
	return out
}

func (MismatchListGroup) AccToString(acc []PosCount) string {
	return fmt.Sprintf("%v", SortedCopy(acc))
}

func (MismatchListGroup) InitStop() MismatchListStop { return MismatchListStop{Len: 0} }

func (MismatchListGroup) UpdateStop(stop MismatchListStop, acc []PosCount) MismatchListStop {
	if len(acc) > stop.Len {
		return MismatchListStop{Len: len(acc)}
	}
	return stop
}

func (g MismatchListGroup) Stop(stop MismatchListStop) bool {
	return stop.Len > g.Threshold
}

const (
	// DefaultAlphabetSize is the DNA alphabet size used by log_likelihood
	// (spec.md §4.5): A, C, G, T.
	DefaultAlphabetSize = 4
	// DefaultErrorRate is the default uniform per-base error rate.
	DefaultErrorRate = 0.025
)

// LogLikelihood implements spec.md §4.5's formula:
//
//	(len - m)*log(1 - er) + m*log(er/(alphabet-1))
func LogLikelihood(er float64, length, mismatches, alphabet int) float64 {
	return float64(length-mismatches)*math.Log(1-er) + float64(mismatches)*math.Log(er/float64(alphabet-1))
}

// PhredAccumulator is the running log-likelihood record PhredLikelihood
// accumulates: a sum of per-base log-likelihood contributions plus a
// count of positions seen, so AccToString and comparisons have enough
// context to be meaningful.
type PhredAccumulator struct {
	LogLikelihood float64
	Positions     int
}

// PhredLikelihoodGroup accumulates per-base log-likelihood contributions
// using each base's own Phred-derived error probability rather than a
// single uniform rate.
type PhredLikelihoodGroup struct {
	// Threshold is the minimum tolerated log-likelihood before early stop.
	Threshold float64
	// ErrorProbs holds the per-read-position error probability, indexed
	// by read offset; Incr's pos argument for PhredLikelihood is the read
	// offset, not the reference position, matching a mismatch or match at
	// that read base.
	ErrorProbs []float64
}

type PhredStop struct {
	Min float64
	set bool
}

func (PhredLikelihoodGroup) Zero() PhredAccumulator { return PhredAccumulator{} }

func (g PhredLikelihoodGroup) errorProbAt(pos int) float64 {
	if pos >= 0 && pos < len(g.ErrorProbs) {
		return g.ErrorProbs[pos]
	}
	return DefaultErrorRate
}

func (g PhredLikelihoodGroup) addOne(pos int, mismatch bool, acc PhredAccumulator) PhredAccumulator {
	er := g.errorProbAt(pos)
	var contribution float64
	if mismatch {
		contribution = math.Log(er / float64(DefaultAlphabetSize-1))
	} else {
		contribution = math.Log(1 - er)
	}
	return PhredAccumulator{
		LogLikelihood: acc.LogLikelihood + contribution,
		Positions:     acc.Positions + 1,
	}
}

// Incr folds one observed base comparison at read offset pos: v=1 for a
// single mismatch, v=0 for a match. The aligner's seeding and end-of-read
// charges fold a whole unaligned run in one call with v>1 (e.g.
// incr(pos=0, v=dist)); Incr treats that as dist consecutive mismatched
// bases starting at read offset pos, each charged against its own Phred
// error probability rather than collapsing the run into one contribution.
func (g PhredLikelihoodGroup) Incr(pos int, v int, acc PhredAccumulator) PhredAccumulator {
	if v <= 0 {
		return g.addOne(pos, false, acc)
	}
	for i := 0; i < v; i++ {
		acc = g.addOne(pos+i, true, acc)
	}
	return acc
}

func (PhredLikelihoodGroup) Merge(a, b PhredAccumulator) PhredAccumulator {
	return PhredAccumulator{
		LogLikelihood: a.LogLikelihood + b.LogLikelihood,
		Positions:     a.Positions + b.Positions,
	}
}

func (PhredLikelihoodGroup) AccToString(a PhredAccumulator) string {
	return fmt.Sprintf("logL=%.4f (n=%d)", a.LogLikelihood, a.Positions)
}

func (PhredLikelihoodGroup) InitStop() PhredStop { return PhredStop{} }

func (PhredLikelihoodGroup) UpdateStop(stop PhredStop, acc PhredAccumulator) PhredStop {
	if !stop.set || acc.LogLikelihood < stop.Min {
		return PhredStop{Min: acc.LogLikelihood, set: true}
	}
	return stop
}

func (g PhredLikelihoodGroup) Stop(stop PhredStop) bool {
	return stop.set && stop.Min < g.Threshold
}
