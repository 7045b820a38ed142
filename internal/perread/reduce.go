// Package perread implements spec.md §4.4's PerRead reduction: a single
// read may be seeded at several candidate anchor positions (from
// internal/kmerindex), each producing a full per-allele score via
// internal/aligner.Align; PerRead picks the one candidate anchor whose
// per-allele summary (minimum under Minimize, maximum under Maximize) is
// most favorable, and returns that candidate's whole score map.
package perread

import (
	"github.com/hlatype/hlatype/internal/aligner"
	"github.com/hlatype/hlatype/internal/allele"
)

// PositionResult is one candidate anchor position's alignment outcome for
// a single read.
type PositionResult[A any] struct {
	Status aligner.Status
	Scores allele.Map[A]
}

// Policy selects whether Reduce favors the candidate position whose
// per-allele summary is smallest (Minimize) or largest (Maximize) —
// MismatchCount/MismatchList want the minimum, PhredLikelihood/
// LogLikelihood want the maximum.
type Policy int

const (
	Minimize Policy = iota
	Maximize
)

// Reduce picks the single candidate anchor position that best explains
// the read and returns its whole per-allele score map, unmodified.
// Results with aligner.StatusStopped are excluded whenever at least one
// aligner.StatusFinished result exists (a stopped alignment only ran
// until the early-stop threshold tripped, so a finished run is always
// preferred when one is available). If every result stopped early,
// Reduce returns AllStoppedError. If results is empty, Reduce returns
// NoPositionsError without inspecting policy or less at all.
//
// "Best" is decided by each candidate's own per-allele summary — its
// minimum entry under Minimize, its maximum under Maximize — and the
// candidate with the most favorable summary wins outright; its map is
// returned as-is, never blended with another candidate's. A read's
// mismatch count against allele A must come from the same alignment
// (the same anchor) as its count against allele B, or the two aren't
// comparable.
func Reduce[A any](results []PositionResult[A], policy Policy, less func(a, b A) bool) (allele.Map[A], error) {
	if len(results) == 0 {
		return allele.Map[A]{}, NoPositionsError{}
	}

	candidates := make([]PositionResult[A], 0, len(results))
	for _, r := range results {
		if r.Status == aligner.StatusFinished {
			candidates = append(candidates, r)
		}
	}
	if len(candidates) == 0 {
		return allele.Map[A]{}, AllStoppedError{N: len(results)}
	}

	best := candidates[0].Scores
	bestSummary := summarize(best, policy, less)
	for _, r := range candidates[1:] {
		summary := summarize(r.Scores, policy, less)
		if better(policy, less, summary, bestSummary) {
			best = r.Scores
			bestSummary = summary
		}
	}
	return best, nil
}

// summarize reduces one candidate's per-allele map to the single value
// that represents it: the smallest entry under Minimize, the largest
// under Maximize.
func summarize[A any](m allele.Map[A], policy Policy, less func(a, b A) bool) A {
	extreme := m.Get(0)
	for i := 1; i < m.Len(); i++ {
		if v := m.Get(i); better(policy, less, v, extreme) {
			extreme = v
		}
	}
	return extreme
}

// better reports whether src should replace dst under policy.
func better[A any](policy Policy, less func(a, b A) bool, src, dst A) bool {
	switch policy {
	case Maximize:
		return less(dst, src)
	default:
		return less(src, dst)
	}
}
