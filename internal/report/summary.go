// Package report builds the per-run summary spec.md's supplemented
// reporting features describe: ranking alleles by score, optionally
// normalizing those scores, optionally bucketing alleles to low-
// resolution (two-field) HLA groups, and trimming to a top-N list.
//
// Grounded on internal/stats.SequenceSetStats's summary-struct-plus-
// From*-constructor pattern.
package report

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/hlatype/hlatype/internal/allele"
)

// AlleleScore is one allele's ranked result.
type AlleleScore struct {
	Name  string
	Raw   float64
	Score float64 // Raw after normalization, or equal to Raw if skipped
}

// RunSummary is one typing run's report: every allele's score, ranked
// best first, optionally bucketed to low-resolution groups.
type RunSummary struct {
	TotalReads int
	ErrorCount int
	Ranked     []AlleleScore
	Bucketed   map[string][]AlleleScore // nil if bucketing was skipped
}

// Normalize rescales a raw score against the best score seen in a run.
type Normalize func(raw, best float64) float64

// NormalizeRatio expresses every score as a fraction of the best score —
// natural for a multiplicative Likelihood model, where scores are
// strictly positive.
func NormalizeRatio(raw, best float64) float64 {
	if best == 0 {
		return 0
	}
	return raw / best
}

// NormalizeLogDelta expresses every score as its distance below the best
// score — natural for LogLikelihood/PhredLikelihood, where scores are
// negative and "best" means "least negative".
func NormalizeLogDelta(raw, best float64) float64 {
	return raw - best
}

// Options controls how Summarize builds a RunSummary.
type Options struct {
	TopN           int // 0 means "no limit"
	DoNotNormalize bool
	DoNotBucket    bool
	Normalize      Normalize // ignored if DoNotNormalize
}

// Summarize ranks totals' per-allele scores best-first (highest score
// wins — callers of a minimize-oriented group, like MismatchCount,
// should negate scores before calling Summarize), applies opts.Normalize
// unless disabled, trims to opts.TopN, and buckets to two-field HLA
// groups unless disabled.
func Summarize(idx *allele.Index, totals allele.Map[float64], readCount, errorCount int, opts Options) *RunSummary {
	n := idx.Size()
	scores := make([]AlleleScore, n)
	best := math.Inf(-1)
	for i := 0; i < n; i++ {
		raw := totals.Get(i)
		scores[i] = AlleleScore{Name: idx.NameAt(i), Raw: raw, Score: raw}
		if raw > best {
			best = raw
		}
	}

	if !opts.DoNotNormalize {
		normalize := opts.Normalize
		if normalize == nil {
			normalize = NormalizeRatio
		}
		for i := range scores {
			scores[i].Score = normalize(scores[i].Raw, best)
		}
	}

	sort.Slice(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })

	ranked := scores
	if opts.TopN > 0 && opts.TopN < len(ranked) {
		ranked = ranked[:opts.TopN]
	}

	summary := &RunSummary{
		TotalReads: readCount,
		ErrorCount: errorCount,
		Ranked:     ranked,
	}
	if !opts.DoNotBucket {
		summary.Bucketed = bucket(scores)
	}
	return summary
}

// bucketKey collapses an HLA allele name to its two-field (low)
// resolution group, e.g. "A*01:01:01:02N" -> "A*01:01".
func bucketKey(name string) string {
	parts := strings.SplitN(name, ":", 3)
	if len(parts) <= 2 {
		return name
	}
	return parts[0] + ":" + parts[1]
}

func bucket(scores []AlleleScore) map[string][]AlleleScore {
	out := make(map[string][]AlleleScore)
	for _, s := range scores {
		key := bucketKey(s.Name)
		out[key] = append(out[key], s)
	}
	return out
}

func (r *RunSummary) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "RunSummary { reads: %d, errors: %d, ranked: %d }\n", r.TotalReads, r.ErrorCount, len(r.Ranked))
	for _, s := range r.Ranked {
		fmt.Fprintf(&b, "  %s: %.6f (raw %.6f)\n", s.Name, s.Score, s.Raw)
	}
	return b.String()
}
