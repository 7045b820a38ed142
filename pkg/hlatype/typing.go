package hlatype

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/hlatype/hlatype/internal/aligner"
	"github.com/hlatype/hlatype/internal/aligngroup"
	"github.com/hlatype/hlatype/internal/allele"
	"github.com/hlatype/hlatype/internal/allelegraph"
	"github.com/hlatype/hlatype/internal/fastq"
	"github.com/hlatype/hlatype/internal/kmerindex"
	"github.com/hlatype/hlatype/internal/msa"
	"github.com/hlatype/hlatype/internal/multiread"
	"github.com/hlatype/hlatype/internal/perread"
	"github.com/hlatype/hlatype/internal/report"
)

// Model selects which AlignmentGroup statistic a typing run accumulates,
// mirroring the CLI's --mismatches|--mis-list|--likelihood|--log-likelihood
// selector.
type Model int

const (
	ModelMismatchCount Model = iota
	ModelMismatchList
	ModelLikelihood
	ModelLogLikelihood
)

// DefaultKMerSize is the anchor k-mer length used when TypeOptions.KMerSize
// is unset.
const DefaultKMerSize = 20

// TypeOptions configures one typing run.
type TypeOptions struct {
	Model Model

	// KMerSize is the anchor index's k-mer length. <= 0 selects
	// DefaultKMerSize.
	KMerSize int

	// FilterMatches is the early-stop threshold forwarded to the
	// MismatchCount/MismatchList group's Threshold field. <= 0 disables
	// early stopping (the zero value is indistinguishable from "not set",
	// so this package treats it as "no limit" rather than "stop on the
	// first mismatch").
	FilterMatches int

	// LikelihoodError is the uniform per-base error rate the
	// MismatchCount/MismatchList models use to turn summed mismatch counts
	// into log-likelihood scores for ranking. The Likelihood/LogLikelihood
	// models do not read it: they weight each base by the error
	// probability decoded from its own Phred quality
	// (aligngroup.DefaultErrorRate for a base without one), and their
	// early-stop threshold comes from FilterMatches. <= 0 selects
	// aligngroup.DefaultErrorRate.
	LikelihoodError float64

	Report report.Options
}

func (o TypeOptions) kmerSize() int {
	if o.KMerSize <= 0 {
		return DefaultKMerSize
	}
	return o.KMerSize
}

func (o TypeOptions) likelihoodError() float64 {
	if o.LikelihoodError <= 0 {
		return aligngroup.DefaultErrorRate
	}
	return o.LikelihoodError
}

// ParsedMSA bundles an msa.Result with the ordered allele-name list
// derived from it (reference first, then alternates sorted by name) —
// the same ordering BuildGraph and allele.NewIndex must agree on.
type ParsedMSA struct {
	Result      *msa.Result
	AlleleNames []string
}

// ParseMSA parses an MSA file from r into a ParsedMSA.
func ParseMSA(r io.Reader) (*ParsedMSA, error) {
	result, err := msa.Parse(r)
	if err != nil {
		return nil, err
	}

	alts := make([]string, 0, len(result.Alternates))
	for name := range result.Alternates {
		alts = append(alts, name)
	}
	sort.Strings(alts)

	names := make([]string, 0, len(alts)+1)
	names = append(names, result.ReferenceName)
	names = append(names, alts...)

	return &ParsedMSA{Result: result, AlleleNames: names}, nil
}

// BuildGraph wires a ParsedMSA's per-allele elements into an
// allelegraph.Graph, alongside the allele.Index naming each graph column
// in the same order.
func BuildGraph(p *ParsedMSA) (*allelegraph.Graph, *allele.Index, error) {
	idx := allele.NewIndex(p.AlleleNames)
	b := allelegraph.NewBuilder(idx.Size())

	for i, name := range p.AlleleNames {
		elements := p.Result.Alternates[name]
		if name == p.Result.ReferenceName {
			elements = p.Result.ReferenceElements
		}
		if err := b.AddAllele(i, elements); err != nil {
			return nil, nil, fmt.Errorf("hlatype: building graph for %s: %w", name, err)
		}
	}

	return b.Build(), idx, nil
}

// BuildIndex builds the anchor k-mer index for gr.
func BuildIndex(gr *allelegraph.Graph, opts TypeOptions) (*kmerindex.Index, error) {
	return kmerindex.Build(gr, opts.kmerSize())
}

// ReadFASTQRecords reads every record from a FASTQ stream, suitable as
// input to TypeReads.
func ReadFASTQRecords(r io.Reader) ([]fastq.Record, error) {
	return fastq.ReadAll(r)
}

// TypeRunResult is the outcome of typing a full read set against a graph.
type TypeRunResult struct {
	Summary    *report.RunSummary
	NoAnchor   []string // read IDs with zero k-mer anchors
	AllStopped []string // read IDs where every candidate alignment stopped early
}

// TypeReads aligns every record in reads against gr (anchored via kidx),
// folding per-allele scores according to opts.Model, and summarizes the
// result.
func TypeReads(gr *allelegraph.Graph, idx *allele.Index, kidx *kmerindex.Index, reads []fastq.Record, opts TypeOptions) (*TypeRunResult, error) {
	switch opts.Model {
	case ModelMismatchList:
		return typeReadsMismatchList(gr, idx, kidx, reads, opts)
	case ModelLikelihood:
		return typeReadsPhred(gr, idx, kidx, reads, opts, false)
	case ModelLogLikelihood:
		return typeReadsPhred(gr, idx, kidx, reads, opts, true)
	default:
		return typeReadsMismatchCount(gr, idx, kidx, reads, opts)
	}
}

func anchorsFor(kidx *kmerindex.Index, bases []byte) ([]int, error) {
	return kidx.Lookup(bases)
}

func typeReadsMismatchCount(gr *allelegraph.Graph, idx *allele.Index, kidx *kmerindex.Index, reads []fastq.Record, opts TypeOptions) (*TypeRunResult, error) {
	grp := aligngroup.MismatchCountGroup{Threshold: noStopIfUnset(opts.FilterMatches, math.MaxInt32)}
	agg := multiread.NewAggregator(idx.Size(), 0, multiread.SumInts)
	run := &TypeRunResult{}

	for _, rec := range reads {
		best, err := reduceOne(gr, grp, idx, kidx, rec, perread.Minimize, func(a, b int) bool { return a < b })
		if err != nil {
			if !isSkippableReadError(err) {
				return nil, err
			}
			classifyReadError(run, rec.ID, err)
			agg.AddError(err)
			continue
		}
		agg.Add(best)
	}

	totals, errs := agg.Result()
	// readLength=1 here isn't a literal read length: totals already sums
	// mismatches across every read, and log_likelihood's formula is only
	// used past this point as a monotone decreasing transform of "more
	// mismatches is worse" so MismatchCount ranks through the same
	// best-first, log-delta-normalized report path as the Phred models.
	scores := multiread.MismatchCountsToLogLikelihood(totals, 1, opts.likelihoodError(), aligngroup.DefaultAlphabetSize)
	opts.Report.Normalize = report.NormalizeLogDelta
	run.Summary = report.Summarize(idx, scores, agg.ReadCount(), len(errs), opts.Report)
	return run, nil
}

func typeReadsMismatchList(gr *allelegraph.Graph, idx *allele.Index, kidx *kmerindex.Index, reads []fastq.Record, opts TypeOptions) (*TypeRunResult, error) {
	grp := aligngroup.MismatchListGroup{Threshold: noStopIfUnset(opts.FilterMatches, math.MaxInt32)}
	agg := multiread.NewAggregator[[]aligngroup.PosCount](idx.Size(), nil, multiread.ConcatPosCounts[aligngroup.PosCount])
	run := &TypeRunResult{}

	for _, rec := range reads {
		best, err := reduceOne(gr, grp, idx, kidx, rec, perread.Minimize, func(a, b []aligngroup.PosCount) bool {
			return aligngroup.MismatchListGroup{}.Total(a) < aligngroup.MismatchListGroup{}.Total(b)
		})
		if err != nil {
			if !isSkippableReadError(err) {
				return nil, err
			}
			classifyReadError(run, rec.ID, err)
			agg.AddError(err)
			continue
		}
		agg.Add(best)
	}

	totals, errs := agg.Result()
	counts := allele.MapValues(totals, 0, func(_ int, acc []aligngroup.PosCount) int {
		return aligngroup.MismatchListGroup{}.Total(acc)
	})
	scores := multiread.MismatchCountsToLogLikelihood(counts, 1, opts.likelihoodError(), aligngroup.DefaultAlphabetSize)
	opts.Report.Normalize = report.NormalizeLogDelta
	run.Summary = report.Summarize(idx, scores, agg.ReadCount(), len(errs), opts.Report)
	return run, nil
}

func typeReadsPhred(gr *allelegraph.Graph, idx *allele.Index, kidx *kmerindex.Index, reads []fastq.Record, opts TypeOptions, logScale bool) (*TypeRunResult, error) {
	threshold := -math.MaxFloat64
	if opts.FilterMatches > 0 {
		threshold = float64(-opts.FilterMatches)
	}
	run := &TypeRunResult{}

	var agg *multiread.Aggregator[float64]
	if logScale {
		agg = multiread.NewAggregator(idx.Size(), 0.0, multiread.AddFloats)
	} else {
		agg = multiread.NewAggregator(idx.Size(), 1.0, multiread.MultiplyFloats)
	}

	for _, rec := range reads {
		grp := aligngroup.PhredLikelihoodGroup{Threshold: threshold, ErrorProbs: rec.ErrorProbs}
		best, err := reduceOne(gr, grp, idx, kidx, rec, perread.Maximize, func(a, b aligngroup.PhredAccumulator) bool {
			return a.LogLikelihood < b.LogLikelihood
		})
		if err != nil {
			if !isSkippableReadError(err) {
				return nil, err
			}
			classifyReadError(run, rec.ID, err)
			agg.AddError(err)
			continue
		}

		perAllele := allele.MapValues(best, 0.0, func(_ int, acc aligngroup.PhredAccumulator) float64 {
			if logScale {
				return acc.LogLikelihood
			}
			return math.Exp(acc.LogLikelihood)
		})
		agg.Add(perAllele)
	}

	totals, errs := agg.Result()
	if logScale {
		opts.Report.Normalize = report.NormalizeLogDelta
	} else {
		opts.Report.Normalize = report.NormalizeRatio
	}
	run.Summary = report.Summarize(idx, totals, agg.ReadCount(), len(errs), opts.Report)
	return run, nil
}

// reduceOne runs one read against every candidate anchor kidx finds and
// reduces the per-candidate results down to a single per-allele score
// map via perread.Reduce.
func reduceOne[A any, S any](gr *allelegraph.Graph, grp aligngroup.Group[A, S], idx *allele.Index, kidx *kmerindex.Index, rec fastq.Record, policy perread.Policy, less func(a, b A) bool) (allele.Map[A], error) {
	anchors, err := anchorsFor(kidx, rec.Bases)
	if err != nil {
		return allele.Map[A]{}, fmt.Errorf("hlatype: looking up anchors for %s: %w", rec.ID, err)
	}
	if len(anchors) == 0 {
		return allele.Map[A]{}, perread.NoPositionsError{Read: rec.ID}
	}

	results := make([]perread.PositionResult[A], 0, len(anchors))
	for _, anchor := range anchors {
		status, scores, err := aligner.Align(gr, grp, rec.Bases, anchor)
		if err != nil {
			return allele.Map[A]{}, fmt.Errorf("hlatype: aligning %s at %d: %w", rec.ID, anchor, err)
		}
		results = append(results, perread.PositionResult[A]{Status: status, Scores: scores})
	}

	return perread.Reduce(results, policy, less)
}

// isSkippableReadError reports whether err is one of perread's two
// documented per-read reduction failures — both expected outcomes that
// should drop one read from the aggregate rather than abort the run.
// Any other error (a k-mer lookup or aligner failure) is a genuine bug
// and propagates out of TypeReads instead.
func isSkippableReadError(err error) bool {
	switch err.(type) {
	case perread.NoPositionsError, perread.AllStoppedError:
		return true
	default:
		return false
	}
}

// classifyReadError records a skippable per-read reduction failure into
// run's NoAnchor/AllStopped buckets for reporting.
func classifyReadError(run *TypeRunResult, readID string, err error) {
	switch err.(type) {
	case perread.NoPositionsError:
		run.NoAnchor = append(run.NoAnchor, readID)
	case perread.AllStoppedError:
		run.AllStopped = append(run.AllStopped, readID)
	}
}

func noStopIfUnset(threshold, sentinel int) int {
	if threshold <= 0 {
		return sentinel
	}
	return threshold
}
