package main

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"github.com/spf13/cobra"

	"github.com/hlatype/hlatype/internal/allelegraph"
	"github.com/hlatype/hlatype/internal/cache"
	"github.com/hlatype/hlatype/internal/kmerindex"
	"github.com/hlatype/hlatype/internal/report"
	"github.com/hlatype/hlatype/pkg/hlatype"
)

type typeFlags struct {
	alleleFile string
	readsFile  string

	alleleRegex   string
	alleles       []string
	withoutAllele []string
	numAlts       int

	kmerSize         int
	joinSameSequence bool
	noCache          bool
	cacheDir         string

	mismatches    bool
	misList       bool
	likelihood    bool
	logLikelihood bool

	filterMatches   int
	printTop        int
	doNotNormalize  bool
	doNotBucket     bool
	likelihoodError float64
}

func newTypeCmd() *cobra.Command {
	f := &typeFlags{}

	cmd := &cobra.Command{
		Use:   "type",
		Short: "Type a FASTQ read set against an MSA-derived allele graph",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runType(f)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&f.alleleFile, "allele-file", "a", "", "MSA file defining the allele graph (required)")
	flags.StringVarP(&f.readsFile, "reads", "r", "", "FASTQ file of reads to type (required)")

	flags.StringVar(&f.alleleRegex, "allele-regex", "", "include only alternate alleles whose name matches this regular expression")
	flags.StringSliceVar(&f.alleles, "allele", nil, "include only these specific alternate alleles (repeatable)")
	flags.StringSliceVar(&f.withoutAllele, "without-allele", nil, "exclude these alternate alleles (repeatable)")
	flags.IntVar(&f.numAlts, "num-alts", 0, "cap the number of alternate alleles considered, 0 means no cap")

	flags.IntVar(&f.kmerSize, "kmer-size", hlatype.DefaultKMerSize, "anchor k-mer length")
	flags.BoolVar(&f.joinSameSequence, "join-same-sequence", true, "share identical sequence runs across alleles in the graph (always on; accepted for CLI compatibility)")
	flags.BoolVar(&f.noCache, "no-cache", false, "skip the on-disk k-mer index cache")
	flags.StringVar(&f.cacheDir, "cache-dir", ".", "base directory for the on-disk cache")

	flags.BoolVar(&f.mismatches, "mismatches", false, "score by total mismatch count")
	flags.BoolVar(&f.misList, "mis-list", false, "score by mismatch position list")
	flags.BoolVar(&f.likelihood, "likelihood", false, "score by Phred-weighted likelihood")
	flags.BoolVar(&f.logLikelihood, "log-likelihood", false, "score by Phred-weighted log-likelihood")
	cmd.MarkFlagsMutuallyExclusive("mismatches", "mis-list", "likelihood", "log-likelihood")

	flags.IntVar(&f.filterMatches, "filter-matches", 0, "early-stop threshold, 0 means no limit")
	flags.IntVar(&f.printTop, "print-top", 0, "limit the printed ranking to the top N alleles, 0 means all")
	flags.BoolVar(&f.doNotNormalize, "do-not-normalize", false, "skip score normalization in the report")
	flags.BoolVar(&f.doNotBucket, "do-not-bucket", false, "skip collapsing alleles to two-field resolution in the report")
	flags.Float64Var(&f.likelihoodError, "likelihood-error", 0, "uniform per-base error rate for ranking --mismatches/--mis-list totals (unused by --likelihood/--log-likelihood), <= 0 selects the package default")

	cmd.MarkFlagRequired("allele-file")
	cmd.MarkFlagRequired("reads")

	return cmd
}

func (f *typeFlags) model() hlatype.Model {
	switch {
	case f.misList:
		return hlatype.ModelMismatchList
	case f.likelihood:
		return hlatype.ModelLikelihood
	case f.logLikelihood:
		return hlatype.ModelLogLikelihood
	default:
		return hlatype.ModelMismatchCount
	}
}

// selectAlternates applies --allele-regex, --allele, --without-allele,
// and --num-alts, in that order, to the alternate allele names a parsed
// MSA produced. The reference allele is never filtered out.
func selectAlternates(p *hlatype.ParsedMSA, f *typeFlags) (*hlatype.ParsedMSA, error) {
	alts := make([]string, 0, len(p.AlleleNames))
	for _, name := range p.AlleleNames {
		if name != p.Result.ReferenceName {
			alts = append(alts, name)
		}
	}

	if f.alleleRegex != "" {
		re, err := regexp.Compile(f.alleleRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid --allele-regex: %w", err)
		}
		filtered := alts[:0:0]
		for _, name := range alts {
			if re.MatchString(name) {
				filtered = append(filtered, name)
			}
		}
		alts = filtered
	}

	if len(f.alleles) > 0 {
		want := make(map[string]struct{}, len(f.alleles))
		for _, name := range f.alleles {
			want[name] = struct{}{}
		}
		filtered := alts[:0:0]
		for _, name := range alts {
			if _, ok := want[name]; ok {
				filtered = append(filtered, name)
			}
		}
		alts = filtered
	}

	if len(f.withoutAllele) > 0 {
		exclude := make(map[string]struct{}, len(f.withoutAllele))
		for _, name := range f.withoutAllele {
			exclude[name] = struct{}{}
		}
		filtered := alts[:0:0]
		for _, name := range alts {
			if _, ok := exclude[name]; !ok {
				filtered = append(filtered, name)
			}
		}
		alts = filtered
	}

	sort.Strings(alts)
	if f.numAlts > 0 && f.numAlts < len(alts) {
		alts = alts[:f.numAlts]
	}

	names := make([]string, 0, len(alts)+1)
	names = append(names, p.Result.ReferenceName)
	names = append(names, alts...)

	return &hlatype.ParsedMSA{Result: p.Result, AlleleNames: names}, nil
}

func runType(f *typeFlags) error {
	alleleFile, err := os.Open(f.alleleFile)
	if err != nil {
		return fmt.Errorf("opening allele file: %w", err)
	}
	defer alleleFile.Close()

	parsed, err := hlatype.ParseMSA(alleleFile)
	if err != nil {
		return fmt.Errorf("parsing allele file: %w", err)
	}

	parsed, err = selectAlternates(parsed, f)
	if err != nil {
		return err
	}

	gr, idx, err := hlatype.BuildGraph(parsed)
	if err != nil {
		return fmt.Errorf("building allele graph: %w", err)
	}

	opts := hlatype.TypeOptions{
		Model:           f.model(),
		KMerSize:        f.kmerSize,
		FilterMatches:   f.filterMatches,
		LikelihoodError: f.likelihoodError,
		Report: report.Options{
			TopN:           f.printTop,
			DoNotNormalize: f.doNotNormalize,
			DoNotBucket:    f.doNotBucket,
		},
	}

	kidx, err := loadOrBuildIndex(gr, f, opts)
	if err != nil {
		return fmt.Errorf("building k-mer index: %w", err)
	}

	readsFile, err := os.Open(f.readsFile)
	if err != nil {
		return fmt.Errorf("opening reads file: %w", err)
	}
	defer readsFile.Close()

	reads, err := hlatype.ReadFASTQRecords(readsFile)
	if err != nil {
		return fmt.Errorf("reading FASTQ file: %w", err)
	}

	result, err := hlatype.TypeReads(gr, idx, kidx, reads, opts)
	if err != nil {
		return fmt.Errorf("typing reads: %w", err)
	}

	fmt.Print(result.Summary.String())
	if len(result.NoAnchor) > 0 {
		fmt.Printf("reads with no anchor: %d\n", len(result.NoAnchor))
	}
	if len(result.AllStopped) > 0 {
		fmt.Printf("reads fully early-stopped: %d\n", len(result.AllStopped))
	}

	if homology, err := hlatype.TopPairHomology(parsed, result.Summary); err == nil {
		fmt.Printf("\ntop-2 homology: %s vs %s, %.1f%% identity\n",
			result.Summary.Ranked[0].Name, result.Summary.Ranked[1].Name, homology.Identity*100)
	}
	return nil
}

// loadOrBuildIndex builds the anchor k-mer index for gr, consulting the
// on-disk cache keyed by the allele file's path and modification time
// plus the flags that change the index's contents, unless --no-cache was
// given.
func loadOrBuildIndex(gr *allelegraph.Graph, f *typeFlags, opts hlatype.TypeOptions) (*kmerindex.Index, error) {
	if f.noCache {
		return hlatype.BuildIndex(gr, opts)
	}

	store, err := cache.NewIndexStore(f.cacheDir)
	if err != nil {
		return nil, err
	}

	info, err := os.Stat(f.alleleFile)
	if err != nil {
		return nil, err
	}

	key := cache.Fingerprint(f.alleleFile, fmt.Sprintf("mtime=%s", info.ModTime().UTC().Format("2006-01-02T15:04:05.999999999Z")), fmt.Sprintf("k=%d", opts.KMerSize), fmt.Sprintf("alts=%v", f.alleles), fmt.Sprintf("regex=%s", f.alleleRegex), fmt.Sprintf("without=%v", f.withoutAllele), fmt.Sprintf("numalts=%d", f.numAlts))

	var idx kmerindex.Index
	found, err := store.Get(key, &idx)
	if err != nil {
		return nil, err
	}
	if found {
		return &idx, nil
	}

	built, err := hlatype.BuildIndex(gr, opts)
	if err != nil {
		return nil, err
	}
	if err := store.Put(key, built); err != nil {
		return nil, err
	}
	return built, nil
}
