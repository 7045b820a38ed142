package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"

	"github.com/hlatype/hlatype/internal/cache"
	"github.com/hlatype/hlatype/internal/msa"
	"github.com/hlatype/hlatype/internal/report"
	"github.com/hlatype/hlatype/pkg/hlatype"
)

// TypeRunRequest carries everything one typing run needs: the MSA file's
// contents, the FASTQ file's contents, and the same statistic selector
// and reporting flags the CLI's "type" subcommand exposes.
type TypeRunRequest struct {
	MSA   string `json:"msa"`
	FASTQ string `json:"fastq"`

	Model string `json:"model"` // "mismatches" | "mis-list" | "likelihood" | "log-likelihood"

	KMerSize        int     `json:"kmer_size,omitempty"`
	FilterMatches   int     `json:"filter_matches,omitempty"`
	LikelihoodError float64 `json:"likelihood_error,omitempty"`

	PrintTop       int  `json:"print_top,omitempty"`
	DoNotNormalize bool `json:"do_not_normalize,omitempty"`
	DoNotBucket    bool `json:"do_not_bucket,omitempty"`
}

// TypeRunResponse is the ranked-allele result of one typing run.
type TypeRunResponse struct {
	RunID      string               `json:"run_id"`
	TotalReads int                  `json:"total_reads"`
	Errors     int                  `json:"errors"`
	Ranked     []report.AlleleScore `json:"ranked"`

	// TopPairIdentity is the Needleman-Wunsch global identity fraction
	// between the two highest-ranked alleles, omitted when fewer than two
	// alleles were ranked.
	TopPairIdentity *float64 `json:"top_pair_identity,omitempty"`
}

// TypeDiagnostics is the parser/aligner diagnostic detail for one run,
// fetched separately from TypeRunResponse so the common case (just the
// ranking) stays a small payload.
type TypeDiagnostics struct {
	RunID            string           `json:"run_id"`
	ParseDiagnostics []msa.Diagnostic `json:"parse_diagnostics"`
	NoAnchorReads    []string         `json:"no_anchor_reads"`
	AllStoppedReads  []string         `json:"all_stopped_reads"`
}

var runDiagnostics = struct {
	mu   sync.Mutex
	byID map[string]*TypeDiagnostics
}{byID: make(map[string]*TypeDiagnostics)}

var runCounter atomic.Int64

func parseModel(s string) hlatype.Model {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "mis-list", "mismatch-list":
		return hlatype.ModelMismatchList
	case "likelihood":
		return hlatype.ModelLikelihood
	case "log-likelihood":
		return hlatype.ModelLogLikelihood
	default:
		return hlatype.ModelMismatchCount
	}
}

func nextRunID(req *TypeRunRequest) string {
	n := runCounter.Add(1)
	return cache.Fingerprint(req.MSA, req.FASTQ, req.Model, itoa(n))[:16]
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// TypeRunHandler runs a full typing pass (parse MSA, build the allele
// graph and k-mer index, type every FASTQ read, summarize) and returns
// the ranked allele table. Diagnostics are stored under the returned
// run_id for a follow-up GET /api/type/diagnostics/{runID}.
func TypeRunHandler(w http.ResponseWriter, r *http.Request) {
	var req TypeRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error": "invalid request body"}`, http.StatusBadRequest)
		return
	}
	if req.MSA == "" || req.FASTQ == "" {
		http.Error(w, `{"error": "msa and fastq fields are both required"}`, http.StatusBadRequest)
		return
	}

	parsed, err := hlatype.ParseMSA(strings.NewReader(req.MSA))
	if err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	gr, idx, err := hlatype.BuildGraph(parsed)
	if err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	opts := hlatype.TypeOptions{
		Model:           parseModel(req.Model),
		KMerSize:        req.KMerSize,
		FilterMatches:   req.FilterMatches,
		LikelihoodError: req.LikelihoodError,
		Report: report.Options{
			TopN:           req.PrintTop,
			DoNotNormalize: req.DoNotNormalize,
			DoNotBucket:    req.DoNotBucket,
		},
	}

	kidx, err := hlatype.BuildIndex(gr, opts)
	if err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	reads, err := hlatype.ReadFASTQRecords(strings.NewReader(req.FASTQ))
	if err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusBadRequest)
		return
	}

	result, err := hlatype.TypeReads(gr, idx, kidx, reads, opts)
	if err != nil {
		http.Error(w, `{"error": "`+err.Error()+`"}`, http.StatusInternalServerError)
		return
	}

	runID := nextRunID(&req)
	runDiagnostics.mu.Lock()
	runDiagnostics.byID[runID] = &TypeDiagnostics{
		RunID:            runID,
		ParseDiagnostics: parsed.Result.Diagnostics,
		NoAnchorReads:    result.NoAnchor,
		AllStoppedReads:  result.AllStopped,
	}
	runDiagnostics.mu.Unlock()

	var topPairIdentity *float64
	if homology, err := hlatype.TopPairHomology(parsed, result.Summary); err == nil {
		identity := homology.Identity
		topPairIdentity = &identity
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(TypeRunResponse{
		RunID:           runID,
		TotalReads:      result.Summary.TotalReads,
		Errors:          result.Summary.ErrorCount,
		Ranked:          result.Summary.Ranked,
		TopPairIdentity: topPairIdentity,
	})
}

// TypeDiagnosticsHandler returns the stored parser/aligner diagnostics
// for a previous TypeRunHandler call.
func TypeDiagnosticsHandler(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "runID")

	runDiagnostics.mu.Lock()
	diag, ok := runDiagnostics.byID[runID]
	runDiagnostics.mu.Unlock()

	if !ok {
		http.Error(w, `{"error": "unknown run_id"}`, http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diag)
}
