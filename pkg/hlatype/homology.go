package hlatype

import (
	"fmt"
	"strings"

	"github.com/hlatype/hlatype/internal/alignment"
	"github.com/hlatype/hlatype/internal/element"
	"github.com/hlatype/hlatype/internal/report"
	"github.com/hlatype/hlatype/internal/sequence"
)

// AlleleSequence reconstructs name's full residue sequence from a parsed
// MSA by walking its alignment elements in order and concatenating every
// Sequence element's Seq — Start/End/Boundary carry no residues, and
// copy-from-reference positions were already materialized into Sequence
// elements by msa.Parse, so this recovers the allele's actual bases, not
// just the characters literally typed for it in the MSA file.
func AlleleSequence(p *ParsedMSA, name string) (*sequence.Sequence, error) {
	elements := p.Result.ReferenceElements
	if name != p.Result.ReferenceName {
		alt, ok := p.Result.Alternates[name]
		if !ok {
			return nil, fmt.Errorf("hlatype: unknown allele %q", name)
		}
		elements = alt
	}

	var b strings.Builder
	for _, e := range elements {
		if e.Kind == element.Sequence {
			b.WriteString(e.Seq)
		}
	}

	seqType := sequence.Protein
	if p.Result.DNA {
		seqType = sequence.DNA
	}
	return sequence.WithMetadata(b.String(), name, "", seqType)
}

// CompareAlleles globally aligns two named alleles' reconstructed
// sequences with Needleman-Wunsch, the homology diagnostic a typing run
// reaches for when its top two ranked alleles score close enough that a
// reader will ask whether they're simply near-identical alleles rather
// than genuinely distinguishable ones. DNA alleles score under
// alignment.DefaultDNA; protein alleles (Prot-block MSAs) score under
// alignment.BLASTLike — both are plain match/mismatch/gap weights, since
// ScoringMatrix.Score only ever compares residues for equality.
func CompareAlleles(p *ParsedMSA, nameA, nameB string) (*alignment.Alignment, error) {
	seqA, err := AlleleSequence(p, nameA)
	if err != nil {
		return nil, err
	}
	seqB, err := AlleleSequence(p, nameB)
	if err != nil {
		return nil, err
	}

	scoring := alignment.DefaultDNA()
	if !p.Result.DNA {
		scoring = alignment.BLASTLike()
	}
	return alignment.NeedlemanWunsch(seqA, seqB, scoring)
}

// TopPairHomology compares the two highest-ranked alleles in summary, the
// typing run's own candidates for "are these actually distinguishable".
// It returns an error if summary has fewer than two ranked alleles.
func TopPairHomology(p *ParsedMSA, summary *report.RunSummary) (*alignment.Alignment, error) {
	if len(summary.Ranked) < 2 {
		return nil, fmt.Errorf("hlatype: need at least two ranked alleles to compare, got %d", len(summary.Ranked))
	}
	return CompareAlleles(p, summary.Ranked[0].Name, summary.Ranked[1].Name)
}
