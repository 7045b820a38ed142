// Package msa parses IMGT/HLA-style multiple-sequence-alignment files into
// a canonical, reference-indexed sequence of alignment elements per
// allele.
//
// The parser is line-oriented and single-pass: a header block is skipped,
// then alternating position-declaration blocks feed a per-allele residue
// stream that is consumed character by character into the closed
// element.Element sum type (Start/End/Boundary/Sequence/Gap).
package msa

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hlatype/hlatype/internal/element"
)

// Result bundles a completed parse: the reference allele's name and
// elements, the alternates keyed by name, and any non-fatal diagnostics
// recorded along the way (spec.md §9 open questions a/b, plus dropped
// empty alternates).
type Result struct {
	ReferenceName     string
	ReferenceElements []element.Element
	Alternates        map[string][]element.Element
	Diagnostics       []Diagnostic

	// DNA is true for gDNA/cDNA position blocks, false for Prot blocks —
	// the same flag processResidue uses to pick a residue alphabet,
	// carried onto Result for callers that need to reconstruct a
	// allele's sequence with the right sequence.SequenceType.
	DNA bool
}

// alleleState is the transient per-allele parse state described in
// spec.md §3: an identity, the running position, the boundary counter,
// the elements accumulated so far (kept in ascending order directly,
// rather than reversed-then-flipped — an implementation-structure detail
// spec.md leaves open), and whether data is currently open.
type alleleState struct {
	name        string
	pos         int
	boundaryIdx int
	elements    []element.Element
	inData      bool
}

// lastElement returns a pointer to the most recently appended element, or
// nil if none.
func (s *alleleState) lastElement() *element.Element {
	if len(s.elements) == 0 {
		return nil
	}
	return &s.elements[len(s.elements)-1]
}

func (s *alleleState) append(e element.Element) {
	s.elements = append(s.elements, e)
}

// openData synthesizes a Start element if data is not already open,
// handling the boundary-adjacency special case from spec.md §4.1: when
// the immediately preceding element is a Boundary emitted one position
// behind where this Start would naturally land, the Start is inserted at
// the Boundary's own position, ahead of it, so the Boundary keeps its
// true position instead of appearing to follow data that started before
// it.
func (s *alleleState) openData(pos int) {
	if s.inData {
		return
	}
	if last := s.lastElement(); last != nil && last.Kind == element.Boundary && last.Pos == pos-1 {
		boundary := *last
		s.elements[len(s.elements)-1] = element.NewStart(boundary.Pos)
		s.elements = append(s.elements, boundary)
	} else {
		s.append(element.NewStart(pos))
	}
	s.inData = true
}

func (s *alleleState) closeData(pos int) {
	if !s.inData {
		return
	}
	s.append(element.NewEnd(pos))
	s.inData = false
}

func (s *alleleState) extendOrNewSequence(pos int, c byte) {
	if last := s.lastElement(); last != nil && last.Kind == element.Sequence && last.SpanEnd() == pos {
		last.Seq += string(c)
		return
	}
	s.append(element.NewSequence(pos, string(c)))
}

func (s *alleleState) extendOrNewGap(pos int) {
	if last := s.lastElement(); last != nil && last.Kind == element.Gap && last.SpanEnd() == pos {
		last.Length++
		return
	}
	s.append(element.NewGap(pos, 1))
}

const dnaAlphabet = "ACGT"
const proteinAlphabet = "ABCDEFGHIKLMNPQRSTVWY"

func validResidue(c byte, dna bool) bool {
	alphabet := proteinAlphabet
	if dna {
		alphabet = dnaAlphabet
	}
	return strings.IndexByte(alphabet, c) >= 0
}

// Parse reads an MSA file from r and produces a Result, or a *ParseError
// on the first fatal failure (invalid residue, `-` on the reference, `-`
// with no reference residue to copy, SeqData before any Position line,
// EOF before any Position line).
func Parse(r io.Reader) (*Result, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	states := make(map[string]*alleleState)
	order := []string{}
	referenceName := ""
	seenPosition := false
	dna := false
	curP := 0
	var diagnostics []Diagnostic

	inHeader := true

	getOrInit := func(name string) *alleleState {
		st, ok := states[name]
		if ok {
			return st
		}
		st = &alleleState{name: name, pos: curP - 1}
		states[name] = st
		order = append(order, name)
		return st
	}

	refCharAt := func(pos int) (byte, bool) {
		ref, ok := states[referenceName]
		if !ok {
			return 0, false
		}
		for _, e := range ref.elements {
			if e.Kind == element.Sequence && pos >= e.Pos && pos < e.SpanEnd() {
				return e.Seq[pos-e.Pos], true
			}
		}
		return 0, false
	}

	processResidue := func(st *alleleState, c byte, isReference bool) error {
		st.pos++
		pos := st.pos
		switch {
		case c == '|':
			st.append(element.NewBoundary(st.boundaryIdx, pos))
			st.boundaryIdx++
		case c == '*' || (!dna && c == 'X'):
			st.closeData(pos)
		case c == '.':
			st.extendOrNewGap(pos)
		case c == '-':
			if isReference {
				return &ParseError{Allele: st.name, Position: pos, Reason: "reference allele cannot use '-' (copy-from-reference)"}
			}
			st.openData(pos)
			refC, ok := refCharAt(pos)
			if !ok {
				return &ParseError{Allele: st.name, Position: pos, Reason: "copy-from-reference with no reference residue at this position"}
			}
			st.extendOrNewSequence(pos, refC)
		default:
			if !validResidue(c, dna) {
				return &ParseError{Allele: st.name, Position: pos, Reason: fmt.Sprintf("invalid residue character %q", c)}
			}
			st.openData(pos)
			st.extendOrNewSequence(pos, c)
		}
		return nil
	}

loop:
	for scanner.Scan() {
		raw := scanner.Text()
		if inHeader {
			if strings.TrimSpace(raw) == "" {
				inHeader = false
			}
			continue
		}

		cl := classifyLine(raw)
		switch cl.kind {
		case lineEmpty, lineDash:
			continue
		case lineEnd:
			break loop
		case linePosition:
			if ref, ok := states[referenceName]; ok && ref.pos+1 != cl.pos {
				diagnostics = append(diagnostics, Diagnostic{
					Kind: PositionDrift, Allele: referenceName, Position: cl.pos,
					Detail: fmt.Sprintf("declared position %d, reference counter at %d", cl.pos, ref.pos+1),
				})
			}
			seenPosition = true
			dna = cl.dna
			curP = cl.pos
		case lineSeqData:
			if !seenPosition {
				return nil, &ParseError{Position: 0, Reason: "SeqData line before any Position line"}
			}
			if referenceName == "" {
				referenceName = cl.allele
			}
			st := getOrInit(cl.allele)
			isReference := cl.allele == referenceName
			for i := 0; i < len(cl.tokens); i++ {
				if err := processResidue(st, cl.tokens[i], isReference); err != nil {
					return nil, err
				}
			}
		}
	}

	if !seenPosition {
		return nil, &ParseError{Reason: "end of file reached before any Position line"}
	}
	if referenceName == "" {
		return nil, &ParseError{Reason: "no reference allele found"}
	}

	for _, name := range order {
		st := states[name]
		if st.inData {
			st.append(element.NewEnd(st.pos + 1))
			st.inData = false
		}
	}

	refElems := states[referenceName].elements
	refEnd := 0
	for _, e := range refElems {
		if e.Kind == element.End {
			refEnd = e.Pos
		}
	}

	alternates := make(map[string][]element.Element)
	for _, name := range order {
		if name == referenceName {
			continue
		}
		st := states[name]
		if len(st.elements) == 0 {
			diagnostics = append(diagnostics, Diagnostic{Kind: DroppedEmptyAllele, Allele: name})
			continue
		}
		for _, e := range st.elements {
			if e.Kind == element.Sequence && e.SpanEnd() > refEnd {
				diagnostics = append(diagnostics, Diagnostic{
					Kind: AlleleExtendsPastReferenceEnd, Allele: name, Position: e.SpanEnd(),
					Detail: fmt.Sprintf("extends past reference End(%d)", refEnd),
				})
				break
			}
		}
		alternates[name] = st.elements
	}

	return &Result{
		ReferenceName:     referenceName,
		ReferenceElements: refElems,
		Alternates:        alternates,
		Diagnostics:       diagnostics,
		DNA:               dna,
	}, nil
}
