// Package element defines the alignment-element tagged variant that an MSA
// parse produces per allele: a position-ordered sequence of Start, End,
// Boundary, Sequence, and Gap markers in the shared reference coordinate
// system.
package element

import "fmt"

// Kind tags the variant held by an Element.
type Kind int

const (
	// Start marks where an allele's sequence begins.
	Start Kind = iota
	// End marks where an allele's sequence ends (strictly before Pos).
	End
	// Boundary marks a UTR/exon/intron segment divider.
	Boundary
	// Sequence carries a contiguous run of residues beginning at Pos.
	Sequence
	// Gap marks a run of reference positions with no allele residue.
	Gap
)

func (k Kind) String() string {
	switch k {
	case Start:
		return "Start"
	case End:
		return "End"
	case Boundary:
		return "Boundary"
	case Sequence:
		return "Sequence"
	case Gap:
		return "Gap"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Element is a closed sum type over the five alignment-element variants.
// Only the fields relevant to Kind are meaningful; callers should switch on
// Kind and use the matching accessors.
type Element struct {
	Kind Kind

	// Pos is the reference position. For Start/End/Boundary/Sequence/Gap it
	// is the position the variant refers to (see field docs on the
	// constructors below for exact semantics).
	Pos int

	// BoundaryIdx is meaningful only for Kind == Boundary: the 0-based
	// index of this segment marker within its allele.
	BoundaryIdx int

	// Seq is meaningful only for Kind == Sequence: the residue string,
	// beginning at Pos.
	Seq string

	// Length is meaningful only for Kind == Gap: the number of reference
	// positions the gap spans, beginning at Pos.
	Length int
}

// NewStart returns a Start(pos) element.
func NewStart(pos int) Element { return Element{Kind: Start, Pos: pos} }

// NewEnd returns an End(pos) element: the allele's sequence ends strictly
// before pos.
func NewEnd(pos int) Element { return Element{Kind: End, Pos: pos} }

// NewBoundary returns a Boundary(idx, pos) element.
func NewBoundary(idx, pos int) Element {
	return Element{Kind: Boundary, Pos: pos, BoundaryIdx: idx}
}

// NewSequence returns a Sequence(start, s) element.
func NewSequence(start int, s string) Element {
	return Element{Kind: Sequence, Pos: start, Seq: s}
}

// NewGap returns a Gap(start, length) element.
func NewGap(start, length int) Element {
	return Element{Kind: Gap, Pos: start, Length: length}
}

// SpanEnd returns the position strictly after this element's span: for
// Sequence and Gap, Pos+len(residues); for Start/End/Boundary, Pos itself
// (they have no span).
func (e Element) SpanEnd() int {
	switch e.Kind {
	case Sequence:
		return e.Pos + len(e.Seq)
	case Gap:
		return e.Pos + e.Length
	default:
		return e.Pos
	}
}

func (e Element) String() string {
	switch e.Kind {
	case Start:
		return fmt.Sprintf("Start(%d)", e.Pos)
	case End:
		return fmt.Sprintf("End(%d)", e.Pos)
	case Boundary:
		return fmt.Sprintf("Boundary(%d,%d)", e.BoundaryIdx, e.Pos)
	case Sequence:
		return fmt.Sprintf("Sequence(%d,%q)", e.Pos, e.Seq)
	case Gap:
		return fmt.Sprintf("Gap(%d,%d)", e.Pos, e.Length)
	default:
		return "Element(?)"
	}
}
