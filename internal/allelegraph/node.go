package allelegraph

import "fmt"

// Kind tags the four node variants the aligner sees, per spec.md §3: S
// (start sentinel), E (end sentinel), B(pos) (boundary), N(pos, seq)
// (sequence).
type Kind int

const (
	KindStart Kind = iota
	KindEnd
	KindBoundary
	KindSequence
)

func (k Kind) String() string {
	switch k {
	case KindStart:
		return "S"
	case KindEnd:
		return "E"
	case KindBoundary:
		return "B"
	case KindSequence:
		return "N"
	default:
		return "?"
	}
}

// Node implements gonum/graph.Node (via ID) plus the ordering spec.md §3
// requires: compares by reference position first, then by kind tag.
type Node struct {
	id   int64
	Kind Kind
	Pos  int
	Seq  string // meaningful only for KindSequence
}

// ID satisfies gonum/graph.Node.
func (n *Node) ID() int64 { return n.id }

// End returns the reference position strictly after this node's span:
// Pos+len(Seq) for sequence nodes, Pos for sentinels/boundaries.
func (n *Node) End() int {
	if n.Kind == KindSequence {
		return n.Pos + len(n.Seq)
	}
	return n.Pos
}

// Less implements the total order spec.md §3 describes: position first,
// then kind, as a stable tiebreak for the priority queue.
func (n *Node) Less(other *Node) bool {
	if n.Pos != other.Pos {
		return n.Pos < other.Pos
	}
	return n.Kind < other.Kind
}

func (n *Node) String() string {
	switch n.Kind {
	case KindBoundary:
		return fmt.Sprintf("B(%d)", n.Pos)
	case KindSequence:
		return fmt.Sprintf("N(%d,%q)", n.Pos, n.Seq)
	default:
		return n.Kind.String()
	}
}
