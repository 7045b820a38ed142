package allelegraph

import (
	"fmt"

	"gonum.org/v1/gonum/graph/simple"

	"github.com/hlatype/hlatype/internal/allele"
	"github.com/hlatype/hlatype/internal/element"
)

// Builder assembles a Graph from per-allele element.Element lists, sharing
// boundary and identical sequence nodes across alleles the way a real
// graph-construction layer would (spec.md §1 names this an external
// collaborator; this is a minimal, testable stand-in — see SPEC_FULL.md).
type Builder struct {
	g           *simple.DirectedGraph
	nextID      int64
	start, end  *Node
	boundaries  map[[2]int]*Node
	sequences   map[string]*Node
	edgeLabels  map[[2]int64]allele.Set
	alleleCount int
}

// NewBuilder starts a Builder for a graph whose edge labels are sized for
// alleleCount alleles.
func NewBuilder(alleleCount int) *Builder {
	b := &Builder{
		g:           simple.NewDirectedGraph(),
		boundaries:  make(map[[2]int]*Node),
		sequences:   make(map[string]*Node),
		edgeLabels:  make(map[[2]int64]allele.Set),
		alleleCount: alleleCount,
	}
	b.start = b.newNode(KindStart, 0, "")
	b.end = b.newNode(KindEnd, 0, "")
	return b
}

func (b *Builder) newNode(kind Kind, pos int, seq string) *Node {
	n := &Node{id: b.nextID, Kind: kind, Pos: pos, Seq: seq}
	b.nextID++
	b.g.AddNode(n)
	return n
}

func (b *Builder) boundaryNode(idx, pos int) *Node {
	key := [2]int{idx, pos}
	if n, ok := b.boundaries[key]; ok {
		return n
	}
	n := b.newNode(KindBoundary, pos, "")
	b.boundaries[key] = n
	return n
}

func (b *Builder) sequenceNode(pos int, seq string) *Node {
	key := fmt.Sprintf("%d:%s", pos, seq)
	if n, ok := b.sequences[key]; ok {
		return n
	}
	n := b.newNode(KindSequence, pos, seq)
	b.sequences[key] = n
	return n
}

func (b *Builder) addEdge(from, to *Node, alleleIdx int) {
	key := [2]int64{from.ID(), to.ID()}
	label, ok := b.edgeLabels[key]
	if !ok {
		label = allele.NewSet(b.alleleCount)
	}
	label.Add(alleleIdx)
	b.edgeLabels[key] = label
	b.g.SetEdge(Edge{F: from, T: to, Label: label})
}

// AddAllele walks one allele's parsed, ascending-order element list
// (spec.md §3/§4.1's output) and wires it into the shared graph, sharing
// boundary and identical-sequence nodes with alleles already added.
// Elements must start with Start and end with End, per spec.md §3
// invariant 2.
func (b *Builder) AddAllele(alleleIdx int, elements []element.Element) error {
	prev := b.start
	for _, e := range elements {
		var node *Node
		switch e.Kind {
		case element.Start:
			prev = b.start
			continue
		case element.End:
			node = b.end
		case element.Boundary:
			node = b.boundaryNode(e.BoundaryIdx, e.Pos)
		case element.Sequence:
			node = b.sequenceNode(e.Pos, e.Seq)
		case element.Gap:
			continue // gaps carry no graph node; edges route around them
		default:
			return fmt.Errorf("allelegraph: unknown element kind %v", e.Kind)
		}
		if node != prev {
			b.addEdge(prev, node, alleleIdx)
			prev = node
		}
	}
	if prev != b.end {
		b.addEdge(prev, b.end, alleleIdx)
	}
	return nil
}

// Build finalizes the Graph.
func (b *Builder) Build() *Graph {
	nodes := make([]*Node, 0, len(b.boundaries)+len(b.sequences))
	for _, n := range b.boundaries {
		nodes = append(nodes, n)
	}
	for _, n := range b.sequences {
		nodes = append(nodes, n)
	}
	sortNodes(nodes)
	return &Graph{
		g:           b.g,
		start:       b.start,
		end:         b.end,
		nodes:       nodes,
		alleleCount: b.alleleCount,
	}
}
