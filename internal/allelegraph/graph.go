// Package allelegraph implements the minimal allele DAG behind spec.md
// §3/§6's Graph interface (adjacentsAt, successors): a start sentinel, an
// end sentinel, boundary nodes, and sequence nodes, connected by edges
// labeled with an allele.Set. This is the "external" graph-construction
// collaborator spec.md scopes out of the core, built here so
// internal/aligner has a real graph to run against rather than a mock —
// see SPEC_FULL.md.
//
// Built on gonum.org/v1/gonum/graph/simple, grounded on the gonum usage in
// kortschak-loopy's cmd/press.
package allelegraph

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/hlatype/hlatype/internal/allele"
)

// Edge augments a gonum simple.Edge with the allele-set label spec.md §3
// requires: "traversing from u to v is valid for exactly those alleles
// whose bit is set."
type Edge struct {
	F, T  *Node
	Label allele.Set
}

func (e Edge) From() graph.Node { return e.F }
func (e Edge) To() graph.Node   { return e.T }
func (e Edge) ReversedEdge() graph.Edge {
	return Edge{F: e.T, T: e.F, Label: e.Label}
}

// FrontierEntry is one (edge, node) pair in an adjacentsAt seed frontier.
type FrontierEntry struct {
	Edge Edge
	Node *Node
}

// Graph is the aligner-facing view described in spec.md §3.
type Graph struct {
	g           *simple.DirectedGraph
	start, end  *Node
	nodes       []*Node // all nodes except start/end, sorted by (Pos, Kind)
	alleleCount int
}

// Start and End return the graph's sentinel nodes.
func (gr *Graph) Start() *Node { return gr.start }
func (gr *Graph) End() *Node   { return gr.end }

// AlleleCount returns the size of the allele index this graph's edge
// labels are sized against.
func (gr *Graph) AlleleCount() int { return gr.alleleCount }

// Nodes returns every boundary and sequence node in the graph, sorted by
// (Pos, Kind). Start and End are omitted, matching AdjacentsAt.
func (gr *Graph) Nodes() []*Node {
	out := make([]*Node, len(gr.nodes))
	copy(out, gr.nodes)
	return out
}

// Successors returns, for a node, the outgoing (edge, successor) pairs —
// spec.md §6's "Graph.successors(node) -> iterable of (edge,
// successorNode) via fold".
func (gr *Graph) Successors(n *Node) []Edge {
	it := gr.g.From(n.ID())
	var out []Edge
	for it.Next() {
		succ := it.Node().(*Node)
		e := gr.g.Edge(n.ID(), succ.ID())
		if ae, ok := e.(Edge); ok {
			out = append(out, ae)
		}
	}
	return out
}

// AdjacentsAt returns the seed frontier for a reference position: every
// (edge, node) pair whose destination node's span contains pos, plus the
// union of allele bits represented in that frontier (spec.md §3's
// "Adjacents-at(pos)... union of allele bits actually present"). The
// bookkeeping spec.md mentions but the core doesn't use is omitted.
func (gr *Graph) AdjacentsAt(pos int) ([]FrontierEntry, allele.Set, error) {
	seen := allele.NewSet(gr.alleleCount)
	var frontier []FrontierEntry

	for _, n := range gr.nodes {
		lo, hi := n.Pos, n.End()
		if n.Kind != KindSequence {
			// sentinels/boundaries occupy a single position
			hi = n.Pos + 1
		}
		if pos < lo || pos >= hi {
			continue
		}
		preds := gr.g.To(n.ID())
		for preds.Next() {
			pred := preds.Node().(*Node)
			e := gr.g.Edge(pred.ID(), n.ID())
			ae, ok := e.(Edge)
			if !ok {
				continue
			}
			frontier = append(frontier, FrontierEntry{Edge: ae, Node: n})
			seen = seen.Union(ae.Label)
		}
	}
	return frontier, seen, nil
}

// CheckAcyclic verifies spec.md §9's invariant that the graph is a DAG in
// reference position (every successor's position is >= its predecessor's)
// using gonum's topological sort, which fails iff the graph has a cycle.
func (gr *Graph) CheckAcyclic() error {
	if _, err := topo.Sort(gr.g); err != nil {
		return fmt.Errorf("allelegraph: graph is not acyclic: %w", err)
	}
	for _, n := range gr.nodes {
		it := gr.g.To(n.ID())
		for it.Next() {
			pred := it.Node().(*Node)
			if pred.Kind != KindStart && pred.Pos > n.Pos {
				return fmt.Errorf("allelegraph: node %v has predecessor %v at a later position", n, pred)
			}
		}
	}
	return nil
}

func sortNodes(nodes []*Node) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Less(nodes[j]) })
}
