// Package aligner implements spec.md §4.3's ReadAligner: a single read is
// seeded onto an allelegraph.Graph at an anchor reference position, then
// traversed node by node in position order, folding every comparison
// into an AlignmentGroup accumulator per allele, with an early-stop
// predicate checked after each batch of work.
//
// The traversal is generic over aligngroup.Group[A, S] so it
// monomorphizes into MismatchCount-, MismatchList-, or
// PhredLikelihood-flavored alignment at each call site rather than
// dispatching through a shared interface at runtime (spec.md §9).
package aligner

import (
	"fmt"

	"github.com/hlatype/hlatype/internal/aligngroup"
	"github.com/hlatype/hlatype/internal/allele"
	"github.com/hlatype/hlatype/internal/allelegraph"
)

// Align runs one read against gr, seeded at anchorPos, accumulating a
// per-allele score under grp. It returns StatusStopped, with whatever
// partial scores were committed before the stop fired, if grp's
// early-stop predicate trips; otherwise StatusFinished once every live
// allele has either finished its alignment or been charged an
// end-of-read penalty.
func Align[A any, S any](gr *allelegraph.Graph, grp aligngroup.Group[A, S], read []byte, anchorPos int) (Status, allele.Map[A], error) {
	n := gr.AlleleCount()
	result := allele.NewMap(n, grp.Zero())
	stop := grp.InitStop()

	commit := func(set allele.Set, acc A) {
		if set.IsEmpty() {
			return
		}
		result.UpdateBySet(set, func(v A) A { return grp.Merge(v, acc) })
		stop = grp.UpdateStop(stop, acc)
	}

	frontier, seenAlleles, err := gr.AdjacentsAt(anchorPos)
	if err != nil {
		return StatusStopped, result, fmt.Errorf("aligner: seeding at %d: %w", anchorPos, err)
	}

	// Alleles the graph doesn't even represent at anchorPos are penalized
	// immediately with a full-read-length mismatch, per spec.md §4.3 and
	// the open-question note in SPEC_FULL.md: this over-penalizes alleles
	// that are simply absent from this local region of the graph, and is
	// kept as specified rather than "fixed".
	if complement := seenAlleles.Complement(); !complement.IsEmpty() {
		commit(complement, grp.Incr(0, len(read), grp.Zero()))
	}

	q := newFrontierQueue()
	seedFrontier(q, gr, grp, frontier, read, anchorPos, commit)

	if grp.Stop(stop) {
		return StatusStopped, result, nil
	}

	for q.Len() > 0 {
		batch := q.popMinBatch()
		for _, qe := range batch {
			processNode(gr, qe, read, grp, q, commit)
		}
		if grp.Stop(stop) {
			return StatusStopped, result, nil
		}
	}
	return StatusFinished, result, nil
}

// seedFrontier handles spec.md §4.3's three seeding cases, keyed on the
// signed distance between a seed node's position and the anchor:
//
//   - dist <= 0: the anchor already falls inside the node. Locally align
//     the whole read against the node starting at offset -dist.
//   - 0 < dist < len(read): the anchor falls strictly before the node.
//     Charge the unaligned prefix (incr(pos=0, v=dist)), then locally
//     align the remaining read against the node from its own start.
//   - dist >= len(read): the node lies entirely beyond the read. Charge
//     a full-read-length penalty and go no further for this edge.
func seedFrontier[A any, S any](q *frontierQueue, gr *allelegraph.Graph, grp aligngroup.Group[A, S], frontier []allelegraph.FrontierEntry, read []byte, anchorPos int, commit func(allele.Set, A)) {
	for _, fe := range frontier {
		dist := fe.Node.Pos - anchorPos
		set := fe.Edge.Label

		switch {
		case dist <= 0:
			status, acc, newCursor := localAlign(read, 0, fe.Node, -dist, grp)
			settleSeed(q, gr, fe.Node, set, status, acc, newCursor, commit)
		case dist < len(read):
			pre := grp.Incr(0, dist, grp.Zero())
			status, acc, newCursor := localAlign(read, dist, fe.Node, 0, grp)
			settleSeed(q, gr, fe.Node, set, status, grp.Merge(pre, acc), newCursor, commit)
		default:
			commit(set, grp.Incr(0, len(read), grp.Zero()))
		}
	}
}

// settleSeed commits a seed alignment's accumulator and, if the node
// wasn't enough to exhaust the read, enqueues the node's successors.
func settleSeed[A any](q *frontierQueue, gr *allelegraph.Graph, node *allelegraph.Node, set allele.Set, status localStatus, acc A, newCursor int, commit func(allele.Set, A)) {
	commit(set, acc)
	if status == localGoOn {
		enqueueSuccessors(q, gr, node, set, newCursor)
	}
}

// enqueueSuccessors pushes node's successors onto q, restricting the
// traveling allele set to each edge's own label (spec.md §3: "traversing
// from u to v is valid for exactly those alleles whose bit is set").
// Successors an allele set has no edge to carry it onto are dropped.
func enqueueSuccessors(q *frontierQueue, gr *allelegraph.Graph, node *allelegraph.Node, set allele.Set, cursor int) {
	for _, succ := range gr.Successors(node) {
		travel := succ.Label.Intersect(set)
		if travel.IsEmpty() {
			continue
		}
		q.push(succ.T, cursor, travel)
	}
}

// processNode handles one node popped from the queue, dispatching on its
// kind per spec.md §4.3:
//
//   - Start should never reappear once traversal has begun.
//   - Boundary propagates every (cursor, set) pair unchanged onto its
//     successors.
//   - End charges the remaining read length as a mismatch penalty and
//     terminates that path.
//   - Sequence locally aligns each (cursor, set) pair against the node;
//     on GoOn, the partial accumulator is committed and traversal
//     continues onto the node's successors with the new cursor.
func processNode[A any, S any](gr *allelegraph.Graph, qe queueEntry, read []byte, grp aligngroup.Group[A, S], q *frontierQueue, commit func(allele.Set, A)) {
	switch qe.node.Kind {
	case allelegraph.KindStart:
		panic("aligner: Start node re-entered the traversal queue")

	case allelegraph.KindBoundary:
		for cursor, set := range qe.frontier {
			enqueueSuccessors(q, gr, qe.node, set, cursor)
		}

	case allelegraph.KindEnd:
		for cursor, set := range qe.frontier {
			remaining := len(read) - cursor
			if remaining < 0 {
				remaining = 0
			}
			commit(set, grp.Incr(cursor, remaining, grp.Zero()))
		}

	case allelegraph.KindSequence:
		for cursor, set := range qe.frontier {
			status, acc, newCursor := localAlign(read, cursor, qe.node, 0, grp)
			commit(set, acc)
			if status == localGoOn {
				enqueueSuccessors(q, gr, qe.node, set, newCursor)
			}
		}

	default:
		panic(fmt.Sprintf("aligner: unknown node kind %v", qe.node.Kind))
	}
}
