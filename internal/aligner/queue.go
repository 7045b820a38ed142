package aligner

import (
	"container/heap"

	"github.com/hlatype/hlatype/internal/allele"
	"github.com/hlatype/hlatype/internal/allelegraph"
)

// queueEntry is one node's merged frontier: every (readCursor, alleleSet)
// pair currently waiting to be processed at that node.
type queueEntry struct {
	node     *allelegraph.Node
	frontier map[int]allele.Set
}

// frontierQueue is the traversal queue spec.md §4.3 describes: nodes
// ordered by (position, kind), with same-position entries popped and
// processed together as a batch. Built on container/heap — the pack
// carries no third-party priority-queue library, so the stdlib heap is
// the grounded choice here (see SPEC_FULL.md).
type frontierQueue struct {
	nodes  []*allelegraph.Node
	byNode map[*allelegraph.Node]map[int]allele.Set
}

func newFrontierQueue() *frontierQueue {
	return &frontierQueue{byNode: make(map[*allelegraph.Node]map[int]allele.Set)}
}

func (q *frontierQueue) Len() int { return len(q.nodes) }
func (q *frontierQueue) Less(i, j int) bool {
	return q.nodes[i].Less(q.nodes[j])
}
func (q *frontierQueue) Swap(i, j int) { q.nodes[i], q.nodes[j] = q.nodes[j], q.nodes[i] }

func (q *frontierQueue) Push(x any) { q.nodes = append(q.nodes, x.(*allelegraph.Node)) }

func (q *frontierQueue) Pop() any {
	old := q.nodes
	n := len(old)
	item := old[n-1]
	q.nodes = old[:n-1]
	return item
}

// push merges (cursor, set) into node's pending frontier, adding node to
// the heap the first time it is seen. An empty set contributes nothing.
func (q *frontierQueue) push(node *allelegraph.Node, cursor int, set allele.Set) {
	if set.IsEmpty() {
		return
	}
	m, ok := q.byNode[node]
	if !ok {
		m = make(map[int]allele.Set)
		q.byNode[node] = m
		heap.Push(q, node)
	}
	if existing, ok := m[cursor]; ok {
		m[cursor] = existing.Union(set)
	} else {
		m[cursor] = set
	}
}

// popMinBatch removes and returns every queued node at the current
// minimum position, so the caller processes one whole position at a
// time regardless of how many distinct node kinds share it.
func (q *frontierQueue) popMinBatch() []queueEntry {
	if q.Len() == 0 {
		return nil
	}
	minPos := q.nodes[0].Pos
	var batch []queueEntry
	for q.Len() > 0 && q.nodes[0].Pos == minPos {
		node := heap.Pop(q).(*allelegraph.Node)
		frontier := q.byNode[node]
		delete(q.byNode, node)
		batch = append(batch, queueEntry{node: node, frontier: frontier})
	}
	return batch
}
