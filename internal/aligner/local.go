package aligner

import (
	"github.com/hlatype/hlatype/internal/aligngroup"
	"github.com/hlatype/hlatype/internal/allelegraph"
)

// localStatus reports how a local alignment run against one sequence
// node ended relative to the read, per spec.md §4.3.
type localStatus int

const (
	// localFinished means the read was exhausted first, or read and node
	// ended together.
	localFinished localStatus = iota
	// localGoOn means the node was exhausted with read remaining.
	localGoOn
)

// localAlign walks read[readCursor:] against node.Seq[nodeOffset:] base by
// base, folding one Incr per compared position — v=1 on a mismatch, v=0
// on a match — into acc via grp. Incr's pos argument is always the read
// offset at which the comparison occurred, not the reference position;
// this keeps PhredLikelihood's per-base error-probability lookup (indexed
// by read offset) meaningful, and is a no-op weight for the count-based
// groups on a match.
func localAlign[A any, S any](read []byte, readCursor int, node *allelegraph.Node, nodeOffset int, grp aligngroup.Group[A, S]) (localStatus, A, int) {
	acc := grp.Zero()
	i := 0
	for readCursor+i < len(read) && nodeOffset+i < len(node.Seq) {
		v := 0
		if read[readCursor+i] != node.Seq[nodeOffset+i] {
			v = 1
		}
		acc = grp.Incr(readCursor+i, v, acc)
		i++
	}
	newCursor := readCursor + i
	if newCursor >= len(read) {
		return localFinished, acc, newCursor
	}
	return localGoOn, acc, newCursor
}
