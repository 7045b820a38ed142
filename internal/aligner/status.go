package aligner

// Status reports how a single read's traversal ended: it either ran to
// completion (every live allele either finished or was charged a
// penalty), or the AlignmentGroup's early-stop predicate fired before the
// frontier drained (spec.md §4.3's "early stop").
type Status int

const (
	StatusFinished Status = iota
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusFinished:
		return "finished"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
