// Package kmerindex builds the anchor-position index spec.md §6
// describes as Index.lookup(read) -> list of anchor positions: a map
// from every k-mer occurring in the allele graph's sequence nodes to the
// reference positions it occurs at, used to seed internal/aligner.Align
// without scanning the whole graph per read.
//
// Adapted from internal/kmer.Counter's map[string]int counting shape,
// generalized from counts to position lists.
package kmerindex

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"strings"

	"github.com/hlatype/hlatype/internal/allelegraph"
)

// Index maps a k-mer to every reference position it occurs at across a
// graph's sequence nodes.
type Index struct {
	k         int
	positions map[string][]int
}

// NewIndex starts an empty Index for k-mers of length k.
func NewIndex(k int) (*Index, error) {
	if k <= 0 {
		return nil, fmt.Errorf("kmerindex: k must be positive, got %d", k)
	}
	return &Index{k: k, positions: make(map[string][]int)}, nil
}

// K returns the index's k-mer length.
func (idx *Index) K() int { return idx.k }

// Build populates idx from every sequence node in gr, recording each
// k-mer's reference position as node.Pos plus its offset within the
// node's sequence.
func Build(gr *allelegraph.Graph, k int) (*Index, error) {
	idx, err := NewIndex(k)
	if err != nil {
		return nil, err
	}
	for _, n := range gr.Nodes() {
		if n.Kind != allelegraph.KindSequence {
			continue
		}
		idx.addSequence(n.Pos, n.Seq)
	}
	return idx, nil
}

func (idx *Index) addSequence(pos int, seq string) {
	seq = strings.ToUpper(seq)
	for i := 0; i+idx.k <= len(seq); i++ {
		kmer := seq[i : i+idx.k]
		if strings.ContainsRune(kmer, 'N') {
			continue
		}
		refPos := pos + i
		idx.positions[kmer] = append(idx.positions[kmer], refPos)
	}
}

// Lookup scans read for every k-mer it shares with the index and
// translates each hit's reference position back to a candidate anchor —
// the reference position that would align with read offset 0 — by
// subtracting the read offset the k-mer was found at. The result is the
// sorted, deduplicated set of candidate anchors; an empty, non-error
// result means no shared k-mer was found, which is a normal outcome, not
// a failure.
func (idx *Index) Lookup(read []byte) ([]int, error) {
	if idx.k <= 0 {
		return nil, fmt.Errorf("kmerindex: index has no k configured")
	}
	seen := make(map[int]struct{})
	for readOff := 0; readOff+idx.k <= len(read); readOff++ {
		kmer := strings.ToUpper(string(read[readOff : readOff+idx.k]))
		for _, refPos := range idx.positions[kmer] {
			seen[refPos-readOff] = struct{}{}
		}
	}
	out := make([]int, 0, len(seen))
	for anchor := range seen {
		out = append(out, anchor)
	}
	sort.Ints(out)
	return out, nil
}

// Len returns the number of distinct k-mers indexed.
func (idx *Index) Len() int { return len(idx.positions) }

// gobSnapshot mirrors Index's fields under exported names so
// encoding/gob — which only encodes exported fields — can round-trip an
// Index through internal/cache.
type gobSnapshot struct {
	K         int
	Positions map[string][]int
}

// GobEncode implements gob.GobEncoder, since Index's own fields are
// unexported.
func (idx *Index) GobEncode() ([]byte, error) {
	var buf bytes.Buffer
	err := gob.NewEncoder(&buf).Encode(gobSnapshot{K: idx.k, Positions: idx.positions})
	return buf.Bytes(), err
}

// GobDecode implements gob.GobDecoder.
func (idx *Index) GobDecode(data []byte) error {
	var snap gobSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return err
	}
	idx.k = snap.K
	idx.positions = snap.Positions
	return nil
}
