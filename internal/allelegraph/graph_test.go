package allelegraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlatype/hlatype/internal/element"
)

func TestBuildSharesIdenticalSequenceNodes(t *testing.T) {
	b := NewBuilder(2)
	refElems := []element.Element{
		element.NewStart(0),
		element.NewSequence(0, "ACGT"),
		element.NewEnd(4),
	}
	altElems := []element.Element{
		element.NewStart(0),
		element.NewSequence(0, "ACGT"),
		element.NewEnd(4),
	}
	require.NoError(t, b.AddAllele(0, refElems))
	require.NoError(t, b.AddAllele(1, altElems))

	g := b.Build()
	require.NoError(t, g.CheckAcyclic())

	frontier, seen, err := g.AdjacentsAt(0)
	require.NoError(t, err)
	require.Len(t, frontier, 1, "identical sequences should share one node")
	assert.Equal(t, 2, seen.Cardinality())
}

func TestBuildDivergingEdgesCarryDistinctLabels(t *testing.T) {
	b := NewBuilder(2)
	aElems := []element.Element{element.NewStart(0), element.NewSequence(0, "AAAA"), element.NewEnd(4)}
	bElems := []element.Element{element.NewStart(0), element.NewSequence(0, "TTTT"), element.NewEnd(4)}
	require.NoError(t, b.AddAllele(0, aElems))
	require.NoError(t, b.AddAllele(1, bElems))

	g := b.Build()
	frontier, seen, err := g.AdjacentsAt(0)
	require.NoError(t, err)
	require.Len(t, frontier, 2)
	assert.Equal(t, 2, seen.Cardinality())

	for _, f := range frontier {
		assert.Equal(t, 1, f.Edge.Label.Cardinality())
	}
}

func TestSuccessors(t *testing.T) {
	b := NewBuilder(1)
	elems := []element.Element{
		element.NewStart(0),
		element.NewBoundary(0, 0),
		element.NewSequence(1, "AC"),
		element.NewEnd(3),
	}
	require.NoError(t, b.AddAllele(0, elems))
	g := b.Build()

	succ := g.Successors(g.Start())
	require.Len(t, succ, 1)
	assert.Equal(t, KindBoundary, succ[0].T.Kind)

	succ2 := g.Successors(succ[0].T)
	require.Len(t, succ2, 1)
	assert.Equal(t, KindSequence, succ2[0].T.Kind)
}
