package allele

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIndex(t *testing.T) {
	idx := NewIndex([]string{"A*01:01", "A*02:01", "A*01:01", "B*07:02"})
	require.Equal(t, 3, idx.Size())

	i, ok := idx.IndexOf("A*02:01")
	require.True(t, ok)
	assert.Equal(t, "A*02:01", idx.NameAt(i))

	_, ok = idx.IndexOf("missing")
	assert.False(t, ok)
}

func TestSetBasics(t *testing.T) {
	s := NewSet(130) // exercises the multi-word + partial tail path
	assert.True(t, s.IsEmpty())

	s.Add(0)
	s.Add(63)
	s.Add(64)
	s.Add(129)
	assert.False(t, s.IsEmpty())
	assert.Equal(t, 4, s.Cardinality())
	assert.ElementsMatch(t, []int{0, 63, 64, 129}, s.Indices())

	s.Remove(64)
	assert.Equal(t, 3, s.Cardinality())
	assert.False(t, s.Has(64))
	assert.True(t, s.Has(129))
}

func TestSetUnionIntersectComplement(t *testing.T) {
	a := SetFromIndices(10, 0, 1, 2)
	b := SetFromIndices(10, 2, 3, 4)

	u := a.Union(b)
	assert.ElementsMatch(t, []int{0, 1, 2, 3, 4}, u.Indices())

	i := a.Intersect(b)
	assert.ElementsMatch(t, []int{2}, i.Indices())

	c := a.Complement()
	assert.ElementsMatch(t, []int{3, 4, 5, 6, 7, 8, 9}, c.Indices())

	// complement is masked: no stray bits beyond n
	assert.Equal(t, 7, c.Cardinality())
}

func TestSetCloneIndependence(t *testing.T) {
	a := SetFromIndices(5, 1, 2)
	b := a.Clone()
	b.Add(4)
	assert.False(t, a.Has(4))
	assert.True(t, b.Has(4))
}

func TestMapFoldAndUpdate(t *testing.T) {
	m := NewMap(4, 0)
	m.Set(0, 10)
	m.Set(1, 20)
	m.Set(2, 30)
	m.Set(3, 40)

	sum := Fold(m, 0, func(acc, _ int, v int) int { return acc + v })
	assert.Equal(t, 100, sum)

	sq := MapValues(m, 0, func(_ int, v int) int { return v * v })
	assert.Equal(t, 900, sq.Get(2))

	sel := SetFromIndices(4, 1, 3)
	m.UpdateBySet(sel, func(v int) int { return v + 1 })
	assert.Equal(t, []int{10, 21, 30, 41}, []int{m.Get(0), m.Get(1), m.Get(2), m.Get(3)})

	other := NewMap(4, 0)
	other.Set(0, 1)
	other.Set(1, 1)
	m.UpdateFrom(other, func(dst, src int) int { return dst + src })
	assert.Equal(t, 11, m.Get(0))
	assert.Equal(t, 22, m.Get(1))
}
