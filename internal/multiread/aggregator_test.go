package multiread

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlatype/hlatype/internal/aligngroup"
	"github.com/hlatype/hlatype/internal/allele"
)

func intMap(values ...int) allele.Map[int] {
	m := allele.NewMap(len(values), 0)
	for i, v := range values {
		m.Set(i, v)
	}
	return m
}

func TestAggregatorSumInts(t *testing.T) {
	agg := NewAggregator(2, 0, SumInts)
	agg.Add(intMap(1, 2))
	agg.Add(intMap(3, 4))

	total, errs := agg.Result()
	assert.Empty(t, errs)
	assert.Equal(t, 2, agg.ReadCount())
	assert.Equal(t, 4, total.Get(0))
	assert.Equal(t, 6, total.Get(1))
}

func TestAggregatorCollectsErrorsAndContinues(t *testing.T) {
	agg := NewAggregator(1, 0, SumInts)
	agg.Add(intMap(5))
	agg.AddError(AdapterError{Stage: "ToThread", Reason: "worker panicked"})
	agg.Add(intMap(2))
	agg.AddError(OtherError{Reason: "truncated FASTQ record"})

	total, errs := agg.Result()
	require.Len(t, errs, 2)
	assert.Equal(t, 7, total.Get(0))
	assert.Equal(t, 2, agg.ReadCount())

	var adapterErr AdapterError
	require.True(t, errors.As(errs[0], &adapterErr))
	assert.Equal(t, "ToThread", adapterErr.Stage)
}

func TestAggregatorConcatPosCounts(t *testing.T) {
	agg := NewAggregator(1, []aligngroup.PosCount(nil), ConcatPosCounts[aligngroup.PosCount])
	agg.Add(allele.NewMap(1, []aligngroup.PosCount{{Pos: 3, Count: 1}}))
	agg.Add(allele.NewMap(1, []aligngroup.PosCount{{Pos: 7, Count: 2}}))

	total, _ := agg.Result()
	assert.Len(t, total.Get(0), 2)
}

func TestAggregatorMultiplyLikelihoods(t *testing.T) {
	agg := NewAggregator(1, 1.0, MultiplyFloats)

	read1 := intMap(1)
	read2 := intMap(2)
	agg.Add(MismatchCountsToLikelihood(read1, 100, 0.01, aligngroup.DefaultAlphabetSize))
	agg.Add(MismatchCountsToLikelihood(read2, 100, 0.01, aligngroup.DefaultAlphabetSize))

	total, _ := agg.Result()
	want := math.Exp(aligngroup.LogLikelihood(0.01, 100, 1, aligngroup.DefaultAlphabetSize)) *
		math.Exp(aligngroup.LogLikelihood(0.01, 100, 2, aligngroup.DefaultAlphabetSize))
	assert.InDelta(t, want, total.Get(0), 1e-9)
}

func TestAggregatorAddLogLikelihoods(t *testing.T) {
	agg := NewAggregator(1, 0.0, AddFloats)

	agg.Add(MismatchCountsToLogLikelihood(intMap(1), 100, 0.01, aligngroup.DefaultAlphabetSize))
	agg.Add(MismatchCountsToLogLikelihood(intMap(2), 100, 0.01, aligngroup.DefaultAlphabetSize))

	total, _ := agg.Result()
	want := aligngroup.LogLikelihood(0.01, 100, 1, aligngroup.DefaultAlphabetSize) +
		aligngroup.LogLikelihood(0.01, 100, 2, aligngroup.DefaultAlphabetSize)
	assert.InDelta(t, want, total.Get(0), 1e-9)
}
