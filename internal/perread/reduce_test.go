package perread

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hlatype/hlatype/internal/aligner"
	"github.com/hlatype/hlatype/internal/allele"
)

func intMap(values ...int) allele.Map[int] {
	m := allele.NewMap(len(values), 0)
	for i, v := range values {
		m.Set(i, v)
	}
	return m
}

func lessInt(a, b int) bool { return a < b }

func TestReduceNoPositions(t *testing.T) {
	_, err := Reduce[int](nil, Minimize, lessInt)
	require.Error(t, err)
	var want NoPositionsError
	require.ErrorAs(t, err, &want)
}

func TestReduceAllStopped(t *testing.T) {
	results := []PositionResult[int]{
		{Status: aligner.StatusStopped, Scores: intMap(1, 2)},
		{Status: aligner.StatusStopped, Scores: intMap(3, 4)},
	}
	_, err := Reduce(results, Minimize, lessInt)
	require.Error(t, err)
	var want AllStoppedError
	require.ErrorAs(t, err, &want)
	assert.Equal(t, 2, want.N)
}

func TestReduceMinimizePicksWholeCandidateWithSmallestSummary(t *testing.T) {
	// candidate summaries (per-allele minimum): A=1, B=2, C=8 — A wins,
	// and its whole map is returned, not a per-allele blend with B or C.
	results := []PositionResult[int]{
		{Status: aligner.StatusFinished, Scores: intMap(5, 1)}, // A
		{Status: aligner.StatusFinished, Scores: intMap(2, 3)}, // B
		{Status: aligner.StatusFinished, Scores: intMap(8, 8)}, // C
	}
	best, err := Reduce(results, Minimize, lessInt)
	require.NoError(t, err)
	assert.Equal(t, 5, best.Get(0))
	assert.Equal(t, 1, best.Get(1))
}

func TestReduceMaximizePicksWholeCandidateWithLargestSummary(t *testing.T) {
	// candidate summaries (per-allele maximum): A=5, B=3, C=8 — C wins,
	// and its whole map is returned, not a per-allele blend with A or B.
	results := []PositionResult[int]{
		{Status: aligner.StatusFinished, Scores: intMap(5, 1)}, // A
		{Status: aligner.StatusFinished, Scores: intMap(2, 3)}, // B
		{Status: aligner.StatusFinished, Scores: intMap(8, 8)}, // C
	}
	best, err := Reduce(results, Maximize, lessInt)
	require.NoError(t, err)
	assert.Equal(t, 8, best.Get(0))
	assert.Equal(t, 8, best.Get(1))
}

func TestReduceIgnoresStoppedWhenFinishedExists(t *testing.T) {
	results := []PositionResult[int]{
		{Status: aligner.StatusStopped, Scores: intMap(0, 0)}, // would win on value alone
		{Status: aligner.StatusFinished, Scores: intMap(9, 9)},
	}
	best, err := Reduce(results, Minimize, lessInt)
	require.NoError(t, err)
	assert.Equal(t, 9, best.Get(0))
	assert.Equal(t, 9, best.Get(1))
}
