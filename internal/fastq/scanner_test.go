package fastq

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoRecords = "@read1\nACGT\n+\nIIII\n@read2\nTTAA\n+\n!!!!\n"

func TestReadAllParsesRecords(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(twoRecords))
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, "read1", recs[0].ID)
	assert.Equal(t, []byte("ACGT"), recs[0].Bases)
	require.Len(t, recs[0].ErrorProbs, 4)

	assert.Equal(t, "read2", recs[1].ID)
	assert.Equal(t, []byte("TTAA"), recs[1].Bases)
}

func TestHighQualityHasLowerErrorProbability(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(twoRecords))
	require.NoError(t, err)

	// 'I' = Phred 40, '!' = Phred 0: read1's bases should be far more
	// trustworthy than read2's.
	assert.Less(t, recs[0].ErrorProbs[0], recs[1].ErrorProbs[0])
}

func TestMissingPlusLineErrors(t *testing.T) {
	_, err := ReadAll(strings.NewReader("@read1\nACGT\nXXXX\nIIII\n"))
	assert.Error(t, err)
}

func TestMismatchedLengthsErrors(t *testing.T) {
	_, err := ReadAll(strings.NewReader("@read1\nACGT\n+\nII\n"))
	assert.Error(t, err)
}

func TestTruncatedRecordErrors(t *testing.T) {
	_, err := ReadAll(strings.NewReader("@read1\nACGT\n+\n"))
	assert.Error(t, err)
}

func TestEmptyInputIsNotAnError(t *testing.T) {
	recs, err := ReadAll(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, recs)
}
