// Package fastq adapts FASTQ records into the shape internal/aligner
// needs: raw read bases plus a per-base error probability derived from
// the record's Phred quality string, for internal/aligngroup's
// PhredLikelihood group.
//
// Grounded on pkg/hlatype.ParseFASTQ's four-line-record convention and
// on the record-at-a-time scanner style used by grailbio-bio's FASTQ
// reader, rather than reading the whole file into memory up front.
package fastq

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/hlatype/hlatype/internal/quality"
)

// Record is one FASTQ read ready for alignment.
type Record struct {
	ID         string
	Bases      []byte
	ErrorProbs []float64
}

// Scanner reads FASTQ records one at a time.
type Scanner struct {
	sc      *bufio.Scanner
	lineNum int
	err     error
	rec     Record
}

// NewScanner wraps r in a FASTQ record Scanner.
func NewScanner(r io.Reader) *Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)
	return &Scanner{sc: sc}
}

// Scan advances to the next record, reporting whether one was read.
// Once Scan returns false, call Err to distinguish a clean end of input
// from a malformed record.
func (s *Scanner) Scan() bool {
	var id, basesLine, qualLine string

	for i := 0; i < 4; i++ {
		if !s.sc.Scan() {
			if i == 0 {
				return false
			}
			s.err = fmt.Errorf("fastq: truncated record at line %d", s.lineNum+1)
			return false
		}
		s.lineNum++
		line := strings.TrimSpace(s.sc.Text())

		switch i {
		case 0:
			if len(line) == 0 || line[0] != '@' {
				s.err = fmt.Errorf("fastq: line %d: expected header starting with @", s.lineNum)
				return false
			}
			id = line[1:]
		case 1:
			basesLine = line
		case 2:
			if len(line) == 0 || line[0] != '+' {
				s.err = fmt.Errorf("fastq: line %d: expected '+' separator", s.lineNum)
				return false
			}
		case 3:
			qualLine = line
		}
	}

	if len(basesLine) != len(qualLine) {
		s.err = fmt.Errorf("fastq: record %q: sequence length %d != quality length %d", id, len(basesLine), len(qualLine))
		return false
	}

	probs := make([]float64, len(qualLine))
	for i := 0; i < len(qualLine); i++ {
		score := int(qualLine[i]) - 33
		p, err := quality.ScoreToProbability(score)
		if err != nil {
			s.err = fmt.Errorf("fastq: record %q: %w", id, err)
			return false
		}
		probs[i] = p
	}

	s.rec = Record{ID: id, Bases: []byte(strings.ToUpper(basesLine)), ErrorProbs: probs}
	return true
}

// Record returns the most recently scanned record.
func (s *Scanner) Record() Record { return s.rec }

// Err returns the first error encountered, if Scan returned false before
// reaching a clean end of input.
func (s *Scanner) Err() error { return s.err }

// ReadAll reads every record from r, stopping at the first malformed one.
func ReadAll(r io.Reader) ([]Record, error) {
	sc := NewScanner(r)
	var out []Record
	for sc.Scan() {
		out = append(out, sc.Record())
	}
	if err := sc.Err(); err != nil {
		return out, err
	}
	return out, nil
}
