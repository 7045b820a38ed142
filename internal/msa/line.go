package msa

import (
	"strconv"
	"strings"
)

type lineKind int

const (
	lineHeader lineKind = iota
	lineEmpty
	linePosition
	lineDash
	lineSeqData
	lineEnd // "Please..." footer marker, ends input per spec.md §6
)

type classifiedLine struct {
	kind   lineKind
	dna    bool   // valid when kind == linePosition
	pos    int    // valid when kind == linePosition
	allele string // valid when kind == lineSeqData
	tokens string // valid when kind == lineSeqData: concatenated residue tokens
}

// classifyLine recognizes one stripped, non-header line per spec.md §4.1 /
// §6: gDNA/cDNA/Prot position markers, `|`/"AA codon" informational lines,
// "Please" end-of-input markers, and otherwise SeqData.
func classifyLine(line string) classifiedLine {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return classifiedLine{kind: lineEmpty}
	}
	if strings.HasPrefix(trimmed, "Please") {
		return classifiedLine{kind: lineEnd}
	}
	if strings.HasPrefix(trimmed, "|") || strings.HasPrefix(trimmed, "AA codon") {
		return classifiedLine{kind: lineDash}
	}
	if dna, p, ok := matchPositionLine(trimmed); ok {
		return classifiedLine{kind: linePosition, dna: dna, pos: p}
	}
	fields := strings.Fields(trimmed)
	allele := fields[0]
	var b strings.Builder
	for _, tok := range fields[1:] {
		b.WriteString(tok)
	}
	return classifiedLine{kind: lineSeqData, allele: allele, tokens: b.String()}
}

func matchPositionLine(trimmed string) (dna bool, pos int, ok bool) {
	for _, prefix := range []struct {
		name string
		dna  bool
	}{
		{"gDNA", true},
		{"cDNA", true},
		{"Prot", false},
	} {
		if !strings.HasPrefix(trimmed, prefix.name) {
			continue
		}
		rest := strings.TrimSpace(trimmed[len(prefix.name):])
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			return false, 0, false
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil {
			return false, 0, false
		}
		return prefix.dna, n, true
	}
	return false, 0, false
}
