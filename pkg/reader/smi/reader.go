// Package smi provides a streaming reader for SMILES list files
package smi

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Record is a single SMILES entry with its optional title.
type Record struct {
	SMILES string
	Name   string
	Line   int
	Index  int // 1-based position among the records
}

// Reader provides streaming access to SMILES list files. Each non-blank line
// holds a SMILES string optionally followed by whitespace and a title; lines
// starting with '#' are comments.
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
	records int
	current *Record
	err     error
}

// NewReader creates a new SMILES list reader
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next advances to the next record. Returns false when no more records or error.
func (r *Reader) Next() bool {
	r.current = nil

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		rec, err := parseLine(line)
		if err != nil {
			r.err = fmt.Errorf("line %d: %w", r.lineNum, err)
			return false
		}
		r.records++
		rec.Line = r.lineNum
		rec.Index = r.records
		r.current = rec
		return true
	}

	if err := r.scanner.Err(); err != nil {
		r.err = err
	}
	return false
}

// Record returns the current record
func (r *Reader) Record() *Record {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

func parseLine(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty record")
	}
	smiles := fields[0]
	if strings.ContainsAny(smiles, "\"'") {
		return nil, fmt.Errorf("invalid SMILES %q", smiles)
	}
	name := ""
	if len(fields) > 1 {
		name = strings.Join(fields[1:], " ")
	}
	return &Record{SMILES: smiles, Name: name}, nil
}
