// Package sdf provides a streaming reader for MDL SD files (V2000 connection tables)
package sdf

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

const recordSeparator = "$$$$"

// RecordError describes a record that could not be parsed. The reader has
// already moved past it to the next record separator.
type RecordError struct {
	Record int // 1-based position of the record in the file
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d: %v", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Reader provides streaming access to SD files
type Reader struct {
	scanner    *bufio.Scanner
	lineNum    int
	lastLine   string
	records    int
	currentMol *core.Molecule
	recordErr  *RecordError
	err        error
}

// NewReader creates a new SDF reader
func NewReader(r io.Reader) *Reader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Reader{
		scanner: scanner,
	}
}

// Next advances to the next record. Returns false at the end of input or on
// a read error. A record that cannot be parsed still counts: Next returns
// true, Molecule returns nil and RecordErr says what was wrong with it.
func (r *Reader) Next() bool {
	r.currentMol = nil
	r.recordErr = nil

	mol, err := r.readMolecule()
	if err == io.EOF {
		return false
	}
	if err != nil {
		if ioErr := r.scanner.Err(); ioErr != nil {
			r.err = ioErr
			return false
		}
		r.records++
		r.recordErr = &RecordError{Record: r.records, Err: err}
		if err := r.skipRecord(); err != nil {
			r.err = err
			return false
		}
		return true
	}

	r.records++
	mol.Index = r.records
	r.currentMol = mol
	return true
}

// Molecule returns the current molecule, nil when the record was malformed
func (r *Reader) Molecule() *core.Molecule {
	return r.currentMol
}

// RecordErr returns the parse error of the current record, if any
func (r *Reader) RecordErr() error {
	if r.recordErr == nil {
		return nil
	}
	return r.recordErr
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// ReadAll reads every record from r. It stops at the first malformed record.
func ReadAll(r io.Reader) ([]*core.Molecule, error) {
	reader := NewReader(r)
	var mols []*core.Molecule
	for reader.Next() {
		if err := reader.RecordErr(); err != nil {
			return nil, err
		}
		mols = append(mols, reader.Molecule())
	}
	return mols, reader.Err()
}

// scan reads one line, returning false at end of input
func (r *Reader) scan() (string, bool) {
	if !r.scanner.Scan() {
		return "", false
	}
	r.lineNum++
	r.lastLine = strings.TrimRight(r.scanner.Text(), "\r")
	return r.lastLine, true
}

// skipRecord moves past the record separator of a malformed record. The
// separator may already be the last line read.
func (r *Reader) skipRecord() error {
	if strings.TrimSpace(r.lastLine) == recordSeparator {
		return nil
	}
	for {
		line, ok := r.scan()
		if !ok {
			return r.scanner.Err()
		}
		if strings.TrimSpace(line) == recordSeparator {
			return nil
		}
	}
}

// readMolecule reads a single record: header, connection table, data items
func (r *Reader) readMolecule() (*core.Molecule, error) {
	// The title line may legitimately be blank, so the header is read as is.
	// Blank lines at the very end of the file are not a record.
	var header [3]string
	for i := range header {
		line, ok := r.scan()
		if !ok {
			if err := r.scanner.Err(); err != nil {
				return nil, err
			}
			if i == 0 || strings.TrimSpace(strings.Join(header[:i], "")) == "" {
				return nil, io.EOF
			}
			return nil, fmt.Errorf("line %d: unexpected end of file in header", r.lineNum)
		}
		header[i] = line
	}

	mol := &core.Molecule{
		Name:         strings.TrimSpace(header[0]),
		SourceFormat: "sdf",
	}

	countsLine, ok := r.scan()
	if !ok {
		return nil, fmt.Errorf("line %d: missing counts line", r.lineNum)
	}
	if strings.Contains(countsLine, "V3000") {
		return nil, fmt.Errorf("line %d: V3000 connection tables are not supported", r.lineNum)
	}
	natoms, err := fixedInt(countsLine, 0, 3)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid atom count: %w", r.lineNum, err)
	}
	nbonds, err := fixedInt(countsLine, 3, 6)
	if err != nil {
		return nil, fmt.Errorf("line %d: invalid bond count: %w", r.lineNum, err)
	}

	mol.Atoms = make([]core.Atom, 0, natoms)
	for i := 0; i < natoms; i++ {
		line, ok := r.scan()
		if !ok {
			return nil, fmt.Errorf("line %d: expected %d atoms, got %d", r.lineNum, natoms, i)
		}
		atom, err := parseAtom(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		mol.Atoms = append(mol.Atoms, atom)
	}

	mol.Bonds = make([]core.Bond, 0, nbonds)
	for i := 0; i < nbonds; i++ {
		line, ok := r.scan()
		if !ok {
			return nil, fmt.Errorf("line %d: expected %d bonds, got %d", r.lineNum, nbonds, i)
		}
		bond, err := parseBond(line, natoms)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
		}
		mol.Bonds = append(mol.Bonds, bond)
	}

	if err := r.readProperties(mol); err != nil {
		return nil, err
	}
	if err := r.readDataItems(mol); err != nil {
		return nil, err
	}

	return mol, nil
}

// readProperties consumes the properties block up to "M  END"
func (r *Reader) readProperties(mol *core.Molecule) error {
	chargesReset := false
	for {
		line, ok := r.scan()
		if !ok {
			// A bare molfile may end without "M  END"
			return r.scanner.Err()
		}
		if strings.HasPrefix(line, "M  END") {
			return nil
		}
		if strings.HasPrefix(line, "M  CHG") {
			// The first CHG line supersedes every charge from the atom block
			if !chargesReset {
				for i := range mol.Atoms {
					mol.Atoms[i].Charge = 0
				}
				chargesReset = true
			}
			if err := parseChargeLine(mol, line); err != nil {
				return fmt.Errorf("line %d: %w", r.lineNum, err)
			}
		}
	}
}

// readDataItems consumes "> <NAME>" data items up to the record separator
func (r *Reader) readDataItems(mol *core.Molecule) error {
	var key string
	var value []string
	inItem := false

	flush := func() {
		if key == "" {
			return
		}
		if mol.Props == nil {
			mol.Props = make(map[string]string)
		}
		mol.Props[key] = strings.Join(value, "\n")
		key = ""
		value = nil
	}

	for {
		line, ok := r.scan()
		if !ok {
			flush()
			return r.scanner.Err()
		}
		if strings.TrimSpace(line) == recordSeparator {
			flush()
			return nil
		}

		switch {
		case strings.HasPrefix(line, ">"):
			flush()
			key = dataItemName(line)
			inItem = true
		case strings.TrimSpace(line) == "":
			if inItem {
				flush()
				inItem = false
			}
		case inItem:
			value = append(value, line)
		}
	}
}

// dataItemName extracts NAME from a header line such as "> 25 <NAME> (MD-08974)"
func dataItemName(line string) string {
	start := strings.Index(line, "<")
	end := strings.LastIndex(line, ">")
	if start < 0 || end <= start {
		return strings.TrimSpace(strings.TrimPrefix(line, ">"))
	}
	return line[start+1 : end]
}

// parseAtom parses an atom line (xxxxx.xxxxyyyyy.yyyyzzzzz.zzzz aaaddcccssshhhbbbvvvHHHrrriiimmmnnneee)
func parseAtom(line string) (core.Atom, error) {
	if atom, err := parseAtomFixed(line); err == nil {
		return atom, nil
	}

	// Loosely formatted files separate the fields by whitespace only
	var atom core.Atom
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return atom, fmt.Errorf("invalid atom line, expected at least 4 fields")
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return atom, fmt.Errorf("invalid coordinate: %w", err)
		}
		atom.Pos[i] = v
	}
	atom.Symbol = core.NormalizeSymbol(fields[3])
	if len(fields) >= 6 {
		if code, err := strconv.Atoi(fields[5]); err == nil {
			atom.Charge = chargeFromCode(code)
		}
	}
	return atom, nil
}

func parseAtomFixed(line string) (core.Atom, error) {
	var atom core.Atom
	if len(line) < 34 {
		return atom, fmt.Errorf("atom line too short")
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(line[i*10:(i+1)*10]), 64)
		if err != nil {
			return atom, fmt.Errorf("invalid coordinate: %w", err)
		}
		atom.Pos[i] = v
	}
	atom.Symbol = core.NormalizeSymbol(line[31:34])
	if atom.Symbol == "" {
		return atom, fmt.Errorf("missing element symbol")
	}
	if code, err := fixedInt(line, 36, 39); err == nil {
		atom.Charge = chargeFromCode(code)
	}
	return atom, nil
}

// parseBond parses a bond line (111222tttsssxxxrrrccc)
func parseBond(line string, natoms int) (core.Bond, error) {
	a, err := fixedInt(line, 0, 3)
	if err != nil {
		return core.Bond{}, fmt.Errorf("invalid first bond atom: %w", err)
	}
	b, err := fixedInt(line, 3, 6)
	if err != nil {
		return core.Bond{}, fmt.Errorf("invalid second bond atom: %w", err)
	}
	order, err := fixedInt(line, 6, 9)
	if err != nil {
		return core.Bond{}, fmt.Errorf("invalid bond type: %w", err)
	}
	if a < 1 || a > natoms || b < 1 || b > natoms {
		return core.Bond{}, fmt.Errorf("bond %d-%d references a missing atom", a, b)
	}
	return core.Bond{A: a - 1, B: b - 1, Order: order}, nil
}

// parseChargeLine parses "M  CHGnn8 aaa vvv ..." entries
func parseChargeLine(mol *core.Molecule, line string) error {
	fields := strings.Fields(strings.TrimPrefix(line, "M  CHG"))
	if len(fields) == 0 {
		return fmt.Errorf("empty charge line")
	}
	n, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("invalid charge entry count: %w", err)
	}
	if len(fields) < 1+2*n {
		return fmt.Errorf("charge line declares %d entries but holds %d", n, (len(fields)-1)/2)
	}
	for i := 0; i < n; i++ {
		idx, err := strconv.Atoi(fields[1+2*i])
		if err != nil {
			return fmt.Errorf("invalid charged atom index: %w", err)
		}
		q, err := strconv.Atoi(fields[2+2*i])
		if err != nil {
			return fmt.Errorf("invalid charge value: %w", err)
		}
		if idx < 1 || idx > len(mol.Atoms) {
			return fmt.Errorf("charge references missing atom %d", idx)
		}
		mol.Atoms[idx-1].Charge = q
	}
	return nil
}

// chargeFromCode maps the atom block charge field to a formal charge
func chargeFromCode(code int) int {
	switch code {
	case 1:
		return 3
	case 2:
		return 2
	case 3:
		return 1
	case 5:
		return -1
	case 6:
		return -2
	case 7:
		return -3
	default: // 0 and the doublet radical code 4
		return 0
	}
}

// fixedInt parses the integer in columns [start, end) of a fixed-width line
func fixedInt(line string, start, end int) (int, error) {
	if len(line) < end {
		if len(line) <= start {
			return 0, fmt.Errorf("line too short for columns %d-%d", start+1, end)
		}
		end = len(line)
	}
	return strconv.Atoi(strings.TrimSpace(line[start:end]))
}
