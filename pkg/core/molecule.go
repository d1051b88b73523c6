// Package core provides the molecule model shared by the readers, writers and the
// conformer generator, together with its validation logic.
package core

import (
	"fmt"
	"math"
	"strings"
)

// Vec3 is a cartesian position in Ångström.
type Vec3 [3]float64

// Molecule represents a single structure with connectivity and optional metadata.
type Molecule struct {
	// Required fields
	Name  string
	Atoms []Atom
	Bonds []Bond

	// Optional metadata
	Props  map[string]string // SDF data items
	SMILES string            // SMILES the molecule was built from, if any

	// Internal tracking
	SourceFile   string
	SourceFormat string // sdf, smi
	Index        int    // 1-based position in the input
}

// Atom is an element with a position and a formal charge.
type Atom struct {
	Symbol string
	Pos    Vec3
	Charge int
}

// Bond connects two atoms by their 0-based indices.
type Bond struct {
	A, B  int
	Order int // 1, 2, 3; 4 for aromatic
}

// ValidationError represents an error found during molecule validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error in %s: %s", e.Field, e.Message)
}

// Validate checks that a molecule can be handed to the toolkit.
func (m *Molecule) Validate() error {
	var errs []string

	if len(m.Atoms) == 0 {
		errs = append(errs, "at least one atom is required")
	}

	for i, at := range m.Atoms {
		if _, ok := LookupElement(at.Symbol); !ok {
			errs = append(errs, fmt.Sprintf("atom %d has unknown element %q", i+1, at.Symbol))
		}
		for _, c := range at.Pos {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				errs = append(errs, fmt.Sprintf("atom %d has invalid coordinates", i+1))
				break
			}
		}
	}

	for i, b := range m.Bonds {
		if b.A < 0 || b.A >= len(m.Atoms) || b.B < 0 || b.B >= len(m.Atoms) {
			errs = append(errs, fmt.Sprintf("bond %d references a missing atom", i+1))
			continue
		}
		if b.A == b.B {
			errs = append(errs, fmt.Sprintf("bond %d connects atom %d to itself", i+1, b.A+1))
		}
	}

	if len(errs) > 0 {
		return &ValidationError{
			Field:   "Molecule",
			Message: strings.Join(errs, "; "),
		}
	}

	return nil
}

// Has3D reports whether the molecule carries real 3-D coordinates. Structures
// coming from SMILES or 2-D depictions have every z set to zero.
func (m *Molecule) Has3D() bool {
	for _, at := range m.Atoms {
		if at.Pos[2] != 0 {
			return true
		}
	}
	return false
}

// HasHydrogens reports whether any atom is an explicit hydrogen.
func (m *Molecule) HasHydrogens() bool {
	for _, at := range m.Atoms {
		if isHydrogen(at.Symbol) {
			return true
		}
	}
	return false
}

// HeavyAtoms returns the indices of all non-hydrogen atoms.
func (m *Molecule) HeavyAtoms() []int {
	idx := make([]int, 0, len(m.Atoms))
	for i, at := range m.Atoms {
		if !isHydrogen(at.Symbol) {
			idx = append(idx, i)
		}
	}
	return idx
}

// NetCharge returns the sum of the formal charges.
func (m *Molecule) NetCharge() int {
	q := 0
	for _, at := range m.Atoms {
		q += at.Charge
	}
	return q
}

// Positions returns a copy of the atom positions.
func (m *Molecule) Positions() []Vec3 {
	pos := make([]Vec3, len(m.Atoms))
	for i, at := range m.Atoms {
		pos[i] = at.Pos
	}
	return pos
}

// Copy returns a deep copy of the molecule.
func (m *Molecule) Copy() *Molecule {
	c := *m
	c.Atoms = append([]Atom(nil), m.Atoms...)
	c.Bonds = append([]Bond(nil), m.Bonds...)
	if m.Props != nil {
		c.Props = make(map[string]string, len(m.Props))
		for k, v := range m.Props {
			c.Props[k] = v
		}
	}
	return &c
}

// Label returns the molecule name, falling back to its SMILES or input position.
func (m *Molecule) Label() string {
	if m.Name != "" {
		return m.Name
	}
	if m.SMILES != "" {
		return m.SMILES
	}
	return fmt.Sprintf("molecule %d", m.Index)
}

func isHydrogen(symbol string) bool {
	switch NormalizeSymbol(symbol) {
	case "H", "D", "T":
		return true
	}
	return false
}
