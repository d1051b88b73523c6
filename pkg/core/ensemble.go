package core

import "fmt"

// Ensemble is a set of conformers of one molecule with their energies in kcal/mol.
// Conformers[i] has one position per atom of the parent molecule.
type Ensemble struct {
	Conformers [][]Vec3
	Energies   []float64
}

// Len, Less and Swap order an ensemble by increasing energy.
func (e *Ensemble) Len() int           { return len(e.Conformers) }
func (e *Ensemble) Less(i, j int) bool { return e.Energies[i] < e.Energies[j] }
func (e *Ensemble) Swap(i, j int) {
	e.Conformers[i], e.Conformers[j] = e.Conformers[j], e.Conformers[i]
	e.Energies[i], e.Energies[j] = e.Energies[j], e.Energies[i]
}

// Validate checks that every conformer has an energy and natoms positions.
func (e *Ensemble) Validate(natoms int) error {
	if len(e.Conformers) == 0 {
		return &ValidationError{Field: "Ensemble", Message: "no conformers"}
	}
	if len(e.Conformers) != len(e.Energies) {
		return &ValidationError{
			Field:   "Ensemble",
			Message: fmt.Sprintf("%d conformers but %d energies", len(e.Conformers), len(e.Energies)),
		}
	}
	for i, c := range e.Conformers {
		if len(c) != natoms {
			return &ValidationError{
				Field:   "Ensemble",
				Message: fmt.Sprintf("conformer %d has %d atoms, want %d", i+1, len(c), natoms),
			}
		}
	}
	return nil
}

// RelativeEnergies returns the energies shifted so that the lowest one is zero.
func (e *Ensemble) RelativeEnergies() []float64 {
	rel := make([]float64, len(e.Energies))
	if len(e.Energies) == 0 {
		return rel
	}
	lowest := e.Energies[0]
	for _, en := range e.Energies[1:] {
		if en < lowest {
			lowest = en
		}
	}
	for i, en := range e.Energies {
		rel[i] = en - lowest
	}
	return rel
}
