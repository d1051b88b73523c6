package core

import "errors"

var (
	// ErrFailedEmbedding is returned when no 3-D geometry could be produced for a molecule.
	ErrFailedEmbedding = errors.New("failed to embed molecule")

	// ErrInvalidMolecule is returned when a molecule has no ring large enough to be
	// treated as a macrocycle.
	ErrInvalidMolecule = errors.New("no macrocyclic ring found")
)
