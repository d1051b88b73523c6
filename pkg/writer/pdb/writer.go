// Package pdb writes conformer ensembles as multi-model PDB files
package pdb

import (
	"fmt"
	"io"
	"os"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// Write writes one MODEL per conformer, in the given order. Every conformer
// must hold one position per atom of mol.
func Write(w io.Writer, mol *core.Molecule, conformers [][]core.Vec3) error {
	if len(conformers) == 0 {
		return fmt.Errorf("no conformers to write for %s", mol.Label())
	}

	frames := make([]*v3.Matrix, len(conformers))
	for i, conf := range conformers {
		if len(conf) != len(mol.Atoms) {
			return fmt.Errorf("conformer %d has %d atoms, molecule %s has %d", i+1, len(conf), mol.Label(), len(mol.Atoms))
		}
		m, err := core.CoordMatrix(conf)
		if err != nil {
			return fmt.Errorf("conformer %d: %w", i+1, err)
		}
		frames[i] = m
	}

	if err := chem.MultiPDBWrite(w, frames, mol.Topology(), nil); err != nil {
		return fmt.Errorf("failed to write PDB: %w", err)
	}
	return nil
}

// WriteFile creates path and writes the conformers to it.
func WriteFile(path string, mol *core.Molecule, conformers [][]core.Vec3) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create PDB file: %w", err)
	}
	if err := Write(f, mol, conformers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close PDB file: %w", err)
	}
	return nil
}
