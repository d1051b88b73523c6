package core

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// cycle returns a molecule of n carbons closed into a single ring.
func cycle(n int) *Molecule {
	mol := &Molecule{}
	for i := 0; i < n; i++ {
		mol.Atoms = append(mol.Atoms, Atom{Symbol: "C"})
		mol.Bonds = append(mol.Bonds, Bond{A: i, B: (i + 1) % n, Order: 1})
	}
	return mol
}

func TestRingsAcyclic(t *testing.T) {
	butane := &Molecule{
		Atoms: []Atom{{Symbol: "C"}, {Symbol: "C"}, {Symbol: "C"}, {Symbol: "C"}},
		Bonds: []Bond{{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}},
	}
	if rings := butane.Rings(); len(rings) != 0 {
		t.Errorf("Expected no rings, got %v", rings)
	}
	if ring := butane.LargestRing(); ring != nil {
		t.Errorf("Expected no largest ring, got %v", ring)
	}
}

func TestRingsNaphthalene(t *testing.T) {
	mol := &Molecule{}
	for i := 0; i < 10; i++ {
		mol.Atoms = append(mol.Atoms, Atom{Symbol: "C"})
	}
	mol.Bonds = []Bond{
		{A: 0, B: 1}, {A: 1, B: 2}, {A: 2, B: 3}, {A: 3, B: 4}, {A: 4, B: 5}, {A: 5, B: 0},
		{A: 4, B: 6}, {A: 6, B: 7}, {A: 7, B: 8}, {A: 8, B: 9}, {A: 9, B: 5},
	}

	rings := mol.Rings()
	if len(rings) != 2 {
		t.Fatalf("Expected 2 rings, got %d: %v", len(rings), rings)
	}
	for _, r := range rings {
		if len(r) != 6 {
			t.Errorf("Expected 6-membered ring, got %d atoms", len(r))
		}
	}
	if atoms := mol.MacrocycleAtoms(10); atoms != nil {
		t.Errorf("Expected naphthalene not to be a macrocycle, got %v", atoms)
	}
}

func TestMacrocycleFusedToBenzene(t *testing.T) {
	mol := cycle(14)
	// benzene sharing the 0-1 bond of the macrocycle
	for i := 0; i < 4; i++ {
		mol.Atoms = append(mol.Atoms, Atom{Symbol: "C"})
	}
	mol.Bonds = append(mol.Bonds,
		Bond{A: 1, B: 14}, Bond{A: 14, B: 15}, Bond{A: 15, B: 16},
		Bond{A: 16, B: 17}, Bond{A: 17, B: 0},
	)
	// a hydrogen never takes part in a ring
	mol.Atoms = append(mol.Atoms, Atom{Symbol: "H"})
	mol.Bonds = append(mol.Bonds, Bond{A: 5, B: 18})

	rings := mol.Rings()
	sizes := make([]int, len(rings))
	for i, r := range rings {
		sizes[i] = len(r)
	}
	if diff := cmp.Diff([]int{6, 14}, sizes); diff != "" {
		t.Errorf("ring sizes mismatch (-want +got):\n%s", diff)
	}

	want := []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13}
	if diff := cmp.Diff(want, mol.MacrocycleAtoms(10)); diff != "" {
		t.Errorf("MacrocycleAtoms mismatch (-want +got):\n%s", diff)
	}
	if atoms := mol.MacrocycleAtoms(15); atoms != nil {
		t.Errorf("Expected no macrocycle with min size 15, got %v", atoms)
	}
}

func TestMacrocycleMinSizeBoundary(t *testing.T) {
	mol := cycle(10)
	if atoms := mol.MacrocycleAtoms(10); len(atoms) != 10 {
		t.Errorf("Expected a 10-membered ring to qualify at min size 10, got %v", atoms)
	}
	if atoms := mol.MacrocycleAtoms(11); atoms != nil {
		t.Errorf("Expected a 10-membered ring to fail at min size 11, got %v", atoms)
	}
}
