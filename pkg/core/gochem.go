package core

import (
	"fmt"

	chem "github.com/rmera/gochem"
	v3 "github.com/rmera/gochem/v3"
)

// residueName is the PDB residue name used for every ligand atom.
const residueName = "UNL"

// Topology converts the molecule into a gochem topology. Atoms are named
// element + running count (C1, C2, ..., H1, ...), the usual ligand convention.
func (m *Molecule) Topology() *chem.Topology {
	ats := make([]*chem.Atom, len(m.Atoms))
	counts := make(map[string]int)
	for i, a := range m.Atoms {
		sym := NormalizeSymbol(a.Symbol)
		counts[sym]++
		at := new(chem.Atom)
		at.Symbol = sym
		at.Name = atomName(sym, counts[sym])
		at.ID = i + 1
		at.SetIndex(i)
		at.MolName = residueName
		at.MolID = 1
		ats[i] = at
	}
	return chem.NewTopology(m.NetCharge(), 1, ats)
}

// CoordMatrix packs positions into a gochem coordinate matrix.
func CoordMatrix(pos []Vec3) (*v3.Matrix, error) {
	if len(pos) == 0 {
		return nil, fmt.Errorf("no coordinates")
	}
	data := make([]float64, 0, 3*len(pos))
	for _, p := range pos {
		data = append(data, p[0], p[1], p[2])
	}
	return v3.NewMatrix(data)
}

// CoordsFromMatrix unpacks a gochem coordinate matrix.
func CoordsFromMatrix(c *v3.Matrix) []Vec3 {
	n := c.NVecs()
	pos := make([]Vec3, n)
	for i := 0; i < n; i++ {
		pos[i] = Vec3{c.At(i, 0), c.At(i, 1), c.At(i, 2)}
	}
	return pos
}

func atomName(symbol string, n int) string {
	name := fmt.Sprintf("%s%d", symbol, n)
	if len(name) > 4 {
		name = name[:4]
	}
	return name
}
