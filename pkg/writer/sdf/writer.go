// Package sdf writes molecules as MDL SD records (V2000)
package sdf

import (
	"bufio"
	"fmt"
	"io"
	"sort"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// Write writes mol as a single SD record, including the "$$$$" terminator.
func Write(w io.Writer, mol *core.Molecule) error {
	return WriteConformer(w, mol, nil)
}

// WriteConformer writes mol with the positions of one conformer. A nil
// conformer keeps the positions stored in mol.
func WriteConformer(w io.Writer, mol *core.Molecule, conformer []core.Vec3) error {
	if len(mol.Atoms) > 999 || len(mol.Bonds) > 999 {
		return fmt.Errorf("molecule %s is too large for a V2000 connection table", mol.Label())
	}
	if conformer != nil && len(conformer) != len(mol.Atoms) {
		return fmt.Errorf("conformer has %d positions for %d atoms", len(conformer), len(mol.Atoms))
	}

	bw := bufio.NewWriter(w)

	dim := "2D"
	if mol.Has3D() || conformer != nil {
		dim = "3D"
	}
	fmt.Fprintf(bw, "%s\n", mol.Name)
	fmt.Fprintf(bw, "  confgen       %s\n", dim)
	fmt.Fprintf(bw, "\n")
	fmt.Fprintf(bw, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", len(mol.Atoms), len(mol.Bonds))

	var charged []int
	for i, at := range mol.Atoms {
		pos := at.Pos
		if conformer != nil {
			pos = conformer[i]
		}
		fmt.Fprintf(bw, "%10.4f%10.4f%10.4f %-3s 0%3d  0  0  0  0  0  0  0  0  0  0\n",
			pos[0], pos[1], pos[2], at.Symbol, chargeCode(at.Charge))
		if at.Charge != 0 {
			charged = append(charged, i)
		}
	}

	for _, b := range mol.Bonds {
		fmt.Fprintf(bw, "%3d%3d%3d  0\n", b.A+1, b.B+1, b.Order)
	}

	// At most eight entries per CHG line
	for start := 0; start < len(charged); start += 8 {
		end := start + 8
		if end > len(charged) {
			end = len(charged)
		}
		fmt.Fprintf(bw, "M  CHG%3d", end-start)
		for _, idx := range charged[start:end] {
			fmt.Fprintf(bw, " %3d %3d", idx+1, mol.Atoms[idx].Charge)
		}
		fmt.Fprintf(bw, "\n")
	}
	fmt.Fprintf(bw, "M  END\n")

	keys := make([]string, 0, len(mol.Props))
	for k := range mol.Props {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "> <%s>\n%s\n\n", k, mol.Props[k])
	}
	fmt.Fprintf(bw, "$$$$\n")

	return bw.Flush()
}

// chargeCode maps a formal charge to the atom block charge field
func chargeCode(q int) int {
	switch q {
	case 3:
		return 1
	case 2:
		return 2
	case 1:
		return 3
	case -1:
		return 5
	case -2:
		return 6
	case -3:
		return 7
	default:
		return 0
	}
}
