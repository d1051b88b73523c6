package core

import (
	"fmt"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph/path"
	"gonum.org/v1/gonum/graph/simple"
)

// Ring is a closed path of atom indices, in ring order.
type Ring []int

// Rings returns, for every bond that lies on a cycle, the smallest ring
// passing through that bond. Duplicates are removed and the result is sorted
// by size, then by lowest atom index. For a macrocycle this set always
// contains the macrocyclic ring itself, since at least one of its bonds is
// not shared with a smaller ring.
func (m *Molecule) Rings() []Ring {
	g := simple.NewUndirectedGraph()
	for i := range m.Atoms {
		g.AddNode(simple.Node(i))
	}
	for _, b := range m.Bonds {
		if b.A == b.B || g.HasEdgeBetween(int64(b.A), int64(b.B)) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(b.A), T: simple.Node(b.B)})
	}

	seen := make(map[string]bool)
	var rings []Ring
	for _, b := range m.Bonds {
		if b.A == b.B {
			continue
		}
		u, v := int64(b.A), int64(b.B)
		if !g.HasEdgeBetween(u, v) {
			continue
		}
		g.RemoveEdge(u, v)
		shortest := path.DijkstraFrom(simple.Node(u), g)
		nodes, _ := shortest.To(v)
		g.SetEdge(simple.Edge{F: simple.Node(u), T: simple.Node(v)})
		if len(nodes) == 0 {
			continue
		}

		ring := make(Ring, len(nodes))
		for i, n := range nodes {
			ring[i] = int(n.ID())
		}
		key := ring.key()
		if seen[key] {
			continue
		}
		seen[key] = true
		rings = append(rings, ring)
	}

	sort.Slice(rings, func(i, j int) bool {
		if len(rings[i]) != len(rings[j]) {
			return len(rings[i]) < len(rings[j])
		}
		return rings[i].min() < rings[j].min()
	})
	return rings
}

// LargestRing returns the biggest ring of the molecule, or nil for acyclic molecules.
func (m *Molecule) LargestRing() Ring {
	rings := m.Rings()
	if len(rings) == 0 {
		return nil
	}
	return rings[len(rings)-1]
}

// MacrocycleAtoms returns the atoms of the largest ring when it holds at
// least minSize atoms, and nil otherwise.
func (m *Molecule) MacrocycleAtoms(minSize int) []int {
	ring := m.LargestRing()
	if len(ring) == 0 || len(ring) < minSize {
		return nil
	}
	atoms := append([]int(nil), ring...)
	sort.Ints(atoms)
	return atoms
}

func (r Ring) key() string {
	sorted := append([]int(nil), r...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, idx := range sorted {
		parts[i] = fmt.Sprint(idx)
	}
	return strings.Join(parts, ",")
}

func (r Ring) min() int {
	lowest := r[0]
	for _, idx := range r[1:] {
		if idx < lowest {
			lowest = idx
		}
	}
	return lowest
}
