package generator

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// ring returns an all-carbon ring of n atoms laid flat in the xy plane.
func ring(n int) *core.Molecule {
	mol := &core.Molecule{Name: fmt.Sprintf("cyclo-C%d", n)}
	r := 1.54 * float64(n) / (2 * math.Pi)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		mol.Atoms = append(mol.Atoms, core.Atom{Symbol: "C", Pos: core.Vec3{r * math.Cos(a), r * math.Sin(a), 0}})
		mol.Bonds = append(mol.Bonds, core.Bond{A: i, B: (i + 1) % n, Order: 1})
	}
	return mol
}

type fakeEmbedder struct {
	calls     int
	hydrogens int
	err       error
}

func (f *fakeEmbedder) Embed(_ context.Context, mol *core.Molecule) (*core.Molecule, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := mol.Copy()
	for i := range out.Atoms {
		out.Atoms[i].Pos[2] = 0.3 * float64(i%2*2-1)
	}
	// hydrogens are appended after the heavy atoms
	out.Atoms = append(out.Atoms, core.Atom{Symbol: "H", Pos: core.Vec3{0, 0, 1}})
	out.Bonds = append(out.Bonds, core.Bond{A: 0, B: len(out.Atoms) - 1, Order: 1})
	return out, nil
}

// AddHydrogens keeps the heavy atoms where they are and caps atom 0 with a hydrogen.
func (f *fakeEmbedder) AddHydrogens(_ context.Context, mol *core.Molecule) (*core.Molecule, error) {
	f.hydrogens++
	if f.err != nil {
		return nil, f.err
	}
	out := mol.Copy()
	out.Atoms = append(out.Atoms, core.Atom{Symbol: "H", Pos: core.Vec3{0, 0, 1}})
	out.Bonds = append(out.Bonds, core.Bond{A: 0, B: len(out.Atoms) - 1, Order: 1})
	return out, nil
}

func (f *fakeEmbedder) Parameters() map[string]string {
	return map[string]string{"embedder": "fake"}
}

// fakeSearcher returns three conformers: the input (5 kcal/mol), the input
// rotated and shifted (1 kcal/mol), and the input with one atom moved (3 kcal/mol).
type fakeSearcher struct {
	got *core.Molecule
	err error
}

func (f *fakeSearcher) Search(_ context.Context, mol *core.Molecule) (*core.Ensemble, error) {
	f.got = mol
	if f.err != nil {
		return nil, f.err
	}
	base := mol.Positions()

	moved := make([]core.Vec3, len(base))
	c, s := math.Cos(0.7), math.Sin(0.7)
	for i, p := range base {
		moved[i] = core.Vec3{c*p[0] - s*p[1] + 4, s*p[0] + c*p[1] - 2, p[2] + 1}
	}

	bent := append([]core.Vec3(nil), base...)
	bent[2][2] += 1.5

	return &core.Ensemble{
		Conformers: [][]core.Vec3{base, moved, bent},
		Energies:   []float64{5, 1, 3},
	}, nil
}

func (f *fakeSearcher) Parameters() map[string]string {
	return map[string]string{"searcher": "fake"}
}

func TestGenerate(t *testing.T) {
	emb := &fakeEmbedder{}
	search := &fakeSearcher{}
	g := &Generator{Params: DefaultParams(), Embedder: emb, Searcher: search}

	res, err := g.Generate(context.Background(), ring(12))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if emb.calls != 1 {
		t.Errorf("Embed called %d times, want 1", emb.calls)
	}
	if len(search.got.Atoms) != 13 {
		t.Errorf("Search got %d atoms, want the embedded 13", len(search.got.Atoms))
	}

	wantEnergies := []float64{1, 3, 5}
	for i, e := range wantEnergies {
		if res.Energies[i] != e {
			t.Errorf("Energies[%d] = %v, want %v", i, res.Energies[i], e)
		}
	}
	if res.Len() != 3 || len(res.RMSD) != 3 || len(res.RingRMSD) != 3 {
		t.Fatalf("Generate() returned %d conformers, %d RMSD, %d ring RMSD, want 3 each",
			res.Len(), len(res.RMSD), len(res.RingRMSD))
	}
	if len(res.RingAtoms) != 12 {
		t.Errorf("RingAtoms has %d atoms, want 12", len(res.RingAtoms))
	}

	if res.RMSD[0] > 1e-5 || res.RingRMSD[0] > 1e-5 {
		t.Errorf("lowest conformer RMSD = %v / %v, want 0", res.RMSD[0], res.RingRMSD[0])
	}
	// the 1 and 5 kcal/mol conformers differ only by a rigid motion
	if res.RMSD[2] > 1e-5 {
		t.Errorf("RMSD of rigidly moved conformer = %v, want 0", res.RMSD[2])
	}
	if res.RMSD[1] <= 0.01 || res.RingRMSD[1] <= 0.01 {
		t.Errorf("RMSD of bent conformer = %v / %v, want > 0", res.RMSD[1], res.RingRMSD[1])
	}

	// superposed conformers overlay the reference
	for k := 0; k < 3; k++ {
		if d := math.Abs(res.Conformers[2][5][k] - res.Conformers[0][5][k]); d > 1e-6 {
			t.Errorf("superposed coordinate %d differs by %v", k, d)
		}
	}
}

func TestGenerate3DInput(t *testing.T) {
	withHydrogen := ring(10)
	withHydrogen.Atoms[3].Pos[2] = 0.4
	withHydrogen.Atoms = append(withHydrogen.Atoms, core.Atom{Symbol: "H", Pos: core.Vec3{0, 0, 1}})
	withHydrogen.Bonds = append(withHydrogen.Bonds, core.Bond{A: 0, B: 10, Order: 1})

	heavyOnly := ring(12)
	heavyOnly.Atoms[5].Pos[2] = 0.2

	tests := []struct {
		name          string
		mol           *core.Molecule
		wantHydrogens int
		wantAtoms     int
	}{
		{"hydrogens present", withHydrogen, 0, 11},
		{"heavy atoms only", heavyOnly, 1, 13},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emb := &fakeEmbedder{}
			search := &fakeSearcher{}
			g := &Generator{Params: DefaultParams(), Embedder: emb, Searcher: search}

			if _, err := g.Generate(context.Background(), tt.mol); err != nil {
				t.Fatalf("Generate() error = %v", err)
			}
			if emb.calls != 0 {
				t.Errorf("Embed called %d times for a 3-D input, want 0", emb.calls)
			}
			if emb.hydrogens != tt.wantHydrogens {
				t.Errorf("AddHydrogens called %d times, want %d", emb.hydrogens, tt.wantHydrogens)
			}
			if len(search.got.Atoms) != tt.wantAtoms {
				t.Errorf("Search got %d atoms, want %d", len(search.got.Atoms), tt.wantAtoms)
			}
			if !search.got.HasHydrogens() {
				t.Error("Search got a structure without hydrogens")
			}
			// the input geometry is kept
			if search.got.Atoms[3].Pos != tt.mol.Atoms[3].Pos {
				t.Errorf("atom 3 moved to %v", search.got.Atoms[3].Pos)
			}
		})
	}
}

func TestGenerateAddHydrogensFails(t *testing.T) {
	mol := ring(12)
	mol.Atoms[0].Pos[2] = 0.2

	emb := &fakeEmbedder{err: fmt.Errorf("%w: obabel exited 1", core.ErrFailedEmbedding)}
	g := &Generator{Params: DefaultParams(), Embedder: emb, Searcher: &fakeSearcher{}}

	_, err := g.Generate(context.Background(), mol)
	if !errors.Is(err, core.ErrFailedEmbedding) {
		t.Errorf("Generate() error = %v, want ErrFailedEmbedding", err)
	}

	g.Embedder = nil
	if _, err := g.Generate(context.Background(), mol); !errors.Is(err, core.ErrFailedEmbedding) {
		t.Errorf("Generate() without embedder error = %v, want ErrFailedEmbedding", err)
	}
}

func TestGenerateErrors(t *testing.T) {
	searchErr := errors.New("crest terminated abnormally")

	tests := []struct {
		name     string
		mol      *core.Molecule
		params   Params
		embedErr error
		search   error
		want     error
	}{
		{
			name:   "ring too small",
			mol:    ring(8),
			params: DefaultParams(),
			want:   core.ErrInvalidMolecule,
		},
		{
			name:   "acyclic",
			mol:    &core.Molecule{Atoms: []core.Atom{{Symbol: "C"}, {Symbol: "O"}}, Bonds: []core.Bond{{A: 0, B: 1, Order: 1}}},
			params: DefaultParams(),
			want:   core.ErrInvalidMolecule,
		},
		{
			name:   "custom threshold",
			mol:    ring(12),
			params: Params{MinMacroRingSize: 14},
			want:   core.ErrInvalidMolecule,
		},
		{
			name:     "embedding fails",
			mol:      ring(12),
			params:   DefaultParams(),
			embedErr: fmt.Errorf("%w: no coordinates", core.ErrFailedEmbedding),
			want:     core.ErrFailedEmbedding,
		},
		{
			name:   "search fails",
			mol:    ring(12),
			params: DefaultParams(),
			search: searchErr,
			want:   searchErr,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &Generator{
				Params:   tt.params,
				Embedder: &fakeEmbedder{err: tt.embedErr},
				Searcher: &fakeSearcher{err: tt.search},
			}
			_, err := g.Generate(context.Background(), tt.mol)
			if !errors.Is(err, tt.want) {
				t.Errorf("Generate() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestGenerateTopN(t *testing.T) {
	g := &Generator{
		Params:   Params{MinMacroRingSize: 10, TopN: 2},
		Embedder: &fakeEmbedder{},
		Searcher: &fakeSearcher{},
	}
	res, err := g.Generate(context.Background(), ring(10))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if res.Len() != 2 || res.Energies[1] != 3 {
		t.Errorf("Generate() energies = %v, want [1 3]", res.Energies)
	}
}

func TestParameters(t *testing.T) {
	g := &Generator{Params: Params{TopN: 5, EnergyWindow: 2.5}, Embedder: &fakeEmbedder{}, Searcher: &fakeSearcher{}}
	params := g.Parameters()
	want := map[string]string{
		"embedder":            "fake",
		"searcher":            "fake",
		"min_macro_ring_size": "10",
		"top_n":               "5",
		"energy_window":       "2.5",
		"rmsd_threshold":      "0",
	}
	for k, v := range want {
		if params[k] != v {
			t.Errorf("Parameters()[%q] = %q, want %q", k, params[k], v)
		}
	}
}
