// Package generator drives conformer generation for macrocycles. A molecule
// is checked for a large enough ring and embedded in 3-D if needed, then
// searched, and every conformer is compared with the lowest-energy one.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strconv"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
	"github.com/ChrisMcGann/ConfGen/pkg/filter"
	"github.com/ChrisMcGann/ConfGen/pkg/geometry"
)

// DefaultMinMacroRingSize is the smallest ring treated as a macrocycle.
const DefaultMinMacroRingSize = 10

// Embedder produces a 3-D structure, hydrogens included, for a molecule.
// AddHydrogens completes a structure that already has 3-D coordinates
// without moving its heavy atoms. Implementations wrap
// core.ErrFailedEmbedding when they cannot.
type Embedder interface {
	Embed(ctx context.Context, mol *core.Molecule) (*core.Molecule, error)
	AddHydrogens(ctx context.Context, mol *core.Molecule) (*core.Molecule, error)
	Parameters() map[string]string
}

// Searcher explores the conformational space of an embedded molecule.
type Searcher interface {
	Search(ctx context.Context, mol *core.Molecule) (*core.Ensemble, error)
	Parameters() map[string]string
}

// Params holds the settings owned by the generator itself.
type Params struct {
	MinMacroRingSize int
	TopN             int     // 0 = keep all
	EnergyWindow     float64 // kcal/mol, 0 = no cutoff
	RMSDThreshold    float64 // Å, heavy atoms, 0 = keep duplicates
}

// DefaultParams returns the generator defaults.
func DefaultParams() Params {
	return Params{MinMacroRingSize: DefaultMinMacroRingSize}
}

// Generator runs the full conformer generation pipeline for one molecule at a time.
type Generator struct {
	Params   Params
	Embedder Embedder
	Searcher Searcher
	Logger   *slog.Logger
}

// Result is the outcome of a successful run.
type Result struct {
	Molecule   *core.Molecule // embedded structure, hydrogens included
	Conformers [][]core.Vec3  // superposed on the first one, lowest energy first
	Energies   []float64      // kcal/mol
	RMSD       []float64      // heavy atoms, Å, to the lowest-energy conformer
	RingRMSD   []float64      // macrocycle atoms, Å, to the lowest-energy conformer
	RingAtoms  []int
}

// Len returns the number of conformers.
func (r *Result) Len() int { return len(r.Conformers) }

// Generate produces the conformer ensemble of mol. It returns an error
// wrapping core.ErrInvalidMolecule when mol has no macrocycle and one
// wrapping core.ErrFailedEmbedding when no 3-D geometry can be built.
func (g *Generator) Generate(ctx context.Context, mol *core.Molecule) (*Result, error) {
	logger := g.logger().With(slog.String("molecule", mol.Label()))
	minSize := g.minRingSize()

	if err := mol.Validate(); err != nil {
		return nil, err
	}
	if ring := mol.MacrocycleAtoms(minSize); ring == nil {
		return nil, fmt.Errorf("%w: largest ring of %s has %d atoms, need %d",
			core.ErrInvalidMolecule, mol.Label(), len(mol.LargestRing()), minSize)
	}

	embedded := mol
	switch {
	case !mol.Has3D():
		if g.Embedder == nil {
			return nil, fmt.Errorf("%w: %s has no 3-D coordinates", core.ErrFailedEmbedding, mol.Label())
		}
		logger.Debug("embedding")
		var err error
		embedded, err = g.Embedder.Embed(ctx, mol)
		if err != nil {
			return nil, err
		}
	case !mol.HasHydrogens():
		// heavy-atom-only 3-D input, e.g. a ligand taken from a PDB entry
		if g.Embedder == nil {
			return nil, fmt.Errorf("%w: %s has no hydrogens", core.ErrFailedEmbedding, mol.Label())
		}
		logger.Debug("adding hydrogens")
		var err error
		embedded, err = g.Embedder.AddHydrogens(ctx, mol)
		if err != nil {
			return nil, err
		}
	}

	// hydrogens added while embedding are appended, the heavy-atom ring is unchanged
	ring := embedded.MacrocycleAtoms(minSize)
	if ring == nil {
		return nil, fmt.Errorf("%w: macrocycle of %s lost while embedding", core.ErrFailedEmbedding, mol.Label())
	}
	heavy := embedded.HeavyAtoms()

	logger.Debug("searching", slog.Int("atoms", len(embedded.Atoms)), slog.Int("ring_size", len(ring)))
	ens, err := g.Searcher.Search(ctx, embedded)
	if err != nil {
		return nil, fmt.Errorf("conformational search of %s: %w", mol.Label(), err)
	}
	if err := ens.Validate(len(embedded.Atoms)); err != nil {
		return nil, fmt.Errorf("conformational search of %s: %w", mol.Label(), err)
	}

	fc := &filter.Config{
		TopN:          g.Params.TopN,
		EnergyWindow:  g.Params.EnergyWindow,
		RMSDThreshold: g.Params.RMSDThreshold,
		Atoms:         heavy,
	}
	if err := fc.Apply(ens); err != nil {
		return nil, fmt.Errorf("filter conformers of %s: %w", mol.Label(), err)
	}

	res := &Result{
		Molecule:  embedded,
		Energies:  ens.Energies,
		RingAtoms: ring,
	}
	ref := ens.Conformers[0]
	for i, conf := range ens.Conformers {
		aligned, err := geometry.Superpose(conf, ref, heavy)
		if err != nil {
			return nil, fmt.Errorf("superpose conformer %d: %w", i+1, err)
		}
		rmsd, err := geometry.RMSD(conf, ref, heavy)
		if err != nil {
			return nil, fmt.Errorf("rmsd of conformer %d: %w", i+1, err)
		}
		ringRMSD, err := geometry.RMSD(conf, ref, ring)
		if err != nil {
			return nil, fmt.Errorf("ring rmsd of conformer %d: %w", i+1, err)
		}
		res.Conformers = append(res.Conformers, aligned)
		res.RMSD = append(res.RMSD, rmsd)
		res.RingRMSD = append(res.RingRMSD, ringRMSD)
	}

	logger.Info("conformers generated", slog.Int("conformers", res.Len()))
	return res, nil
}

// Parameters lists the settings of the generator, its embedder and its searcher.
func (g *Generator) Parameters() map[string]string {
	params := make(map[string]string)
	if g.Embedder != nil {
		maps.Copy(params, g.Embedder.Parameters())
	}
	if g.Searcher != nil {
		maps.Copy(params, g.Searcher.Parameters())
	}
	params["min_macro_ring_size"] = strconv.Itoa(g.minRingSize())
	params["top_n"] = strconv.Itoa(g.Params.TopN)
	params["energy_window"] = strconv.FormatFloat(g.Params.EnergyWindow, 'f', -1, 64)
	params["rmsd_threshold"] = strconv.FormatFloat(g.Params.RMSDThreshold, 'f', -1, 64)
	return params
}

// MinRingSize returns the effective macrocycle threshold.
func (g *Generator) MinRingSize() int { return g.minRingSize() }

func (g *Generator) minRingSize() int {
	if g.Params.MinMacroRingSize <= 0 {
		return DefaultMinMacroRingSize
	}
	return g.Params.MinMacroRingSize
}

func (g *Generator) logger() *slog.Logger {
	if g.Logger == nil {
		return slog.Default()
	}
	return g.Logger
}
