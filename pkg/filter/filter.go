// Package filter provides conformer pruning applied after the search
package filter

import (
	"fmt"
	"sort"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
	"github.com/ChrisMcGann/ConfGen/pkg/geometry"
)

// Config holds filtering configuration
type Config struct {
	TopN          int     // Keep only the N lowest-energy conformers (0 = no limit)
	EnergyWindow  float64 // Keep conformers within this many kcal/mol of the minimum (0 = no cutoff)
	RMSDThreshold float64 // Drop conformers closer than this to a lower-energy one, Å (0 = keep duplicates)
	Atoms         []int   // Atoms compared by the RMSD filter (nil = all)
}

// Apply applies all configured filters to an ensemble. The ensemble is left
// sorted by increasing energy.
func (c *Config) Apply(e *core.Ensemble) error {
	if len(e.Conformers) != len(e.Energies) {
		return fmt.Errorf("ensemble has %d conformers but %d energies", len(e.Conformers), len(e.Energies))
	}

	sort.Stable(e)

	// Apply energy filter
	if c.EnergyWindow > 0 {
		c.filterByEnergy(e)
	}

	// Remove near-duplicates before counting
	if c.RMSDThreshold > 0 {
		if err := c.filterDuplicates(e); err != nil {
			return err
		}
	}

	// Apply top-N filter
	if c.TopN > 0 {
		c.filterTopN(e)
	}

	return nil
}

// filterByEnergy removes conformers above the energy window. Expects a sorted ensemble.
func (c *Config) filterByEnergy(e *core.Ensemble) {
	if e.Len() == 0 {
		return
	}

	threshold := e.Energies[0] + c.EnergyWindow

	n := 0
	for n < e.Len() && e.Energies[n] <= threshold {
		n++
	}
	e.Conformers = e.Conformers[:n]
	e.Energies = e.Energies[:n]
}

// filterDuplicates keeps a conformer only when it differs from every
// lower-energy conformer already kept
func (c *Config) filterDuplicates(e *core.Ensemble) error {
	var conformers [][]core.Vec3
	var energies []float64

	for i, conf := range e.Conformers {
		duplicate := false
		for _, kept := range conformers {
			rmsd, err := geometry.RMSD(conf, kept, c.Atoms)
			if err != nil {
				return fmt.Errorf("compare conformer %d: %w", i+1, err)
			}
			if rmsd < c.RMSDThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			conformers = append(conformers, conf)
			energies = append(energies, e.Energies[i])
		}
	}

	e.Conformers = conformers
	e.Energies = energies
	return nil
}

// filterTopN keeps only the N lowest-energy conformers. Expects a sorted ensemble.
func (c *Config) filterTopN(e *core.Ensemble) {
	if e.Len() <= c.TopN {
		return
	}
	e.Conformers = e.Conformers[:c.TopN]
	e.Energies = e.Energies[:c.TopN]
}
