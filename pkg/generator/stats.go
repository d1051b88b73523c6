package generator

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// Summary describes the spread of a series of values.
type Summary struct {
	N      int
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
}

// Summarize computes a Summary. The standard deviation of fewer than two
// values is zero.
func Summarize(values []float64) Summary {
	s := Summary{N: len(values)}
	if len(values) == 0 {
		return s
	}
	s.Min = floats.Min(values)
	s.Max = floats.Max(values)
	if len(values) == 1 {
		s.Mean = values[0]
		return s
	}
	s.Mean, s.StdDev = stat.MeanStdDev(values, nil)
	return s
}

// EnergySpan returns the difference between the highest and lowest energy.
func (r *Result) EnergySpan() float64 {
	if len(r.Energies) == 0 {
		return 0
	}
	return floats.Max(r.Energies) - floats.Min(r.Energies)
}

// RelativeEnergies returns the energies relative to the lowest conformer.
func (r *Result) RelativeEnergies() []float64 {
	ens := core.Ensemble{Conformers: r.Conformers, Energies: r.Energies}
	return ens.RelativeEnergies()
}
