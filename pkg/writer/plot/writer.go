// Package plot draws the energy landscape of a conformer ensemble.
package plot

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// Size of the rendered image.
const (
	Width  = 6 * vg.Inch
	Height = 4 * vg.Inch
)

// Series is one scatter series of relative energy against RMSD.
type Series struct {
	Label    string
	Energies []float64 // kcal/mol, relative to the lowest conformer
	RMSD     []float64 // Å
	Color    color.Color
}

// New builds a plot of relative energy against RMSD to the lowest-energy
// conformer, one scatter per series.
func New(title string, series ...Series) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "RMSD (Å)"
	p.Y.Label.Text = "Relative energy (kcal/mol)"
	p.Add(plotter.NewGrid())

	for i, s := range series {
		if len(s.Energies) != len(s.RMSD) {
			return nil, fmt.Errorf("series %q has %d energies but %d RMSD values", s.Label, len(s.Energies), len(s.RMSD))
		}
		pts := make(plotter.XYs, len(s.Energies))
		for j := range s.Energies {
			pts[j].X = s.RMSD[j]
			pts[j].Y = s.Energies[j]
		}
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("series %q: %w", s.Label, err)
		}
		sc.GlyphStyle.Shape = draw.CircleGlyph{}
		sc.GlyphStyle.Radius = vg.Points(3)
		sc.GlyphStyle.Color = palette[i%len(palette)]
		if s.Color != nil {
			sc.GlyphStyle.Color = s.Color
		}
		p.Add(sc)
		if s.Label != "" {
			p.Legend.Add(s.Label, sc)
		}
	}
	return p, nil
}

// WriteFile renders the series to path; the format follows the extension
// (png, svg, pdf, ...).
func WriteFile(path, title string, series ...Series) error {
	p, err := New(title, series...)
	if err != nil {
		return err
	}
	if err := p.Save(Width, Height, path); err != nil {
		return fmt.Errorf("failed to save plot: %w", err)
	}
	return nil
}

var palette = []color.Color{
	color.RGBA{R: 31, G: 119, B: 180, A: 255},
	color.RGBA{R: 255, G: 127, B: 14, A: 255},
	color.RGBA{R: 44, G: 160, B: 44, A: 255},
	color.RGBA{R: 214, G: 39, B: 40, A: 255},
}
