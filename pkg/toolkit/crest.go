package toolkit

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/rmera/gochem/qm"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// DefaultCrestCommand is the CREST executable looked up on PATH.
const DefaultCrestCommand = "crest"

// crestInputName names the input, output and log files inside the scratch directory.
const crestInputName = "confgen"

// Crest runs a CREST conformational search through gochem's CrestHandle.
type Crest struct {
	Command       string  // executable, DefaultCrestCommand when empty
	Method        string  // gfnff, gfn0, gfn1 or gfn2
	EnergyWindow  float64 // --ewin, kcal/mol (0 = CREST default)
	RMSDThreshold float64 // --rthr, Å (0 = CREST default)
	Temperature   float64 // K (0 = 298.15)
	CPUs          int     // -P (0 = half the machine)
	WorkRoot      string  // parent of the scratch directories (empty = os.TempDir)
	KeepWorkDir   bool
	Logger        *slog.Logger
}

// Search runs CREST on the 3-D structure of mol and returns every conformer it
// keeps, energies in kcal/mol. Conformers share the atom order of mol.
func (c *Crest) Search(ctx context.Context, mol *core.Molecule) (*core.Ensemble, error) {
	errid := "Crest/Search"
	logger := loggerOrDefault(c.Logger)

	coords, err := core.CoordMatrix(mol.Positions())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}

	dir, err := os.MkdirTemp(c.WorkRoot, "confgen-crest-")
	if err != nil {
		return nil, fmt.Errorf("%s: create scratch directory: %w", errid, err)
	}
	cleanup := !c.KeepWorkDir
	if c.KeepWorkDir {
		logger.Info("keeping CREST scratch directory", slog.String("dir", dir))
	}
	defer func() {
		if cleanup {
			os.RemoveAll(dir)
		}
	}()

	handle := qm.NewCrestHandle()
	if cmd := strings.TrimSpace(c.Command); cmd != "" {
		handle.SetCommand(cmd)
	} else {
		handle.SetCommand(DefaultCrestCommand)
	}
	if c.CPUs > 0 {
		handle.SetnCPU(c.CPUs)
	}
	handle.SetWorkDir(dir)
	handle.SetName(crestInputName)
	handle.EThres = c.EnergyWindow
	handle.RMSDThres = c.RMSDThreshold
	if c.Temperature > 0 {
		handle.Temperatures = [3]float64{c.Temperature, c.Temperature + 1, 1}
	}

	calc := &qm.Calc{Method: c.Method}
	if err := handle.BuildInput(coords, mol.Topology(), calc); err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}

	logger.Debug("starting CREST",
		slog.String("molecule", mol.Label()),
		slog.String("dir", dir),
		slog.String("method", c.Method),
	)

	// CrestHandle.Run blocks until CREST exits and takes no context.
	done := make(chan error, 1)
	go func() {
		done <- handle.Run(true)
	}()
	select {
	case <-ctx.Done():
		// CREST keeps running, so its files stay where it expects them
		cleanup = false
		logger.Warn("CREST still running after cancellation, scratch directory left in place",
			slog.String("molecule", mol.Label()),
			slog.String("dir", dir),
		)
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errid, err)
		}
	}

	energies, err := handle.ConformerEnergies()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}
	confs, _, err := handle.Conformers(true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}

	ens := &core.Ensemble{Energies: energies}
	for _, frame := range confs.Coords {
		ens.Conformers = append(ens.Conformers, core.CoordsFromMatrix(frame))
	}
	if err := ens.Validate(len(mol.Atoms)); err != nil {
		return nil, fmt.Errorf("%s: %w", errid, err)
	}

	logger.Debug("CREST finished",
		slog.String("molecule", mol.Label()),
		slog.Int("conformers", ens.Len()),
	)
	return ens, nil
}

// Parameters reports the search settings.
func (c *Crest) Parameters() map[string]string {
	method := c.Method
	if method == "" {
		method = "gfn2"
	}
	params := map[string]string{
		"searcher":     "crest",
		"crest_method": method,
	}
	if c.EnergyWindow > 0 {
		params["crest_energy_window"] = strconv.FormatFloat(c.EnergyWindow, 'f', -1, 64)
	}
	if c.RMSDThreshold > 0 {
		params["crest_rmsd_threshold"] = strconv.FormatFloat(c.RMSDThreshold, 'f', -1, 64)
	}
	if c.Temperature > 0 {
		params["crest_temperature"] = strconv.FormatFloat(c.Temperature, 'f', -1, 64)
	}
	if c.CPUs > 0 {
		params["crest_cpus"] = strconv.Itoa(c.CPUs)
	}
	return params
}
