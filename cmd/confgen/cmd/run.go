package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ConfGen/pkg/config"
	"github.com/ChrisMcGann/ConfGen/pkg/core"
	"github.com/ChrisMcGann/ConfGen/pkg/fileutil"
	"github.com/ChrisMcGann/ConfGen/pkg/generator"
	"github.com/ChrisMcGann/ConfGen/pkg/toolkit"
	"github.com/ChrisMcGann/ConfGen/pkg/writer/pdb"
	"github.com/ChrisMcGann/ConfGen/pkg/writer/plot"
	"github.com/ChrisMcGann/ConfGen/pkg/writer/sqlite"
	"github.com/ChrisMcGann/ConfGen/pkg/writer/stats"
)

// UsageError is an argument error reported verbatim, without the "Error:" prefix.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// Messages for invalid command lines.
const (
	msgMultipleInputs = "Error. Please specify a single input format."
	msgNoInput        = "Error. No input provided, please provide either a SMILES string with option --smiles or a " +
		"filepath to an sdf containing the macrocycles with option --sdf."
	msgNoOutput  = "Error. Must supply an output pdb output file."
	msgSingleExt = "Error. The output file must have a single .pdb extension."
	msgNotPDB    = "Error. The output file must be a pdb file."
)

const (
	outputExtension = "pdb"
	statsExtension  = "txt"
	plotExtension   = "png"
)

// conformerGenerator is satisfied by *generator.Generator.
type conformerGenerator interface {
	Generate(ctx context.Context, mol *core.Molecule) (*generator.Result, error)
	Parameters() map[string]string
	MinRingSize() int
}

// chemToolkit is satisfied by *toolkit.OpenBabel.
type chemToolkit interface {
	ParseSMILES(ctx context.Context, smiles, name string) (*core.Molecule, error)
	Canonical(ctx context.Context, mol *core.Molecule) (string, error)
}

// validateInputs checks that exactly one input was given.
func validateInputs(smiles, sdf string) error {
	hasSMILES := strings.TrimSpace(smiles) != ""
	hasSDF := strings.TrimSpace(sdf) != ""
	switch {
	case hasSMILES && hasSDF:
		return &UsageError{Message: msgMultipleInputs}
	case !hasSMILES && !hasSDF:
		return &UsageError{Message: msgNoInput}
	}
	return nil
}

// validateOutputs checks the output path and returns the PDB and statistics
// paths derived from it.
func validateOutputs(out string) (string, string, error) {
	if strings.TrimSpace(out) == "" {
		return "", "", &UsageError{Message: msgNoOutput}
	}
	stem, ext, ok := fileutil.SplitExt(out)
	if !ok {
		return "", "", &UsageError{Message: msgSingleExt}
	}
	if ext != outputExtension {
		return "", "", &UsageError{Message: msgNotPDB}
	}
	return out, stem + "." + statsExtension, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if err := validateInputs(smilesInput, sdfInput); err != nil {
		return err
	}
	pdbPath, txtPath, err := validateOutputs(outputFile)
	if err != nil {
		return err
	}

	cfg, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}

	ob := &toolkit.OpenBabel{
		Command: cfg.OpenBabel.Command,
		Gen3D:   cfg.OpenBabel.Gen3D,
		Logger:  logger,
	}
	gen := newGenerator(cfg, ob, logger)

	ctx := cmd.Context()
	src, err := openSource(ctx, ob, smilesInput, sdfInput, inputFormat)
	if err != nil {
		return err
	}
	defer src.Close()

	r := &runner{
		out:       cmd.OutOrStdout(),
		generator: gen,
		toolkit:   ob,
		pdbPath:   pdbPath,
		txtPath:   txtPath,
		plot:      cfg.Output.Plot,
		logger:    logger,
	}

	if cfg.Output.Database != "" {
		input := sdfInput
		if input == "" {
			input = smilesInput
		}
		db, err := sqlite.NewWriter(cfg.Output.Database, sqlite.Run{
			Input:      input,
			Output:     pdbPath,
			Version:    Version,
			Parameters: gen.Parameters(),
			Started:    time.Now(),
		})
		if err != nil {
			return fmt.Errorf("failed to open run log: %w", err)
		}
		defer db.Close()
		r.db = db
	}

	if err := r.run(ctx, src); err != nil {
		return err
	}

	if r.db != nil {
		if err := r.db.Finalize(); err != nil {
			return fmt.Errorf("failed to finalize run log: %w", err)
		}
	}

	r.printSummary(cmd.OutOrStdout())
	return nil
}

func newGenerator(cfg *config.Config, ob *toolkit.OpenBabel, logger *slog.Logger) *generator.Generator {
	return &generator.Generator{
		Params: generator.Params{
			MinMacroRingSize: cfg.Generator.MinMacroRingSize,
			TopN:             cfg.Generator.TopN,
			EnergyWindow:     cfg.Generator.EnergyWindow,
			RMSDThreshold:    cfg.Generator.RMSDThreshold,
		},
		Embedder: ob,
		Searcher: &toolkit.Crest{
			Command:       cfg.Crest.Command,
			Method:        cfg.Crest.Method,
			EnergyWindow:  cfg.Crest.EnergyWindow,
			RMSDThreshold: cfg.Crest.RMSDThreshold,
			Temperature:   cfg.Crest.Temperature,
			CPUs:          cfg.Crest.CPUs,
			WorkRoot:      cfg.Crest.WorkDir,
			KeepWorkDir:   cfg.Crest.KeepWorkDir,
			Logger:        logger,
		},
		Logger: logger,
	}
}

// outcome is the result line of one molecule in the summary table.
type outcome struct {
	index      int
	name       string
	status     string
	conformers int
	minEnergy  float64
	span       float64
	elapsed    time.Duration
	pdbFile    string
}

// runner processes every molecule of a source, reporting per-molecule
// failures and carrying on with the next molecule.
type runner struct {
	out       io.Writer
	generator conformerGenerator
	toolkit   chemToolkit
	pdbPath   string
	txtPath   string
	plot      bool
	db        *sqlite.Writer
	logger    *slog.Logger

	outcomes []outcome
	skipped  int
}

func (r *runner) run(ctx context.Context, src source) error {
	for src.Next(ctx) {
		if err := ctx.Err(); err != nil {
			return err
		}
		mol := src.Molecule()

		if err := mol.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: invalid molecule %s: %v\n", mol.Label(), err)
			r.skipped++
			continue
		}

		if err := r.process(ctx, mol); err != nil {
			return err
		}
	}

	if err := src.Err(); err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return ctx.Err()
}

// process generates and writes the conformers of one molecule. Embedding
// failures and molecules without a macrocycle are reported and recorded;
// every other error is returned.
func (r *runner) process(ctx context.Context, mol *core.Molecule) error {
	fmt.Fprintf(r.out, "Generating conformers for %s...\n", mol.Label())

	start := time.Now()
	res, err := r.generator.Generate(ctx, mol)
	elapsed := time.Since(start)

	switch {
	case errors.Is(err, core.ErrFailedEmbedding):
		r.logger.Debug("embedding failed", slog.String("molecule", mol.Label()), slog.Any("error", err))
		fmt.Fprintf(r.out, "Failed to embed molecule: %s\nMay need to change embedding parameters.\n", r.smilesOf(ctx, mol))
		return r.recordFailure(mol, sqlite.StatusFailedEmbedding, err, elapsed)
	case errors.Is(err, core.ErrInvalidMolecule):
		r.logger.Debug("no macrocycle", slog.String("molecule", mol.Label()), slog.Any("error", err))
		fmt.Fprintf(r.out, "Failed to find ring with at least %d atoms.\n", r.generator.MinRingSize())
		return r.recordFailure(mol, sqlite.StatusInvalidMolecule, err, elapsed)
	case err != nil:
		return fmt.Errorf("molecule %s: %w", mol.Label(), err)
	}

	canonical, err := r.toolkit.Canonical(ctx, res.Molecule)
	if err != nil {
		return fmt.Errorf("molecule %s: %w", mol.Label(), err)
	}

	pdbFile, txtFile, err := r.writeOutputs(ctx, res, canonical, elapsed)
	if err != nil {
		return fmt.Errorf("molecule %s: %w", mol.Label(), err)
	}
	fmt.Fprintf(r.out, "Wrote %d conformers to %s\n", res.Len(), pdbFile)

	if r.db != nil {
		rec := &sqlite.MoleculeRecord{
			Index:           mol.Index,
			Name:            mol.Name,
			SMILES:          canonical,
			Formula:         res.Molecule.Formula(),
			MolecularWeight: core.RoundFloat(res.Molecule.MolecularWeight(), 4),
			Status:          sqlite.StatusOK,
			Elapsed:         elapsed,
			PDBFile:         pdbFile,
			StatsFile:       txtFile,
			Energies:        res.Energies,
			RMSD:            res.RMSD,
			RingRMSD:        res.RingRMSD,
			Conformers:      res.Conformers,
		}
		if err := r.db.WriteMolecule(rec); err != nil {
			return fmt.Errorf("molecule %s: %w", mol.Label(), err)
		}
	}

	summary := generator.Summarize(res.Energies)
	r.outcomes = append(r.outcomes, outcome{
		index:      mol.Index,
		name:       mol.Label(),
		status:     sqlite.StatusOK,
		conformers: res.Len(),
		minEnergy:  summary.Min,
		span:       res.EnergySpan(),
		elapsed:    elapsed,
		pdbFile:    pdbFile,
	})
	return nil
}

// writeOutputs rotates the output names and writes the PDB, statistics and
// plot files while holding the output lock.
func (r *runner) writeOutputs(ctx context.Context, res *generator.Result, canonical string, elapsed time.Duration) (string, string, error) {
	lock := fileutil.NewLock(r.pdbPath)
	if err := lock.Acquire(ctx); err != nil {
		return "", "", err
	}
	defer func() {
		if err := lock.Release(); err != nil {
			r.logger.Warn("failed to release output lock", slog.Any("error", err))
		}
	}()

	pdbFile, err := fileutil.Rotate(r.pdbPath)
	if err != nil {
		return "", "", err
	}
	if err := pdb.WriteFile(pdbFile, res.Molecule, res.Conformers); err != nil {
		return "", "", err
	}

	txtFile, err := fileutil.Rotate(r.txtPath)
	if err != nil {
		return "", "", err
	}
	report := &stats.Report{
		SMILES:     canonical,
		Energies:   res.Energies,
		RMSD:       res.RMSD,
		RingRMSD:   res.RingRMSD,
		Elapsed:    elapsed,
		Parameters: r.generator.Parameters(),
	}
	if err := stats.WriteFile(txtFile, report); err != nil {
		return "", "", err
	}

	if r.plot {
		pngFile := strings.TrimSuffix(pdbFile, "."+outputExtension) + "." + plotExtension
		relative := res.RelativeEnergies()
		title := res.Molecule.Label()
		err := plot.WriteFile(pngFile, title,
			plot.Series{Label: "heavy atoms", Energies: relative, RMSD: res.RMSD},
			plot.Series{Label: "macrocycle", Energies: relative, RMSD: res.RingRMSD},
		)
		if err != nil {
			return "", "", err
		}
	}

	return pdbFile, txtFile, nil
}

func (r *runner) recordFailure(mol *core.Molecule, status string, cause error, elapsed time.Duration) error {
	r.outcomes = append(r.outcomes, outcome{
		index:   mol.Index,
		name:    mol.Label(),
		status:  status,
		elapsed: elapsed,
	})
	if r.db == nil {
		return nil
	}
	rec := &sqlite.MoleculeRecord{
		Index:           mol.Index,
		Name:            mol.Name,
		SMILES:          mol.SMILES,
		Formula:         mol.Formula(),
		MolecularWeight: core.RoundFloat(mol.MolecularWeight(), 4),
		Status:          status,
		Message:         cause.Error(),
		Elapsed:         elapsed,
	}
	if err := r.db.WriteMolecule(rec); err != nil {
		return fmt.Errorf("molecule %s: %w", mol.Label(), err)
	}
	return nil
}

// smilesOf returns the SMILES a molecule was read from, or its canonical
// SMILES when it came from a structure file.
func (r *runner) smilesOf(ctx context.Context, mol *core.Molecule) string {
	if mol.SMILES != "" {
		return mol.SMILES
	}
	smiles, err := r.toolkit.Canonical(ctx, mol)
	if err != nil {
		r.logger.Debug("canonical SMILES unavailable", slog.Any("error", err))
		return mol.Label()
	}
	return smiles
}
