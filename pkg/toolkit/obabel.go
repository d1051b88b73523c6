package toolkit

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
	sdfreader "github.com/ChrisMcGann/ConfGen/pkg/reader/sdf"
	sdfwriter "github.com/ChrisMcGann/ConfGen/pkg/writer/sdf"
)

// DefaultOpenBabelCommand is the Open Babel executable looked up on PATH.
const DefaultOpenBabelCommand = "obabel"

// OpenBabel wraps the obabel command line program.
type OpenBabel struct {
	Command string // executable, DefaultOpenBabelCommand when empty
	Gen3D   string // --gen3d speed: fastest, fast, med, slow, slowest, best (empty = Open Babel default)
	Logger  *slog.Logger
}

func (o *OpenBabel) command() string {
	if strings.TrimSpace(o.Command) == "" {
		return DefaultOpenBabelCommand
	}
	return o.Command
}

// ParseSMILES converts a SMILES string into a molecule with connectivity
// and zeroed coordinates.
func (o *OpenBabel) ParseSMILES(ctx context.Context, smiles, name string) (*core.Molecule, error) {
	smiles = strings.TrimSpace(smiles)
	if smiles == "" {
		return nil, fmt.Errorf("empty SMILES")
	}

	in := strings.NewReader(smiles + "\n")
	out, _, err := runCommand(ctx, o.Logger, in, o.command(), "-ismi", "-osdf")
	if err != nil {
		return nil, fmt.Errorf("parse SMILES %q: %w", smiles, err)
	}

	mols, err := sdfreader.ReadAll(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("parse SMILES %q: read toolkit output: %w", smiles, err)
	}
	if len(mols) == 0 || len(mols[0].Atoms) == 0 {
		return nil, fmt.Errorf("parse SMILES %q: not a valid SMILES string", smiles)
	}

	mol := mols[0]
	mol.Name = name
	mol.SMILES = smiles
	mol.SourceFormat = "smi"
	return mol, nil
}

// Embed adds hydrogens and generates 3-D coordinates for mol. The heavy-atom
// order of mol is preserved; failures wrap core.ErrFailedEmbedding.
func (o *OpenBabel) Embed(ctx context.Context, mol *core.Molecule) (*core.Molecule, error) {
	args := []string{"-isdf", "-osdf", "-h", "--gen3d"}
	if speed := strings.TrimSpace(o.Gen3D); speed != "" {
		args = append(args, speed)
	}
	return o.rebuild(ctx, mol, args)
}

// AddHydrogens adds explicit hydrogens to a molecule that already has 3-D
// coordinates. Heavy atoms keep their positions.
func (o *OpenBabel) AddHydrogens(ctx context.Context, mol *core.Molecule) (*core.Molecule, error) {
	return o.rebuild(ctx, mol, []string{"-isdf", "-osdf", "-h"})
}

// rebuild pipes mol through obabel and checks the structure that comes back.
func (o *OpenBabel) rebuild(ctx context.Context, mol *core.Molecule, args []string) (*core.Molecule, error) {
	var in bytes.Buffer
	if err := sdfwriter.Write(&in, mol); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrFailedEmbedding, err)
	}

	out, _, err := runCommand(ctx, o.Logger, &in, o.command(), args...)
	if err != nil {
		if ctx.Err() != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", core.ErrFailedEmbedding, err)
	}

	mols, err := sdfreader.ReadAll(bytes.NewReader(out))
	if err != nil {
		return nil, fmt.Errorf("%w: read toolkit output: %v", core.ErrFailedEmbedding, err)
	}
	if len(mols) == 0 {
		return nil, fmt.Errorf("%w: toolkit returned no structure", core.ErrFailedEmbedding)
	}

	embedded := mols[0]
	if !embedded.Has3D() {
		return nil, fmt.Errorf("%w: toolkit returned flat coordinates", core.ErrFailedEmbedding)
	}
	if got, want := len(embedded.HeavyAtoms()), len(mol.HeavyAtoms()); got != want {
		return nil, fmt.Errorf("%w: toolkit returned %d heavy atoms, want %d", core.ErrFailedEmbedding, got, want)
	}

	embedded.Name = mol.Name
	embedded.Props = mol.Props
	embedded.SMILES = mol.SMILES
	embedded.SourceFile = mol.SourceFile
	embedded.SourceFormat = mol.SourceFormat
	embedded.Index = mol.Index
	return embedded, nil
}

// Canonical returns the canonical SMILES of mol without explicit hydrogens.
func (o *OpenBabel) Canonical(ctx context.Context, mol *core.Molecule) (string, error) {
	var in bytes.Buffer
	if err := sdfwriter.Write(&in, mol); err != nil {
		return "", err
	}

	out, _, err := runCommand(ctx, o.Logger, &in, o.command(), "-isdf", "-ocan", "-d")
	if err != nil {
		return "", fmt.Errorf("canonical SMILES: %w", err)
	}

	fields := strings.Fields(string(out))
	if len(fields) == 0 {
		return "", fmt.Errorf("canonical SMILES: toolkit returned nothing for %s", mol.Label())
	}
	return fields[0], nil
}

// Parameters reports the embedding settings.
func (o *OpenBabel) Parameters() map[string]string {
	speed := o.Gen3D
	if speed == "" {
		speed = "default"
	}
	return map[string]string{
		"embedder":    "openbabel",
		"gen3d_speed": speed,
	}
}
