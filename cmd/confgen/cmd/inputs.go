package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
	"github.com/ChrisMcGann/ConfGen/pkg/reader/sdf"
	"github.com/ChrisMcGann/ConfGen/pkg/reader/smi"
)

// source yields the molecules of one input.
type source interface {
	Next(ctx context.Context) bool
	Molecule() *core.Molecule
	Err() error
	Close() error
}

// detectFormat picks the input format from the --from flag or the extension.
func detectFormat(path, from string) (string, error) {
	format := strings.ToLower(strings.TrimSpace(from))
	if format == "" {
		ext := strings.ToLower(filepath.Ext(path))
		switch ext {
		case ".sdf", ".sd", ".mol":
			format = "sdf"
		case ".smi", ".smiles":
			format = "smi"
		default:
			return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
		}
	}
	if format != "sdf" && format != "smi" {
		return "", fmt.Errorf("invalid input format '%s', must be sdf or smi", format)
	}
	return format, nil
}

// openSource opens the input selected on the command line.
func openSource(ctx context.Context, tk chemToolkit, smiles, path, from string) (source, error) {
	if strings.TrimSpace(smiles) != "" {
		mol, err := tk.ParseSMILES(ctx, smiles, "")
		if err != nil {
			return nil, fmt.Errorf("invalid SMILES: %w", err)
		}
		mol.Index = 1
		return &sliceSource{mols: []*core.Molecule{mol}}, nil
	}

	format, err := detectFormat(path, from)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	switch format {
	case "smi":
		return &smiSource{file: file, path: path, reader: smi.NewReader(file), toolkit: tk}, nil
	default:
		return &sdfSource{file: file, path: path, reader: sdf.NewReader(file)}, nil
	}
}

type sliceSource struct {
	mols []*core.Molecule
	cur  *core.Molecule
}

func (s *sliceSource) Next(context.Context) bool {
	if len(s.mols) == 0 {
		return false
	}
	s.cur, s.mols = s.mols[0], s.mols[1:]
	return true
}

func (s *sliceSource) Molecule() *core.Molecule { return s.cur }
func (s *sliceSource) Err() error               { return nil }
func (s *sliceSource) Close() error             { return nil }

// sdfSource yields the records of an SD file. Malformed records are
// reported and skipped.
type sdfSource struct {
	file   io.Closer
	path   string
	reader *sdf.Reader
	warn   io.Writer
}

func (s *sdfSource) Next(context.Context) bool {
	for s.reader.Next() {
		if err := s.reader.RecordErr(); err != nil {
			fmt.Fprintf(s.warnings(), "Warning: skipping %s: %v\n", s.path, err)
			continue
		}
		return true
	}
	return false
}

func (s *sdfSource) warnings() io.Writer {
	if s.warn == nil {
		return os.Stderr
	}
	return s.warn
}

func (s *sdfSource) Molecule() *core.Molecule {
	mol := s.reader.Molecule()
	mol.SourceFile = s.path
	return mol
}

func (s *sdfSource) Err() error   { return s.reader.Err() }
func (s *sdfSource) Close() error { return s.file.Close() }

// smiSource parses every SMILES record with the toolkit. Records the toolkit
// rejects are reported and skipped.
type smiSource struct {
	file    io.Closer
	path    string
	reader  *smi.Reader
	toolkit chemToolkit
	cur     *core.Molecule
	err     error
}

func (s *smiSource) Next(ctx context.Context) bool {
	for s.reader.Next() {
		rec := s.reader.Record()
		mol, err := s.toolkit.ParseSMILES(ctx, rec.SMILES, rec.Name)
		if err != nil {
			if ctx.Err() != nil {
				s.err = ctx.Err()
				return false
			}
			fmt.Fprintf(os.Stderr, "Warning: skipping line %d of %s: %v\n", rec.Line, s.path, err)
			continue
		}
		mol.Index = rec.Index
		mol.SourceFile = s.path
		s.cur = mol
		return true
	}
	return false
}

func (s *smiSource) Molecule() *core.Molecule { return s.cur }

func (s *smiSource) Err() error {
	if s.err != nil {
		return s.err
	}
	return s.reader.Err()
}

func (s *smiSource) Close() error { return s.file.Close() }
