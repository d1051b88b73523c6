// Package sqlite reads runs back from a confgen run log
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
	sqlitewriter "github.com/ChrisMcGann/ConfGen/pkg/writer/sqlite"
)

// Run is one row of RunTable.
type Run struct {
	ID         string
	Started    time.Time
	Finished   time.Time // zero when the run never finished
	Input      string
	Output     string
	Version    string
	Molecules  int
	Succeeded  int
	Parameters map[string]string
}

// Molecule is one row of MoleculeTable.
type Molecule struct {
	ID              int64
	RunID           string
	Index           int
	Name            string
	SMILES          string
	Formula         string
	MolecularWeight float64
	Status          string
	Message         string
	Elapsed         time.Duration
	Conformers      int
	PDBFile         string
	StatsFile       string
}

// Conformer is one row of ConformerTable.
type Conformer struct {
	Rank     int
	Energy   float64
	RMSD     float64
	RingRMSD float64
	Coords   []core.Vec3
}

// Reader queries a run log.
type Reader struct {
	db *sql.DB
}

// Open opens an existing run log read-only.
func Open(path string) (*Reader, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("failed to open run log: %w", err)
	}
	db, err := sql.Open("sqlite3", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return &Reader{db: db}, nil
}

// Close closes the database.
func (r *Reader) Close() error {
	return r.db.Close()
}

// Runs returns every run, oldest first.
func (r *Reader) Runs() ([]Run, error) {
	rows, err := r.db.Query(`
		SELECT RunId, StartedAt, FinishedAt, Input, Output, Version, Molecules, Succeeded
		FROM RunTable ORDER BY StartedAt, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		var started string
		var finished, input, output, version sql.NullString
		if err := rows.Scan(&run.ID, &started, &finished, &input, &output, &version, &run.Molecules, &run.Succeeded); err != nil {
			return nil, fmt.Errorf("failed to read run: %w", err)
		}
		run.Input, run.Output, run.Version = input.String, output.String, version.String
		if run.Started, err = time.Parse(sqlitewriter.TimeFormat, started); err != nil {
			return nil, fmt.Errorf("run %s: invalid start time %q: %w", run.ID, started, err)
		}
		if finished.Valid {
			if run.Finished, err = time.Parse(sqlitewriter.TimeFormat, finished.String); err != nil {
				return nil, fmt.Errorf("run %s: invalid finish time %q: %w", run.ID, finished.String, err)
			}
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read runs: %w", err)
	}

	for i := range runs {
		params, err := r.parameters(runs[i].ID)
		if err != nil {
			return nil, err
		}
		runs[i].Parameters = params
	}
	return runs, nil
}

func (r *Reader) parameters(runID string) (map[string]string, error) {
	rows, err := r.db.Query(`SELECT Name, Value FROM ParameterTable WHERE RunId = ?`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query parameters: %w", err)
	}
	defer rows.Close()

	params := make(map[string]string)
	for rows.Next() {
		var name, value string
		if err := rows.Scan(&name, &value); err != nil {
			return nil, fmt.Errorf("failed to read parameter: %w", err)
		}
		params[name] = value
	}
	return params, rows.Err()
}

// Molecules returns the molecules of a run in input order.
func (r *Reader) Molecules(runID string) ([]Molecule, error) {
	rows, err := r.db.Query(`
		SELECT MoleculeId, RunId, InputIndex, Name, Smiles, Formula, MolecularWeight,
			Status, Message, ElapsedSeconds, NumConformers, PdbFile, StatsFile
		FROM MoleculeTable WHERE RunId = ? ORDER BY InputIndex, MoleculeId
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query molecules: %w", err)
	}
	defer rows.Close()

	var mols []Molecule
	for rows.Next() {
		var m Molecule
		var name, smiles, formula, message, pdbFile, statsFile sql.NullString
		var elapsed float64
		err := rows.Scan(&m.ID, &m.RunID, &m.Index, &name, &smiles, &formula, &m.MolecularWeight,
			&m.Status, &message, &elapsed, &m.Conformers, &pdbFile, &statsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read molecule: %w", err)
		}
		m.Name, m.SMILES, m.Formula, m.Message = name.String, smiles.String, formula.String, message.String
		m.PDBFile, m.StatsFile = pdbFile.String, statsFile.String
		m.Elapsed = time.Duration(elapsed * float64(time.Second))
		mols = append(mols, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read molecules: %w", err)
	}
	return mols, nil
}

// Conformers returns the conformers of a molecule, lowest energy first.
func (r *Reader) Conformers(moleculeID int64) ([]Conformer, error) {
	rows, err := r.db.Query(`
		SELECT Rank, Energy, RMSD, RingRMSD, blobCoords
		FROM ConformerTable WHERE MoleculeId = ? ORDER BY Rank
	`, moleculeID)
	if err != nil {
		return nil, fmt.Errorf("failed to query conformers: %w", err)
	}
	defer rows.Close()

	var confs []Conformer
	for rows.Next() {
		var c Conformer
		var blob []byte
		if err := rows.Scan(&c.Rank, &c.Energy, &c.RMSD, &c.RingRMSD, &blob); err != nil {
			return nil, fmt.Errorf("failed to read conformer: %w", err)
		}
		if c.Coords, err = DecodeCoords(blob); err != nil {
			return nil, fmt.Errorf("conformer %d of molecule %d: %w", c.Rank, moleculeID, err)
		}
		confs = append(confs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read conformers: %w", err)
	}
	return confs, nil
}

// coordDecoder is safe for concurrent DecodeAll calls.
var coordDecoder, _ = zstd.NewReader(nil)

// DecodeCoords decodes a zstd-compressed little-endian float64 coordinate blob
func DecodeCoords(compressed []byte) ([]core.Vec3, error) {
	blob, err := coordDecoder.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("decompress coordinates: %w", err)
	}
	if len(blob)%24 != 0 {
		return nil, fmt.Errorf("coordinate blob of %d bytes is not a whole number of atoms", len(blob))
	}
	pos := make([]core.Vec3, len(blob)/24)
	for i := range pos {
		for k := 0; k < 3; k++ {
			pos[i][k] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*24+k*8:]))
		}
	}
	return pos, nil
}
