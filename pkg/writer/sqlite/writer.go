// Package sqlite records conformer generation runs in a SQLite database
package sqlite

import (
	"database/sql"
	"encoding/binary"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zstd"
	_ "github.com/mattn/go-sqlite3"

	"github.com/ChrisMcGann/ConfGen/pkg/core"
)

// TimeFormat is the layout of every timestamp stored in the run log.
const TimeFormat = time.RFC3339

// Molecule outcomes stored in MoleculeTable.Status.
const (
	StatusOK              = "ok"
	StatusFailedEmbedding = "failed_embedding"
	StatusInvalidMolecule = "invalid_molecule"
)

// Run describes one invocation of the generator.
type Run struct {
	Input      string
	Output     string
	Version    string
	Parameters map[string]string
	Started    time.Time
}

// MoleculeRecord is the outcome for one input molecule. Conformer data is
// only present when Status is StatusOK.
type MoleculeRecord struct {
	Index           int
	Name            string
	SMILES          string
	Formula         string
	MolecularWeight float64
	Status          string
	Message         string
	Elapsed         time.Duration
	PDBFile         string
	StatsFile       string

	Energies   []float64
	RMSD       []float64
	RingRMSD   []float64
	Conformers [][]core.Vec3
}

// Writer appends runs to a SQLite run log
type Writer struct {
	db           *sql.DB
	outputPath   string
	runID        string
	moleculeStmt *sql.Stmt
	conformStmt  *sql.Stmt
	molecules    int
	succeeded    int
}

// NewWriter opens (creating if needed) the run log at outputPath and records
// the start of run.
func NewWriter(outputPath string, run Run) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	w := &Writer{
		db:         db,
		outputPath: outputPath,
		runID:      uuid.NewString(),
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.insertRun(run); err != nil {
		db.Close()
		return nil, err
	}

	if err := w.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the identifier of the run being recorded.
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS RunTable (
		RunId TEXT PRIMARY KEY,
		StartedAt TEXT,
		FinishedAt TEXT,
		Input TEXT,
		Output TEXT,
		Version TEXT,
		Molecules INTEGER,
		Succeeded INTEGER
	);

	CREATE TABLE IF NOT EXISTS ParameterTable (
		RunId TEXT REFERENCES RunTable(RunId),
		Name TEXT,
		Value TEXT
	);

	CREATE TABLE IF NOT EXISTS MoleculeTable (
		MoleculeId INTEGER PRIMARY KEY AUTOINCREMENT,
		RunId TEXT REFERENCES RunTable(RunId),
		InputIndex INTEGER,
		Name TEXT,
		Smiles TEXT,
		Formula TEXT,
		MolecularWeight DOUBLE,
		Status TEXT,
		Message TEXT,
		ElapsedSeconds DOUBLE,
		NumConformers INTEGER,
		PdbFile TEXT,
		StatsFile TEXT
	);

	CREATE TABLE IF NOT EXISTS ConformerTable (
		ConformerId INTEGER PRIMARY KEY AUTOINCREMENT,
		MoleculeId INTEGER REFERENCES MoleculeTable(MoleculeId),
		Rank INTEGER,
		Energy DOUBLE,
		RMSD DOUBLE,
		RingRMSD DOUBLE,
		blobCoords BLOB
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

func (w *Writer) insertRun(run Run) error {
	started := run.Started
	if started.IsZero() {
		started = time.Now()
	}

	_, err := w.db.Exec(`
		INSERT INTO RunTable (RunId, StartedAt, FinishedAt, Input, Output, Version, Molecules, Succeeded)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.runID, started.Format(TimeFormat), nil, run.Input, run.Output, run.Version, 0, 0)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	names := make([]string, 0, len(run.Parameters))
	for name := range run.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		_, err := w.db.Exec(`INSERT INTO ParameterTable (RunId, Name, Value) VALUES (?, ?, ?)`,
			w.runID, name, run.Parameters[name])
		if err != nil {
			return fmt.Errorf("failed to insert parameter %s: %w", name, err)
		}
	}
	return nil
}

// prepareStatements prepares SQL statements for repeated insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.moleculeStmt, err = w.db.Prepare(`
		INSERT INTO MoleculeTable (
			RunId, InputIndex, Name, Smiles, Formula, MolecularWeight,
			Status, Message, ElapsedSeconds, NumConformers, PdbFile, StatsFile
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare molecule statement: %w", err)
	}

	w.conformStmt, err = w.db.Prepare(`
		INSERT INTO ConformerTable (MoleculeId, Rank, Energy, RMSD, RingRMSD, blobCoords)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare conformer statement: %w", err)
	}

	return nil
}

// WriteMolecule records the outcome for one molecule and, for successful
// molecules, every conformer.
func (w *Writer) WriteMolecule(rec *MoleculeRecord) error {
	n := len(rec.Energies)
	if len(rec.RMSD) != n || len(rec.RingRMSD) != n || len(rec.Conformers) != n {
		return fmt.Errorf("molecule %d: %d energies, %d RMSD, %d ring RMSD and %d conformers",
			rec.Index, n, len(rec.RMSD), len(rec.RingRMSD), len(rec.Conformers))
	}

	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Handle optional outputs
	var pdbFile, statsFile interface{}
	if rec.PDBFile != "" {
		pdbFile = rec.PDBFile
	}
	if rec.StatsFile != "" {
		statsFile = rec.StatsFile
	}

	res, err := tx.Stmt(w.moleculeStmt).Exec(
		w.runID,               // RunId
		rec.Index,             // InputIndex
		rec.Name,              // Name
		rec.SMILES,            // Smiles
		rec.Formula,           // Formula
		rec.MolecularWeight,   // MolecularWeight
		rec.Status,            // Status
		rec.Message,           // Message
		rec.Elapsed.Seconds(), // ElapsedSeconds
		n,                     // NumConformers
		pdbFile,               // PdbFile
		statsFile,             // StatsFile
	)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to insert molecule: %w", err)
	}
	moleculeID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to read molecule id: %w", err)
	}

	conformStmt := tx.Stmt(w.conformStmt)
	for i := 0; i < n; i++ {
		_, err := conformStmt.Exec(
			moleculeID,
			i+1,
			rec.Energies[i],
			rec.RMSD[i],
			rec.RingRMSD[i],
			EncodeCoords(rec.Conformers[i]),
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to insert conformer %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit molecule: %w", err)
	}

	w.molecules++
	if rec.Status == StatusOK {
		w.succeeded++
	}
	return nil
}

// coordEncoder is safe for concurrent EncodeAll calls.
var coordEncoder, _ = zstd.NewWriter(nil)

// EncodeCoords encodes positions as a zstd-compressed little-endian float64
// blob, x y z per atom
func EncodeCoords(pos []core.Vec3) []byte {
	buf := make([]byte, len(pos)*24)
	for i, p := range pos {
		for k := 0; k < 3; k++ {
			binary.LittleEndian.PutUint64(buf[i*24+k*8:], math.Float64bits(p[k]))
		}
	}
	return coordEncoder.EncodeAll(buf, nil)
}

// Finalize stamps the run with its end time and counts and closes the database
func (w *Writer) Finalize() error {
	_, err := w.db.Exec(`
		UPDATE RunTable SET FinishedAt = ?, Molecules = ?, Succeeded = ? WHERE RunId = ?
	`, time.Now().Format(TimeFormat), w.molecules, w.succeeded, w.runID)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	return w.close()
}

// Close closes the database without stamping the run as finished.
func (w *Writer) Close() error {
	return w.close()
}

func (w *Writer) close() error {
	if w.db == nil {
		return nil
	}

	// Close prepared statements
	if w.moleculeStmt != nil {
		w.moleculeStmt.Close()
	}
	if w.conformStmt != nil {
		w.conformStmt.Close()
	}

	err := w.db.Close()
	w.db = nil
	if err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
