// Package stats writes the per-molecule run report.
package stats

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"time"
)

// Report holds everything written to the statistics file of one molecule.
type Report struct {
	SMILES     string
	Energies   []float64 // kcal/mol
	RMSD       []float64 // Å
	RingRMSD   []float64 // Å
	Elapsed    time.Duration
	Parameters map[string]string
}

// Write writes the report in its plain-text layout.
func Write(w io.Writer, r *Report) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "SMILES: %s\n", r.SMILES)
	fmt.Fprintf(bw, "Number of Conformers: %d\n", len(r.Energies))
	fmt.Fprintf(bw, "Time: %s seconds\n", formatFloat(r.Elapsed.Seconds()))
	writeSeries(bw, "Energy", "kcal/mol", r.Energies)
	writeSeries(bw, "RMSD", "Å", r.RMSD)
	writeSeries(bw, "Ring_RMSD", "Å", r.RingRMSD)

	fmt.Fprintln(bw, "------------ Parameter List ------------")
	keys := make([]string, 0, len(r.Parameters))
	for k := range r.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(bw, "%s : %s\n", k, r.Parameters[k])
	}

	return bw.Flush()
}

// WriteFile creates path and writes the report to it.
func WriteFile(path string, r *Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create stats file: %w", err)
	}
	if err := Write(f, r); err != nil {
		f.Close()
		return fmt.Errorf("failed to write stats file: %w", err)
	}
	return f.Close()
}

func writeSeries(w io.Writer, name, unit string, values []float64) {
	fmt.Fprintf(w, "------------ %s (%s) ------------\n", name, unit)
	for _, v := range values {
		fmt.Fprintln(w, formatFloat(v))
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
