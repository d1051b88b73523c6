package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"github.com/ChrisMcGann/ConfGen/pkg/writer/sqlite"
)

type columnAlignment int

const (
	alignLeft columnAlignment = iota
	alignRight
)

func renderTable(headers []string, rows [][]string, aligns []columnAlignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range r {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == alignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{Number: i + 1, Align: align, AlignHeader: text.AlignLeft})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

func shouldColorize(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func statusText(status string, colorize bool) string {
	if !colorize {
		return status
	}
	switch status {
	case sqlite.StatusOK:
		return text.FgGreen.Sprint(status)
	case sqlite.StatusFailedEmbedding, sqlite.StatusInvalidMolecule:
		return text.FgYellow.Sprint(status)
	default:
		return text.FgRed.Sprint(status)
	}
}

func formatEnergy(v float64) string {
	return strconv.FormatFloat(v, 'f', 3, 64)
}

func formatSeconds(seconds float64) string {
	return strconv.FormatFloat(seconds, 'f', 1, 64)
}

// printSummary writes the end-of-run table.
func (r *runner) printSummary(w io.Writer) {
	colorize := shouldColorize(w)

	headers := []string{"#", "Molecule", "Status", "Conformers", "E min (kcal/mol)", "ΔE (kcal/mol)", "Time (s)", "Output"}
	aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft}

	succeeded := 0
	rows := make([][]string, 0, len(r.outcomes))
	for _, o := range r.outcomes {
		row := []string{strconv.Itoa(o.index), o.name, statusText(o.status, colorize), "", "", "", formatSeconds(o.elapsed.Seconds()), o.pdbFile}
		if o.status == sqlite.StatusOK {
			succeeded++
			row[3] = strconv.Itoa(o.conformers)
			row[4] = formatEnergy(o.minEnergy)
			row[5] = formatEnergy(o.span)
		}
		rows = append(rows, row)
	}

	fmt.Fprintln(w)
	if len(rows) > 0 {
		fmt.Fprintln(w, renderTable(headers, rows, aligns))
	}
	fmt.Fprintf(w, "Processed: %d molecules\n", len(r.outcomes))
	fmt.Fprintf(w, "Succeeded: %d\n", succeeded)
	if failed := len(r.outcomes) - succeeded; failed > 0 {
		fmt.Fprintf(w, "Failed: %d\n", failed)
	}
	if r.skipped > 0 {
		fmt.Fprintf(w, "Skipped: %d molecules (validation errors)\n", r.skipped)
	}
}
