package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ConfGen/pkg/generator"
	"github.com/ChrisMcGann/ConfGen/pkg/reader/sqlite"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [database]",
	Short: "Summarize the runs recorded in a run log",
	Long:  `Print every run recorded in a run log, with one line per molecule and energy statistics of the conformers kept.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := sqlite.Open(args[0])
		if err != nil {
			return err
		}
		defer r.Close()

		runs, err := r.Runs()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(runs) == 0 {
			fmt.Fprintln(out, "No runs recorded.")
			return nil
		}

		colorize := shouldColorize(out)
		for _, run := range runs {
			finished := "unfinished"
			if !run.Finished.IsZero() {
				finished = run.Finished.Local().Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(out, "Run %s\n", run.ID)
			fmt.Fprintf(out, "  Started:  %s\n", run.Started.Local().Format("2006-01-02 15:04:05"))
			fmt.Fprintf(out, "  Finished: %s\n", finished)
			fmt.Fprintf(out, "  Input:    %s\n", run.Input)
			fmt.Fprintf(out, "  Output:   %s\n", run.Output)
			fmt.Fprintf(out, "  Molecules: %d (%d succeeded)\n", run.Molecules, run.Succeeded)

			mols, err := r.Molecules(run.ID)
			if err != nil {
				return err
			}
			rows := make([][]string, 0, len(mols))
			for _, m := range mols {
				row := []string{strconv.Itoa(m.Index), m.Name, statusText(m.Status, colorize), strconv.Itoa(m.Conformers), "", "", "", m.PDBFile}
				if m.Conformers > 0 {
					confs, err := r.Conformers(m.ID)
					if err != nil {
						return err
					}
					energies := make([]float64, len(confs))
					rmsd := make([]float64, len(confs))
					for i, c := range confs {
						energies[i] = c.Energy
						rmsd[i] = c.RMSD
					}
					e := generator.Summarize(energies)
					row[4] = formatEnergy(e.Min)
					row[5] = formatEnergy(e.Max - e.Min)
					row[6] = formatEnergy(generator.Summarize(rmsd).Mean)
				}
				rows = append(rows, row)
			}
			if len(rows) > 0 {
				fmt.Fprintln(out, renderTable(
					[]string{"#", "Molecule", "Status", "Conformers", "E min (kcal/mol)", "ΔE (kcal/mol)", "Mean RMSD (Å)", "Output"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight, alignLeft},
				))
			}
			fmt.Fprintln(out)
		}
		return nil
	},
}
