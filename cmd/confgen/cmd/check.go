package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ConfGen/pkg/config"
	"github.com/ChrisMcGann/ConfGen/pkg/toolkit"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check that the external programs are installed",
	Long:  `Report whether obabel, crest and xtb can be found. Exits non-zero when a required program is missing.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		statuses := toolkit.CheckBinaries(toolkit.Requirements(cfg.OpenBabel.Command, cfg.Crest.Command))
		colorize := shouldColorize(cmd.OutOrStdout())

		rows := make([][]string, 0, len(statuses))
		for _, s := range statuses {
			state := "ok"
			location := s.Path
			if !s.Available {
				state = "missing"
				location = s.Detail
			}
			rows = append(rows, []string{s.Name, s.Command, statusText(state, colorize), location, s.Description})
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderTable(
			[]string{"Program", "Command", "Status", "Location", "Used for"},
			rows, nil,
		))

		if missing := toolkit.MissingRequired(statuses); len(missing) > 0 {
			return fmt.Errorf("%d required program(s) missing", len(missing))
		}
		return nil
	},
}
