package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/ConfGen/pkg/config"
)

var effectiveParams bool

var paramsCmd = &cobra.Command{
	Use:   "params",
	Short: "Print the configuration as TOML",
	Long: `Print a commented sample configuration holding the defaults. With --effective,
print the configuration after loading --config instead.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !effectiveParams {
			fmt.Fprint(cmd.OutOrStdout(), config.Sample())
			return nil
		}
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		text, err := cfg.Encode()
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	},
}

func init() {
	paramsCmd.Flags().BoolVar(&effectiveParams, "effective", false, "Print the loaded configuration instead of the sample")
}
