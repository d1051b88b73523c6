// Package cmd provides CLI command implementations
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	// Flags for the root command
	smilesInput  string
	sdfInput     string
	inputFormat  string
	outputFile   string
	configFile   string
	minRingSize  int
	topN         int
	energyWindow float64
	crestMethod  string
	cpus         int
	databaseFile string
	writePlot    bool
	keepWorkDir  bool
	logLevel     string
	logFormat    string
)

// Version is the confgen release.
const Version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "confgen (--smiles SMILES | --sdf FILE) --out NAME.pdb",
	Short: "confgen - Macrocycle conformer generation tool",
	Long: `confgen generates 3-D conformers of macrocycles. Structures are embedded with
Open Babel and searched with CREST; every molecule yields a multi-model PDB file
and a statistics report.

Examples:
  # One macrocycle from SMILES
  confgen --smiles 'C1CCCCCCCCCCC1' --out cyclododecane.pdb

  # Every record of an SDF, keeping the 20 lowest conformers within 5 kcal/mol
  confgen --sdf macrocycles.sdf --out mc.pdb --top-n 20 --energy-window 5

  # A SMILES list with a run log and plots
  confgen --sdf library.smi --out lib.pdb --db runs.db --plot`,
	Version:       Version,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runGenerate,
}

// Execute runs the root command; SIGINT and SIGTERM cancel the run.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.AddCommand(paramsCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(summarizeCmd)

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "TOML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: console or json")

	rootCmd.Flags().StringVar(&smilesInput, "smiles", "", "SMILES string of the macrocycle")
	rootCmd.Flags().StringVar(&sdfInput, "sdf", "", "Structure file with the macrocycles (sdf, or smi with one SMILES per line)")
	rootCmd.Flags().StringVar(&inputFormat, "from", "", "Input file format: sdf, smi (auto-detect if not specified)")
	rootCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output PDB file; rotated to NAME_0.pdb, NAME_1.pdb, ...")
	rootCmd.Flags().IntVar(&minRingSize, "min-ring-size", 0, "Smallest ring accepted as a macrocycle (default from config, 10)")
	rootCmd.Flags().IntVar(&topN, "top-n", 0, "Keep only the N lowest-energy conformers (0 = all)")
	rootCmd.Flags().Float64Var(&energyWindow, "energy-window", 0, "Drop conformers above E_min + window kcal/mol (0 = no cutoff)")
	rootCmd.Flags().StringVar(&crestMethod, "method", "", "xtb level used by CREST: gfnff, gfn0, gfn1, gfn2")
	rootCmd.Flags().IntVar(&cpus, "cpus", 0, "CPUs handed to CREST (0 = half the machine)")
	rootCmd.Flags().StringVar(&databaseFile, "db", "", "SQLite run log to append to")
	rootCmd.Flags().BoolVar(&writePlot, "plot", false, "Write an energy-vs-RMSD plot next to every PDB file")
	rootCmd.Flags().BoolVar(&keepWorkDir, "keep-workdir", false, "Keep the CREST scratch directories")
}
