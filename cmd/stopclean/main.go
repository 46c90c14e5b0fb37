// Command stopclean recodes yearly stop-and-frisk extracts into one
// standardized table and validates it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	configPath string
	verbose    bool
	dataDir    string
	dbPath     string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "stopclean",
	Short: "Recode and validate yearly stop records",
	Long: `stopclean reads one raw file per year, recodes every partition into the
standardized stop schema, stores the table in SQLite and validates it.

Date layouts are chosen per year from the configured format policy; a year
without a policy fails the run instead of guessing.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "stopclean.yaml", "Path to the YAML configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "Override data_dir from the configuration")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Override storage.path from the configuration")

	validateCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	validateCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when validation does not pass")
	runCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the report as JSON")
	runCmd.Flags().BoolVar(&strict, "strict", false, "Exit non-zero when validation does not pass")
	initCmd.Flags().StringVarP(&initOut, "out", "o", "stopclean.yaml", "Where to write the default configuration")

	rootCmd.AddCommand(recodeCmd, validateCmd, runCmd, initCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
