// Package cli implements the command-line driving adapter. Commands wire
// the driven adapters to the core services; all linking and resolution
// logic lives behind the driving ports.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/openhgis/arealink/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "arealink",
	Short: "Link administrative-unit polygons across time snapshots",
	Long: `arealink links administrative-unit polygons across historical time
snapshots: it classifies spatial relationships between consecutive
snapshots (same unit, subdivision, absorption, partial overlap) and
resolves canonical names over chains of near-identical footprints.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to TOML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
