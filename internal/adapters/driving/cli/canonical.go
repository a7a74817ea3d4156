package cli

import (
	"github.com/spf13/cobra"

	"github.com/openhgis/arealink/internal/adapters/driven/catalog/sqlite"
	configfile "github.com/openhgis/arealink/internal/adapters/driven/config/file"
	"github.com/openhgis/arealink/internal/adapters/driven/export/csvfile"
	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/services"
)

var (
	canonicalOutDir      string
	canonicalCatalogPath string

	canonicalChainIoU    float64
	canonicalChainAvgSim float64
	canonicalChainMinSim float64
)

var canonicalCmd = &cobra.Command{
	Use:   "canonical",
	Short: "Resolve canonical names over identity chains",
	Long: `Builds identity chains from the catalogued near-perfect SAME_AS links
and decides one consensus name per chain. Chains whose names diverge
beyond the similarity gates keep their original names, so genuine
historical renames are never overwritten.

Run after "link"; the catalog must contain the series' links.`,
	RunE: runCanonical,
}

func init() {
	canonicalCmd.Flags().StringVar(&canonicalOutDir, "out", "", "output directory (default from config)")
	canonicalCmd.Flags().StringVar(&canonicalCatalogPath, "catalog", "", "link catalog database path (default from config)")

	th := domain.DefaultThresholds()
	canonicalCmd.Flags().Float64Var(&canonicalChainIoU, "chain-iou", th.ChainIoU, "IoU floor for identity-chain links")
	canonicalCmd.Flags().Float64Var(&canonicalChainAvgSim, "chain-avg-similarity", th.ChainAvgSimilarity, "average-similarity gate for applying the consensus name")
	canonicalCmd.Flags().Float64Var(&canonicalChainMinSim, "chain-min-similarity", th.ChainMinSimilarity, "minimum-similarity gate for applying the consensus name")

	rootCmd.AddCommand(canonicalCmd)
}

func runCanonical(cmd *cobra.Command, _ []string) error {
	cfg := configfile.Default()
	if configPath != "" {
		loaded, err := configfile.Load(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if canonicalOutDir != "" {
		cfg.Output.Dir = canonicalOutDir
	}
	if canonicalCatalogPath != "" {
		cfg.Output.CatalogPath = canonicalCatalogPath
	}
	flags := cmd.Flags()
	if flags.Changed("chain-iou") {
		cfg.Thresholds.ChainIoU = canonicalChainIoU
	}
	if flags.Changed("chain-avg-similarity") {
		cfg.Thresholds.ChainAvgSimilarity = canonicalChainAvgSim
	}
	if flags.Changed("chain-min-similarity") {
		cfg.Thresholds.ChainMinSimilarity = canonicalChainMinSim
	}
	if err := cfg.Thresholds.Validate(); err != nil {
		return err
	}

	catalog, err := sqlite.NewStore(cfg.Output.CatalogPath)
	if err != nil {
		return err
	}
	defer catalog.Close()

	writer, err := csvfile.New(cfg.Output.Dir)
	if err != nil {
		return err
	}

	resolver := services.NewResolver(catalog, cfg.Thresholds)
	decisions, err := resolver.Resolve(cmd.Context())
	if err != nil {
		return err
	}
	if err := writer.WriteDecisions(cmd.Context(), decisions); err != nil {
		return err
	}

	applied := 0
	for _, d := range decisions {
		if d.ShouldApply && d.OriginalName != d.CanonicalName {
			applied++
		}
	}
	cmd.Printf("Resolved %d canonical-name decisions (%d corrections)\n", len(decisions), applied)
	return nil
}
