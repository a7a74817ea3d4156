package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/openhgis/arealink/internal/adapters/driven/catalog/sqlite"
	configfile "github.com/openhgis/arealink/internal/adapters/driven/config/file"
	"github.com/openhgis/arealink/internal/adapters/driven/export/csvfile"
	"github.com/openhgis/arealink/internal/adapters/driven/index/rtree"
	"github.com/openhgis/arealink/internal/adapters/driven/source/geojson"
	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/services"
)

var (
	linkOutDir      string
	linkCatalogPath string
	linkParallel    int

	linkSameAsIoU        float64
	linkContainsFraction float64
	linkWithinFraction   float64
	linkOverlapIoU       float64
	linkNameSimHigh      float64
)

var linkCmd = &cobra.Command{
	Use:   "link [year=path ...]",
	Short: "Link unit polygons across consecutive snapshots",
	Long: `Links every consecutive snapshot pair in the series. Snapshots come
from the config file, from year=path arguments, or both; the series is
sorted by year before pairing.

Each pair produces a confident and an ambiguous link CSV plus a text
summary, and its links are catalogued for the canonical command.`,
	Example: `  arealink link 1901=csd_1901.geojson 1911=csd_1911.geojson --out results
  arealink link --config series.toml`,
	RunE: runLink,
}

func init() {
	linkCmd.Flags().StringVar(&linkOutDir, "out", "", "output directory (default from config)")
	linkCmd.Flags().StringVar(&linkCatalogPath, "catalog", "", "link catalog database path (default from config)")
	linkCmd.Flags().IntVar(&linkParallel, "parallel", 0, "max concurrently linked pairs (0 = one per CPU)")

	th := domain.DefaultThresholds()
	linkCmd.Flags().Float64Var(&linkSameAsIoU, "same-as-iou", th.SameAsIoU, "IoU floor for SAME_AS")
	linkCmd.Flags().Float64Var(&linkContainsFraction, "contains-fraction", th.ContainsFraction, "to_fraction floor for CONTAINS")
	linkCmd.Flags().Float64Var(&linkWithinFraction, "within-fraction", th.WithinFraction, "from_fraction floor for WITHIN")
	linkCmd.Flags().Float64Var(&linkOverlapIoU, "overlap-iou", th.OverlapIoU, "IoU floor for OVERLAPS")
	linkCmd.Flags().Float64Var(&linkNameSimHigh, "name-similarity-high", th.NameSimilarityHigh, "SAME_AS high-confidence name gate")

	rootCmd.AddCommand(linkCmd)
}

// applyThresholdFlags overrides config thresholds with any flag the user
// actually set, so flag defaults never shadow config-file values.
func applyThresholdFlags(cmd *cobra.Command, th *domain.Thresholds) {
	flags := cmd.Flags()
	if flags.Changed("same-as-iou") {
		th.SameAsIoU = linkSameAsIoU
	}
	if flags.Changed("contains-fraction") {
		th.ContainsFraction = linkContainsFraction
	}
	if flags.Changed("within-fraction") {
		th.WithinFraction = linkWithinFraction
	}
	if flags.Changed("overlap-iou") {
		th.OverlapIoU = linkOverlapIoU
	}
	if flags.Changed("name-similarity-high") {
		th.NameSimilarityHigh = linkNameSimHigh
	}
}

// loadConfig resolves the effective configuration from the --config file
// (or defaults) plus command-line overrides.
func loadConfig(args []string) (configfile.Config, error) {
	cfg := configfile.Default()
	if configPath != "" {
		loaded, err := configfile.Load(configPath)
		if err != nil {
			return configfile.Config{}, err
		}
		cfg = loaded
	}

	entries, err := parseSnapshotArgs(args)
	if err != nil {
		return configfile.Config{}, err
	}
	cfg.Snapshots = append(cfg.Snapshots, entries...)

	if linkOutDir != "" {
		cfg.Output.Dir = linkOutDir
	}
	if linkCatalogPath != "" {
		cfg.Output.CatalogPath = linkCatalogPath
	}
	if linkParallel != 0 {
		cfg.Run.Parallel = linkParallel
	}

	if err := cfg.Validate(); err != nil {
		return configfile.Config{}, err
	}
	return cfg, nil
}

// parseSnapshotArgs parses year=path arguments.
func parseSnapshotArgs(args []string) ([]configfile.SnapshotEntry, error) {
	entries := make([]configfile.SnapshotEntry, 0, len(args))
	for _, arg := range args {
		yearStr, path, ok := strings.Cut(arg, "=")
		if !ok || path == "" {
			return nil, fmt.Errorf("%w: snapshot argument %q, expected year=path", domain.ErrInvalidInput, arg)
		}
		year, err := strconv.Atoi(yearStr)
		if err != nil {
			return nil, fmt.Errorf("%w: snapshot year %q is not a number", domain.ErrInvalidInput, yearStr)
		}
		entries = append(entries, configfile.SnapshotEntry{Year: year, Path: path})
	}
	return entries, nil
}

func runLink(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}
	applyThresholdFlags(cmd, &cfg.Thresholds)
	if err := cfg.Thresholds.Validate(); err != nil {
		return err
	}

	source := geojson.New(geojson.Options{
		SourceCRS:      cfg.Input.SourceCRS,
		TargetCRS:      cfg.Input.TargetCRS,
		IDProperty:     cfg.Input.IDProperty,
		NameProperty:   cfg.Input.NameProperty,
		ParentProperty: cfg.Input.ParentProperty,
	})
	writer, err := csvfile.New(cfg.Output.Dir)
	if err != nil {
		return err
	}
	catalog, err := sqlite.NewStore(cfg.Output.CatalogPath)
	if err != nil {
		return err
	}
	defer catalog.Close()

	linker := services.NewLinker(rtree.NewFactory(), cfg.Thresholds)
	pipeline := services.NewPipeline(source, linker, writer, catalog, cfg.Run.Parallel)

	summaries, err := pipeline.Run(cmd.Context(), cfg.Refs())
	if err != nil {
		return err
	}

	refs := cfg.Refs()
	for i, s := range summaries {
		cmd.Printf("%d -> %d: %d links (%d confident, %d ambiguous), %d skipped, %d failed\n",
			refs[i].Year, refs[i+1].Year,
			s.Emitted, s.Confident, s.Ambiguous, s.Skipped, s.Failed)
	}
	cmd.Printf("Output written to %s\n", cfg.Output.Dir)
	return nil
}
