// Package csvfile writes the pipeline's tabular output contract: two link
// files per snapshot-pair (one per confidence tier), a plain-text pair
// summary, and the canonical-name table. Downstream consumers — graph
// loaders, provenance tooling — treat these files as their entire input.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/logger"
)

// Ensure Writer implements the ports.
var (
	_ driven.LinkWriter     = (*Writer)(nil)
	_ driven.DecisionWriter = (*Writer)(nil)
)

var linkHeader = []string{
	"from_id", "to_id", "relationship_type",
	"iou", "from_fraction", "to_fraction",
	"year_from", "year_to", "name_similarity",
}

var decisionHeader = []string{
	"id", "year", "original_name", "canonical_name",
	"should_apply", "consensus_count",
	"avg_similarity", "min_similarity", "reason",
}

// Writer writes CSV output files into one directory.
type Writer struct {
	dir string
}

// New creates a writer rooted at dir, creating it if needed.
func New(dir string) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &Writer{dir: dir}, nil
}

// WritePair writes links_confident_{from}_{to}.csv,
// links_ambiguous_{from}_{to}.csv and summary_{from}_{to}.txt. Links are
// written in the order they arrive; the linker already sorted them by
// (from_id, to_id).
func (w *Writer) WritePair(_ context.Context, result domain.PairResult) error {
	confident := filepath.Join(w.dir, fmt.Sprintf("links_confident_%d_%d.csv", result.YearFrom, result.YearTo))
	if err := w.writeLinks(confident, result.Confident); err != nil {
		return err
	}
	ambiguous := filepath.Join(w.dir, fmt.Sprintf("links_ambiguous_%d_%d.csv", result.YearFrom, result.YearTo))
	if err := w.writeLinks(ambiguous, result.Ambiguous); err != nil {
		return err
	}
	if err := w.writeSummary(result); err != nil {
		return err
	}
	logger.Info("Wrote %d confident and %d ambiguous links for %d -> %d",
		len(result.Confident), len(result.Ambiguous), result.YearFrom, result.YearTo)
	return nil
}

func (w *Writer) writeLinks(path string, links []domain.RelationshipLink) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(linkHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, l := range links {
		record := []string{
			l.FromID,
			l.ToID,
			string(l.Type),
			ratio4(l.Metrics.IoU),
			ratio4(l.Metrics.FromFraction),
			ratio4(l.Metrics.ToFraction),
			strconv.Itoa(l.YearFrom),
			strconv.Itoa(l.YearTo),
			ratio2(l.NameSimilarity),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing link %s -> %s: %w", l.FromID, l.ToID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	return nil
}

// writeSummary writes the human-readable run accounting, so skipped or
// failed candidates are visible next to the link files they are absent
// from.
func (w *Writer) writeSummary(result domain.PairResult) error {
	path := filepath.Join(w.dir, fmt.Sprintf("summary_%d_%d.txt", result.YearFrom, result.YearTo))
	s := result.Summary

	body := fmt.Sprintf(`Snapshot linkage summary: %d -> %d

Input units (%d): %d
Input units (%d): %d

Candidate pairs:  %d
Emitted links:    %d
  high:           %d
  ambiguous:      %d
Skipped:          %d
Failed:           %d
`,
		result.YearFrom, result.YearTo,
		result.YearFrom, s.FromUnits,
		result.YearTo, s.ToUnits,
		s.CandidatePairs, s.Emitted, s.Confident, s.Ambiguous, s.Skipped, s.Failed)

	body += "\nHigh-confidence breakdown:\n" + breakdown(result.Confident)
	body += "\nAmbiguous breakdown:\n" + breakdown(result.Ambiguous)

	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		return fmt.Errorf("writing summary: %w", err)
	}
	return nil
}

func breakdown(links []domain.RelationshipLink) string {
	counts := make(map[domain.RelationType]int)
	for _, l := range links {
		counts[l.Type]++
	}
	out := ""
	for _, rel := range []domain.RelationType{
		domain.RelationSameAs, domain.RelationContains,
		domain.RelationWithin, domain.RelationOverlaps,
	} {
		if counts[rel] > 0 {
			out += fmt.Sprintf("  %s: %d\n", rel, counts[rel])
		}
	}
	if out == "" {
		out = "  (none)\n"
	}
	return out
}

// WriteDecisions writes canonical_names.csv, keyed by (id, year).
func (w *Writer) WriteDecisions(_ context.Context, decisions []domain.CanonicalNameDecision) error {
	path := filepath.Join(w.dir, "canonical_names.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if err := cw.Write(decisionHeader); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for _, d := range decisions {
		record := []string{
			d.UnitID,
			strconv.Itoa(d.Year),
			d.OriginalName,
			d.CanonicalName,
			strconv.FormatBool(d.ShouldApply),
			strconv.Itoa(d.ConsensusCount),
			ratio2(d.AvgSimilarity),
			ratio2(d.MinSimilarity),
			string(d.Reason),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("writing decision for %s/%d: %w", d.UnitID, d.Year, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flushing %s: %w", path, err)
	}
	logger.Info("Wrote %d canonical-name decisions", len(decisions))
	return nil
}

// ratio4 and ratio2 follow the original output convention: overlap ratios
// to four decimals, similarities to two.
func ratio4(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func ratio2(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
