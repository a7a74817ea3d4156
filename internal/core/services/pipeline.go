package services

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/core/ports/driving"
	"github.com/openhgis/arealink/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// Pipeline runs the full series: every consecutive snapshot-pair is
// loaded, linked, exported and catalogued as an independent unit of work.
// Pairs share no mutable state — each loads its own snapshots — so a
// failed pair is simply re-run from scratch while the others stand.
type Pipeline struct {
	source   driven.SnapshotSource
	linker   driving.PairLinker
	writer   driven.LinkWriter
	catalog  driven.LinkCatalog
	parallel int
}

// NewPipeline creates a pipeline runner. parallel bounds the number of
// concurrently running pairs; zero or negative means one worker per CPU.
func NewPipeline(
	source driven.SnapshotSource,
	linker driving.PairLinker,
	writer driven.LinkWriter,
	catalog driven.LinkCatalog,
	parallel int,
) *Pipeline {
	if parallel <= 0 {
		parallel = runtime.NumCPU()
	}
	return &Pipeline{
		source:   source,
		linker:   linker,
		writer:   writer,
		catalog:  catalog,
		parallel: parallel,
	}
}

// Run links every consecutive pair in refs. A pair-level failure is
// logged, recorded and returned, but never aborts the other pairs.
func (p *Pipeline) Run(ctx context.Context, refs []domain.SnapshotRef) ([]domain.PairSummary, error) {
	if len(refs) < 2 {
		return nil, fmt.Errorf("%w: need at least two snapshots, got %d", domain.ErrInvalidInput, len(refs))
	}
	for i := 1; i < len(refs); i++ {
		if refs[i-1].Year >= refs[i].Year {
			return nil, fmt.Errorf("%w: snapshots must be sorted by year", domain.ErrInvalidInput)
		}
	}

	runID := uuid.NewString()
	logger.Info("Run %s: %d snapshot pairs, parallelism %d", runID, len(refs)-1, p.parallel)

	summaries := make([]domain.PairSummary, len(refs)-1)
	pairErrs := make([]error, len(refs)-1)

	var g errgroup.Group
	g.SetLimit(p.parallel)
	for i := 0; i < len(refs)-1; i++ {
		i := i
		from, to := refs[i], refs[i+1]
		g.Go(func() error {
			summary, err := p.runPair(ctx, runID, from, to)
			if err != nil {
				logger.Error("pair %d -> %d failed: %v", from.Year, to.Year, err)
				pairErrs[i] = fmt.Errorf("pair %d -> %d: %w", from.Year, to.Year, err)
				return nil // a failed pair never aborts the others
			}
			summaries[i] = summary
			return nil
		})
	}
	_ = g.Wait()

	return summaries, errors.Join(pairErrs...)
}

// runPair executes one snapshot-pair end to end.
func (p *Pipeline) runPair(ctx context.Context, runID string, fromRef, toRef domain.SnapshotRef) (domain.PairSummary, error) {
	from, err := p.source.Load(ctx, fromRef)
	if err != nil {
		return domain.PairSummary{}, fmt.Errorf("loading snapshot %d: %w", fromRef.Year, err)
	}
	to, err := p.source.Load(ctx, toRef)
	if err != nil {
		return domain.PairSummary{}, fmt.Errorf("loading snapshot %d: %w", toRef.Year, err)
	}

	result, err := p.linker.LinkPair(ctx, from, to)
	if err != nil {
		return domain.PairSummary{}, err
	}

	if err := p.writer.WritePair(ctx, *result); err != nil {
		return domain.PairSummary{}, fmt.Errorf("writing pair output: %w", err)
	}
	if err := p.catalog.ReplacePair(ctx, runID, *result); err != nil {
		return domain.PairSummary{}, fmt.Errorf("cataloguing pair links: %w", err)
	}
	return result.Summary, nil
}
