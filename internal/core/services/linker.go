package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/core/ports/driving"
	"github.com/openhgis/arealink/internal/logger"
	"github.com/openhgis/arealink/internal/names"
)

// Ensure Linker implements the interface.
var _ driving.PairLinker = (*Linker)(nil)

// Linker runs the overlap, name-scoring and classification stages for one
// consecutive snapshot-pair. A Linker is stateless between calls; every
// LinkPair builds its own spatial index and name-score cache, so parallel
// pair runs stay isolated.
type Linker struct {
	indexFactory driven.SpatialIndexFactory
	thresholds   domain.Thresholds
}

// NewLinker creates a pair linker with the given index factory and
// classification thresholds.
func NewLinker(indexFactory driven.SpatialIndexFactory, th domain.Thresholds) *Linker {
	return &Linker{indexFactory: indexFactory, thresholds: th}
}

// LinkPair classifies every bbox-intersecting candidate pair between the
// two snapshots and partitions the resulting links by confidence tier.
func (l *Linker) LinkPair(ctx context.Context, from, to *domain.Snapshot) (*domain.PairResult, error) {
	if from == nil || to == nil {
		return nil, fmt.Errorf("%w: nil snapshot", domain.ErrInvalidInput)
	}
	if from.Year >= to.Year {
		return nil, fmt.Errorf("%w: snapshot pair must run earlier to later, got %d -> %d",
			domain.ErrInvalidInput, from.Year, to.Year)
	}

	logger.Section(fmt.Sprintf("Linking %d -> %d", from.Year, to.Year))
	logger.Info("From: %d units, To: %d units", len(from.Units), len(to.Units))

	index := l.indexFactory.Build(to.Units)
	scorer := names.NewScorer(l.thresholds.UnitNameWeight, l.thresholds.ParentNameWeight)

	result := &domain.PairResult{
		YearFrom: from.Year,
		YearTo:   to.Year,
		Summary: domain.PairSummary{
			FromUnits: len(from.Units),
			ToUnits:   len(to.Units),
		},
	}

	for i := range from.Units {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fu := &from.Units[i]

		for _, j := range index.Query(fu.Bounds) {
			tu := &to.Units[j]
			result.Summary.CandidatePairs++

			metrics, err := l.overlap(fu, tu)
			if err != nil {
				// Excluded from both tiers; surfaced in the summary.
				logger.Error("overlap %s/%d x %s/%d: %v", fu.ID, from.Year, tu.ID, to.Year, err)
				result.Summary.Failed++
				continue
			}
			if metrics.IntersectionArea == 0 {
				result.Summary.Skipped++
				continue
			}

			nameSim := scorer.Score(fu.Name, tu.Name, fu.ParentName, tu.ParentName)

			rel, tier, ok := classify(metrics, nameSim, l.thresholds)
			if !ok {
				result.Summary.Skipped++
				continue
			}

			link := domain.RelationshipLink{
				FromID:         fu.ID,
				ToID:           tu.ID,
				FromName:       fu.Name,
				ToName:         tu.Name,
				Type:           rel,
				Tier:           tier,
				Metrics:        metrics,
				NameSimilarity: nameSim,
				YearFrom:       from.Year,
				YearTo:         to.Year,
			}
			result.Summary.Emitted++
			if tier == domain.TierHigh {
				result.Confident = append(result.Confident, link)
			} else {
				result.Ambiguous = append(result.Ambiguous, link)
			}
		}

		if (i+1)%500 == 0 {
			logger.Debug("processed %d/%d units", i+1, len(from.Units))
		}
	}

	sortLinks(result.Confident)
	sortLinks(result.Ambiguous)
	result.Summary.Confident = len(result.Confident)
	result.Summary.Ambiguous = len(result.Ambiguous)

	logger.Info("Pair %d -> %d: %d candidates, %d confident, %d ambiguous, %d skipped, %d failed",
		from.Year, to.Year, result.Summary.CandidatePairs,
		result.Summary.Confident, result.Summary.Ambiguous,
		result.Summary.Skipped, result.Summary.Failed)

	return result, nil
}

// overlap computes the pair's overlap metrics. A failed intersection gets
// one retry against validity-repaired geometry before the pair is given up
// as a computation failure.
func (l *Linker) overlap(fu, tu *domain.UnitInstance) (domain.OverlapMetrics, error) {
	inter, err := fu.Geom.IntersectionArea(tu.Geom)
	if err == nil {
		return domain.NewOverlapMetrics(inter, fu.Area, tu.Area), nil
	}

	logger.Warn("retrying %s x %s against repaired geometry: %v", fu.ID, tu.ID, err)
	rf, rerr := fu.Geom.Repair()
	if rerr != nil {
		return domain.OverlapMetrics{}, fmt.Errorf("%w: %w", domain.ErrGeometryRepairFailed, rerr)
	}
	rt, rerr := tu.Geom.Repair()
	if rerr != nil {
		return domain.OverlapMetrics{}, fmt.Errorf("%w: %w", domain.ErrGeometryRepairFailed, rerr)
	}
	inter, err = rf.IntersectionArea(rt)
	if err != nil {
		return domain.OverlapMetrics{}, err
	}
	return domain.NewOverlapMetrics(inter, fu.Area, tu.Area), nil
}

// sortLinks orders links by (FromID, ToID). The order carries no meaning;
// it exists so identical inputs always serialise identically.
func sortLinks(links []domain.RelationshipLink) {
	sort.Slice(links, func(i, j int) bool {
		if links[i].FromID != links[j].FromID {
			return links[i].FromID < links[j].FromID
		}
		return links[i].ToID < links[j].ToID
	})
}
