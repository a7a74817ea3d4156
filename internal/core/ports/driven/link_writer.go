package driven

import (
	"context"

	"github.com/openhgis/arealink/internal/core/domain"
)

// LinkWriter exports one snapshot-pair's partitioned link sets for
// downstream consumers (graph loaders, provenance tooling). The tabular
// files it produces are the pipeline's entire external output contract.
type LinkWriter interface {
	// WritePair writes both tiers of a pair result, in stable order.
	WritePair(ctx context.Context, result domain.PairResult) error
}

// DecisionWriter exports the canonical-name decision table, keyed by
// (identifier, snapshot).
type DecisionWriter interface {
	WriteDecisions(ctx context.Context, decisions []domain.CanonicalNameDecision) error
}
