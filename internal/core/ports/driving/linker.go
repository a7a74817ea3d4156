package driving

import (
	"context"

	"github.com/openhgis/arealink/internal/core/domain"
)

// PairLinker classifies the relationships between all candidate pairs of
// two snapshots.
type PairLinker interface {
	// LinkPair runs the overlap, scoring and classification stages for
	// one consecutive snapshot-pair. from.Year must precede to.Year.
	LinkPair(ctx context.Context, from, to *domain.Snapshot) (*domain.PairResult, error)
}

// PipelineRunner executes the full pipeline over an ordered series of
// snapshots: every consecutive pair is linked, exported and catalogued.
// Pairs are independent units of work; one pair's failure or cancellation
// never corrupts another's output.
type PipelineRunner interface {
	// Run links every consecutive pair in refs (which must be sorted by
	// year) and returns the per-pair summaries in series order.
	Run(ctx context.Context, refs []domain.SnapshotRef) ([]domain.PairSummary, error)
}
