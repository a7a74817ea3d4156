package driven

import (
	"context"

	"github.com/openhgis/arealink/internal/core/domain"
)

// LinkCatalog aggregates classified links across all snapshot-pair runs so
// the canonical-name resolver can consume the full cross-pair graph at
// once. It is internal plumbing, not part of the external output contract.
type LinkCatalog interface {
	// ReplacePair atomically replaces all catalogued links for one
	// snapshot-pair with the given set. Re-running a pair on identical
	// input therefore leaves the catalog set-identical.
	ReplacePair(ctx context.Context, runID string, result domain.PairResult) error

	// IdentityLinks returns every SAME_AS link, from either tier, with
	// IoU at or above minIoU: the near-perfect footprint matches that
	// identity chains are built from.
	IdentityLinks(ctx context.Context, minIoU float64) ([]domain.RelationshipLink, error)

	// Close releases the underlying store.
	Close() error
}
