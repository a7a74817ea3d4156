package driving

import (
	"context"

	"github.com/openhgis/arealink/internal/core/domain"
)

// CanonicalResolver builds identity chains from the catalogued cross-pair
// identity links and decides a consensus name per chain.
type CanonicalResolver interface {
	// Resolve returns one decision per chain member, sorted by
	// (Year, UnitID).
	Resolve(ctx context.Context) ([]domain.CanonicalNameDecision, error)
}
