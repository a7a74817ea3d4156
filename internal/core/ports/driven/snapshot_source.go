package driven

import (
	"context"

	"github.com/openhgis/arealink/internal/core/domain"
)

// SnapshotSource loads one time-snapshot's polygon records into validated,
// planar-projected unit instances.
//
// Implementations must return domain.ErrSnapshotMissing (wrapped) when the
// referenced layer does not exist, and domain.ErrDuplicateIdentifier when
// two records in the snapshot share an identifier.
type SnapshotSource interface {
	// Load reads, repairs and reprojects the snapshot named by ref.
	Load(ctx context.Context, ref domain.SnapshotRef) (*domain.Snapshot, error)
}
