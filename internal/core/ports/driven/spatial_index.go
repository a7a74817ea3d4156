package driven

import (
	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/geometry"
)

// SpatialIndex answers bounding-box range queries over one snapshot's
// units. It prunes the pairwise search space so only bbox-intersecting
// candidates reach the expensive geometric intersection.
type SpatialIndex interface {
	// Query returns the indices (into the indexed unit slice) of all
	// units whose bounding box intersects b.
	Query(b geometry.Bounds) []int

	// Len returns the number of indexed units.
	Len() int
}

// SpatialIndexFactory builds a SpatialIndex over a snapshot's units.
// An index is built once per snapshot-pair run and read-only afterwards.
type SpatialIndexFactory interface {
	Build(units []domain.UnitInstance) SpatialIndex
}
