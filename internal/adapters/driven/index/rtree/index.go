// Package rtree provides an R-tree-backed spatial index adapter. Bounding
// boxes of one snapshot's units are bulk-inserted once per run; range
// queries then prune the candidate-pair search to bbox intersections.
package rtree

import (
	"github.com/tidwall/rtree"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/geometry"
)

// Ensure the adapter implements the ports.
var (
	_ driven.SpatialIndexFactory = (*Factory)(nil)
	_ driven.SpatialIndex        = (*Index)(nil)
)

// Factory builds R-tree indexes over snapshot units.
type Factory struct{}

// NewFactory creates an index factory.
func NewFactory() *Factory {
	return &Factory{}
}

// Build indexes the bounding boxes of all units. The returned index is
// read-only and refers to units by their position in the input slice.
func (f *Factory) Build(units []domain.UnitInstance) driven.SpatialIndex {
	idx := &Index{}
	for i := range units {
		b := units[i].Bounds
		idx.tree.Insert([2]float64{b.MinX, b.MinY}, [2]float64{b.MaxX, b.MaxY}, i)
	}
	return idx
}

// Index answers bounding-box range queries. Safe for concurrent readers
// once built.
type Index struct {
	tree rtree.RTreeG[int]
}

// Query returns the indices of all units whose bounding box intersects b.
func (idx *Index) Query(b geometry.Bounds) []int {
	var hits []int
	idx.tree.Search(
		[2]float64{b.MinX, b.MinY},
		[2]float64{b.MaxX, b.MaxY},
		func(_, _ [2]float64, i int) bool {
			hits = append(hits, i)
			return true
		},
	)
	return hits
}

// Len returns the number of indexed units.
func (idx *Index) Len() int {
	return idx.tree.Len()
}
