// Package memory provides an in-memory link catalog for tests and
// single-process runs that do not need a durable database.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
)

// Catalog is a mutex-guarded in-memory link catalog keyed by snapshot
// pair.
type Catalog struct {
	mu    sync.Mutex
	pairs map[[2]int][]domain.RelationshipLink
}

var _ driven.LinkCatalog = (*Catalog)(nil)

// NewCatalog creates an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{pairs: make(map[[2]int][]domain.RelationshipLink)}
}

// ReplacePair replaces all catalogued links for one snapshot-pair.
func (c *Catalog) ReplacePair(_ context.Context, _ string, result domain.PairResult) error {
	links := make([]domain.RelationshipLink, 0, len(result.Confident)+len(result.Ambiguous))
	links = append(links, result.Confident...)
	links = append(links, result.Ambiguous...)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.pairs[[2]int{result.YearFrom, result.YearTo}] = links
	return nil
}

// IdentityLinks returns every SAME_AS link with IoU >= minIoU, ordered by
// (year_from, from_id, to_id).
func (c *Catalog) IdentityLinks(_ context.Context, minIoU float64) ([]domain.RelationshipLink, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var links []domain.RelationshipLink
	for _, pair := range c.pairs {
		for _, l := range pair {
			if l.Type == domain.RelationSameAs && l.Metrics.IoU >= minIoU {
				links = append(links, l)
			}
		}
	}
	sort.Slice(links, func(i, j int) bool {
		a, b := links[i], links[j]
		if a.YearFrom != b.YearFrom {
			return a.YearFrom < b.YearFrom
		}
		if a.FromID != b.FromID {
			return a.FromID < b.FromID
		}
		return a.ToID < b.ToID
	})
	return links, nil
}

// Close is a no-op.
func (c *Catalog) Close() error {
	return nil
}
