package services

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhgis/arealink/internal/core/domain"
	"github.com/openhgis/arealink/internal/core/ports/driven"
	"github.com/openhgis/arealink/internal/geometry"
)

// bruteFactory builds a linear-scan index; correctness only, no pruning
// beyond the bbox test itself.
type bruteFactory struct{}

type bruteIndex struct {
	units []domain.UnitInstance
}

func (bruteFactory) Build(units []domain.UnitInstance) driven.SpatialIndex {
	return bruteIndex{units: units}
}

func (ix bruteIndex) Query(b geometry.Bounds) []int {
	var hits []int
	for i := range ix.units {
		if ix.units[i].Bounds.Intersects(b) {
			hits = append(hits, i)
		}
	}
	return hits
}

func (ix bruteIndex) Len() int {
	return len(ix.units)
}

func testUnit(t *testing.T, gc *geometry.Context, id, name, parent, wkt string) domain.UnitInstance {
	t.Helper()
	g, err := gc.FromWKT(wkt)
	require.NoError(t, err)
	return domain.UnitInstance{
		ID:         id,
		Name:       name,
		ParentName: parent,
		Geom:       g,
		Area:       g.Area(),
		Bounds:     g.Bounds(),
	}
}

func squareWKT(minX, minY, maxX, maxY int) string {
	return fmt.Sprintf("POLYGON ((%d %d, %d %d, %d %d, %d %d, %d %d))",
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY)
}

func TestLinker_LinkPair_SameAs(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "Melvern", "Ontario", squareWKT(0, 0, 10, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "Malvern", "Ontario", squareWKT(0, 0, 10, 10)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, result.Confident, 1)
	assert.Empty(t, result.Ambiguous)

	link := result.Confident[0]
	assert.Equal(t, domain.RelationSameAs, link.Type)
	assert.Equal(t, domain.TierHigh, link.Tier)
	assert.InDelta(t, 1.0, link.Metrics.IoU, 1e-9)
	// 0.7 * ratio(melvern, malvern) + 0.3 * ratio(ontario, ontario)
	assert.InDelta(t, 0.7*(1-1.0/7)+0.3, link.NameSimilarity, 1e-9)
	assert.Equal(t, 1901, link.YearFrom)
	assert.Equal(t, 1911, link.YearTo)
}

func TestLinker_LinkPair_Subdivision(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "Gloucester", "Ontario", squareWKT(0, 0, 10, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "Gloucester North", "Ontario", squareWKT(0, 0, 5, 10)),
		testUnit(t, gc, "b2", "Gloucester South", "Ontario", squareWKT(5, 0, 10, 10)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	// One edge per half: the multigraph keeps every qualifying pair.
	require.Len(t, result.Confident, 2)
	for _, link := range result.Confident {
		assert.Equal(t, domain.RelationContains, link.Type)
		assert.InDelta(t, 1.0, link.Metrics.ToFraction, 1e-9)
		assert.InDelta(t, 0.5, link.Metrics.FromFraction, 1e-9)
		assert.InDelta(t, 0.5, link.Metrics.IoU, 1e-9)
	}
	assert.Equal(t, "b1", result.Confident[0].ToID)
	assert.Equal(t, "b2", result.Confident[1].ToID)
}

func TestLinker_LinkPair_Merger(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "East Half", "Ontario", squareWKT(0, 0, 5, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "Whole", "Ontario", squareWKT(0, 0, 10, 10)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	require.Len(t, result.Confident, 1)
	assert.Equal(t, domain.RelationWithin, result.Confident[0].Type)
	assert.InDelta(t, 1.0, result.Confident[0].Metrics.FromFraction, 1e-9)
}

func TestLinker_LinkPair_PartialOverlap(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "West", "Ontario", squareWKT(0, 0, 10, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "East", "Ontario", squareWKT(5, 0, 15, 10)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	assert.Empty(t, result.Confident)
	require.Len(t, result.Ambiguous, 1)
	assert.Equal(t, domain.RelationOverlaps, result.Ambiguous[0].Type)
	assert.Equal(t, domain.TierAmbiguous, result.Ambiguous[0].Tier)
	assert.InDelta(t, 50.0/150, result.Ambiguous[0].Metrics.IoU, 1e-9)
}

func TestLinker_LinkPair_SkipsNonOverlapping(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "Here", "Ontario", squareWKT(0, 0, 10, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		// Shares only an edge: bbox candidate, zero intersection area.
		testUnit(t, gc, "b1", "Adjacent", "Ontario", squareWKT(10, 0, 20, 10)),
		// Fully disjoint: pruned by the index before any geometry work.
		testUnit(t, gc, "b2", "Elsewhere", "Ontario", squareWKT(100, 100, 110, 110)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	assert.Empty(t, result.Confident)
	assert.Empty(t, result.Ambiguous)
	assert.Equal(t, 1, result.Summary.CandidatePairs)
	assert.Equal(t, 1, result.Summary.Skipped)
	assert.Equal(t, 0, result.Summary.Emitted)
}

func TestLinker_LinkPair_MarginalOverlapNotEmitted(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "West", "Ontario", squareWKT(0, 0, 10, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "East", "Ontario", squareWKT(9, 0, 19, 10)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	assert.Equal(t, 0, result.Summary.Emitted)
	assert.Equal(t, 1, result.Summary.Skipped)
}

func TestLinker_LinkPair_Summary(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a1", "One", "Ontario", squareWKT(0, 0, 10, 10)),
		testUnit(t, gc, "a2", "Two", "Ontario", squareWKT(20, 0, 30, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "One", "Ontario", squareWKT(0, 0, 10, 10)),
		testUnit(t, gc, "b2", "Two", "Ontario", squareWKT(20, 0, 30, 10)),
	}}

	result, err := linker.LinkPair(context.Background(), from, to)
	require.NoError(t, err)

	s := result.Summary
	assert.Equal(t, 2, s.FromUnits)
	assert.Equal(t, 2, s.ToUnits)
	assert.Equal(t, 2, s.CandidatePairs)
	assert.Equal(t, 2, s.Emitted)
	assert.Equal(t, 2, s.Confident)
	assert.Equal(t, 0, s.Ambiguous)
	assert.Equal(t, 0, s.Skipped)
	assert.Equal(t, 0, s.Failed)
}

func TestLinker_LinkPair_Deterministic(t *testing.T) {
	gc := geometry.NewContext()
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())
	ctx := context.Background()

	from := &domain.Snapshot{Year: 1901, Units: []domain.UnitInstance{
		testUnit(t, gc, "a2", "Two", "Ontario", squareWKT(5, 0, 10, 10)),
		testUnit(t, gc, "a1", "One", "Ontario", squareWKT(0, 0, 5, 10)),
	}}
	to := &domain.Snapshot{Year: 1911, Units: []domain.UnitInstance{
		testUnit(t, gc, "b1", "Whole", "Ontario", squareWKT(0, 0, 10, 10)),
	}}

	first, err := linker.LinkPair(ctx, from, to)
	require.NoError(t, err)
	second, err := linker.LinkPair(ctx, from, to)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first.Confident, 2)
	assert.Equal(t, "a1", first.Confident[0].FromID)
	assert.Equal(t, "a2", first.Confident[1].FromID)
}

func TestLinker_LinkPair_RejectsUnorderedYears(t *testing.T) {
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	_, err := linker.LinkPair(context.Background(),
		&domain.Snapshot{Year: 1911}, &domain.Snapshot{Year: 1901})

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLinker_LinkPair_RejectsNilSnapshots(t *testing.T) {
	linker := NewLinker(bruteFactory{}, domain.DefaultThresholds())

	_, err := linker.LinkPair(context.Background(), nil, &domain.Snapshot{Year: 1911})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
