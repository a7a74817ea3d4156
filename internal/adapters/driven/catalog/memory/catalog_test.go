package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openhgis/arealink/internal/core/domain"
)

func sameAs(fromID, toID string, yearFrom, yearTo int, iou float64) domain.RelationshipLink {
	return domain.RelationshipLink{
		FromID: fromID, ToID: toID,
		Type: domain.RelationSameAs, Tier: domain.TierHigh,
		Metrics:  domain.OverlapMetrics{IoU: iou},
		YearFrom: yearFrom, YearTo: yearTo,
	}
}

func TestCatalog_IdentityLinks_FiltersAndSorts(t *testing.T) {
	c := NewCatalog()
	ctx := context.Background()

	require.NoError(t, c.ReplacePair(ctx, "run-1", domain.PairResult{
		YearFrom: 1911, YearTo: 1921,
		Confident: []domain.RelationshipLink{sameAs("b1", "c1", 1911, 1921, 1.0)},
	}))
	require.NoError(t, c.ReplacePair(ctx, "run-1", domain.PairResult{
		YearFrom: 1901, YearTo: 1911,
		Confident: []domain.RelationshipLink{
			sameAs("a2", "b2", 1901, 1911, 0.9991),
			sameAs("a1", "b1", 1901, 1911, 1.0),
			{
				FromID: "a3", ToID: "b3",
				Type: domain.RelationOverlaps, Tier: domain.TierAmbiguous,
				Metrics:  domain.OverlapMetrics{IoU: 1.0},
				YearFrom: 1901, YearTo: 1911,
			},
		},
		Ambiguous: []domain.RelationshipLink{sameAs("a4", "b4", 1901, 1911, 0.5)},
	}))

	links, err := c.IdentityLinks(ctx, 0.999)
	require.NoError(t, err)
	require.Len(t, links, 3)
	assert.Equal(t, "a1", links[0].FromID)
	assert.Equal(t, "a2", links[1].FromID)
	assert.Equal(t, "b1", links[2].FromID)
}

func TestCatalog_ReplacePair_Idempotent(t *testing.T) {
	c := NewCatalog()
	ctx := context.Background()

	result := domain.PairResult{
		YearFrom: 1901, YearTo: 1911,
		Confident: []domain.RelationshipLink{sameAs("a1", "b1", 1901, 1911, 1.0)},
	}
	require.NoError(t, c.ReplacePair(ctx, "run-1", result))
	require.NoError(t, c.ReplacePair(ctx, "run-2", result))

	links, err := c.IdentityLinks(ctx, 0.999)
	require.NoError(t, err)
	assert.Len(t, links, 1)
}
