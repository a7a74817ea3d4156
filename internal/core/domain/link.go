package domain

// RelationType classifies the spatial relationship between a from-unit and
// a to-unit across consecutive snapshots.
type RelationType string

const (
	// RelationSameAs marks near-identical footprints.
	RelationSameAs RelationType = "SAME_AS"

	// RelationContains marks a later unit almost entirely inside the
	// earlier one (the earlier unit was subdivided).
	RelationContains RelationType = "CONTAINS"

	// RelationWithin marks an earlier unit almost entirely inside the
	// later one (absorption or merger).
	RelationWithin RelationType = "WITHIN"

	// RelationOverlaps marks significant partial overlap.
	RelationOverlaps RelationType = "OVERLAPS"
)

// Tier is the confidence tier attached to every link: whether the
// automated classification can be trusted without manual review.
type Tier string

const (
	// TierHigh marks links safe to consume directly.
	TierHigh Tier = "high"

	// TierAmbiguous marks links surfaced for manual QA.
	TierAmbiguous Tier = "ambiguous"
)

// OverlapMetrics are the polygon overlap measurements for one candidate
// pair. All three ratios lie in [0, 1] and IoU never exceeds either
// containment fraction.
type OverlapMetrics struct {
	// IntersectionArea is the area shared by both polygons.
	IntersectionArea float64

	// UnionArea is the combined area of both polygons.
	UnionArea float64

	// IoU is intersection over union.
	IoU float64

	// FromFraction is the share of the from-polygon inside the
	// intersection.
	FromFraction float64

	// ToFraction is the share of the to-polygon inside the intersection.
	ToFraction float64
}

// NewOverlapMetrics derives the full metric set from an intersection area
// and the two polygon areas. Callers guarantee positive areas; zero-area
// polygons are dropped at load time.
func NewOverlapMetrics(intersection, fromArea, toArea float64) OverlapMetrics {
	union := fromArea + toArea - intersection
	m := OverlapMetrics{
		IntersectionArea: intersection,
		UnionArea:        union,
	}
	if union > 0 {
		m.IoU = intersection / union
	}
	if fromArea > 0 {
		m.FromFraction = intersection / fromArea
	}
	if toArea > 0 {
		m.ToFraction = intersection / toArea
	}
	return m
}

// RelationshipLink is one directed edge from an earlier snapshot's unit to
// a later snapshot's unit. Links form a multigraph: a unit may match
// several counterparts (splits and mergers), and every qualifying pair is
// retained as an independent edge.
type RelationshipLink struct {
	FromID   string
	ToID     string
	FromName string
	ToName   string

	Type           RelationType
	Tier           Tier
	Metrics        OverlapMetrics
	NameSimilarity float64

	YearFrom int
	YearTo   int
}

// PairSummary is the user-visible accounting for one snapshot-pair run.
// Every candidate ends up in exactly one of emitted, skipped or failed, so
// silent data loss cannot go unnoticed.
type PairSummary struct {
	// FromUnits and ToUnits are the input sizes after load validation.
	FromUnits int
	ToUnits   int

	// CandidatePairs counts pairs surviving bounding-box pruning.
	CandidatePairs int

	// Emitted counts pairs classified into either tier.
	Emitted int

	// Skipped counts pairs below every classification floor.
	Skipped int

	// Failed counts pairs whose overlap computation failed even against
	// repaired geometry.
	Failed int

	// Confident and Ambiguous count emitted links per tier.
	Confident int
	Ambiguous int
}

// PairResult is the complete output of one snapshot-pair run.
type PairResult struct {
	YearFrom int
	YearTo   int

	// Confident and Ambiguous are the two tier partitions, each sorted by
	// (FromID, ToID) for reproducible output.
	Confident []RelationshipLink
	Ambiguous []RelationshipLink

	Summary PairSummary
}
