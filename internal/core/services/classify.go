package services

import "github.com/openhgis/arealink/internal/core/domain"

// classify maps one candidate pair's overlap metrics and name similarity
// to a relationship type and confidence tier. It returns false when the
// pair falls below every classification floor and must not be emitted.
//
// Evaluation order matters: near-identical footprints are SAME_AS even
// when both containment fractions are high, and containment takes
// precedence over the generic OVERLAPS bucket.
func classify(m domain.OverlapMetrics, nameSim float64, th domain.Thresholds) (domain.RelationType, domain.Tier, bool) {
	switch {
	case m.IoU > th.SameAsIoU:
		// Strong spatial identity. A name mismatch here is the
		// transcription-error signal, so it demotes the tier, never the
		// relationship.
		if nameSim >= th.NameSimilarityHigh {
			return domain.RelationSameAs, domain.TierHigh, true
		}
		return domain.RelationSameAs, domain.TierAmbiguous, true

	case m.ToFraction > th.ContainsFraction:
		// Later unit almost entirely inside the earlier one: the earlier
		// unit was subdivided.
		return domain.RelationContains, domain.TierHigh, true

	case m.FromFraction > th.WithinFraction:
		// Earlier unit almost entirely inside the later one: absorption
		// or merger.
		return domain.RelationWithin, domain.TierHigh, true

	case m.IoU > th.OverlapIoU:
		return domain.RelationOverlaps, domain.TierAmbiguous, true

	default:
		return "", "", false
	}
}
