package domain

import "fmt"

// Thresholds is the documented, overridable classification policy. The
// defaults were tuned on Canadian census subdivision layers; every value
// can be overridden via the TOML config file or CLI flags.
type Thresholds struct {
	// SameAsIoU is the exclusive IoU floor for SAME_AS links.
	SameAsIoU float64 `toml:"same_as_iou"`

	// ContainsFraction is the exclusive to_fraction floor for CONTAINS:
	// the later unit sits almost entirely inside the earlier one.
	ContainsFraction float64 `toml:"contains_fraction"`

	// WithinFraction is the exclusive from_fraction floor for WITHIN:
	// the earlier unit sits almost entirely inside the later one.
	WithinFraction float64 `toml:"within_fraction"`

	// OverlapIoU is the exclusive IoU floor for OVERLAPS. Pairs at or
	// below it are not emitted at all.
	OverlapIoU float64 `toml:"overlap_iou"`

	// NameSimilarityHigh gates SAME_AS into the high-confidence tier.
	// SAME_AS links below it stay ambiguous: strong spatial identity with
	// a name mismatch is the transcription-error signal.
	NameSimilarityHigh float64 `toml:"name_similarity_high"`

	// ChainIoU is the inclusive IoU floor for links feeding identity
	// chains. Near-perfect overlap is the strongest signal that two
	// instances share a footprint.
	ChainIoU float64 `toml:"chain_iou"`

	// ChainAvgSimilarity and ChainMinSimilarity gate canonical-name
	// application; chains below either keep their original names so a
	// genuine rename is never "corrected" away.
	ChainAvgSimilarity float64 `toml:"chain_avg_similarity"`
	ChainMinSimilarity float64 `toml:"chain_min_similarity"`

	// UnitNameWeight and ParentNameWeight combine the two name ratios
	// into one similarity score.
	UnitNameWeight   float64 `toml:"unit_name_weight"`
	ParentNameWeight float64 `toml:"parent_name_weight"`
}

// DefaultThresholds returns the tuned defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{
		SameAsIoU:          0.98,
		ContainsFraction:   0.95,
		WithinFraction:     0.95,
		OverlapIoU:         0.30,
		NameSimilarityHigh: 0.80,
		ChainIoU:           0.999,
		ChainAvgSimilarity: 0.70,
		ChainMinSimilarity: 0.60,
		UnitNameWeight:     0.7,
		ParentNameWeight:   0.3,
	}
}

// Validate checks that every threshold is a sensible ratio.
func (t Thresholds) Validate() error {
	ratios := map[string]float64{
		"same_as_iou":          t.SameAsIoU,
		"contains_fraction":    t.ContainsFraction,
		"within_fraction":      t.WithinFraction,
		"overlap_iou":          t.OverlapIoU,
		"name_similarity_high": t.NameSimilarityHigh,
		"chain_iou":            t.ChainIoU,
		"chain_avg_similarity": t.ChainAvgSimilarity,
		"chain_min_similarity": t.ChainMinSimilarity,
	}
	for name, v := range ratios {
		if v < 0 || v > 1 {
			return fmt.Errorf("%w: %s must be in [0, 1], got %g", ErrInvalidInput, name, v)
		}
	}
	if t.UnitNameWeight < 0 || t.ParentNameWeight < 0 {
		return fmt.Errorf("%w: name weights must be non-negative", ErrInvalidInput)
	}
	if t.UnitNameWeight+t.ParentNameWeight == 0 {
		return fmt.Errorf("%w: name weights must not both be zero", ErrInvalidInput)
	}
	return nil
}
