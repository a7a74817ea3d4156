package domain

// ChainMember is one unit instance's membership in an identity chain.
type ChainMember struct {
	Year   int
	UnitID string
	Name   string
}

// IdentityChain is a maximal set of unit instances connected by
// near-perfect SAME_AS links across consecutive snapshots: the same
// footprint observed over time under possibly varying names.
type IdentityChain struct {
	// ID identifies the chain in output tables.
	ID string

	// Members are ordered by (Year, UnitID).
	Members []ChainMember
}

// DecisionReason explains why a canonical-name decision was or was not
// applied.
type DecisionReason string

const (
	// ReasonOCRError marks chains whose name variation looks like
	// transcription noise; the consensus name is applied.
	ReasonOCRError DecisionReason = "ocr_error"

	// ReasonNameChange marks chains whose names diverge too much to be
	// noise; originals are preserved (Berlin stays Berlin, Kitchener
	// stays Kitchener).
	ReasonNameChange DecisionReason = "name_change"

	// ReasonSingleInstance marks chains with a single named member, which
	// trivially need no correction.
	ReasonSingleInstance DecisionReason = "single_instance"
)

// CanonicalNameDecision records the consensus outcome for one chain
// member.
type CanonicalNameDecision struct {
	ChainID string
	UnitID  string
	Year    int

	OriginalName  string
	CanonicalName string

	// ShouldApply is true only when the chain's names are similar enough
	// to the consensus to treat variation as transcription noise.
	ShouldApply bool

	// ConsensusCount is how many members carry the consensus name.
	ConsensusCount int

	// AvgSimilarity and MinSimilarity summarise member-name similarity to
	// the consensus across the whole chain.
	AvgSimilarity float64
	MinSimilarity float64

	Reason DecisionReason
}
