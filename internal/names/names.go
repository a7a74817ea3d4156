// Package names provides normalisation and similarity scoring for
// administrative-unit names. Historical sources mix spellings, diacritics
// and abbreviations freely ("Ste. Anne" vs "Sainte Anne", "Gloucester Twp"
// vs "Gloucester Township"), so names are folded to a canonical form before
// comparison and scored with a normalised edit-distance ratio.
package names

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/agnivade/levenshtein"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	saintRe    = regexp.MustCompile(`\bst\.?\b`)
	sainteRe   = regexp.MustCompile(`\bste\.?\b`)
	townshipRe = regexp.MustCompile(`\b(?:township|twnship|townsh|tw)\b`)
	nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]+`)
	spacesRe   = regexp.MustCompile(`\s+`)

	// Strips combining marks after NFD decomposition, so "Trois-Rivières"
	// and "Trois-Rivieres" normalise identically.
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// Normalize folds a name to its comparison form: lower case, diacritics
// removed, common historical abbreviations expanded, punctuation collapsed
// to single spaces.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	if folded, _, err := transform.String(deaccent, s); err == nil {
		s = folded
	}
	s = sainteRe.ReplaceAllString(s, "sainte")
	s = saintRe.ReplaceAllString(s, "saint")
	s = townshipRe.ReplaceAllString(s, "twp")
	s = nonAlnumRe.ReplaceAllString(s, " ")
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Ratio returns the normalised edit-distance similarity of two names in
// [0, 1]. Both names are folded with Normalize first. A missing name on
// either side scores 0: absence of evidence is not a match.
func Ratio(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}
	maxLen := len([]rune(na))
	if l := len([]rune(nb)); l > maxLen {
		maxLen = l
	}
	dist := levenshtein.ComputeDistance(na, nb)
	if dist >= maxLen {
		return 0
	}
	return 1 - float64(dist)/float64(maxLen)
}

// Scorer computes weighted pair similarity between unit and parent-division
// names. It memoises ratios for the lifetime of one snapshot-pair run; a
// Scorer must not be shared between concurrent runs.
type Scorer struct {
	unitWeight   float64
	parentWeight float64
	memo         map[string]float64
}

// NewScorer creates a scorer with the given unit/parent name weights.
func NewScorer(unitWeight, parentWeight float64) *Scorer {
	return &Scorer{
		unitWeight:   unitWeight,
		parentWeight: parentWeight,
		memo:         make(map[string]float64),
	}
}

// Score returns the combined name similarity for a candidate pair:
// unitWeight·ratio(unit names) + parentWeight·ratio(parent names).
func (s *Scorer) Score(fromName, toName, fromParent, toParent string) float64 {
	return s.unitWeight*s.ratio(fromName, toName) + s.parentWeight*s.ratio(fromParent, toParent)
}

func (s *Scorer) ratio(a, b string) float64 {
	key := a + "\x00" + b
	if v, ok := s.memo[key]; ok {
		return v
	}
	v := Ratio(a, b)
	s.memo[key] = v
	return v
}
