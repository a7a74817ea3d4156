package names

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases and trims", "  Halifax  ", "halifax"},
		{"strips diacritics", "Trois-Rivières", "trois rivieres"},
		{"expands st", "St. Anne", "saint anne"},
		{"expands ste", "Ste Agathe", "sainte agathe"},
		{"folds township", "Gloucester Township", "gloucester twp"},
		{"folds twnship variant", "Gloucester Twnship", "gloucester twp"},
		{"collapses punctuation", "L'Île-d'Orléans", "l ile d orleans"},
		{"empty", "   ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestRatio_Identical(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("Malvern", "Malvern"))
}

func TestRatio_CaseAndDiacriticInsensitive(t *testing.T) {
	assert.Equal(t, 1.0, Ratio("MONTRÉAL", "montreal"))
}

func TestRatio_MissingNameScoresZero(t *testing.T) {
	assert.Equal(t, 0.0, Ratio("", "Malvern"))
	assert.Equal(t, 0.0, Ratio("Malvern", ""))
	assert.Equal(t, 0.0, Ratio("", ""))
}

func TestRatio_SingleEdit(t *testing.T) {
	// One substitution over seven runes.
	assert.InDelta(t, 1.0-1.0/7.0, Ratio("Melvern", "Malvern"), 1e-9)
}

func TestRatio_Disjoint(t *testing.T) {
	assert.Less(t, Ratio("Berlin", "Kitchener"), 0.40)
}

func TestScorer_Weights(t *testing.T) {
	s := NewScorer(0.7, 0.3)

	// Unit names one edit apart, parents identical.
	got := s.Score("Melvern", "Malvern", "York", "York")
	want := 0.7*(1.0-1.0/7.0) + 0.3*1.0
	assert.InDelta(t, want, got, 1e-9)
}

func TestScorer_MissingParent(t *testing.T) {
	s := NewScorer(0.7, 0.3)

	got := s.Score("Malvern", "Malvern", "", "York")
	assert.InDelta(t, 0.7, got, 1e-9)
}

func TestScorer_Memoises(t *testing.T) {
	s := NewScorer(0.7, 0.3)

	first := s.Score("Melvern", "Malvern", "York", "York")
	second := s.Score("Melvern", "Malvern", "York", "York")

	assert.Equal(t, first, second)
	assert.Len(t, s.memo, 2)
}
