package distance

import "github.com/hupe1980/knngraph/vector"

// ObjectFunc is a distance function over string objects.
type ObjectFunc func(a, b vector.Object) float32

// Levenshtein returns the edit distance between the texts of a and b,
// counted in runes.
func Levenshtein(a, b vector.Object) float32 {
	return float32(levenshtein([]rune(a.Text), []rune(b.Text)))
}

func levenshtein(s, t []rune) int {
	if len(s) < len(t) {
		s, t = t, s
	}
	prev := make([]int, len(t)+1)
	curr := make([]int, len(t)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(s); i++ {
		curr[0] = i
		for j := 1; j <= len(t); j++ {
			cost := 1
			if s[i-1] == t[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(t)]
}

// BitHamming returns the number of differing bits between two bit strings.
// Objects without a parsed bit form are compared byte by byte, and the
// length difference counts as mismatches.
func BitHamming(a, b vector.Object) float32 {
	if a.Bits != nil && b.Bits != nil {
		return float32(a.Bits.SymmetricDifferenceCardinality(b.Bits))
	}
	n := min(len(a.Text), len(b.Text))
	diff := max(len(a.Text), len(b.Text)) - n
	for i := 0; i < n; i++ {
		if a.Text[i] != b.Text[i] {
			diff++
		}
	}
	return float32(diff)
}

// BitJaccard returns 1 - |A∩B|/|A∪B| for two bit strings.
// Objects without a parsed bit form are at distance 0 when equal, else 1.
func BitJaccard(a, b vector.Object) float32 {
	if a.Bits == nil || b.Bits == nil {
		if a.Text == b.Text {
			return 0
		}
		return 1
	}
	union := a.Bits.UnionCardinality(b.Bits)
	if union == 0 {
		return 0
	}
	inter := a.Bits.IntersectionCardinality(b.Bits)
	return 1 - float32(inter)/float32(union)
}
