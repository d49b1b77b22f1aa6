// Package dedup matches newly extracted terms against known ones using a
// normalized edit distance.
package dedup

import (
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

// DefaultThreshold is the maximum normalized distance still considered the same term
const DefaultThreshold = 0.6

// Normalize lowercases and trims a term for comparison
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Distance returns the edit distance between a and b scaled to [0,1] by the
// longer input. Two empty strings have distance 0.
func Distance(a, b string) float64 {
	a, b = Normalize(a), Normalize(b)
	longest := utf8.RuneCountInString(a)
	if n := utf8.RuneCountInString(b); n > longest {
		longest = n
	}
	if longest == 0 {
		return 0
	}
	return float64(levenshtein.ComputeDistance(a, b)) / float64(longest)
}

// Index holds known terms keyed by an opaque value
type Index[V any] struct {
	threshold float64
	entries   []entry[V]
}

type entry[V any] struct {
	text  string
	value V
}

// NewIndex creates an empty index. A non-positive threshold uses DefaultThreshold.
func NewIndex[V any](threshold float64) *Index[V] {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Index[V]{threshold: threshold}
}

// Add registers a known term
func (x *Index[V]) Add(text string, value V) {
	x.entries = append(x.entries, entry[V]{text: Normalize(text), value: value})
}

// Len returns the number of known terms
func (x *Index[V]) Len() int {
	return len(x.entries)
}

// Match returns every known value whose term is within the threshold of text,
// in insertion order.
func (x *Index[V]) Match(text string) []V {
	var out []V
	for _, e := range x.entries {
		if Distance(e.text, text) <= x.threshold {
			out = append(out, e.value)
		}
	}
	return out
}
