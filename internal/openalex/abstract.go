package openalex

import (
	"sort"
	"strings"
)

// maxAbstractWords guards against pathological inverted indexes; real
// abstracts are a few hundred words.
const maxAbstractWords = 100000

// ReconstructAbstract rebuilds abstract text from the API's inverted-index
// representation (word -> positions at which it occurs). Pairs are
// flattened, sorted by position, and joined with single spaces. Two words
// claiming the same position keep their flattening order; which word comes
// first is unspecified since it follows map iteration. Returns nil for a
// nil or empty index so "no abstract" stays distinguishable from an empty
// abstract.
func ReconstructAbstract(index map[string][]int) *string {
	if len(index) == 0 {
		return nil
	}

	total := 0
	for _, positions := range index {
		total += len(positions)
	}
	if total == 0 || total > maxAbstractWords {
		return nil
	}

	type posWord struct {
		pos  int
		word string
	}
	pairs := make([]posWord, 0, total)
	for word, positions := range index {
		for _, pos := range positions {
			pairs = append(pairs, posWord{pos: pos, word: word})
		}
	}
	sort.SliceStable(pairs, func(i, j int) bool {
		return pairs[i].pos < pairs[j].pos
	})

	var b strings.Builder
	b.Grow(total * 7)
	for i, p := range pairs {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(p.word)
	}
	text := b.String()
	return &text
}
