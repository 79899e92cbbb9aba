package openalex

import (
	"strings"
	"testing"
)

func TestReconstructAbstract(t *testing.T) {
	tests := []struct {
		name  string
		index map[string][]int
		want  string
	}{
		{
			name:  "two words in order",
			index: map[string][]int{"Despite": {0}, "growing": {1}},
			want:  "Despite growing",
		},
		{
			name:  "word with multiple positions",
			index: map[string][]int{"the": {0, 2}, "over": {1}, "fence": {3}},
			want:  "the over the fence",
		},
		{
			name:  "positions out of insertion order",
			index: map[string][]int{"ends": {2}, "it": {1}, "here": {3}, "so": {0}},
			want:  "so it ends here",
		},
		{
			name:  "single word",
			index: map[string][]int{"Abstract": {0}},
			want:  "Abstract",
		},
		{
			name:  "gapped positions still join in order",
			index: map[string][]int{"a": {0}, "c": {7}, "b": {3}},
			want:  "a b c",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ReconstructAbstract(tt.index)
			if got == nil {
				t.Fatalf("ReconstructAbstract() = nil, want %q", tt.want)
			}
			if *got != tt.want {
				t.Errorf("ReconstructAbstract() = %q, want %q", *got, tt.want)
			}
		})
	}
}

func TestReconstructAbstractAbsent(t *testing.T) {
	if got := ReconstructAbstract(nil); got != nil {
		t.Errorf("ReconstructAbstract(nil) = %q, want nil", *got)
	}
	if got := ReconstructAbstract(map[string][]int{}); got != nil {
		t.Errorf("ReconstructAbstract(empty) = %q, want nil", *got)
	}
	// Words mapped to no positions carry no content.
	if got := ReconstructAbstract(map[string][]int{"ghost": {}}); got != nil {
		t.Errorf("ReconstructAbstract(no positions) = %q, want nil", *got)
	}
}

// Reconstruction followed by re-deriving the index recovers the original
// mapping when no word repeats.
func TestReconstructAbstractRoundTrip(t *testing.T) {
	text := "Deep mutational scanning quantifies the functional effects of protein variants"

	index := make(map[string][]int)
	for i, word := range strings.Fields(text) {
		index[word] = append(index[word], i)
	}

	got := ReconstructAbstract(index)
	if got == nil {
		t.Fatal("ReconstructAbstract() = nil, want text")
	}
	if *got != text {
		t.Errorf("round trip mismatch:\n got %q\nwant %q", *got, text)
	}

	rederived := make(map[string][]int)
	for i, word := range strings.Fields(*got) {
		rederived[word] = append(rederived[word], i)
	}
	if len(rederived) != len(index) {
		t.Fatalf("re-derived index has %d words, want %d", len(rederived), len(index))
	}
	for word, positions := range index {
		back := rederived[word]
		if len(back) != len(positions) {
			t.Fatalf("word %q: got positions %v, want %v", word, back, positions)
		}
		for i := range positions {
			if back[i] != positions[i] {
				t.Errorf("word %q: got positions %v, want %v", word, back, positions)
			}
		}
	}
}

// Two words claiming the same position both appear; their relative order is
// unspecified but the result is stable for a given flattening.
func TestReconstructAbstractTiedPositions(t *testing.T) {
	index := map[string][]int{"alpha": {0}, "beta": {0}, "gamma": {1}}

	got := ReconstructAbstract(index)
	if got == nil {
		t.Fatal("ReconstructAbstract() = nil")
	}
	words := strings.Fields(*got)
	if len(words) != 3 {
		t.Fatalf("got %d words (%q), want 3", len(words), *got)
	}
	if words[2] != "gamma" {
		t.Errorf("position 1 word = %q, want %q", words[2], "gamma")
	}
	seen := map[string]bool{words[0]: true, words[1]: true}
	if !seen["alpha"] || !seen["beta"] {
		t.Errorf("tied words = %v, want alpha and beta in some order", words[:2])
	}
}
