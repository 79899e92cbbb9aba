package fields

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		include []string
		exclude []string
		want    []string
	}{
		{
			name: "empty include yields core set",
			want: []string{"id", "title", "abstract", "authors", "publication_date", "doi", "type"},
		},
		{
			name:    "aliases expand to canonical names",
			include: []string{"date", "citations"},
			want:    []string{"publication_date", "cited_by_count"},
		},
		{
			name:    "exclude removes from core",
			exclude: []string{"abstract"},
			want:    []string{"id", "title", "authors", "publication_date", "doi", "type"},
		},
		{
			name:    "exclude via alias",
			exclude: []string{"author", "date"},
			want:    []string{"id", "title", "abstract", "doi", "type"},
		},
		{
			name:    "include order preserved with duplicates dropped",
			include: []string{"title", "TITLE", "date", "publication_date", "doi"},
			want:    []string{"title", "publication_date", "doi"},
		},
		{
			name:    "whitespace and case normalized",
			include: []string{"  Title ", "DOI"},
			want:    []string{"title", "doi"},
		},
		{
			name:    "open_access alias shadows the canonical field",
			include: []string{"open_access", "oa"},
			want:    []string{"is_oa"},
		},
		{
			name:    "extended fields accepted",
			include: []string{"concepts", "cited_by_count", "year"},
			want:    []string{"concepts", "cited_by_count", "year"},
		},
		{
			name:    "excluding an absent field is a no-op",
			include: []string{"title"},
			exclude: []string{"concepts"},
			want:    []string{"title"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.include, tt.exclude)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestResolveCollectsAllInvalid(t *testing.T) {
	_, err := Resolve([]string{"bogus", "title", "nope"}, []string{"alsobad"})
	if err == nil {
		t.Fatal("Resolve() expected error")
	}

	var invalid *InvalidFieldsError
	if !errors.As(err, &invalid) {
		t.Fatalf("Resolve() error = %T, want *InvalidFieldsError", err)
	}
	want := []string{"bogus", "nope", "alsobad"}
	if !reflect.DeepEqual(invalid.Names, want) {
		t.Errorf("Names = %v, want %v", invalid.Names, want)
	}
	for _, name := range want {
		if !strings.Contains(err.Error(), name) {
			t.Errorf("error message missing %q: %s", name, err)
		}
	}
	if !strings.Contains(err.Error(), "valid fields:") {
		t.Errorf("error message should list valid fields: %s", err)
	}
}

func TestCanonical(t *testing.T) {
	tests := []struct {
		in     string
		want   string
		wantOK bool
	}{
		{"title", "title", true},
		{" Journal ", "sources", true},
		{"CITATIONS", "cited_by_count", true},
		{"oa", "is_oa", true},
		{"publisher", "publisher", true},
		{"nonsense", "nonsense", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Canonical(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("Canonical(%q) = (%q, %v), want (%q, %v)", tt.in, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestAllSortedAndComplete(t *testing.T) {
	all := All()
	if len(all) != len(Core)+len(Extended) {
		t.Fatalf("All() returned %d names, want %d", len(all), len(Core)+len(Extended))
	}
	if !sortedStrings(all) {
		t.Errorf("All() not sorted: %v", all)
	}
	for _, f := range Core {
		if !containsString(all, f) {
			t.Errorf("All() missing core field %q", f)
		}
	}
}

func sortedStrings(s []string) bool {
	for i := 1; i < len(s); i++ {
		if s[i-1] > s[i] {
			return false
		}
	}
	return true
}

func containsString(s []string, v string) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
