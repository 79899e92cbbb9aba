package export

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/oat-cli/oat/internal/openalex"
)

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func sampleWork() *openalex.Work {
	return &openalex.Work{
		ID:              "https://openalex.org/W100",
		Title:           strPtr("Coral bleaching thresholds"),
		DOI:             strPtr("https://doi.org/10.1234/reef"),
		Type:            strPtr("article"),
		PublicationDate: strPtr("2023-05-01"),
		PublicationYear: intPtr(2023),
		CitedByCount:    intPtr(42),
		Authorships: []openalex.Authorship{
			{
				AuthorPosition: "first",
				Author:         openalex.Author{ID: "https://openalex.org/A1", DisplayName: "Ada Reef"},
				Institutions:   []openalex.Institution{{ID: "I1", DisplayName: "Ocean Institute"}},
			},
			{
				AuthorPosition: "middle",
				Author:         openalex.Author{ID: "https://openalex.org/A2", DisplayName: "Ben Shoal", ORCID: "https://orcid.org/0000-0001-0000-0002"},
				Institutions:   []openalex.Institution{{ID: "I1", DisplayName: "Ocean Institute"}},
			},
			{
				AuthorPosition: "last",
				Author:         openalex.Author{ID: "https://openalex.org/A3", DisplayName: "Cay Tide"},
				Institutions:   []openalex.Institution{{ID: "I2", DisplayName: "Marine Lab"}},
			},
		},
		Concepts: []openalex.Concept{
			{ID: "C1", DisplayName: "Ecology", Score: 0.9},
			{ID: "C2", DisplayName: "Climate", Score: 0.5},
		},
		Keywords: []openalex.Keyword{
			{DisplayName: "coral"},
			{DisplayName: ""},
			{DisplayName: "bleaching"},
		},
		OpenAccess: &openalex.OpenAccess{IsOA: true, OAStatus: "gold"},
	}
}

func TestFormatWorkScopedAuthor(t *testing.T) {
	f := NewFormatter([]string{"authors"}, []string{"https://openalex.org/A2"})
	rec := f.FormatWork(sampleWork())

	v, ok := rec.Get("authors")
	if !ok {
		t.Fatal("authors missing from record")
	}
	authors := v.([]AuthorRef)
	if len(authors) != 1 {
		t.Fatalf("got %d authors, want exactly 1", len(authors))
	}
	want := AuthorRef{
		ID:       "https://openalex.org/A2",
		Name:     "Ben Shoal",
		ORCID:    "https://orcid.org/0000-0001-0000-0002",
		Position: "middle",
	}
	if authors[0] != want {
		t.Errorf("author = %+v, want %+v", authors[0], want)
	}
}

func TestFormatWorkUnscopedTakesFirstAuthor(t *testing.T) {
	f := NewFormatter([]string{"authors"}, nil)
	rec := f.FormatWork(sampleWork())

	v, _ := rec.Get("authors")
	authors := v.([]AuthorRef)
	if len(authors) != 1 {
		t.Fatalf("got %d authors, want exactly 1", len(authors))
	}
	if authors[0].ID != "https://openalex.org/A1" || authors[0].Position != "first" {
		t.Errorf("author = %+v, want first-listed author", authors[0])
	}
}

func TestFormatWorkScopedAuthorAbsent(t *testing.T) {
	f := NewFormatter([]string{"authors"}, []string{"https://openalex.org/A999"})
	rec := f.FormatWork(sampleWork())

	v, _ := rec.Get("authors")
	if authors := v.([]AuthorRef); len(authors) != 0 {
		t.Errorf("got %d authors, want none when no scoped ID matches", len(authors))
	}
}

func TestFormatWorkNoAuthorships(t *testing.T) {
	f := NewFormatter([]string{"authors"}, nil)
	rec := f.FormatWork(&openalex.Work{ID: "W1"})

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	if got := string(data); got != `{"authors":[]}` {
		t.Errorf("marshaled = %s, want empty list not null", got)
	}
}

func TestFormatWorkInstitutionsDeduped(t *testing.T) {
	f := NewFormatter([]string{"institutions"}, nil)
	rec := f.FormatWork(sampleWork())

	v, _ := rec.Get("institutions")
	want := []string{"Ocean Institute", "Marine Lab"}
	if got := v.([]string); !reflect.DeepEqual(got, want) {
		t.Errorf("institutions = %v, want %v", got, want)
	}
}

func TestFormatWorkConceptsAndKeywords(t *testing.T) {
	f := NewFormatter([]string{"concepts", "keywords"}, nil)
	rec := f.FormatWork(sampleWork())

	v, _ := rec.Get("concepts")
	concepts := v.([]ConceptRef)
	if len(concepts) != 2 || concepts[0].Name != "Ecology" || concepts[0].Score != 0.9 {
		t.Errorf("concepts = %+v", concepts)
	}

	v, _ = rec.Get("keywords")
	want := []string{"coral", "bleaching"}
	if got := v.([]string); !reflect.DeepEqual(got, want) {
		t.Errorf("keywords = %v, want %v (blank names dropped)", got, want)
	}
}

func TestFormatWorkSource(t *testing.T) {
	tests := []struct {
		name     string
		location string
		want     *SourceRef
	}{
		{
			name:     "issn_l preferred",
			location: `{"source":{"id":"S1","display_name":"Reef Letters","issn_l":"1111-2222","issn":["3333-4444"],"type":"journal"}}`,
			want:     &SourceRef{ID: "S1", Name: "Reef Letters", ISSN: "1111-2222", Type: "journal"},
		},
		{
			name:     "falls back to first issn",
			location: `{"source":{"id":"S2","display_name":"Tide Journal","issn":["5555-6666","7777-8888"],"type":"journal"}}`,
			want:     &SourceRef{ID: "S2", Name: "Tide Journal", ISSN: "5555-6666", Type: "journal"},
		},
		{
			name:     "no source",
			location: `{"source":null}`,
			want:     nil,
		},
		{
			name:     "null location",
			location: `null`,
			want:     nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := &openalex.Work{ID: "W1", PrimaryLocation: json.RawMessage(tt.location)}
			f := NewFormatter([]string{"sources"}, nil)
			rec := f.FormatWork(w)

			v, ok := rec.Get("source")
			if !ok {
				t.Fatal("source key missing; sources must emit under the source key")
			}
			if tt.want == nil {
				if v != nil {
					t.Errorf("source = %v, want nil", v)
				}
				return
			}
			if got := v.(*SourceRef); *got != *tt.want {
				t.Errorf("source = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestFormatWorkPublisherOmittedWithoutSource(t *testing.T) {
	f := NewFormatter([]string{"id", "publisher"}, nil)

	rec := f.FormatWork(&openalex.Work{ID: "W1"})
	if _, ok := rec.Get("publisher"); ok {
		t.Error("publisher must be omitted, not null, when the work has no source")
	}

	withSource := &openalex.Work{
		ID:              "W2",
		PrimaryLocation: json.RawMessage(`{"source":{"id":"S1","display_name":"Reef Letters"}}`),
	}
	rec = f.FormatWork(withSource)
	v, ok := rec.Get("publisher")
	if !ok || v.(string) != "Reef Letters" {
		t.Errorf("publisher = %v (present=%v), want Reef Letters", v, ok)
	}
}

func TestFormatWorkAbstractPreference(t *testing.T) {
	index := map[string][]int{"From": {0}, "the": {1}, "index": {2}}

	plain := &openalex.Work{Abstract: strPtr("Plain abstract wins"), AbstractInvertedIndex: index}
	fromIndex := &openalex.Work{AbstractInvertedIndex: index}
	neither := &openalex.Work{}

	f := NewFormatter([]string{"abstract"}, nil)

	v, _ := f.FormatWork(plain).Get("abstract")
	if got := *v.(*string); got != "Plain abstract wins" {
		t.Errorf("abstract = %q, want the source-provided text", got)
	}

	v, _ = f.FormatWork(fromIndex).Get("abstract")
	if got := *v.(*string); got != "From the index" {
		t.Errorf("abstract = %q, want reconstruction", got)
	}

	v, _ = f.FormatWork(neither).Get("abstract")
	if v.(*string) != nil {
		t.Errorf("abstract = %v, want nil when nothing is available", v)
	}
}

func TestFormatWorkNestedFields(t *testing.T) {
	f := NewFormatter([]string{"is_oa", "year"}, nil)

	rec := f.FormatWork(sampleWork())
	if v, _ := rec.Get("is_oa"); v != true {
		t.Errorf("is_oa = %v, want true", v)
	}
	if v, _ := rec.Get("year"); *v.(*int) != 2023 {
		t.Errorf("year = %v, want 2023", v)
	}

	rec = f.FormatWork(&openalex.Work{ID: "W1"})
	if v, _ := rec.Get("is_oa"); v != nil {
		t.Errorf("is_oa = %v, want nil without open_access", v)
	}
}

func TestFormatWorkAbsentDirectFieldsAreNull(t *testing.T) {
	f := NewFormatter([]string{"id", "title", "doi", "cited_by_count"}, nil)
	rec := f.FormatWork(&openalex.Work{ID: "W1"})

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	want := `{"id":"W1","title":null,"doi":null,"cited_by_count":null}`
	if string(data) != want {
		t.Errorf("marshaled = %s, want %s", data, want)
	}
}

func TestFormatWorkUnknownFieldPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for a field the resolver should have rejected")
		}
	}()
	f := NewFormatter([]string{"no_such_field"}, nil)
	f.FormatWork(sampleWork())
}

func TestRecordMarshalPreservesFieldOrder(t *testing.T) {
	fields := []string{"type", "id", "title"}
	f := NewFormatter(fields, nil)
	rec := f.FormatWork(sampleWork())

	data, err := json.Marshal(rec)
	if err != nil {
		t.Fatal(err)
	}
	got := string(data)
	if !strings.HasPrefix(got, `{"type":`) {
		t.Errorf("first key should be type: %s", got)
	}
	if strings.Index(got, `"id"`) > strings.Index(got, `"title"`) {
		t.Errorf("id must precede title: %s", got)
	}
}

func TestRecordMarshalDoesNotEscapeHTML(t *testing.T) {
	w := &openalex.Work{ID: "W1", Title: strPtr("Growth of <i>Acropora</i> & friends")}
	f := NewFormatter([]string{"title"}, nil)

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(f.FormatWork(w)); err != nil {
		t.Fatal(err)
	}
	got := buf.String()
	if strings.Contains(got, `\u003c`) || strings.Contains(got, `\u0026`) {
		t.Errorf("HTML characters must not be escaped: %s", got)
	}
	if !strings.Contains(got, "<i>Acropora</i> & friends") {
		t.Errorf("title must survive byte-for-byte: %s", got)
	}
}
