// Package export projects raw OpenAlex works onto the requested field set
// and writes the resulting export document.
package export

import (
	"encoding/json"
	"fmt"

	"github.com/oat-cli/oat/internal/openalex"
)

// AuthorRef is the flattened author entry emitted under "authors".
type AuthorRef struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ORCID    string `json:"orcid"`
	Position string `json:"position,omitempty"`
}

// ConceptRef is the flattened concept entry emitted under "concepts".
type ConceptRef struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SourceRef is the flattened venue emitted under "source".
type SourceRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	ISSN string `json:"issn"`
	Type string `json:"type"`
}

// Formatter projects works onto a pre-validated field set. When the search
// was scoped to specific authors, their IDs drive the one-author rule.
type Formatter struct {
	fields []string
	scoped map[string]struct{}
}

// NewFormatter builds a formatter for the resolved fields. scopedAuthorIDs
// are the canonical author IDs the search was restricted to, or nil for an
// unscoped search.
func NewFormatter(fields []string, scopedAuthorIDs []string) *Formatter {
	f := &Formatter{fields: append([]string(nil), fields...)}
	if len(scopedAuthorIDs) > 0 {
		f.scoped = make(map[string]struct{}, len(scopedAuthorIDs))
		for _, id := range scopedAuthorIDs {
			f.scoped[id] = struct{}{}
		}
	}
	return f
}

// FormatWork projects one work onto the field set. The field set must have
// been validated by the fields package already; an unknown field here is a
// programming error and panics.
func (f *Formatter) FormatWork(w *openalex.Work) Record {
	rec := newRecord(len(f.fields))
	for _, field := range f.fields {
		ext, ok := extractors[field]
		if !ok {
			panic(fmt.Sprintf("export: no extractor for field %q", field))
		}
		key := field
		if ext.key != "" {
			key = ext.key
		}
		if value, include := ext.fn(f, w); include {
			rec.set(key, value)
		}
	}
	return rec
}

// extractor binds a canonical field name to its extraction function and,
// when it differs, the output key.
type extractor struct {
	key string
	fn  func(f *Formatter, w *openalex.Work) (any, bool)
}

func direct(fn func(w *openalex.Work) any) extractor {
	return extractor{fn: func(_ *Formatter, w *openalex.Work) (any, bool) {
		return fn(w), true
	}}
}

var extractors = map[string]extractor{
	"id":                    direct(func(w *openalex.Work) any { return w.ID }),
	"title":                 direct(func(w *openalex.Work) any { return w.Title }),
	"doi":                   direct(func(w *openalex.Work) any { return w.DOI }),
	"type":                  direct(func(w *openalex.Work) any { return w.Type }),
	"language":              direct(func(w *openalex.Work) any { return w.Language }),
	"publication_date":      direct(func(w *openalex.Work) any { return w.PublicationDate }),
	"publication_year":      direct(func(w *openalex.Work) any { return w.PublicationYear }),
	"created_date":          direct(func(w *openalex.Work) any { return w.CreatedDate }),
	"updated_date":          direct(func(w *openalex.Work) any { return w.UpdatedDate }),
	"cited_by_count":        direct(func(w *openalex.Work) any { return w.CitedByCount }),
	"cited_by_api_url":      direct(func(w *openalex.Work) any { return w.CitedByAPIURL }),
	"related_works_api_url": direct(func(w *openalex.Work) any { return w.RelatedWorksAPIURL }),
	"referenced_works":      direct(func(w *openalex.Work) any { return w.ReferencedWorks }),
	"related_works":         direct(func(w *openalex.Work) any { return w.RelatedWorks }),
	"open_access":           direct(func(w *openalex.Work) any { return w.OpenAccess }),
	"primary_location":      direct(func(w *openalex.Work) any { return w.PrimaryLocation }),
	"locations":             direct(func(w *openalex.Work) any { return w.Locations }),

	// The API nests these; reading them straight off the top level would
	// always produce null.
	"year": direct(func(w *openalex.Work) any { return w.PublicationYear }),
	"is_oa": direct(func(w *openalex.Work) any {
		if w.OpenAccess == nil {
			return nil
		}
		return w.OpenAccess.IsOA
	}),

	"abstract":     {fn: extractAbstract},
	"authors":      {fn: extractAuthors},
	"institutions": {fn: extractInstitutions},
	"concepts":     {fn: extractConcepts},
	"keywords":     {fn: extractKeywords},
	"sources":      {key: "source", fn: extractSource},
	"publisher":    {fn: extractPublisher},
}

func extractAbstract(_ *Formatter, w *openalex.Work) (any, bool) {
	if w.Abstract != nil && *w.Abstract != "" {
		return w.Abstract, true
	}
	return openalex.ReconstructAbstract(w.AbstractInvertedIndex), true
}

// extractAuthors applies the one-author rule: for an author-scoped search,
// the first authorship matching a scoped ID; otherwise the first-listed
// author. At most one entry either way.
func extractAuthors(f *Formatter, w *openalex.Work) (any, bool) {
	authors := make([]AuthorRef, 0, 1)
	for _, as := range w.Authorships {
		if as.Author.ID == "" && as.Author.DisplayName == "" {
			continue
		}
		if f.scoped != nil {
			if _, match := f.scoped[as.Author.ID]; !match {
				continue
			}
		}
		authors = append(authors, AuthorRef{
			ID:       as.Author.ID,
			Name:     as.Author.DisplayName,
			ORCID:    as.Author.ORCID,
			Position: as.AuthorPosition,
		})
		break
	}
	return authors, true
}

func extractInstitutions(_ *Formatter, w *openalex.Work) (any, bool) {
	names := make([]string, 0, len(w.Authorships))
	seen := make(map[string]struct{})
	for _, as := range w.Authorships {
		for _, inst := range as.Institutions {
			if inst.DisplayName == "" {
				continue
			}
			if _, dup := seen[inst.DisplayName]; dup {
				continue
			}
			seen[inst.DisplayName] = struct{}{}
			names = append(names, inst.DisplayName)
		}
	}
	return names, true
}

func extractConcepts(_ *Formatter, w *openalex.Work) (any, bool) {
	concepts := make([]ConceptRef, 0, len(w.Concepts))
	for _, c := range w.Concepts {
		concepts = append(concepts, ConceptRef{ID: c.ID, Name: c.DisplayName, Score: c.Score})
	}
	return concepts, true
}

func extractKeywords(_ *Formatter, w *openalex.Work) (any, bool) {
	keywords := make([]string, 0, len(w.Keywords))
	for _, kw := range w.Keywords {
		if kw.DisplayName == "" {
			continue
		}
		keywords = append(keywords, kw.DisplayName)
	}
	return keywords, true
}

// primarySource decodes the venue out of the raw primary_location, or nil
// when there is none.
func primarySource(w *openalex.Work) *SourceRef {
	if len(w.PrimaryLocation) == 0 {
		return nil
	}
	var loc openalex.Location
	if err := json.Unmarshal(w.PrimaryLocation, &loc); err != nil || loc.Source == nil {
		return nil
	}
	issn := loc.Source.ISSNL
	if issn == "" && len(loc.Source.ISSN) > 0 {
		issn = loc.Source.ISSN[0]
	}
	return &SourceRef{
		ID:   loc.Source.ID,
		Name: loc.Source.DisplayName,
		ISSN: issn,
		Type: loc.Source.Type,
	}
}

func extractSource(_ *Formatter, w *openalex.Work) (any, bool) {
	src := primarySource(w)
	if src == nil {
		return nil, true
	}
	return src, true
}

// extractPublisher omits the key entirely when the work has no source,
// rather than emitting null.
func extractPublisher(_ *Formatter, w *openalex.Work) (any, bool) {
	src := primarySource(w)
	if src == nil {
		return nil, false
	}
	return src.Name, true
}
