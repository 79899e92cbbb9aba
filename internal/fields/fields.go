// Package fields resolves user-facing field names to the canonical set of
// output fields. Alias expansion runs before membership checks, so an
// alias that shadows a canonical name (open_access) wins.
package fields

import (
	"fmt"
	"sort"
	"strings"
)

// Core is the default field set, included when the user requests nothing
// specific. Order here is the output order.
var Core = []string{
	"id",
	"title",
	"abstract",
	"authors",
	"publication_date",
	"doi",
	"type",
}

// Extended lists the opt-in fields beyond the core set.
var Extended = []string{
	"concepts",
	"keywords",
	"cited_by_count",
	"institutions",
	"sources",
	"publisher",
	"language",
	"is_oa",
	"open_access",
	"primary_location",
	"locations",
	"referenced_works",
	"related_works",
	"year",
	"created_date",
	"updated_date",
	"publication_year",
	"cited_by_api_url",
	"related_works_api_url",
}

// aliases maps alternate spellings onto canonical names.
var aliases = map[string]string{
	"author":         "authors",
	"date":           "publication_date",
	"pub_date":       "publication_date",
	"citation_count": "cited_by_count",
	"citations":      "cited_by_count",
	"institution":    "institutions",
	"source":         "sources",
	"journal":        "sources",
	"venue":          "sources",
	"open_access":    "is_oa",
	"oa":             "is_oa",
}

// Aliases returns a copy of the alias table, alias to canonical name.
func Aliases() map[string]string {
	m := make(map[string]string, len(aliases))
	for k, v := range aliases {
		m[k] = v
	}
	return m
}

var valid = func() map[string]struct{} {
	m := make(map[string]struct{}, len(Core)+len(Extended))
	for _, f := range Core {
		m[f] = struct{}{}
	}
	for _, f := range Extended {
		m[f] = struct{}{}
	}
	return m
}()

// All returns every canonical field name, sorted, for help text and error
// messages.
func All() []string {
	names := make([]string, 0, len(valid))
	for f := range valid {
		names = append(names, f)
	}
	sort.Strings(names)
	return names
}

// InvalidFieldsError reports every unrecognized field name in a request,
// collected before failing rather than stopping at the first.
type InvalidFieldsError struct {
	Names []string
}

func (e *InvalidFieldsError) Error() string {
	return fmt.Sprintf("invalid field name(s): %s (valid fields: %s)",
		strings.Join(e.Names, ", "), strings.Join(All(), ", "))
}

// Canonical normalizes one user-facing field name: trimmed, lowercased,
// alias-expanded. The second return reports whether the result is a known
// canonical field.
func Canonical(name string) (string, bool) {
	f := strings.ToLower(strings.TrimSpace(name))
	if canonical, ok := aliases[f]; ok {
		f = canonical
	}
	_, ok := valid[f]
	return f, ok
}

// Resolve builds the ordered inclusion set for one invocation. An empty
// include list starts from Core; otherwise the alias-expanded include list
// is kept in first-mention order with duplicates dropped. Alias-expanded
// exclude entries are then removed. Unrecognized names from both lists are
// collected into a single InvalidFieldsError.
func Resolve(include, exclude []string) ([]string, error) {
	var invalid []string
	canon := func(names []string) []string {
		out := make([]string, 0, len(names))
		for _, name := range names {
			c, ok := Canonical(name)
			if !ok {
				invalid = append(invalid, strings.TrimSpace(name))
				continue
			}
			out = append(out, c)
		}
		return out
	}

	included := canon(include)
	excluded := canon(exclude)
	if len(invalid) > 0 {
		return nil, &InvalidFieldsError{Names: invalid}
	}

	if len(included) == 0 {
		included = append([]string(nil), Core...)
	}

	drop := make(map[string]struct{}, len(excluded))
	for _, f := range excluded {
		drop[f] = struct{}{}
	}

	seen := make(map[string]struct{}, len(included))
	resolved := make([]string, 0, len(included))
	for _, f := range included {
		if _, dup := seen[f]; dup {
			continue
		}
		seen[f] = struct{}{}
		if _, skip := drop[f]; skip {
			continue
		}
		resolved = append(resolved, f)
	}
	return resolved, nil
}
