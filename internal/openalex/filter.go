package openalex

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const (
	// DefaultPerPage is the page size used when the caller does not set one.
	DefaultPerPage = 25

	// MaxPerPage is the largest page size the API accepts.
	MaxPerPage = 200

	// DefaultMaxResults bounds a work search unless the caller overrides it.
	// Zero means no cap.
	DefaultMaxResults = 100

	// maxAuthorsPerFilter caps how many author IDs share one filter value.
	// The API accepts more, but URL length limits make larger batches fail.
	maxAuthorsPerFilter = 25
)

var (
	bareOpenAlexID = regexp.MustCompile(`^A\d+$`)
	bareORCID      = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{3}[\dX]$`)
)

// WorkQuery describes one work search. Filter clauses are combined with
// AND; the author-ID list is combined with OR inside its clause.
type WorkQuery struct {
	Search        string   // free-text search
	AuthorIDs     []string // canonical author IDs (see CanonicalAuthorID)
	InstitutionID string   // resolved institution ID
	Sort          string   // e.g. "cited_by_count:desc"
	PerPage       int      // clamped to MaxPerPage; DefaultPerPage when zero
	MaxResults    int      // cap on returned works; 0 = fetch all
}

// isEmpty reports whether the query has no search parameters at all.
func (q WorkQuery) isEmpty() bool {
	return q.Search == "" && len(q.AuthorIDs) == 0 && q.InstitutionID == ""
}

// perPage returns the effective page size.
func (q WorkQuery) perPage() int {
	if q.PerPage <= 0 {
		return DefaultPerPage
	}
	if q.PerPage > MaxPerPage {
		return MaxPerPage
	}
	return q.PerPage
}

// filterClause builds the filter parameter value, or "" when the query
// carries no filters.
func (q WorkQuery) filterClause() string {
	var clauses []string
	if len(q.AuthorIDs) > 0 {
		clauses = append(clauses, "authorships.author.id:"+strings.Join(q.AuthorIDs, "|"))
	}
	if q.InstitutionID != "" {
		clauses = append(clauses, "authorships.institutions.id:"+q.InstitutionID)
	}
	return strings.Join(clauses, ",")
}

// params encodes the query for one page request.
func (q WorkQuery) params(page int, email string) url.Values {
	v := url.Values{}
	if email != "" {
		v.Set("mailto", email)
	}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if filter := q.filterClause(); filter != "" {
		v.Set("filter", filter)
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	v.Set("per_page", strconv.Itoa(q.perPage()))
	v.Set("page", strconv.Itoa(page))
	return v
}

// CanonicalAuthorID normalizes an author identifier to the full URL form
// the filter syntax expects. Accepted inputs: a bare OpenAlex ID
// ("A5023888391"), an OpenAlex URL, a bare ORCID ("0000-0002-1825-0097"),
// or an ORCID URL. The second return is false when the string is not
// ID-shaped and should be treated as a name.
func CanonicalAuthorID(s string) (string, bool) {
	s = strings.TrimSpace(s)

	if bareOpenAlexID.MatchString(s) {
		return "https://openalex.org/" + s, true
	}
	if strings.Contains(s, "openalex.org") {
		if id := lastPathSegment(s); bareOpenAlexID.MatchString(id) {
			return "https://openalex.org/" + id, true
		}
		return s, true
	}
	if strings.Contains(s, "orcid.org") {
		return "https://orcid.org/" + lastPathSegment(s), true
	}
	if bareORCID.MatchString(s) {
		return "https://orcid.org/" + s, true
	}
	return s, false
}

func lastPathSegment(s string) string {
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		return s[i+1:]
	}
	return s
}
