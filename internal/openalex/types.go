// Package openalex provides a rate-limited client for the OpenAlex REST API.
package openalex

import "encoding/json"

// Work represents a work record from the OpenAlex API. Scalars that the API
// may return as null are pointers so that absence survives into the export
// untouched. primary_location and locations are kept raw so a verbatim copy
// into the export does not drop keys this client has no use for.
type Work struct {
	ID                    string            `json:"id"`
	Title                 *string           `json:"title"`
	DOI                   *string           `json:"doi"`
	Type                  *string           `json:"type"`
	Language              *string           `json:"language,omitempty"`
	PublicationDate       *string           `json:"publication_date"` // YYYY-MM-DD format
	PublicationYear       *int              `json:"publication_year,omitempty"`
	CreatedDate           *string           `json:"created_date,omitempty"`
	UpdatedDate           *string           `json:"updated_date,omitempty"`
	CitedByCount          *int              `json:"cited_by_count,omitempty"`
	CitedByAPIURL         *string           `json:"cited_by_api_url,omitempty"`
	RelatedWorksAPIURL    *string           `json:"related_works_api_url,omitempty"`
	Abstract              *string           `json:"abstract,omitempty"`
	AbstractInvertedIndex map[string][]int  `json:"abstract_inverted_index,omitempty"`
	Authorships           []Authorship      `json:"authorships,omitempty"`
	Concepts              []Concept         `json:"concepts,omitempty"`
	Keywords              []Keyword         `json:"keywords,omitempty"`
	OpenAccess            *OpenAccess       `json:"open_access,omitempty"`
	PrimaryLocation       json.RawMessage   `json:"primary_location,omitempty"`
	Locations             []json.RawMessage `json:"locations,omitempty"`
	ReferencedWorks       []string          `json:"referenced_works,omitempty"`
	RelatedWorks          []string          `json:"related_works,omitempty"`
}

// Authorship links an author to a work, with the author's position in the
// work's author list as reported by the API.
type Authorship struct {
	AuthorPosition string        `json:"author_position,omitempty"` // "first", "middle", or "last"
	Author         Author        `json:"author"`
	Institutions   []Institution `json:"institutions,omitempty"`
}

// Author represents an author from the OpenAlex API.
type Author struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	ORCID       string `json:"orcid,omitempty"`
}

// Institution represents an institution from the OpenAlex API.
type Institution struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	CountryCode string `json:"country_code,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Concept is a topical concept tagged on a work with a relevance score.
type Concept struct {
	ID          string  `json:"id"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score"`
}

// Keyword is a keyword tagged on a work.
type Keyword struct {
	ID          string  `json:"id,omitempty"`
	DisplayName string  `json:"display_name"`
	Score       float64 `json:"score,omitempty"`
}

// OpenAccess describes a work's open-access status.
type OpenAccess struct {
	IsOA     bool   `json:"is_oa"`
	OAStatus string `json:"oa_status,omitempty"`
	OAURL    string `json:"oa_url,omitempty"`
}

// Location is the decoded form of a work location, used when the formatter
// needs the source (journal) out of primary_location.
type Location struct {
	IsOA   bool    `json:"is_oa,omitempty"`
	Source *Source `json:"source"`
}

// Source represents the venue (journal, repository, conference) of a
// work location.
type Source struct {
	ID          string   `json:"id"`
	DisplayName string   `json:"display_name"`
	ISSNL       string   `json:"issn_l,omitempty"`
	ISSN        []string `json:"issn,omitempty"`
	Type        string   `json:"type,omitempty"`
}

// Meta is the pagination envelope the API returns alongside results.
type Meta struct {
	Count   int `json:"count"`
	DBTime  int `json:"db_response_time_ms,omitempty"`
	Page    int `json:"page,omitempty"`
	PerPage int `json:"per_page,omitempty"`
}

// worksResponse is the envelope of the works endpoint.
type worksResponse struct {
	Meta    Meta   `json:"meta"`
	Results []Work `json:"results"`
}

// authorsResponse is the envelope of the authors endpoint.
type authorsResponse struct {
	Meta    Meta     `json:"meta"`
	Results []Author `json:"results"`
}

// institutionsResponse is the envelope of the institutions endpoint.
type institutionsResponse struct {
	Meta    Meta          `json:"meta"`
	Results []Institution `json:"results"`
}
