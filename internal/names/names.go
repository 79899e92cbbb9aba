// Package names resolves abbreviated author names ("E. Kelly") to full
// names using a web-search backend. Resolution is best-effort: every
// failure path degrades to the original name with a reason, never an
// error.
package names

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// ErrNoAPIKey indicates strict resolution was requested without a usable
// search backend.
var ErrNoAPIKey = errors.New("no Tavily API key configured")

// Resolution is the outcome of one name resolution. Reason is set when the
// name passed through unresolved.
type Resolution struct {
	Name     string
	Resolved bool
	Reason   string
}

// Context carries roster fields that sharpen the search query.
type Context struct {
	Institution string
	Department  string
	College     string
}

// Config configures a Resolver.
type Config struct {
	// APIKey authenticates against the Tavily API. Ignored when Client is
	// set.
	APIKey string

	// InstitutionDomain restricts the first search to an institution's
	// website (e.g. "colostate.edu"); empty disables the restriction.
	InstitutionDomain string

	// Strict makes construction fail when no backend is usable, instead
	// of degrading every lookup.
	Strict bool

	// Client overrides the Tavily backend, mainly for tests.
	Client SearchClient

	Logger zerolog.Logger
}

// Resolver resolves abbreviated names through a SearchClient.
type Resolver struct {
	client SearchClient
	domain string
	log    zerolog.Logger
}

// New creates a Resolver. Without an API key or injected client the
// resolver still works, passing every name through unresolved; strict mode
// turns that into a construction error.
func New(cfg Config) (*Resolver, error) {
	client := cfg.Client
	if client == nil && cfg.APIKey != "" {
		client = NewTavilyClient(cfg.APIKey)
	}
	if client == nil && cfg.Strict {
		return nil, ErrNoAPIKey
	}
	return &Resolver{
		client: client,
		domain: cfg.InstitutionDomain,
		log:    cfg.Logger,
	}, nil
}

// IsAbbreviated reports whether a name consists of initials plus a last
// name: at least two tokens, every token but the last a single letter with
// an optional trailing period.
func IsAbbreviated(name string) bool {
	parts := strings.Fields(name)
	if len(parts) < 2 {
		return false
	}
	for _, p := range parts[:len(parts)-1] {
		p = strings.TrimRight(p, ".")
		runes := []rune(p)
		if len(runes) != 1 || !unicode.IsLetter(runes[0]) {
			return false
		}
	}
	return true
}

// Resolve attempts to expand an abbreviated name. Non-abbreviated names
// pass through untouched. A missing backend or a failed search degrades to
// the original name; the caller decides whether the reason is worth
// surfacing.
func (r *Resolver) Resolve(ctx context.Context, name string, rctx Context) Resolution {
	if !IsAbbreviated(name) {
		return Resolution{Name: name, Reason: "not an abbreviated name"}
	}
	if r.client == nil {
		r.log.Debug().Str("name", name).Msg("no search backend, keeping abbreviated name")
		return Resolution{Name: name, Reason: "no search backend configured"}
	}

	parts := strings.Fields(name)
	lastName := parts[len(parts)-1]
	query := buildQuery(name, rctx)

	var full string
	if r.domain != "" {
		resp, err := r.client.Search(ctx, query, []string{r.domain})
		if err != nil {
			return r.degrade(name, err)
		}
		full = extractFullName(resp, lastName, r.domain)
	}
	if full == "" {
		resp, err := r.client.Search(ctx, query, nil)
		if err != nil {
			return r.degrade(name, err)
		}
		full = extractFullName(resp, lastName, r.domain)
	}

	if full == "" {
		return Resolution{Name: name, Reason: "no full name found"}
	}
	r.log.Debug().Str("name", name).Str("resolved", full).Msg("name resolved")
	return Resolution{Name: full, Resolved: true}
}

func (r *Resolver) degrade(name string, err error) Resolution {
	r.log.Warn().Str("name", name).Err(err).Msg("name search failed, keeping abbreviated name")
	return Resolution{Name: name, Reason: "search failed: " + err.Error()}
}

// buildQuery assembles the search query from the name and whatever roster
// context is available.
func buildQuery(name string, rctx Context) string {
	parts := []string{name}
	for _, p := range []string{rctx.College, rctx.Department, rctx.Institution} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	parts = append(parts, "professor")
	return strings.Join(parts, " ")
}

// namePattern matches "FirstName LastName" or "FirstName M. LastName" for
// the given last name.
func namePattern(lastName string) *regexp.Regexp {
	return regexp.MustCompile(`\b([A-Z][a-z]+(?:\s+[A-Z]\.?\s*)?)\s+` + regexp.QuoteMeta(lastName) + `\b`)
}

// extractFullName pulls a full name out of a search response: the answer
// text first, then result titles and content with institution-domain URLs
// preferred.
func extractFullName(resp *SearchResponse, lastName, domain string) string {
	if resp == nil {
		return ""
	}
	pattern := namePattern(lastName)

	if m := pattern.FindStringSubmatch(resp.Answer); m != nil {
		return strings.TrimSpace(m[1]) + " " + lastName
	}

	ordered := resp.Results
	if domain != "" {
		var inst, rest []SearchResult
		for _, r := range resp.Results {
			if strings.Contains(r.URL, domain) {
				inst = append(inst, r)
			} else {
				rest = append(rest, r)
			}
		}
		ordered = append(inst, rest...)
	}

	for _, r := range ordered {
		for _, text := range []string{r.Title, r.Content} {
			if m := pattern.FindStringSubmatch(text); m != nil {
				return strings.TrimSpace(m[1]) + " " + lastName
			}
		}
	}
	return ""
}
