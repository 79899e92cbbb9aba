package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the OpenAlex API base URL.
	DefaultBaseURL = "https://api.openalex.org"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultAuthorListCap bounds how many institution authors are fetched
	// when building an affiliation allow-list.
	DefaultAuthorListCap = 1000

	// defaultRequestInterval spaces requests inside the polite-pool rate
	// (10 requests per second), replacing ad hoc sleeps between pages.
	defaultRequestInterval = 100 * time.Millisecond

	// maxResponseBytes caps how much of a response body is decoded.
	maxResponseBytes = 50 << 20

	worksEndpoint        = "/works"
	authorsEndpoint      = "/authors"
	institutionsEndpoint = "/institutions"

	userAgent = "oat (+https://github.com/oat-cli/oat)"
)

// Client is a rate-limited HTTP client for the OpenAlex API. All
// operations are strictly sequential: one request at a time, each gated by
// the limiter.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	email      string
	baseURL    string
	retry      RetryPolicy
	sleep      func(context.Context, time.Duration) error
	log        zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithEmail sets the contact email attached to every request as the
// polite-pool mailto parameter.
func WithEmail(email string) ClientOption {
	return func(c *Client) {
		c.email = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithLogger sets the logger for request progress and retry diagnostics.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// WithRateLimit overrides the interval between requests.
func WithRateLimit(interval time.Duration) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
}

// WithRetryPolicy overrides the retry bounds.
func WithRetryPolicy(p RetryPolicy) ClientOption {
	return func(c *Client) {
		if p.MaxAttempts > 0 {
			c.retry.MaxAttempts = p.MaxAttempts
		}
		if p.BaseDelay > 0 {
			c.retry.BaseDelay = p.BaseDelay
		}
	}
}

// NewClient creates a new OpenAlex API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Every(defaultRequestInterval), 1),
		baseURL:    DefaultBaseURL,
		retry:      defaultRetryPolicy(),
		sleep:      sleepContext,
		log:        zerolog.Nop(),
	}

	// The polite pool works without an email; requests never block on it.
	if email := os.Getenv("OPENALEX_EMAIL"); email != "" {
		c.email = email
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// getJSON runs one GET through the retry machine and decodes the body.
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out any) error {
	resp, err := c.doGET(ctx, endpoint, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(out); err != nil {
		return fmt.Errorf("%w: decoding %s response: %v", ErrInvalidResponse, endpoint, err)
	}
	return nil
}

// workAccumulator collects works across pages and batches, deduplicating
// by work ID while preserving first-seen order.
type workAccumulator struct {
	seen  map[string]struct{}
	works []Work
}

func newWorkAccumulator() *workAccumulator {
	return &workAccumulator{seen: make(map[string]struct{})}
}

func (a *workAccumulator) add(w Work) {
	if w.ID != "" {
		if _, dup := a.seen[w.ID]; dup {
			return
		}
		a.seen[w.ID] = struct{}{}
	}
	a.works = append(a.works, w)
}

func (a *workAccumulator) size() int {
	return len(a.works)
}

// full reports whether the accumulator has reached the cap; zero means
// uncapped.
func (a *workAccumulator) full(max int) bool {
	return max > 0 && len(a.works) >= max
}

// SearchWorks pages through the works endpoint for the given query,
// returning up to q.MaxResults deduplicated works in first-seen order
// (zero means fetch everything). Author-ID lists longer than 25 are split
// into sequential batches of 25 and their results merged; a work appearing
// in more than one batch is counted once.
func (c *Client) SearchWorks(ctx context.Context, q WorkQuery) ([]Work, error) {
	if q.isEmpty() {
		return nil, ErrNoQuery
	}

	acc := newWorkAccumulator()

	if len(q.AuthorIDs) > maxAuthorsPerFilter {
		batches := batchStrings(q.AuthorIDs, maxAuthorsPerFilter)
		c.log.Info().
			Int("authors", len(q.AuthorIDs)).
			Int("batches", len(batches)).
			Msg("batching author filter")

		for i, batch := range batches {
			if acc.full(q.MaxResults) {
				break
			}
			bq := q
			bq.AuthorIDs = batch
			c.log.Debug().Int("batch", i+1).Int("size", len(batch)).Msg("fetching batch")
			if err := c.fetchWorkPages(ctx, bq, acc); err != nil {
				return nil, err
			}
		}
		return acc.works, nil
	}

	if err := c.fetchWorkPages(ctx, q, acc); err != nil {
		return nil, err
	}
	return acc.works, nil
}

// fetchWorkPages drives offset pagination for one query, feeding the
// shared accumulator. It stops on an empty page, a short page, the
// accumulator cap, or when the API's reported total has been fetched.
func (c *Client) fetchWorkPages(ctx context.Context, q WorkQuery, acc *workAccumulator) error {
	perPage := q.perPage()
	fetched := 0 // raw results seen for this query, duplicates included

	for page := 1; ; page++ {
		c.log.Debug().Int("page", page).Int("per_page", perPage).Msg("fetching works page")

		var out worksResponse
		if err := c.getJSON(ctx, worksEndpoint, q.params(page, c.email), &out); err != nil {
			return err
		}
		if len(out.Results) == 0 {
			return nil
		}

		fetched += len(out.Results)
		for _, w := range out.Results {
			acc.add(w)
			if acc.full(q.MaxResults) {
				return nil
			}
		}

		if len(out.Results) < perPage {
			return nil
		}
		if out.Meta.Count > 0 && fetched >= out.Meta.Count {
			return nil
		}
	}
}

// batchStrings splits values into consecutive chunks of at most size.
func batchStrings(values []string, size int) [][]string {
	var batches [][]string
	for start := 0; start < len(values); start += size {
		end := start + size
		if end > len(values) {
			end = len(values)
		}
		batches = append(batches, values[start:end])
	}
	return batches
}

// ResolveAuthorIDs turns a mix of author IDs, ORCIDs, and plain names into
// canonical author IDs. ID-shaped inputs normalize locally; names go
// through a lookup that takes the source's top match. Every name with zero
// matches is collected and reported in a single error, alongside the IDs
// that did resolve so callers may choose to continue without the misses.
func (c *Client) ResolveAuthorIDs(ctx context.Context, namesOrIDs []string) ([]string, error) {
	ids := make([]string, 0, len(namesOrIDs))
	var unmatched []string

	for _, input := range namesOrIDs {
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if id, ok := CanonicalAuthorID(input); ok {
			ids = append(ids, id)
			continue
		}

		author, err := c.LookupAuthor(ctx, input)
		if err != nil {
			if errors.Is(err, ErrNoMatch) {
				unmatched = append(unmatched, input)
				continue
			}
			return nil, err
		}
		c.log.Debug().Str("name", input).Str("id", author.ID).Msg("author resolved")
		ids = append(ids, author.ID)
	}

	if len(unmatched) > 0 {
		return ids, &NoMatchError{Kind: "author", Inputs: unmatched}
	}
	return ids, nil
}

// LookupAuthor finds an author by display name, returning the source's
// top-ranked match. Best-effort: the ranking is the API's, not re-ranked
// locally.
func (c *Client) LookupAuthor(ctx context.Context, name string) (*Author, error) {
	params := url.Values{}
	if c.email != "" {
		params.Set("mailto", c.email)
	}
	params.Set("filter", "display_name.search:"+name)
	params.Set("per_page", "1")

	var out authorsResponse
	if err := c.getJSON(ctx, authorsEndpoint, params, &out); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, &NoMatchError{Kind: "author", Inputs: []string{name}}
	}
	return &out.Results[0], nil
}

// GetAuthor fetches one author record by OpenAlex author ID or ORCID, in
// bare or URL form. An unknown ID reports no match rather than a raw 404.
func (c *Client) GetAuthor(ctx context.Context, id string) (*Author, error) {
	canonical, ok := CanonicalAuthorID(id)
	if !ok {
		return nil, &NoMatchError{Kind: "author", Inputs: []string{id}}
	}
	segment := lastPathSegment(canonical)
	if strings.Contains(canonical, "orcid.org") {
		segment = "orcid:" + segment
	}

	params := url.Values{}
	if c.email != "" {
		params.Set("mailto", c.email)
	}

	var author Author
	err := c.getJSON(ctx, authorsEndpoint+"/"+segment, params, &author)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, &NoMatchError{Kind: "author", Inputs: []string{id}}
		}
		return nil, err
	}
	return &author, nil
}

// ResolveInstitution finds an institution by (fuzzy) display name,
// returning the source's top-ranked match.
func (c *Client) ResolveInstitution(ctx context.Context, name string) (*Institution, error) {
	params := url.Values{}
	if c.email != "" {
		params.Set("mailto", c.email)
	}
	params.Set("filter", "display_name.search:"+name)
	params.Set("per_page", "1")

	var out institutionsResponse
	if err := c.getJSON(ctx, institutionsEndpoint, params, &out); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, &NoMatchError{Kind: "institution", Inputs: []string{name}}
	}
	return &out.Results[0], nil
}

// ListInstitutionAuthorIDs pages through every author whose last known
// institution matches, collecting IDs only (select=id keeps responses
// small). The limit bounds cost; DefaultAuthorListCap applies when it is
// not positive.
func (c *Client) ListInstitutionAuthorIDs(ctx context.Context, institutionID string, limit int) ([]string, error) {
	if limit <= 0 {
		limit = DefaultAuthorListCap
	}

	var ids []string
	for page := 1; len(ids) < limit; page++ {
		params := url.Values{}
		if c.email != "" {
			params.Set("mailto", c.email)
		}
		params.Set("filter", "last_known_institutions.id:"+institutionID)
		params.Set("select", "id")
		params.Set("per_page", strconv.Itoa(MaxPerPage))
		params.Set("page", strconv.Itoa(page))

		c.log.Debug().Int("page", page).Int("collected", len(ids)).Msg("fetching institution authors")

		var out authorsResponse
		if err := c.getJSON(ctx, authorsEndpoint, params, &out); err != nil {
			return nil, err
		}
		if len(out.Results) == 0 {
			break
		}

		for _, a := range out.Results {
			if a.ID != "" {
				ids = append(ids, a.ID)
			}
		}
		if out.Meta.Count > 0 && len(ids) >= out.Meta.Count {
			break
		}
	}

	if len(ids) > limit {
		ids = ids[:limit]
	}
	return ids, nil
}
