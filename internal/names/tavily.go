package names

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	tavilyBaseURL    = "https://api.tavily.com"
	tavilyTimeout    = 15 * time.Second
	tavilyMaxResults = 5
)

// Errors.
var (
	ErrUnauthorized = errors.New("Tavily API key rejected")
	ErrSearchFailed = errors.New("Tavily search failed")
)

// SearchResult is one hit returned by the search backend.
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
}

// SearchResponse is the backend's synthesized answer plus ranked results.
type SearchResponse struct {
	Answer  string         `json:"answer"`
	Results []SearchResult `json:"results"`
}

// SearchClient runs one web search, optionally restricted to the given
// domains.
type SearchClient interface {
	Search(ctx context.Context, query string, domains []string) (*SearchResponse, error)
}

// TavilyClient calls the Tavily search API.
type TavilyClient struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
}

// NewTavilyClient creates a Tavily API client.
func NewTavilyClient(apiKey string) *TavilyClient {
	return &TavilyClient{
		httpClient: &http.Client{Timeout: tavilyTimeout},
		apiKey:     apiKey,
		baseURL:    tavilyBaseURL,
	}
}

type tavilyRequest struct {
	APIKey         string   `json:"api_key"`
	Query          string   `json:"query"`
	IncludeAnswer  string   `json:"include_answer"`
	MaxResults     int      `json:"max_results"`
	IncludeDomains []string `json:"include_domains,omitempty"`
}

// Search posts one query. The advanced answer mode gives the synthesized
// answer text the name extraction reads first.
func (c *TavilyClient) Search(ctx context.Context, query string, domains []string) (*SearchResponse, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:         c.apiKey,
		Query:          query,
		IncludeAnswer:  "advanced",
		MaxResults:     tavilyMaxResults,
		IncludeDomains: domains,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encoding request: %v", ErrSearchFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Success
	case http.StatusUnauthorized, http.StatusForbidden:
		return nil, ErrUnauthorized
	default:
		return nil, fmt.Errorf("%w: status %d", ErrSearchFailed, resp.StatusCode)
	}

	var out SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrSearchFailed, err)
	}
	return &out, nil
}
