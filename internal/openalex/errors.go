package openalex

import (
	"errors"
	"fmt"
	"strings"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrRateLimited indicates the rate limit was still exceeded after
	// all retry attempts.
	ErrRateLimited = errors.New("OpenAlex rate limit exceeded")

	// ErrAuthError indicates the API rejected the request as unauthorized.
	ErrAuthError = errors.New("OpenAlex authorization error")

	// ErrAPIError indicates a non-retryable error response from the API.
	ErrAPIError = errors.New("OpenAlex API error")

	// ErrNetworkError indicates a network failure that persisted through
	// all retry attempts.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates a response body that could not be decoded.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")

	// ErrNoMatch indicates a lookup returned zero results.
	ErrNoMatch = errors.New("no match found")

	// ErrNoQuery indicates a work search was attempted with no search
	// parameters at all.
	ErrNoQuery = errors.New("at least one search parameter (search text, author, or institution) must be provided")
)

// APIError represents an error response from the OpenAlex API.
type APIError struct {
	StatusCode int
	Code       string // Error code from the API body (e.g., "400", "not_found")
	Message    string
	Endpoint   string // Endpoint path for context (e.g., "/works")
}

func (e *APIError) Error() string {
	if e.Endpoint != "" {
		return fmt.Sprintf("OpenAlex API error (status %d, %s): %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("OpenAlex API error (status %d): %s", e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return ErrAPIError
}

// NoMatchError reports one or more inputs that produced no results,
// keeping every unmatched input so the caller sees them all at once.
type NoMatchError struct {
	Kind   string // "author" or "institution"
	Inputs []string
}

func (e *NoMatchError) Error() string {
	if len(e.Inputs) == 1 {
		return fmt.Sprintf("no %s match for %q", e.Kind, e.Inputs[0])
	}
	return fmt.Sprintf("no %s match for: %s", e.Kind, strings.Join(e.Inputs, ", "))
}

func (e *NoMatchError) Unwrap() error {
	return ErrNoMatch
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// IsAuthError returns true if the error indicates an authorization problem.
func IsAuthError(err error) bool {
	if errors.Is(err, ErrAuthError) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 401 || apiErr.StatusCode == 403
	}
	return false
}

// IsNoMatch returns true if the error indicates a lookup with zero results.
func IsNoMatch(err error) bool {
	return errors.Is(err, ErrNoMatch)
}

// IsValidation returns true for errors caused by the user's query rather
// than by the network or the API.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNoMatch) || errors.Is(err, ErrNoQuery)
}
