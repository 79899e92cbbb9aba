package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// retryState tracks where one logical request is in its retry lifecycle.
type retryState int

const (
	stateAttempting retryState = iota
	stateWaiting
	stateSucceeded
	stateExhausted
)

// RetryPolicy bounds the retry loop for one logical request.
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// BaseDelay is the first backoff delay; it doubles on every retry.
	// A Retry-After header on a 429 overrides the backoff for that wait.
	BaseDelay time.Duration
}

func defaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 5, BaseDelay: time.Second}
}

// attemptClass is the classification of a single request attempt.
type attemptClass struct {
	ok        bool
	retryable bool
	wait      time.Duration // delay before the next attempt when retryable
	err       error         // terminal error; for retryable attempts, what exhaustion reports
}

// doGET runs one logical GET through the bounded-attempt retry machine.
// Rate limiting applies per attempt; waits honor context cancellation.
func (c *Client) doGET(ctx context.Context, endpoint string, params url.Values) (*http.Response, error) {
	reqURL := c.baseURL + endpoint + "?" + params.Encode()

	state := stateAttempting
	attempt := 0
	backoff := c.retry.BaseDelay
	var (
		resp *http.Response
		cls  attemptClass
	)

	for {
		switch state {
		case stateAttempting:
			attempt++
			resp, cls = c.attemptOnce(ctx, reqURL, endpoint, backoff)
			switch {
			case cls.ok:
				state = stateSucceeded
			case !cls.retryable:
				return nil, cls.err
			case attempt >= c.retry.MaxAttempts:
				state = stateExhausted
			default:
				state = stateWaiting
			}

		case stateWaiting:
			c.log.Warn().
				Str("endpoint", endpoint).
				Int("attempt", attempt).
				Dur("wait", cls.wait).
				Msg("request failed, retrying")
			if err := c.sleep(ctx, cls.wait); err != nil {
				return nil, err
			}
			backoff *= 2
			state = stateAttempting

		case stateSucceeded:
			return resp, nil

		case stateExhausted:
			return nil, fmt.Errorf("giving up after %d attempts: %w", attempt, cls.err)
		}
	}
}

// attemptOnce issues a single request attempt and classifies the outcome.
func (c *Client) attemptOnce(ctx context.Context, reqURL, endpoint string, backoff time.Duration) (*http.Response, attemptClass) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, attemptClass{err: fmt.Errorf("rate limiter: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, attemptClass{err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, attemptClass{err: err}
		}
		return nil, attemptClass{
			retryable: true,
			wait:      backoff,
			err:       fmt.Errorf("%w: %v", ErrNetworkError, err),
		}
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		wait := retryAfterDelay(resp, backoff)
		drainBody(resp)
		return nil, attemptClass{
			retryable: true,
			wait:      wait,
			err:       fmt.Errorf("%w (%s)", ErrRateLimited, endpoint),
		}

	case isTransientStatus(resp.StatusCode):
		status := resp.StatusCode
		wait := retryAfterDelay(resp, backoff)
		drainBody(resp)
		return nil, attemptClass{
			retryable: true,
			wait:      wait,
			err: &APIError{
				StatusCode: status,
				Code:       "server_error",
				Message:    http.StatusText(status),
				Endpoint:   endpoint,
			},
		}

	case resp.StatusCode >= 400:
		return nil, attemptClass{err: decodeAPIError(resp, endpoint)}

	default:
		return resp, attemptClass{ok: true}
	}
}

// isTransientStatus reports server statuses worth retrying. Other 4xx/5xx
// surface immediately.
func isTransientStatus(status int) bool {
	switch status {
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// retryAfterDelay honors a Retry-After header, accepting either integer
// seconds or an HTTP date. Without a usable header the fallback backoff
// applies.
func retryAfterDelay(resp *http.Response, fallback time.Duration) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return fallback
	}

	if seconds, err := strconv.ParseInt(retryAfter, 10, 64); err == nil {
		if seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
		return fallback
	}

	if t, err := http.ParseTime(retryAfter); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return fallback
}

// decodeAPIError turns a non-retryable error response into a typed error,
// pulling the code and message out of the body when the API provides them.
func decodeAPIError(resp *http.Response, endpoint string) error {
	defer drainBody(resp)

	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body)

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return fmt.Errorf("%w: status %d (%s)", ErrAuthError, resp.StatusCode, endpoint)
	}

	message := body.Message
	if message == "" {
		message = body.Error
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       body.Error,
		Message:    message,
		Endpoint:   endpoint,
	}
}

// sleepContext waits for the given delay, returning early with the
// context's error if it is canceled. Retry waits must abort promptly on
// user cancellation instead of finishing the sleep.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// drainBody discards and closes a response body so the connection can be
// reused.
func drainBody(resp *http.Response) {
	if resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))
	resp.Body.Close()
}
