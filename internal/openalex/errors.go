package openalex

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors returned by the OpenAlex client.
var (
	// ErrNotFound indicates the source has no matching work.
	ErrNotFound = errors.New("not found in OpenAlex")

	// ErrRateLimited indicates the rate limit has been exceeded.
	ErrRateLimited = errors.New("OpenAlex rate limit exceeded")

	// ErrNetworkError indicates a network connectivity issue.
	ErrNetworkError = errors.New("network error communicating with OpenAlex")

	// ErrInvalidResponse indicates an unexpected API response.
	ErrInvalidResponse = errors.New("invalid response from OpenAlex")
)

// APIError represents a non-2xx response from the OpenAlex API.
type APIError struct {
	StatusCode int
	Message    string
	Query      string // Path or filter that produced the error
}

func (e *APIError) Error() string {
	if e.Query != "" {
		return fmt.Sprintf("OpenAlex API error (status %d): %s (query: %s)", e.StatusCode, e.Message, e.Query)
	}
	return fmt.Sprintf("OpenAlex API error (status %d): %s", e.StatusCode, e.Message)
}

// IsNotFound returns true if the error indicates a work was not found.
func IsNotFound(err error) bool {
	if errors.Is(err, ErrNotFound) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited returns true if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusTooManyRequests
	}
	return false
}

// IsTransport returns true for failures of the exchange itself (network
// errors, unexpected statuses, undecodable bodies) as opposed to a clean
// "no such work" answer.
func IsTransport(err error) bool {
	if err == nil || IsNotFound(err) {
		return false
	}
	var apiErr *APIError
	return errors.Is(err, ErrNetworkError) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrInvalidResponse) ||
		errors.As(err, &apiErr)
}
