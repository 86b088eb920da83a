package github

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/custodia-labs/bootman/internal/core/domain"
)

// GitHub-specific errors.
var (
	// ErrNoRepository indicates neither owner/repo nor a repository id was configured.
	ErrNoRepository = errors.New("github: no release repository configured")

	// ErrNoRedirect indicates the asset endpoint answered without a download location.
	ErrNoRedirect = errors.New("github: asset download did not redirect")
)

// RateLimitError represents a rate limit exceeded error with reset time.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// IsNotFound checks if the error indicates a resource was not found.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// IsRateLimited checks if the error indicates rate limiting.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == http.StatusUnauthorized
	}
	return false
}

// networkError translates an adapter error into the domain error reported at the port.
func networkError(op string, err error) error {
	status := 0
	var apiErr *APIError
	var rateErr *RateLimitError
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.StatusCode
	case errors.As(err, &rateErr):
		status = http.StatusForbidden
	}
	if h := hint(err); h != "" {
		err = fmt.Errorf("%s: %w", h, err)
	}
	return &domain.NetworkError{Op: op, StatusCode: status, Err: err}
}

// hint names the likely cause of a failed request for the user.
func hint(err error) string {
	switch {
	case IsUnauthorized(err):
		return "release token rejected"
	case IsNotFound(err):
		return "release repository not found"
	case IsRateLimited(err):
		return "rate limited, set a release token"
	default:
		return ""
	}
}
