package ai

import (
	"errors"
	"fmt"
	"strings"

	openaigo "github.com/sashabaranov/go-openai"
)

// ProviderError wraps a provider failure with enough context to reconstruct
// the failure path: which provider, which attempt, and the underlying cause.
type ProviderError struct {
	Provider string
	Attempt  int
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (attempt %d): %v", e.Provider, e.Attempt, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// TimeoutError is the synthetic error produced when a provider call loses the
// timeout race.
type TimeoutError struct {
	Provider string
	Attempt  int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("provider %s timed out (attempt %d)", e.Provider, e.Attempt)
}

// Substrings that mark a transient failure worth retrying on the same
// provider.
var retryableMarkers = []string{
	"503", "504",
	"gateway",
	"overload",
	"rate limit", "rate-limit", "rate_limit",
	"too many requests",
	"capacity",
	"unavailable",
	"network",
	"timeout", "timed out", "deadline exceeded",
	"connection reset", "connection refused", "broken pipe", "eof",
	"cors",
}

// Additional markers for errors that will not improve on the same provider
// but may succeed on a different one.
var rejectionMarkers = []string{
	"400", "bad request",
	"invalid",
	"not found", "404",
	"401", "unauthorized",
	"api error",
	"unsupported",
}

// IsRetryable reports whether err signals a transient failure (5xx, overload,
// rate limit, network, timeout).
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var te *TimeoutError
	if errors.As(err, &te) {
		return true
	}
	if code := apiStatusCode(err); code != 0 {
		switch code {
		case 429, 500, 502, 503, 504, 524, 529:
			return true
		}
	}
	return containsAny(err, retryableMarkers)
}

// IsFallbackWorthy reports whether err justifies escalating to a different
// provider. Every retryable error qualifies, plus request/auth rejections
// that a same-provider retry cannot fix.
func IsFallbackWorthy(err error) bool {
	if err == nil {
		return false
	}
	if IsRetryable(err) {
		return true
	}
	if code := apiStatusCode(err); code != 0 {
		switch code {
		case 400, 401, 403, 404, 422:
			return true
		}
	}
	return containsAny(err, rejectionMarkers)
}

func apiStatusCode(err error) int {
	var apiErr *openaigo.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode
	}
	var reqErr *openaigo.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode
	}
	return 0
}

func containsAny(err error, markers []string) bool {
	msg := strings.ToLower(err.Error())
	for _, marker := range markers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}
