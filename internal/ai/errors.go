package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrUpstream marks any failure reported by the text-generation service.
	ErrUpstream = errors.New("upstream text generation failed")
	// ErrUpstreamAuth marks failures caused by a missing or rejected API key.
	ErrUpstreamAuth = errors.New("upstream credentials rejected")
)

// UpstreamError describes a failed call to a provider. StatusCode is zero for transport failures.
type UpstreamError struct {
	Provider   string
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s api error (status %d): %v", e.Provider, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s api error: %v", e.Provider, e.Err)
}

func (e *UpstreamError) Unwrap() []error {
	if e.isAuth() {
		return []error{ErrUpstream, ErrUpstreamAuth, e.Err}
	}
	return []error{ErrUpstream, e.Err}
}

func (e *UpstreamError) isAuth() bool {
	if e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden {
		return true
	}
	return e.Err != nil && mentionsCredentials(e.Err.Error())
}

// IsAuthError reports whether err was caused by the upstream credentials, either by status
// or by the error text mentioning the API key.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrUpstreamAuth) {
		return true
	}
	return mentionsCredentials(err.Error())
}

// IsRetryable reports whether another attempt may succeed: upstream transport failures, 429 and 5xx.
func IsRetryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) || upstream.isAuth() {
		return false
	}

	switch {
	case upstream.StatusCode == http.StatusTooManyRequests, upstream.StatusCode >= http.StatusInternalServerError:
		return true
	case upstream.StatusCode >= http.StatusBadRequest:
		return false
	default:
		return true
	}
}

func mentionsCredentials(message string) bool {
	lower := strings.ToLower(message)
	for _, marker := range []string{"api key", "api_key", "authentication", "unauthorized"} {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
