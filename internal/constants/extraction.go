// Package constants defines centralized tuning values for entity extraction.
package constants

import "time"

// Confidence thresholds driving the backend fallback chain.
const (
	// ConfidenceAcceptable is the minimum confidence at which a result is
	// good enough to return without trying further backends.
	ConfidenceAcceptable = 50.0

	// ConfidenceStopEarly is the confidence at which a structured result
	// from a backend is trusted outright and local strategies are skipped.
	ConfidenceStopEarly = 80.0
)

// Backend chain timing.
const (
	// DefaultBackendTimeout bounds a single acquisition attempt.
	DefaultBackendTimeout = 45 * time.Second

	// BackendFallbackDelay is the brief pause before trying the next
	// backend. Gives the previous backend's rate limit a moment to start
	// recovering.
	BackendFallbackDelay = 1 * time.Second

	// MaxRetryAttempts is the number of attempts per backend before
	// moving down the chain.
	MaxRetryAttempts = 2
)

// Circuit breaker tuning for acquisition backends. A backend that keeps
// failing gets skipped for a cooldown window instead of burning its timeout
// on every extraction.
const (
	// BreakerConsecutiveFailures trips the breaker.
	BreakerConsecutiveFailures = 5

	// BreakerOpenTimeout is how long an open breaker stays open before a
	// half-open probe is allowed.
	BreakerOpenTimeout = 60 * time.Second

	// BreakerInterval resets the failure counts in the closed state.
	BreakerInterval = 2 * time.Minute
)

// Rendering defaults for backends that drive a browser.
const (
	// DefaultRenderWait is how long a rendering backend waits after load
	// before capturing, when no ready selector is given.
	DefaultRenderWait = 2 * time.Second

	// DefaultCrawlDelay is the minimum spacing between crawler requests
	// to the same domain.
	DefaultCrawlDelay = 200 * time.Millisecond
)

// ErrorCategory classifies acquisition failures for retry and fallback
// decisions.
type ErrorCategory string

const (
	// ErrorCategoryRateLimit indicates a 429 from the backend or the
	// target site. Retryable after backoff, and worth falling back.
	ErrorCategoryRateLimit ErrorCategory = "rate_limit"

	// ErrorCategoryBlocked indicates bot protection stopped the fetch.
	// Not retryable on the same backend; a rendering backend may succeed.
	ErrorCategoryBlocked ErrorCategory = "blocked"

	// ErrorCategoryAuth indicates bad or missing backend credentials.
	ErrorCategoryAuth ErrorCategory = "auth"

	// ErrorCategoryQuotaExceeded indicates the backend's credits ran out.
	ErrorCategoryQuotaExceeded ErrorCategory = "quota_exceeded"

	// ErrorCategoryTimeout indicates the attempt exceeded its deadline.
	ErrorCategoryTimeout ErrorCategory = "timeout"

	// ErrorCategoryBackendError indicates a backend-side failure.
	ErrorCategoryBackendError ErrorCategory = "backend_error"

	// ErrorCategoryUnusableContent indicates the fetch succeeded but the
	// page had nothing to extract from.
	ErrorCategoryUnusableContent ErrorCategory = "unusable_content"

	// ErrorCategoryUnknown indicates an unclassified failure.
	ErrorCategoryUnknown ErrorCategory = "unknown"
)

// IsRetryableCategory reports whether the same backend is worth retrying
// after backoff.
func IsRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryRateLimit, ErrorCategoryBackendError, ErrorCategoryTimeout:
		return true
	default:
		return false
	}
}

// CountsAgainstBreaker reports whether a failure should trip the backend's
// circuit breaker. Blocked and unusable pages are properties of the target,
// not the backend, so they don't count.
func CountsAgainstBreaker(category ErrorCategory) bool {
	switch category {
	case ErrorCategoryBlocked, ErrorCategoryUnusableContent:
		return false
	default:
		return true
	}
}
