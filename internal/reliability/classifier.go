package reliability

import (
	"net/http"
	"time"
)

// IsRetryableHTTPStatus reports whether a hosted API answered with a status
// that indicates a temporary condition: timeouts, rate limiting and 5xx
// overload. 501 is permanent.
func IsRetryableHTTPStatus(code int) bool {
	switch code {
	case http.StatusRequestTimeout, http.StatusTooManyRequests:
		return true
	case http.StatusNotImplemented:
		return false
	}
	return code >= 500 && code <= 599
}

// ExponentialBackoff returns base doubled attempt times, clamped to limit.
// Attempt 0 is the delay before the first retry.
func ExponentialBackoff(attempt int, base, limit time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	if limit < base {
		limit = base
	}
	if attempt <= 0 {
		return base
	}
	// Beyond 62 doublings any positive base overflows.
	if attempt >= 62 || base > limit>>attempt {
		return limit
	}
	return base << attempt
}
