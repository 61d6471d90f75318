package gemini

import (
	"context"
	"errors"
	"net"
	"strings"

	"google.golang.org/genai"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/reliability"
)

// IsTransient reports whether err is a temporary service condition worth
// retrying: overload, rate limiting, internal errors and network timeouts.
// Bad requests, auth failures and caller cancellation are not.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}
	if code, status, ok := apiErrorOf(err); ok {
		if reliability.IsRetryableHTTPStatus(code) {
			return true
		}
		switch strings.ToUpper(strings.TrimSpace(status)) {
		case "UNAVAILABLE", "RESOURCE_EXHAUSTED", "INTERNAL", "DEADLINE_EXCEEDED":
			return true
		}
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

// StatusCode returns the HTTP status carried by a Gemini API error, or 0.
func StatusCode(err error) int {
	code, _, _ := apiErrorOf(err)
	return code
}

func apiErrorOf(err error) (code int, status string, ok bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, apiErr.Status, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, apiErrPtr.Status, true
	}
	return 0, "", false
}
