package gemini

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"google.golang.org/genai"
)

func TestIsTransient(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"503", genai.APIError{Code: 503, Status: "UNAVAILABLE"}, true},
		{"429", genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED"}, true},
		{"500", genai.APIError{Code: 500, Status: "INTERNAL"}, true},
		{"status only", genai.APIError{Status: "UNAVAILABLE"}, true},
		{"wrapped 503", fmt.Errorf("transcribe: %w", genai.APIError{Code: 503}), true},
		{"pointer 503", &genai.APIError{Code: 503}, true},
		{"400", genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}, false},
		{"401", genai.APIError{Code: 401, Status: "UNAUTHENTICATED"}, false},
		{"403", genai.APIError{Code: 403, Status: "PERMISSION_DENIED"}, false},
		{"plain", errors.New("boom"), false},
		{"canceled", context.Canceled, false},
	}
	for _, tc := range cases {
		if got := IsTransient(tc.err); got != tc.want {
			t.Fatalf("%s: IsTransient(%v) = %v, want %v", tc.name, tc.err, got, tc.want)
		}
	}
}

func TestStatusCode(t *testing.T) {
	if got := StatusCode(fmt.Errorf("x: %w", genai.APIError{Code: 503})); got != 503 {
		t.Fatalf("StatusCode() = %d, want 503", got)
	}
	if got := StatusCode(errors.New("x")); got != 0 {
		t.Fatalf("StatusCode() = %d, want 0", got)
	}
}
