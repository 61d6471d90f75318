package gemini

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"google.golang.org/genai"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/reliability"
)

// scriptedGenerator fails with errs in order, then answers with text.
type scriptedGenerator struct {
	mu    sync.Mutex
	errs  []error
	calls int
	text  string
}

func (g *scriptedGenerator) GenerateContent(context.Context, string, []*genai.Content, *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	if g.calls <= len(g.errs) {
		return nil, g.errs[g.calls-1]
	}
	return partsResponse(genai.NewPartFromText(g.text)), nil
}

func testPolicy() reliability.Policy {
	p := reliability.DefaultPolicy(nil)
	p.Base = time.Millisecond
	p.Cap = 2 * time.Millisecond
	return p
}

var unavailable = genai.APIError{Code: 503, Status: "UNAVAILABLE", Message: "overloaded"}

func TestWithRetrySucceedsAfterFourTransientFailures(t *testing.T) {
	next := &scriptedGenerator{errs: []error{unavailable, unavailable, unavailable, unavailable}, text: "ok"}
	var retries int
	g := WithRetry(next, testPolicy(), WithRetryObserver(func(string) { retries++ }, nil))

	resp, err := g.GenerateContent(context.Background(), DefaultModel, genai.Text("hi"), nil)
	if err != nil {
		t.Fatalf("GenerateContent() error = %v", err)
	}
	if got := ResponseText(resp); got != "ok" {
		t.Fatalf("ResponseText() = %q, want %q", got, "ok")
	}
	if next.calls != 5 {
		t.Fatalf("calls = %d, want 5", next.calls)
	}
	if retries != 4 {
		t.Fatalf("retries = %d, want 4", retries)
	}
}

func TestWithRetryPropagatesErrorAfterFiveFailures(t *testing.T) {
	next := &scriptedGenerator{errs: []error{unavailable, unavailable, unavailable, unavailable, unavailable}, text: "late"}
	var failed error
	g := WithRetry(next, testPolicy(), WithRetryObserver(nil, func(_ string, err error) { failed = err }))

	_, err := g.GenerateContent(context.Background(), DefaultModel, genai.Text("hi"), nil)
	var apiErr genai.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != 503 {
		t.Fatalf("GenerateContent() error = %v, want the 503 APIError", err)
	}
	if next.calls != 5 {
		t.Fatalf("calls = %d, want 5", next.calls)
	}
	if failed == nil {
		t.Fatalf("failure observer not called")
	}
}

func TestWithRetryDoesNotRetryBadRequest(t *testing.T) {
	bad := genai.APIError{Code: 400, Status: "INVALID_ARGUMENT"}
	next := &scriptedGenerator{errs: []error{bad}, text: "never"}
	g := WithRetry(next, testPolicy())

	_, err := g.GenerateContent(context.Background(), DefaultModel, genai.Text("hi"), nil)
	if err == nil {
		t.Fatalf("GenerateContent() error = nil, want 400")
	}
	if next.calls != 1 {
		t.Fatalf("calls = %d, want 1", next.calls)
	}
}
