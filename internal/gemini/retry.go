package gemini

import (
	"context"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/reliability"
)

// RetryOption configures WithRetry.
type RetryOption func(*retryingGenerator)

// WithRetryLogger logs every retry and every exhausted call.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(g *retryingGenerator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithRetryObserver receives one callback per retry and one per failed call.
func WithRetryObserver(onRetry func(model string), onFailure func(model string, err error)) RetryOption {
	return func(g *retryingGenerator) {
		g.onRetry = onRetry
		g.onFailure = onFailure
	}
}

// WithRetry decorates next so that transient failures are retried per policy.
// A policy without a predicate uses IsTransient.
func WithRetry(next Generator, policy reliability.Policy, opts ...RetryOption) Generator {
	if policy.Retryable == nil {
		policy.Retryable = IsTransient
	}
	g := &retryingGenerator{
		next:   next,
		policy: policy,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type retryingGenerator struct {
	next      Generator
	policy    reliability.Policy
	logger    *slog.Logger
	onRetry   func(model string)
	onFailure func(model string, err error)
}

func (g *retryingGenerator) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	config *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	policy := g.policy
	policy.OnRetry = func(attempt int, delay time.Duration, err error) {
		g.logger.Warn("gemini call failed, retrying",
			"model", model,
			"attempt", attempt,
			"delay", delay,
			"status", StatusCode(err),
			"error", err,
		)
		if g.onRetry != nil {
			g.onRetry(model)
		}
	}

	var resp *genai.GenerateContentResponse
	err := policy.Do(ctx, func(ctx context.Context) error {
		r, err := g.next.GenerateContent(ctx, model, contents, config)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		g.logger.Error("gemini call failed", "model", model, "transient", IsTransient(err), "error", err)
		if g.onFailure != nil {
			g.onFailure(model, err)
		}
		return nil, err
	}
	return resp, nil
}
