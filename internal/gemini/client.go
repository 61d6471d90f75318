// Package gemini wraps the hosted Gemini generation API behind a small
// interface so that every transcription, reply and synthesis request shares
// one retry policy.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel    = "gemini-2.5-flash-preview-09-2025"
	DefaultTTSModel = "gemini-2.5-flash-preview-tts"
	DefaultVoice    = "Charon"
)

// Generator is the single call shape used against the hosted service. It
// matches genai.Models.GenerateContent.
type Generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds the credentials for the Gemini Developer API.
type Config struct {
	APIKey string
}

var ErrMissingAPIKey = errors.New("gemini api key is not set")

// NewClient builds a Generator backed by the Gemini Developer API.
func NewClient(ctx context.Context, cfg Config) (Generator, error) {
	key := strings.TrimSpace(cfg.APIKey)
	if key == "" {
		return nil, ErrMissingAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client.Models, nil
}
