package gemini

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"google.golang.org/genai"
)

// Mock is an offline Generator used when no API key is configured. It answers
// transcription requests with a byte count, text requests with a fixed line
// and audio requests with silence.
type Mock struct {
	SampleRate int
}

func NewMock(sampleRate int) *Mock {
	if sampleRate <= 0 {
		sampleRate = 24000
	}
	return &Mock{SampleRate: sampleRate}
}

func (m *Mock) GenerateContent(_ context.Context, _ string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if config != nil && slices.Contains(config.ResponseModalities, "AUDIO") {
		text := joinedText(contents)
		// ~60ms of silence per word, at least half a second.
		ms := 500
		if words := len(strings.Fields(text)); words*60 > ms {
			ms = words * 60
		}
		pcm := make([]byte, m.SampleRate*2*ms/1000)
		return partsResponse(&genai.Part{InlineData: &genai.Blob{
			MIMEType: fmt.Sprintf("audio/L16;codec=pcm;rate=%d", m.SampleRate),
			Data:     pcm,
		}}), nil
	}
	if n, ok := inlineAudioBytes(contents); ok {
		return partsResponse(genai.NewPartFromText(fmt.Sprintf("simulated voice input (%d bytes)", n))), nil
	}
	return partsResponse(genai.NewPartFromText("I'm here. Tell me what you remember.")), nil
}

func partsResponse(parts ...*genai.Part) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: string(genai.RoleModel), Parts: parts},
		}},
	}
}

func inlineAudioBytes(contents []*genai.Content) (int, bool) {
	for _, c := range contents {
		if c == nil {
			continue
		}
		for _, p := range c.Parts {
			if p != nil && p.InlineData != nil && strings.HasPrefix(p.InlineData.MIMEType, "audio/") {
				return len(p.InlineData.Data), true
			}
		}
	}
	return 0, false
}

func joinedText(contents []*genai.Content) string {
	var parts []string
	for _, c := range contents {
		if c == nil {
			continue
		}
		for _, p := range c.Parts {
			if p != nil && p.Text != "" {
				parts = append(parts, p.Text)
			}
		}
	}
	return strings.Join(parts, " ")
}
