package gemini

import (
	"mime"
	"strconv"
	"strings"

	"google.golang.org/genai"
)

// ResponseText concatenates the non-thought text parts of the first candidate.
func ResponseText(resp *genai.GenerateContentResponse) string {
	content := firstContent(resp)
	if content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range content.Parts {
		if p == nil || p.Thought {
			continue
		}
		b.WriteString(p.Text)
	}
	return strings.TrimSpace(b.String())
}

// FirstAudio returns the first inline part whose MIME type is audio/*.
func FirstAudio(resp *genai.GenerateContentResponse) (data []byte, mimeType string, ok bool) {
	content := firstContent(resp)
	if content == nil {
		return nil, "", false
	}
	for _, p := range content.Parts {
		if p == nil || p.InlineData == nil {
			continue
		}
		if strings.HasPrefix(strings.ToLower(p.InlineData.MIMEType), "audio/") {
			return p.InlineData.Data, p.InlineData.MIMEType, true
		}
	}
	return nil, "", false
}

// SampleRateFromMIME reads the rate parameter of an L16 media type such as
// "audio/L16;codec=pcm;rate=24000".
func SampleRateFromMIME(mimeType string, fallback int) int {
	_, params, err := mime.ParseMediaType(mimeType)
	if err != nil {
		return fallback
	}
	rate, err := strconv.Atoi(strings.TrimSpace(params["rate"]))
	if err != nil || rate <= 0 {
		return fallback
	}
	return rate
}

func firstContent(resp *genai.GenerateContentResponse) *genai.Content {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		return nil
	}
	return resp.Candidates[0].Content
}
