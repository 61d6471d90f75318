package gemini

import (
	"bytes"
	"context"
	"testing"

	"google.golang.org/genai"
)

func TestResponseTextSkipsThoughtsAndTrims(t *testing.T) {
	resp := partsResponse(
		&genai.Part{Text: "thinking...", Thought: true},
		&genai.Part{Text: "  Hello "},
		&genai.Part{Text: "there.\n"},
	)
	if got := ResponseText(resp); got != "Hello there." {
		t.Fatalf("ResponseText() = %q, want %q", got, "Hello there.")
	}
	if got := ResponseText(nil); got != "" {
		t.Fatalf("ResponseText(nil) = %q, want empty", got)
	}
	if got := ResponseText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("ResponseText(no candidates) = %q, want empty", got)
	}
}

func TestFirstAudioPicksFirstAudioPart(t *testing.T) {
	resp := partsResponse(
		&genai.Part{Text: "caption"},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{9}}},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "audio/L16;codec=pcm;rate=24000", Data: []byte{1, 2}}},
		&genai.Part{InlineData: &genai.Blob{MIMEType: "audio/wav", Data: []byte{3, 4}}},
	)
	data, mimeType, ok := FirstAudio(resp)
	if !ok {
		t.Fatalf("FirstAudio() ok = false")
	}
	if !bytes.Equal(data, []byte{1, 2}) || mimeType != "audio/L16;codec=pcm;rate=24000" {
		t.Fatalf("FirstAudio() = %v %q", data, mimeType)
	}

	if _, _, ok := FirstAudio(partsResponse(&genai.Part{Text: "no audio"})); ok {
		t.Fatalf("FirstAudio(text only) ok = true, want false")
	}
}

func TestSampleRateFromMIME(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"audio/L16;codec=pcm;rate=24000", 24000},
		{"audio/L16; rate=16000", 16000},
		{"audio/L16", 22050},
		{"audio/L16;rate=abc", 22050},
		{"", 22050},
	}
	for _, tc := range cases {
		if got := SampleRateFromMIME(tc.in, 22050); got != tc.want {
			t.Fatalf("SampleRateFromMIME(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestMockAnswersByRequestKind(t *testing.T) {
	m := NewMock(24000)
	ctx := context.Background()

	audioIn := []*genai.Content{genai.NewContentFromParts([]*genai.Part{
		genai.NewPartFromBytes([]byte("abcd"), "audio/webm"),
		genai.NewPartFromText("Transcribe this audio clip exactly as spoken."),
	}, genai.RoleUser)}
	resp, err := m.GenerateContent(ctx, DefaultModel, audioIn, nil)
	if err != nil {
		t.Fatalf("GenerateContent(audio) error = %v", err)
	}
	if got := ResponseText(resp); got != "simulated voice input (4 bytes)" {
		t.Fatalf("transcript = %q", got)
	}

	resp, err = m.GenerateContent(ctx, DefaultTTSModel, genai.Text("hello"), &genai.GenerateContentConfig{ResponseModalities: []string{"AUDIO"}})
	if err != nil {
		t.Fatalf("GenerateContent(tts) error = %v", err)
	}
	data, mimeType, ok := FirstAudio(resp)
	if !ok || len(data) != 24000 {
		t.Fatalf("tts audio ok=%v len=%d, want 24000 bytes", ok, len(data))
	}
	if SampleRateFromMIME(mimeType, 0) != 24000 {
		t.Fatalf("tts mime = %q", mimeType)
	}
}
