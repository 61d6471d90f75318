package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/audio"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/gemini"
)

const (
	transcribePrompt    = "Transcribe this audio clip exactly as spoken."
	transcriptFallback  = "Could not transcribe audio."
	audioResponseFormat = "AUDIO"
)

// ErrEmptyReply is returned when text generation produced no usable text.
var ErrEmptyReply = errors.New("empty reply from model")

// SpeechConfig selects models and voice for the hosted pipeline.
type SpeechConfig struct {
	Model      string
	TTSModel   string
	Voice      string
	SampleRate int
}

// Synthesis is raw PCM16LE mono audio at SampleRate.
type Synthesis struct {
	PCM        []byte
	SampleRate int
}

// Duration estimates playback length in seconds.
func (s *Synthesis) Duration() float64 {
	if s == nil {
		return 0
	}
	return audio.EstimateDuration(len(s.PCM), s.SampleRate)
}

// Reply is the result of one respond call. Audio is nil when synthesis
// produced nothing; SynthesisErr carries a failed synthesis call, which does
// not fail the reply.
type Reply struct {
	Text           string
	Audio          *Synthesis
	SynthesisErr   error
	GenerateTook   time.Duration
	SynthesizeTook time.Duration
}

// Speech runs transcription, reply generation and synthesis against one
// retry-wrapped Generator.
type Speech struct {
	gen gemini.Generator
	cfg SpeechConfig
}

func NewSpeech(gen gemini.Generator, cfg SpeechConfig) *Speech {
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = gemini.DefaultModel
	}
	if strings.TrimSpace(cfg.TTSModel) == "" {
		cfg.TTSModel = gemini.DefaultTTSModel
	}
	if strings.TrimSpace(cfg.Voice) == "" {
		cfg.Voice = gemini.DefaultVoice
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = audio.DefaultSampleRate
	}
	return &Speech{gen: gen, cfg: cfg}
}

// Transcribe returns the spoken text of a recording. A response without text
// yields a fixed placeholder rather than an error.
func (s *Speech) Transcribe(ctx context.Context, recording []byte, mimeType string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(recording, mimeType),
			genai.NewPartFromText(transcribePrompt),
		}, genai.RoleUser),
	}
	resp, err := s.gen.GenerateContent(ctx, s.cfg.Model, contents, nil)
	if err != nil {
		return "", fmt.Errorf("transcribe: %w", err)
	}
	text := gemini.ResponseText(resp)
	if text == "" {
		return transcriptFallback, nil
	}
	return text, nil
}

// Generate produces the persona reply to prompt under instruction.
func (s *Speech) Generate(ctx context.Context, prompt, instruction string) (string, error) {
	cfg := &genai.GenerateContentConfig{}
	if strings.TrimSpace(instruction) != "" {
		cfg.SystemInstruction = genai.NewContentFromText(instruction, genai.RoleUser)
	}
	resp, err := s.gen.GenerateContent(ctx, s.cfg.Model, genai.Text(prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate: %w", err)
	}
	text := gemini.ResponseText(resp)
	if text == "" {
		return "", ErrEmptyReply
	}
	return text, nil
}

// Synthesize renders text as speech. It returns nil, nil when the service
// answered without an audio part.
func (s *Speech) Synthesize(ctx context.Context, text string) (*Synthesis, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{audioResponseFormat},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: s.cfg.Voice},
			},
		},
	}
	resp, err := s.gen.GenerateContent(ctx, s.cfg.TTSModel, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}
	pcm, mimeType, ok := gemini.FirstAudio(resp)
	if !ok || len(pcm) == 0 {
		return nil, nil
	}
	return &Synthesis{
		PCM:        pcm,
		SampleRate: gemini.SampleRateFromMIME(mimeType, s.cfg.SampleRate),
	}, nil
}

// Respond generates the reply text and then synthesizes it.
func (s *Speech) Respond(ctx context.Context, prompt, instruction string) (Reply, error) {
	started := time.Now()
	text, err := s.Generate(ctx, prompt, instruction)
	if err != nil {
		return Reply{}, err
	}
	reply := Reply{Text: text, GenerateTook: time.Since(started)}

	started = time.Now()
	reply.Audio, reply.SynthesisErr = s.Synthesize(ctx, text)
	reply.SynthesizeTook = time.Since(started)
	return reply, nil
}
