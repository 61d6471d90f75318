package main

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"testing"
	"time"

	"github.com/HPW17/AI-Conversational-Chatbot/internal/audio"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/protocol"
	"github.com/HPW17/AI-Conversational-Chatbot/internal/voice"
)

func TestDecodeWAVPCM16MonoRoundTrip(t *testing.T) {
	pcm := []byte{
		0x00, 0x00,
		0xE8, 0x03, // 1000
		0x18, 0xFC, // -1000
	}
	wav := audio.EncodeWAVPCM16LE(pcm, 16000)
	gotPCM, gotSR, err := decodeWAVPCM16(wav)
	if err != nil {
		t.Fatalf("decodeWAVPCM16() error = %v", err)
	}
	if gotSR != 16000 {
		t.Fatalf("sampleRate = %d, want 16000", gotSR)
	}
	if !bytes.Equal(gotPCM, pcm) {
		t.Fatalf("pcm mismatch: got=%v want=%v", gotPCM, pcm)
	}
}

func TestDecodeWAVPCM16StereoDownmix(t *testing.T) {
	// Frame 1: L=1000, R=-1000 => avg=0
	// Frame 2: L=3000, R=1000  => avg=2000
	stereo := []byte{
		0xE8, 0x03, 0x18, 0xFC,
		0xB8, 0x0B, 0xE8, 0x03,
	}
	wav := encodeWAV16Stereo(t, stereo, 24000)
	gotPCM, gotSR, err := decodeWAVPCM16(wav)
	if err != nil {
		t.Fatalf("decodeWAVPCM16() error = %v", err)
	}
	if gotSR != 24000 {
		t.Fatalf("sampleRate = %d, want 24000", gotSR)
	}
	if len(gotPCM) != 4 {
		t.Fatalf("len(gotPCM) = %d, want 4", len(gotPCM))
	}
	s1 := int16(binary.LittleEndian.Uint16(gotPCM[0:2]))
	s2 := int16(binary.LittleEndian.Uint16(gotPCM[2:4]))
	if s1 != 0 || s2 != 2000 {
		t.Fatalf("downmix samples = [%d %d], want [0 2000]", s1, s2)
	}
}

func encodeWAV16Stereo(t *testing.T, stereoPCM []byte, sampleRate int) []byte {
	t.Helper()
	if sampleRate <= 0 {
		sampleRate = 16000
	}
	if len(stereoPCM)%4 != 0 {
		t.Fatalf("stereoPCM length must be multiple of 4, got %d", len(stereoPCM))
	}
	dataSize := uint32(len(stereoPCM))
	byteRate := uint32(sampleRate * 2 * 16 / 8)
	blockAlign := uint16(2 * 16 / 8)

	var b bytes.Buffer
	b.WriteString("RIFF")
	_ = binary.Write(&b, binary.LittleEndian, uint32(36)+dataSize)
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	_ = binary.Write(&b, binary.LittleEndian, uint32(16))
	_ = binary.Write(&b, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(&b, binary.LittleEndian, uint16(2)) // stereo
	_ = binary.Write(&b, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&b, binary.LittleEndian, byteRate)
	_ = binary.Write(&b, binary.LittleEndian, blockAlign)
	_ = binary.Write(&b, binary.LittleEndian, uint16(16))
	b.WriteString("data")
	_ = binary.Write(&b, binary.LittleEndian, dataSize)
	b.Write(stereoPCM)
	return b.Bytes()
}

func TestWSURLFor(t *testing.T) {
	cases := map[string]string{
		"http://127.0.0.1:8080":       "ws://127.0.0.1:8080/ws",
		"https://relay.example/base/": "wss://relay.example/base/ws",
	}
	for in, want := range cases {
		got, err := wsURLFor(in)
		if err != nil {
			t.Fatalf("wsURLFor(%q) error = %v", in, err)
		}
		if got != want {
			t.Fatalf("wsURLFor(%q) = %q, want %q", in, got, want)
		}
	}
	if _, err := wsURLFor("ftp://host"); err == nil {
		t.Fatalf("wsURLFor(ftp) expected error")
	}
}

func TestPercentile(t *testing.T) {
	samples := []time.Duration{5, 1, 4, 2, 3}
	if got := percentile(samples, 50); got != 3 {
		t.Fatalf("percentile(50) = %v, want 3", got)
	}
	if got := percentile(samples, 95); got != 5 {
		t.Fatalf("percentile(95) = %v, want 5", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("percentile(nil) = %v, want 0", got)
	}
}

func TestLoadClipGeneratesTone(t *testing.T) {
	clip, err := loadClip("")
	if err != nil {
		t.Fatalf("loadClip() error = %v", err)
	}
	if got := audio.DetectFormat(clip.WAV); got != audio.FormatWAV {
		t.Fatalf("DetectFormat(clip) = %q, want wav", got)
	}
	pcm, sr, err := decodeWAVPCM16(clip.WAV)
	if err != nil {
		t.Fatalf("decodeWAVPCM16() error = %v", err)
	}
	if sr != 16000 || len(pcm) != 16000*2*3/2 {
		t.Fatalf("tone = %d bytes @ %dHz, want 48000 @ 16000", len(pcm), sr)
	}
}

func TestAwaitTurnCollectsTimings(t *testing.T) {
	events := make(chan wsEvent, 8)
	readErrCh := make(chan error, 1)
	push := func(name protocol.EventName, data any) {
		raw, _ := json.Marshal(data)
		events <- wsEvent{Event: string(name), Data: raw}
	}
	push(protocol.EventStatus, protocol.MessagePayload{Message: voice.StatusGenerating})
	push(protocol.EventTranscript, protocol.TranscriptPayload{Transcript: "hi", Final: true})
	push(protocol.EventResponseText, protocol.ResponseTextPayload{Text: "hello", Status: "text_complete"})
	push(protocol.EventAudioReady, protocol.AudioReadyPayload{AudioURL: "http://x/audio/abc", AudioID: "abc"})
	push(protocol.EventStatus, protocol.MessagePayload{Message: voice.StatusResponseSent})

	got, err := awaitTurn(time.Now().Add(-time.Millisecond), events, readErrCh, time.Second)
	if err != nil {
		t.Fatalf("awaitTurn() error = %v", err)
	}
	if got.AudioURL != "http://x/audio/abc" {
		t.Fatalf("AudioURL = %q, want http://x/audio/abc", got.AudioURL)
	}
	if got.Transcript <= 0 || got.Text <= 0 || got.Audio <= 0 || got.Done <= 0 {
		t.Fatalf("timings not recorded: %+v", got)
	}
}

func TestAwaitTurnReportsFailureStatus(t *testing.T) {
	events := make(chan wsEvent, 1)
	raw, _ := json.Marshal(protocol.MessagePayload{Message: voice.StatusUnavailable})
	events <- wsEvent{Event: string(protocol.EventStatus), Data: raw}
	if _, err := awaitTurn(time.Now(), events, make(chan error, 1), time.Second); err == nil {
		t.Fatalf("awaitTurn() expected error for unavailable status")
	}
}
