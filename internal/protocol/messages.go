package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// EventName identifies websocket payload variants. Names match the socket
// events the Unity and web clients already listen for.
type EventName string

const (
	EventLoadMemory  EventName = "load_memory"
	EventResetMemory EventName = "reset_memory"
	EventStartStream EventName = "start_stream"
	EventStopStream  EventName = "stop_stream"
	EventMessage     EventName = "message"

	EventStatus           EventName = "status"
	EventError            EventName = "error"
	EventTranscript       EventName = "transcript"
	EventResponseText     EventName = "response_text"
	EventAudioReady       EventName = "audio_ready"
	EventMemoryScene      EventName = "memory_scene"
	EventMemoryAudioReady EventName = "memory_audio_ready"
)

var ErrUnsupportedType = errors.New("unsupported event")

// Envelope frames every text message in both directions.
type Envelope struct {
	Event EventName       `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Inbound messages.

type LoadMemory struct {
	MemoryID string `json:"memory_id"`
}

type ResetMemory struct{}

type StartStream struct {
	Format string `json:"format"`
}

type StopStream struct{}

// AudioFragment is one binary frame of recorded audio.
type AudioFragment struct {
	Data []byte
}

// NonBinaryFragment is a "message" event whose payload was not binary.
type NonBinaryFragment struct {
	Raw string
}

// ParseClientMessage decodes a text frame into one of the inbound types.
func ParseClientMessage(raw []byte) (any, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, fmt.Errorf("invalid envelope: %w", err)
	}

	switch env.Event {
	case EventLoadMemory:
		var data struct {
			MemoryID json.RawMessage `json:"memory_id"`
		}
		if err := decodeData(env.Data, &data); err != nil {
			return nil, err
		}
		return LoadMemory{MemoryID: rawID(data.MemoryID)}, nil
	case EventResetMemory:
		return ResetMemory{}, nil
	case EventStartStream:
		var msg StartStream
		if err := decodeData(env.Data, &msg); err != nil {
			return nil, err
		}
		if strings.TrimSpace(msg.Format) == "" {
			msg.Format = "unknown"
		}
		return msg, nil
	case EventStopStream:
		return StopStream{}, nil
	case EventMessage:
		return NonBinaryFragment{Raw: string(env.Data)}, nil
	default:
		return nil, ErrUnsupportedType
	}
}

func decodeData(data json.RawMessage, out any) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return fmt.Errorf("invalid data: %w", err)
	}
	return nil
}

// rawID accepts "3" as well as 3.
func rawID(raw json.RawMessage) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(trimmed, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(trimmed, &n); err == nil {
		if i, err := strconv.ParseInt(n.String(), 10, 64); err == nil {
			return strconv.FormatInt(i, 10)
		}
		return n.String()
	}
	return string(trimmed)
}

// Outbound messages.

// Event is a server-to-client message.
type Event struct {
	Event EventName `json:"event"`
	Data  any       `json:"data"`
}

type MessagePayload struct {
	Message string `json:"message"`
}

type TranscriptPayload struct {
	Transcript string `json:"transcript"`
	Final      bool   `json:"final"`
}

type ResponseTextPayload struct {
	Text   string `json:"text"`
	Status string `json:"status"`
}

type AudioReadyPayload struct {
	AudioURL string  `json:"audio_url"`
	AudioID  string  `json:"audio_id"`
	Duration float64 `json:"duration"`
	MemoryID string  `json:"memory_id,omitempty"`
}

type MemoryScenePayload struct {
	Text     string `json:"text"`
	MemoryID string `json:"memory_id"`
}

func Status(message string) Event {
	return Event{Event: EventStatus, Data: MessagePayload{Message: message}}
}

func Error(message string) Event {
	return Event{Event: EventError, Data: MessagePayload{Message: message}}
}

func Transcript(text string) Event {
	return Event{Event: EventTranscript, Data: TranscriptPayload{Transcript: text, Final: true}}
}

func ResponseText(text string) Event {
	return Event{Event: EventResponseText, Data: ResponseTextPayload{Text: text, Status: "text_complete"}}
}

func AudioReady(url, token string, duration float64) Event {
	return Event{Event: EventAudioReady, Data: AudioReadyPayload{AudioURL: url, AudioID: token, Duration: duration}}
}

func MemoryScene(text, memoryID string) Event {
	return Event{Event: EventMemoryScene, Data: MemoryScenePayload{Text: text, MemoryID: memoryID}}
}

func MemoryAudioReady(url, token string, duration float64, memoryID string) Event {
	return Event{Event: EventMemoryAudioReady, Data: AudioReadyPayload{
		AudioURL: url,
		AudioID:  token,
		Duration: duration,
		MemoryID: memoryID,
	}}
}
