package session

import (
	"bytes"
	"errors"
	"sync"
	"time"
)

// State is the stream state of one connection.
type State string

const (
	StateIdle       State = "idle"
	StateStreaming  State = "streaming"
	StateProcessing State = "processing"
)

// ErrNoBuffer is returned when audio arrives for a session whose buffer has
// been discarded.
var ErrNoBuffer = errors.New("no audio buffer for session")

// Session is the state owned by one live client connection: the audio
// accumulation buffer and the active memory scene slot.
type Session struct {
	ID          string
	ConnectedAt time.Time

	mu             sync.Mutex
	state          State
	buffer         *bytes.Buffer
	sceneID        string
	sceneDesc      string
	lastActivityAt time.Time
}

// Info is a point-in-time view of a session.
type Info struct {
	ID             string    `json:"session_id"`
	State          State     `json:"state"`
	SceneID        string    `json:"memory_id,omitempty"`
	BufferedBytes  int       `json:"buffered_bytes"`
	ConnectedAt    time.Time `json:"connected_at"`
	LastActivityAt time.Time `json:"last_activity_at"`
}

func newSession(id string) *Session {
	now := time.Now().UTC()
	return &Session{
		ID:             id,
		ConnectedAt:    now,
		state:          StateIdle,
		buffer:         new(bytes.Buffer),
		lastActivityAt: now,
	}
}

// StartStream discards any buffered audio and opens a fresh empty buffer.
func (s *Session) StartStream() (discarded int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer != nil {
		discarded = s.buffer.Len()
	}
	s.buffer = new(bytes.Buffer)
	s.state = StateStreaming
	s.touch()
	return discarded
}

// AppendAudio appends one fragment verbatim.
func (s *Session) AppendAudio(fragment []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return ErrNoBuffer
	}
	_, _ = s.buffer.Write(fragment)
	if s.state == StateIdle {
		s.state = StateStreaming
	}
	s.touch()
	return nil
}

// Flush snapshots the buffered audio and replaces the buffer with an empty one
// in the same critical section, so no later fragment reaches the snapshot.
// The session is marked processing until Finish is called.
func (s *Session) Flush() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()
	if s.buffer == nil {
		return nil
	}
	snapshot := s.buffer.Bytes()
	s.buffer = new(bytes.Buffer)
	s.state = StateProcessing
	return snapshot
}

// Finish returns a flushed session to idle.
func (s *Session) Finish() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateProcessing {
		s.state = StateIdle
	}
	s.touch()
}

// SetScene records the active memory scene.
func (s *Session) SetScene(id, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sceneID = id
	s.sceneDesc = description
	s.touch()
}

// ClearScene empties the scene slot.
func (s *Session) ClearScene() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sceneID = ""
	s.sceneDesc = ""
	s.touch()
}

// Scene returns the active scene id and description, if any.
func (s *Session) Scene() (id, description string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sceneID, s.sceneDesc, s.sceneID != ""
}

func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) BufferLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buffer == nil {
		return 0
	}
	return s.buffer.Len()
}

func (s *Session) Info() Info {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	if s.buffer != nil {
		n = s.buffer.Len()
	}
	return Info{
		ID:             s.ID,
		State:          s.state,
		SceneID:        s.sceneID,
		BufferedBytes:  n,
		ConnectedAt:    s.ConnectedAt,
		LastActivityAt: s.lastActivityAt,
	}
}

// discard drops buffer and scene; used when the connection goes away.
func (s *Session) discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffer = nil
	s.sceneID = ""
	s.sceneDesc = ""
	s.state = StateIdle
}

func (s *Session) touch() {
	s.lastActivityAt = time.Now().UTC()
}
