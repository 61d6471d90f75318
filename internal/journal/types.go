// Package journal keeps a per-session log of conversation turns: what the
// caller said, what the companion replied and which memory scene was active.
package journal

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleScene     = "scene"
)

// TurnRecord stores a single user, assistant or scene-intro turn.
type TurnRecord struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	SceneID     string    `json:"memory_id,omitempty"`
	Role        string    `json:"role"`
	Content     string    `json:"content"`
	PIIRedacted bool      `json:"pii_redacted"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store persists and retrieves journal records.
type Store interface {
	SaveTurn(ctx context.Context, record TurnRecord) error
	// Recent returns up to limit records of a session in chronological order.
	Recent(ctx context.Context, sessionID string, limit int) ([]TurnRecord, error)
	// Forget drops what the store holds for a session once its connection is gone.
	Forget(ctx context.Context, sessionID string) error
	Ping(ctx context.Context) error
	Close() error
}
