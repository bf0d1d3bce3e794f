package types

import "github.com/JoshPaulie/fivesnight/internal/engine"

// ServerMessage is the websocket envelope sent to session watchers.
type ServerMessage struct {
	Type    string          `json:"type"` // "SessionSnapshot" | "Error"
	Version int             `json:"version,omitempty"`
	Session *engine.Session `json:"session,omitempty"`
	Error   string          `json:"error,omitempty"`
}
