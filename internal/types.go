package internal

import "time"

// SessionMeta describes where a stored session came from. It is kept
// outside session.Session so the loop's result stays free of timestamps.
type SessionMeta struct {
	ID        string    `json:"id,omitempty"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	CreatedAt time.Time `json:"created_at"`
}
