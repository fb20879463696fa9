package audit

import "time"

// Event records one recognize or save attempt against the backend.
type Event struct {
	ID        string
	SessionID string
	StoreID   string
	Action    string // "recognize" | "save"
	Outcome   string // "ok" | "failed"
	Detail    string
	Duration  time.Duration
	CreatedAt time.Time
}
