package session

import "sync"

// Severity of a user-visible notice.
type Severity string

const (
	SeverityInfo  Severity = "info"
	SeverityError Severity = "error"
)

// Notice is one fire-and-forget user-visible message.
type Notice struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Notifier receives user-visible feedback. No return value is consumed.
type Notifier interface {
	Notify(message string, severity Severity)
}

// NoticeBuffer collects notices until the presentation layer drains them.
type NoticeBuffer struct {
	mu      sync.Mutex
	notices []Notice
}

func NewNoticeBuffer() *NoticeBuffer {
	return &NoticeBuffer{}
}

func (b *NoticeBuffer) Notify(message string, severity Severity) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{Message: message, Severity: severity})
}

// Drain returns the pending notices and clears the buffer.
func (b *NoticeBuffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
