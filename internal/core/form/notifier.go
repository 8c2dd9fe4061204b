package form

import "sync"

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Notifier receives form outcome notifications. The production implementation
// collects them for the UI's toast queue; tests substitute their own.
type Notifier interface {
	Notify(level Level, message string)
}

// Notice is one emitted notification.
type Notice struct {
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// NoticeLog is a Notifier that retains notifications in emission order.
type NoticeLog struct {
	mu      sync.Mutex
	notices []Notice
}

func (l *NoticeLog) Notify(level Level, message string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.notices = append(l.notices, Notice{Level: level, Message: message})
}

// Notices returns a copy of everything emitted so far.
func (l *NoticeLog) Notices() []Notice {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Notice, len(l.notices))
	copy(out, l.notices)
	return out
}
