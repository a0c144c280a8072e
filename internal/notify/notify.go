// Package notify carries non-blocking user notifications from views to
// the next rendered page.
package notify

import "sync"

// Level is the severity of a notice.
type Level string

// Notice levels.
const (
	LevelError Level = "error"
	LevelInfo  Level = "info"
)

// Notice is one message for the user.
type Notice struct {
	Level   Level
	Message string
}

// Notifier receives user-facing messages.
type Notifier interface {
	Error(msg string)
	Info(msg string)
}

// Queue buffers notices until they are drained by a page render.
type Queue struct {
	mu      sync.Mutex
	notices []Notice
}

// Error queues an error notice.
func (q *Queue) Error(msg string) {
	q.push(Notice{Level: LevelError, Message: msg})
}

// Info queues an informational notice.
func (q *Queue) Info(msg string) {
	q.push(Notice{Level: LevelInfo, Message: msg})
}

func (q *Queue) push(n Notice) {
	q.mu.Lock()
	q.notices = append(q.notices, n)
	q.mu.Unlock()
}

// Drain returns and forgets every queued notice.
func (q *Queue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	return out
}

// Discard drops every notice.
var Discard Notifier = discard{}

type discard struct{}

func (discard) Error(string) {}
func (discard) Info(string)  {}
