package core

import "sync/atomic"

const (
	commandBuffer = 8
	eventBuffer   = 32
)

// Session is one connected participant as seen by the hub.
type Session struct {
	ID    string
	Color string

	// room is owned by the hub goroutine.
	room string

	// Commands carries classified input lines from the transport read
	// loop. The transport is the sole writer and closes it when the
	// connection stops reading.
	Commands chan Command

	// Events carries outbound text frames to the transport write loop.
	// The hub is the sole writer and closes it on deregistration.
	Events chan string

	closed atomic.Bool
}

func newSession(id, color string) *Session {
	return &Session{
		ID:       id,
		Color:    color,
		room:     DefaultRoom,
		Commands: make(chan Command, commandBuffer),
		Events:   make(chan string, eventBuffer),
	}
}

// MarkClosed tells the hub the underlying connection is gone, so deliveries
// still in flight skip this session instead of filling a dead buffer.
func (s *Session) MarkClosed() {
	s.closed.Store(true)
}

// deliver enqueues one outbound line without blocking. Returns false if the
// session is closed or its buffer is full.
func (s *Session) deliver(text string) bool {
	if s.closed.Load() {
		return false
	}
	select {
	case s.Events <- text:
		return true
	default:
		return false
	}
}
