package core

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

const eventWait = 2 * time.Second

func newTestHub(t *testing.T) *Hub {
	t.Helper()

	logger := zerolog.Nop()
	hub := NewHub(&logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	return hub
}

func mustConnect(t *testing.T, hub *Hub) *Session {
	t.Helper()

	s, err := hub.Connect()
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	return s
}

// mustLine reads the session's events until one contains substr.
func mustLine(t *testing.T, s *Session, substr string) string {
	t.Helper()

	deadline := time.After(eventWait)
	for {
		select {
		case line, ok := <-s.Events:
			if !ok {
				t.Fatalf("events closed while waiting for %q", substr)
			}
			if strings.Contains(line, substr) {
				return line
			}
		case <-deadline:
			t.Fatalf("no event containing %q within %v", substr, eventWait)
		}
	}
}

// firstOf reads events until one contains any of the given substrings and
// returns the match.
func firstOf(t *testing.T, s *Session, subs ...string) (string, string) {
	t.Helper()

	deadline := time.After(eventWait)
	for {
		select {
		case line, ok := <-s.Events:
			if !ok {
				t.Fatalf("events closed while waiting for one of %q", subs)
			}
			for _, sub := range subs {
				if strings.Contains(line, sub) {
					return line, sub
				}
			}
		case <-deadline:
			t.Fatalf("no event containing one of %q within %v", subs, eventWait)
		}
	}
}

// mustSilent asserts no event arrives within a short grace period.
func mustSilent(t *testing.T, s *Session) {
	t.Helper()

	select {
	case line, ok := <-s.Events:
		if ok {
			t.Fatalf("unexpected event: %q", line)
		}
	case <-time.After(100 * time.Millisecond):
	}
}

// roomTag fetches a room's display tag from the hub goroutine.
func roomTag(hub *Hub, name string) string {
	var tag string
	hub.query(func() {
		if r, ok := hub.rooms[name]; ok {
			tag = r.Tag
		}
	})
	return tag
}
