package http

import (
	"context"
	"errors"
	"io"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"salachat/internal/config"
	"salachat/internal/core"
)

var ansi = regexp.MustCompile(`\x1b\[[0-9;]*m`)

func startTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	logger := zerolog.Nop()
	hub := core.NewHub(&logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go hub.Run(ctx)

	server := NewServer(hub, config.Config{
		Addr:              ":0",
		ReadHeaderTimeout: time.Second,
		ShutdownTimeout:   time.Second,
	}, &logger)

	ts := httptest.NewServer(server.Handler)
	t.Cleanup(ts.Close)

	return ts
}

func dialWS(t *testing.T, ctx context.Context, ts *httptest.Server) *websocket.Conn {
	t.Helper()

	wsURL := strings.Replace(ts.URL, "http", "ws", 1) + "/ws"
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", wsURL, err)
	}
	return conn
}

// readLine reads frames until one contains substr, returned with ANSI
// escapes stripped.
func readLine(t *testing.T, ctx context.Context, conn *websocket.Conn, substr string) string {
	t.Helper()

	for {
		_, data, err := conn.Read(ctx)
		if err != nil {
			t.Fatalf("read while waiting for %q: %v", substr, err)
		}
		line := ansi.ReplaceAllString(string(data), "")
		if strings.Contains(line, substr) {
			return line
		}
	}
}

func TestHealthEndpoint(t *testing.T) {
	ts := startTestServer(t)

	resp, err := ts.Client().Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
}

func TestChatRoundTrip(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	connA := dialWS(t, ctx, ts)
	defer connA.Close(websocket.StatusNormalClosure, "done")
	welcome := readLine(t, ctx, connA, "Your ID is")
	fields := strings.Fields(welcome)
	idA := fields[len(fields)-1]

	connB := dialWS(t, ctx, ts)
	defer connB.Close(websocket.StatusNormalClosure, "done")
	readLine(t, ctx, connB, "Your ID is")

	// A sees B arrive in the default room.
	readLine(t, ctx, connA, "entrou na sala")

	if err := connB.Write(ctx, websocket.MessageText, []byte("hello from b")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readLine(t, ctx, connA, "hello from b")
	readLine(t, ctx, connB, "hello from b") // sender echo

	if err := connA.Write(ctx, websocket.MessageText, []byte("/w nobody oi")); err != nil {
		t.Fatalf("write: %v", err)
	}
	readLine(t, ctx, connA, "não encontrado")

	if err := connA.Write(ctx, websocket.MessageText, []byte("/list")); err != nil {
		t.Fatalf("write: %v", err)
	}
	listing := readLine(t, ctx, connA, "Salas existentes")
	if !strings.Contains(listing, "all: 2 usuário(s)") {
		t.Fatalf("unexpected listing: %q", listing)
	}

	// Closing B's connection produces a leave notice for A.
	connB.Close(websocket.StatusNormalClosure, "bye")
	left := readLine(t, ctx, connA, "saiu da sala")
	if idA == "" || strings.Contains(left, idA) {
		t.Fatalf("leave notice should name B, got %q", left)
	}
}

func TestRoomsAPI(t *testing.T) {
	ts := startTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	conn := dialWS(t, ctx, ts)
	defer conn.Close(websocket.StatusNormalClosure, "done")
	readLine(t, ctx, conn, "Your ID is")

	resp, err := ts.Client().Get(ts.URL + "/api/rooms")
	if err != nil {
		t.Fatalf("rooms request failed: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("unexpected status: %d", resp.StatusCode)
	}
	if !strings.Contains(string(body), `"name":"all"`) || !strings.Contains(string(body), `"members":1`) {
		t.Fatalf("unexpected rooms payload: %s", body)
	}
}

func TestCloseOutcome(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus websocket.StatusCode
		wantLogged bool
	}{
		{"clean shutdown", nil, websocket.StatusNormalClosure, false},
		{"peer hung up", io.EOF, websocket.StatusNormalClosure, false},
		{"loops cancelled", context.Canceled, websocket.StatusNormalClosure, false},
		{"peer closed normally", websocket.CloseError{Code: websocket.StatusNormalClosure}, websocket.StatusNormalClosure, false},
		{"peer going away", websocket.CloseError{Code: websocket.StatusGoingAway, Reason: "bye"}, websocket.StatusGoingAway, false},
		{"peer protocol error", websocket.CloseError{Code: websocket.StatusProtocolError}, websocket.StatusProtocolError, true},
		{"plain io error", errors.New("connection reset"), websocket.StatusInternalError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, reason, logErr := closeOutcome(tt.err)
			if status != tt.wantStatus {
				t.Fatalf("status = %d, want %d", status, tt.wantStatus)
			}
			// Close frames reject codes outside the registered range; an
			// error without a close status must never leak -1 through.
			if status <= 0 {
				t.Fatalf("invalid close status %d", status)
			}
			if reason == "" {
				t.Fatal("empty close reason")
			}
			if (logErr != nil) != tt.wantLogged {
				t.Fatalf("logged error = %v, want logged %v", logErr, tt.wantLogged)
			}
		})
	}
}
