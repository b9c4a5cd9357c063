package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"

	"salachat/internal/core"
)

// WSHandler upgrades HTTP connections and bridges them to the hub.
type WSHandler struct {
	hub *core.Hub
	log *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(hub *core.Hub, logger *zerolog.Logger) stdhttp.Handler {
	return &WSHandler{hub: hub, log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	sess, err := h.hub.Connect()
	if err != nil {
		conn.Close(websocket.StatusGoingAway, "server shutting down")
		return
	}
	defer h.hub.Disconnect(sess)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, sess)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, sess)
	}()

	err = <-errCh
	sess.MarkClosed() // broadcasts still in flight skip this connection
	cancel()
	<-errCh

	status, reason, closeErr := closeOutcome(err)
	if closeErr != nil {
		h.log.Warn().Err(closeErr).Str("session", sess.ID).Msg("ws connection closed with error")
	}

	conn.Close(status, reason)
}

// closeOutcome maps the error that ended the connection loops to the close
// frame to send. CloseStatus reports -1 for errors that carry no close
// frame, so only positive codes are echoed back. The returned error is
// non-nil when the termination is worth logging.
func closeOutcome(err error) (websocket.StatusCode, string, error) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
		return websocket.StatusNormalClosure, "closing", nil
	}
	if s := websocket.CloseStatus(err); s > 0 {
		if s == websocket.StatusNormalClosure || s == websocket.StatusGoingAway {
			return s, "closing", nil
		}
		return s, err.Error(), err
	}
	return websocket.StatusInternalError, err.Error(), err
}

// readLoop turns inbound text frames into classified commands. One frame is
// one message; the per-session channel keeps them in arrival order.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	defer close(sess.Commands)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			return err
		}
		if typ != websocket.MessageText {
			continue
		}
		sess.Commands <- core.ParseLine(string(data))
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, sess *core.Session) error {
	for {
		select {
		case text, ok := <-sess.Events:
			if !ok {
				return nil
			}
			if err := conn.Write(ctx, websocket.MessageText, []byte(text)); err != nil {
				h.log.Error().Err(err).Str("session", sess.ID).Msg("write ws event")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
