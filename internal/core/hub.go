package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"salachat/internal/style"
)

// DefaultRoom is lazily created on the first connection and never deleted.
const DefaultRoom = "all"

type envelope struct {
	sess *Session
	cmd  Command
}

type connectReq struct {
	reply chan *Session
}

// RoomInfo is a snapshot entry for one room.
type RoomInfo struct {
	Name    string `json:"name"`
	Members int    `json:"members"`
}

// SessionInfo is a snapshot entry for one live session.
type SessionInfo struct {
	ID   string `json:"id"`
	Room string `json:"room"`
}

// Hub owns the session and room registries. Every state transition runs on
// the single Run goroutine, so a session's recorded room and the room
// member sets can never be observed out of step.
type Hub struct {
	ids *Allocator
	log *zerolog.Logger

	connect    chan connectReq
	disconnect chan *Session
	inbox      chan envelope
	queries    chan func()
	done       chan struct{}

	sessions map[*Session]struct{}
	byID     map[string]*Session
	rooms    map[string]*Room
	order    []string // room creation order, drives /list
	palette  style.Palette
}

// NewHub creates a hub with empty registries.
func NewHub(logger *zerolog.Logger) *Hub {
	return &Hub{
		ids:        NewAllocator(),
		log:        logger,
		connect:    make(chan connectReq),
		disconnect: make(chan *Session),
		inbox:      make(chan envelope, 64),
		queries:    make(chan func()),
		done:       make(chan struct{}),
		sessions:   make(map[*Session]struct{}),
		byID:       make(map[string]*Session),
		rooms:      make(map[string]*Room),
	}
}

// Run processes connects, disconnects and commands until ctx is cancelled.
// It must be running before any session is accepted.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-h.connect:
			req.reply <- h.handleConnect()
		case s := <-h.disconnect:
			h.handleDisconnect(s)
		case env := <-h.inbox:
			h.dispatch(env.sess, env.cmd)
		case q := <-h.queries:
			q()
		}
	}
}

// Connect registers a new session, places it in the default room, announces
// it and sends the welcome line. The returned session is ready for its
// read/write loops.
func (h *Hub) Connect() (*Session, error) {
	req := connectReq{reply: make(chan *Session, 1)}
	select {
	case h.connect <- req:
		return <-req.reply, nil
	case <-h.done:
		return nil, ErrHubClosed
	}
}

// Disconnect removes the session from its room and the registry, then
// announces the departure. Safe to call more than once per session.
func (h *Hub) Disconnect(s *Session) {
	select {
	case h.disconnect <- s:
	case <-h.done:
	}
}

// Rooms returns every room with its member count, in creation order.
func (h *Hub) Rooms() []RoomInfo {
	var out []RoomInfo
	h.query(func() {
		out = make([]RoomInfo, 0, len(h.order))
		for _, name := range h.order {
			out = append(out, RoomInfo{Name: name, Members: h.rooms[name].Len()})
		}
	})
	return out
}

// Sessions returns every live session with its current room, sorted by
// identifier.
func (h *Hub) Sessions() []SessionInfo {
	var out []SessionInfo
	h.query(func() {
		out = make([]SessionInfo, 0, len(h.sessions))
		for s := range h.sessions {
			out = append(out, SessionInfo{ID: s.ID, Room: s.room})
		}
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// query runs fn on the hub goroutine and waits for it, so snapshots see a
// consistent registry state.
func (h *Hub) query(fn func()) {
	ran := make(chan struct{})
	select {
	case h.queries <- func() { fn(); close(ran) }:
	case <-h.done:
		return
	}
	select {
	case <-ran:
	case <-h.done:
	}
}

func (h *Hub) handleConnect() *Session {
	s := newSession(h.ids.Allocate(), h.palette.Next())
	h.sessions[s] = struct{}{}
	h.byID[s.ID] = s

	all := h.ensureRoom(DefaultRoom)
	all.Add(s)

	go h.pump(s)

	ts := stamp()
	h.log.Info().Str("session", s.ID).Msg("client connected")
	h.fanout(all, fmt.Sprintf("%s[%s] %s%s%s%s entrou na sala %s%s%s",
		style.Grey, ts, s.Color, s.ID, style.Reset, style.Grey, style.RoomAll, DefaultRoom, style.Reset), s)
	s.deliver(fmt.Sprintf("Welcome to the WebSocket server! Your ID is %s%s%s", s.Color, s.ID, style.Reset))
	return s
}

func (h *Hub) handleDisconnect(s *Session) {
	if _, live := h.sessions[s]; !live {
		return
	}
	room := h.rooms[s.room]
	room.Remove(s)
	delete(h.sessions, s)
	delete(h.byID, s.ID)
	h.ids.Release(s.ID)
	close(s.Events)

	h.log.Info().Str("session", s.ID).Str("room", room.Name).Msg("client disconnected")
	h.fanout(room, fmt.Sprintf("%s[%s] %s%s%s%s saiu da sala%s",
		style.Grey, stamp(), s.Color, s.ID, style.Reset, style.Grey, style.Reset), nil)
}

// pump preserves per-session command order while keeping the transport
// decoupled from the hub's own pace.
func (h *Hub) pump(s *Session) {
	for cmd := range s.Commands {
		select {
		case h.inbox <- envelope{sess: s, cmd: cmd}:
		case <-h.done:
			return
		}
	}
}

func (h *Hub) dispatch(s *Session, cmd Command) {
	if _, live := h.sessions[s]; !live {
		// Command raced with the disconnect; drop it silently.
		return
	}

	ts := stamp()
	switch cmd.Kind {
	case CommandCreateRoom:
		h.createRoom(s, cmd.Room, ts)
	case CommandJoinRoom:
		h.joinRoom(s, cmd.Room, ts)
	case CommandExit:
		h.exitToDefault(s, ts)
	case CommandWhisper:
		h.whisper(s, cmd.Target, cmd.Text, ts)
	case CommandListRooms:
		h.listRooms(s, ts)
	case CommandWho:
		h.who(s, ts)
	default:
		h.roomMessage(s, cmd.Text, ts)
	}
}

func (h *Hub) createRoom(s *Session, name, ts string) {
	if name == "" {
		s.deliver(fmt.Sprintf("%s[%s] Informe o nome da sala: /create <nome>%s", style.Grey, ts, style.Reset))
		return
	}
	if existing, ok := h.rooms[name]; ok {
		s.deliver(fmt.Sprintf("%s[%s] Sala %s%s%s%s já existe%s",
			style.Grey, ts, existing.Tag, name, style.Reset, style.Grey, style.Reset))
		return
	}

	room := h.ensureRoom(name)
	h.rooms[s.room].Remove(s)
	s.room = name
	room.Add(s)

	h.log.Info().Str("session", s.ID).Str("room", name).Msg("room created")

	h.fanout(h.rooms[DefaultRoom], fmt.Sprintf("%s[%s] %s%s%s%s criou Sala %s%s%s",
		style.Grey, ts, s.Color, s.ID, style.Reset, style.Grey, room.Tag, name, style.Reset), s)
	h.fanout(room, fmt.Sprintf("%s[%s] %s%s%s%s entrou na Sala %s%s%s",
		style.Grey, ts, s.Color, s.ID, style.Reset, style.Grey, room.Tag, name, style.Reset), s)
	s.deliver(fmt.Sprintf("%s[%s] Você criou a sala %s%s%s", style.Grey, ts, room.Tag, name, style.Reset))
	s.deliver(fmt.Sprintf("%s[%s] Você entrou na sala %s%s%s", style.Grey, ts, room.Tag, name, style.Reset))
}

func (h *Hub) joinRoom(s *Session, name, ts string) {
	if name == "" {
		s.deliver(fmt.Sprintf("%s[%s] Informe o nome da sala: /join <nome>%s", style.Grey, ts, style.Reset))
		return
	}
	room, ok := h.rooms[name]
	if !ok {
		s.deliver(fmt.Sprintf("%s[%s] Sala %s não existe%s", style.Grey, ts, name, style.Reset))
		return
	}
	h.switchRoom(s, room, ts)
}

func (h *Hub) exitToDefault(s *Session, ts string) {
	if s.room == DefaultRoom {
		s.deliver(fmt.Sprintf("%s[%s] Você já está na sala %s%s%s", style.Grey, ts, style.RoomAll, DefaultRoom, style.Reset))
		return
	}
	h.switchRoom(s, h.rooms[DefaultRoom], ts)
}

// switchRoom moves a session between rooms as one step, so no observer can
// see it in two rooms or in none.
func (h *Hub) switchRoom(s *Session, target *Room, ts string) {
	old := h.rooms[s.room]
	old.Remove(s)
	// The mover is already out of the old member set, so the leave notice
	// needs no exclusion.
	h.fanout(old, fmt.Sprintf("%s[%s] %s%s%s%s saiu da sala%s",
		style.Grey, ts, s.Color, s.ID, style.Reset, style.Grey, style.Reset), nil)

	s.room = target.Name
	target.Add(s)

	s.deliver(fmt.Sprintf("%s[%s] Você entrou na sala %s%s%s", style.Grey, ts, target.Tag, target.Name, style.Reset))
	h.fanout(target, fmt.Sprintf("%s[%s] %s%s%s%s entrou na sala%s",
		style.Grey, ts, s.Color, s.ID, style.Reset, style.Grey, style.Reset), s)
}

func (h *Hub) whisper(s *Session, target, body, ts string) {
	if target == "" {
		s.deliver(fmt.Sprintf("%s[%s] Informe o destinatário: /w <id> <mensagem>%s", style.Grey, ts, style.Reset))
		return
	}
	recipient, ok := h.byID[target]
	if !ok {
		s.deliver(fmt.Sprintf("%s[%s] Usuário %s não encontrado%s", style.Grey, ts, target, style.Reset))
		return
	}

	msg := fmt.Sprintf("[/w][%s] [ %s ] %s%s%s: %s", recipient.ID, ts, s.Color, s.ID, style.Reset, body)
	recipient.deliver(msg)
	s.deliver(msg)
}

func (h *Hub) listRooms(s *Session, ts string) {
	lines := make([]string, 0, len(h.order))
	for _, name := range h.order {
		lines = append(lines, fmt.Sprintf("%s: %d usuário(s)", name, h.rooms[name].Len()))
	}
	s.deliver(fmt.Sprintf("%s[%s] Salas existentes:\n%s%s", style.Grey, ts, strings.Join(lines, "\n"), style.Reset))
}

func (h *Hub) who(s *Session, ts string) {
	room := h.rooms[s.room]
	ids := make([]string, 0, room.Len())
	for m := range room.members {
		ids = append(ids, m.ID)
	}
	sort.Strings(ids)
	s.deliver(fmt.Sprintf("%s[%s] Usuários na sala %s%s%s%s (%d): %s%s",
		style.Grey, ts, room.Tag, room.Name, style.Reset, style.Grey, room.Len(), strings.Join(ids, ", "), style.Reset))
}

func (h *Hub) roomMessage(s *Session, text, ts string) {
	room := h.rooms[s.room]
	msg := fmt.Sprintf("[%s%s%s] [ %s ] %s%s%s: %s", room.Tag, room.Name, style.Reset, ts, s.Color, s.ID, style.Reset, text)
	h.log.Debug().Str("session", s.ID).Str("room", room.Name).Msg("room message")
	// The sender is not excluded: its echo is the rendered copy of the
	// message in the chat window.
	h.fanout(room, msg, nil)
}

func (h *Hub) ensureRoom(name string) *Room {
	if r, ok := h.rooms[name]; ok {
		return r
	}
	tag := style.RoomAll
	if name != DefaultRoom {
		tag = h.palette.Next()
	}
	r := NewRoom(name, tag)
	h.rooms[name] = r
	h.order = append(h.order, name)
	return r
}

func (h *Hub) fanout(r *Room, text string, exclude *Session) {
	for _, id := range r.Broadcast(text, exclude) {
		h.log.Debug().Str("session", id).Str("room", r.Name).Msg("dropped outbound message")
	}
}

func stamp() string {
	return time.Now().Format(time.TimeOnly)
}
