package runtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"huddle/contract"
	"huddle/domain"
)

type session struct {
	conn     contract.Connection
	identity domain.Identity
}

// Hub tracks the live connections of one room and fans messages out to them.
// Delivery is at-most-once and best-effort: no ack, no retry, no ordering across recipients.
// Nothing here is durable, losing the hub loses the connections, not the room.
type Hub struct {
	mu       sync.RWMutex
	log      *slog.Logger
	sessions map[string]session
}

func NewHub(log *slog.Logger) *Hub {
	return &Hub{log: log, sessions: make(map[string]session)}
}

func (h *Hub) Register(sessionID string, conn contract.Connection, identity domain.Identity) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sessions[sessionID] = session{conn: conn, identity: identity}
}

// Unregister is idempotent: unknown or already removed sessions are ignored.
func (h *Hub) Unregister(sessionID string) (contract.Connection, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.sessions[sessionID]
	if !ok {
		return nil, false
	}
	delete(h.sessions, sessionID)
	return s.conn, true
}

func (h *Hub) Identity(sessionID string) (domain.Identity, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[sessionID]
	return s.identity, ok
}

func (h *Hub) Connection(sessionID string) (contract.Connection, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	s, ok := h.sessions[sessionID]
	return s.conn, ok
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Send delivers a private message to one session.
func (h *Hub) Send(sessionID string, msg domain.Outbound) error {
	conn, ok := h.Connection(sessionID)
	if !ok {
		return fmt.Errorf("session %s not registered", sessionID)
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return deliver(conn, data)
}

// Broadcast serializes msg once and tries every registered connection.
// A failing recipient is logged and skipped. It returns how many sends succeeded.
func (h *Hub) Broadcast(msg domain.Outbound) int {
	data, err := json.Marshal(msg)
	if err != nil {
		h.log.Error("Unable to encode broadcast", "kind", msg.Kind, "error", err)
		return 0
	}

	h.mu.RLock()
	recipients := make(map[string]contract.Connection, len(h.sessions))
	for id, s := range h.sessions {
		recipients[id] = s.conn
	}
	h.mu.RUnlock()

	delivered := 0
	for id, conn := range recipients {
		if err := deliver(conn, data); err != nil {
			h.log.Debug("Delivery failure", "session_id", id, "kind", msg.Kind, "error", err)
			continue
		}
		delivered++
	}
	return delivered
}

// CloseAll ends every live connection, used on shutdown.
func (h *Hub) CloseAll(code int, reason string) {
	h.mu.RLock()
	conns := make([]contract.Connection, 0, len(h.sessions))
	for _, s := range h.sessions {
		conns = append(conns, s.conn)
	}
	h.mu.RUnlock()
	for _, conn := range conns {
		_ = conn.Close(code, reason)
	}
}

// deliver turns a panicking connection into a plain failure so one recipient cannot stop a broadcast.
func deliver(conn contract.Connection, data []byte) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("send panic: %v", r)
		}
	}()
	return conn.Send(data)
}
