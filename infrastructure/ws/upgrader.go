package ws

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/samber/lo"
)

type Upgrader struct {
	upgrader   websocket.Upgrader
	bufferSize int
	log        *slog.Logger
}

// NewUpgrader accepts any origin when allowedOrigins contains "*".
func NewUpgrader(allowedOrigins []string, bufferSize int, log *slog.Logger) *Upgrader {
	return &Upgrader{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || lo.Contains(allowedOrigins, "*") || lo.Contains(allowedOrigins, origin)
			},
		},
		bufferSize: bufferSize,
		log:        log,
	}
}

// Upgrade switches the request to the websocket protocol.
// On failure an HTTP error has already been written to w.
func (u *Upgrader) Upgrade(w http.ResponseWriter, r *http.Request) (*Connection, error) {
	conn, err := u.upgrader.Upgrade(w, r, nil)
	if err != nil {
		u.log.Warn("Failed to upgrade connection", "error", err)
		return nil, err
	}
	return NewConnection(conn, u.bufferSize, u.log), nil
}
