package ws

import (
	"context"
	stderrors "errors"
	"log/slog"
	"sync"
	"time"

	"huddle/domain"
	"huddle/errors"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024

	DefaultSendBufferSize = 32
)

// Connection adapts a gorilla websocket to the room's view of a connection.
// Writes go through a buffered channel drained by a single writer goroutine,
// so Send and Close never block on the network.
type Connection struct {
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
	once   sync.Once
	log    *slog.Logger
	code   int
	reason string
}

func NewConnection(conn *websocket.Conn, bufferSize int, log *slog.Logger) *Connection {
	if bufferSize <= 0 {
		bufferSize = DefaultSendBufferSize
	}
	c := &Connection{
		conn: conn,
		send: make(chan []byte, bufferSize),
		done: make(chan struct{}),
		log:  log,
	}
	go c.writePump()
	return c
}

func (c *Connection) Send(data []byte) error {
	select {
	case <-c.done:
		return errors.ErrConnClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.ErrSendBuffer
	}
}

// Close asks the writer to flush what is queued, send a close frame and drop the socket.
// Only the first call counts.
func (c *Connection) Close(code int, reason string) error {
	c.once.Do(func() {
		c.code = code
		c.reason = reason
		close(c.done)
	})
	return nil
}

func (c *Connection) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				c.log.Debug("Write failure", "error", err)
				_ = c.Close(domain.CloseInternalError, "write failure")
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, nil); err != nil {
				c.log.Debug("Ping failure", "error", err)
				_ = c.Close(domain.CloseInternalError, "ping failure")
				return
			}
		case <-c.done:
			c.flush()
			frame := websocket.FormatCloseMessage(c.code, c.reason)
			_ = c.conn.WriteControl(websocket.CloseMessage, frame, time.Now().Add(writeWait))
			return
		}
	}
}

func (c *Connection) flush() {
	for {
		select {
		case data := <-c.send:
			if err := c.write(websocket.TextMessage, data); err != nil {
				return
			}
		default:
			return
		}
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// ReadLoop hands every inbound frame to onMessage until the socket ends, then closes the connection.
// A read failure other than a close from the peer, or a failed write to storage,
// ends the connection with the abnormal code.
func (c *Connection) ReadLoop(ctx context.Context, onMessage func(ctx context.Context, data []byte) error) {
	defer func() { _ = c.Close(domain.CloseNormalClosure, "") }()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			var closeErr *websocket.CloseError
			if !stderrors.As(err, &closeErr) {
				c.log.Debug("Read failure", "error", err)
				_ = c.Close(domain.CloseInternalError, "read failure")
			}
			return
		}
		if err := onMessage(ctx, data); err != nil {
			switch {
			case stderrors.Is(err, errors.ErrRoomStopped) || ctx.Err() != nil:
				_ = c.Close(domain.CloseGoingAway, "room stopped")
				return
			case stderrors.Is(err, errors.ErrPersistence):
				c.log.Error("Message not applied", "error", err)
				_ = c.Close(domain.CloseInternalError, "persistence failure")
				return
			}
			c.log.Warn("Message not applied", "error", err)
		}
	}
}
