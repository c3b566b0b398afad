package runtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"huddle/auth"
	"huddle/contract"
	"huddle/domain"
	"huddle/errors"
	"huddle/infrastructure/storage"
	"huddle/repositories"

	"github.com/stretchr/testify/require"
)

type clock struct {
	mu sync.Mutex
	at time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.at
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.at = c.at.Add(d)
}

// recordingConn keeps every frame it was sent.
type recordingConn struct {
	mu       sync.Mutex
	frames   [][]byte
	closed   bool
	code     int
	failSend bool
	onClose  func()
}

func (c *recordingConn) Send(data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failSend || c.closed {
		return errors.ErrConnClosed
	}
	c.frames = append(c.frames, append([]byte(nil), data...))
	return nil
}

func (c *recordingConn) Close(code int, _ string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.code = code
	onClose := c.onClose
	c.mu.Unlock()
	if onClose != nil {
		go onClose()
	}
	return nil
}

func (c *recordingConn) Closed() (bool, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed, c.code
}

type frame struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func (c *recordingConn) Frames(t *testing.T) []frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := make([]frame, 0, len(c.frames))
	for _, data := range c.frames {
		var f frame
		require.NoError(t, json.Unmarshal(data, &f))
		res = append(res, f)
	}
	return res
}

func (c *recordingConn) accept() contract.Accept {
	return func() (contract.Connection, error) { return c, nil }
}

type harness struct {
	actor   *RoomActor
	rooms   *repositories.RoomRepository
	clock   *clock
	cancel  context.CancelFunc
	stopped chan struct{}
}

func newHarness(t *testing.T, configure ...func(*RoomActorConfig)) *harness {
	store, err := storage.OpenBadger("", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	c := &clock{at: time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)}
	rooms := repositories.NewRoomRepository(store, slog.Default(), c.Now)
	invites := auth.NewInviteManager(repositories.NewInviteRepository(store), 900*time.Second, slog.Default(), c.Now)
	cfg := RoomActorConfig{
		Rooms:   rooms,
		Invites: invites,
		Limits:  domain.DefaultLimits,
		Now:     c.Now,
	}
	for _, fn := range configure {
		fn(&cfg)
	}

	actor := NewRoomActor("room-1", cfg, slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() {
		_ = actor.Run(ctx)
		close(stopped)
	}()
	t.Cleanup(func() {
		cancel()
		<-stopped
	})
	return &harness{actor: actor, rooms: rooms, clock: c, cancel: cancel, stopped: stopped}
}

func (h *harness) invite(t *testing.T) string {
	token, _, err := h.actor.Invite(context.Background())
	require.NoError(t, err)
	return token
}

func (h *harness) connect(t *testing.T, token, name, role string) (string, *recordingConn) {
	conn := &recordingConn{}
	sessionID, err := h.actor.Connect(context.Background(), domain.JoinRequest{Token: token, Name: name, Role: role}, conn.accept())
	require.NoError(t, err)
	return sessionID, conn
}

// failingRooms fails the next `failures` saves once armed.
type failingRooms struct {
	contract.IRoomRepository
	mu       sync.Mutex
	failures int
}

func (r *failingRooms) FailNext(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.failures = n
}

func (r *failingRooms) Save(ctx context.Context, roomID domain.RoomID, room domain.Room) error {
	r.mu.Lock()
	if r.failures > 0 {
		r.failures--
		r.mu.Unlock()
		return fmt.Errorf("%w: boom", errors.ErrPersistence)
	}
	r.mu.Unlock()
	return r.IRoomRepository.Save(ctx, roomID, room)
}
