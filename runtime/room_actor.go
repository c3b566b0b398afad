package runtime

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"

	"github.com/google/uuid"
)

const DefaultCommandBufferSize = 64

var _ contract.IRoomActor = (*RoomActor)(nil)

type command struct {
	ctx  context.Context
	fn   func(ctx context.Context) error
	done chan error
}

// RoomActor is the single writer of one room.
// Every operation is queued on commands and executed one at a time by Run,
// so no two mutations of the same room ever interleave.
type RoomActor struct {
	id       domain.RoomID
	rooms    contract.IRoomRepository
	invites  contract.IInviteManager
	filter   contract.ContentFilter
	hub      *Hub
	limits   domain.Limits
	log      *slog.Logger
	now      func() time.Time
	commands chan command
	stopped  chan struct{}
	stopOnce sync.Once

	// Owned by the Run goroutine. nil until first loaded.
	room *domain.Room
	// Sessions gone from the hub whose leave is not stored yet.
	departed map[string]struct{}
}

type RoomActorConfig struct {
	Rooms      contract.IRoomRepository
	Invites    contract.IInviteManager
	Filter     contract.ContentFilter
	Limits     domain.Limits
	BufferSize int
	Now        func() time.Time
}

func NewRoomActor(id domain.RoomID, cfg RoomActorConfig, log *slog.Logger) *RoomActor {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultCommandBufferSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	log = log.With("room_id", id)
	return &RoomActor{
		id:       id,
		rooms:    cfg.Rooms,
		invites:  cfg.Invites,
		filter:   cfg.Filter,
		hub:      NewHub(log),
		limits:   cfg.Limits,
		log:      log,
		now:      cfg.Now,
		commands: make(chan command, cfg.BufferSize),
		stopped:  make(chan struct{}),
		departed: make(map[string]struct{}),
	}
}

func (a *RoomActor) ID() domain.RoomID {
	return a.id
}

// Run processes queued commands until ctx is canceled, then closes every live connection.
func (a *RoomActor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			a.stopOnce.Do(func() { close(a.stopped) })
			a.hub.CloseAll(domain.CloseGoingAway, "server shutting down")
			a.log.Debug("Stopping room actor")
			return ctx.Err()
		case cmd := <-a.commands:
			cmd.done <- a.execute(cmd)
		}
	}
}

func (a *RoomActor) execute(cmd command) (err error) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Command panic", "panic", r)
			err = fmt.Errorf("%w: %v", errors.ErrWorkerPanic, r)
		}
	}()
	if err := cmd.ctx.Err(); err != nil {
		return err
	}
	return cmd.fn(cmd.ctx)
}

// do queues fn and waits for the actor to run it.
func (a *RoomActor) do(ctx context.Context, fn func(ctx context.Context) error) error {
	cmd := command{ctx: ctx, fn: fn, done: make(chan error, 1)}
	select {
	case a.commands <- cmd:
	case <-a.stopped:
		return errors.ErrRoomStopped
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-cmd.done:
		return err
	case <-a.stopped:
		return errors.ErrRoomStopped
	}
}

// load returns the cached room, reading or creating the stored one on first access.
func (a *RoomActor) load(ctx context.Context) (domain.Room, error) {
	if a.room != nil {
		return *a.room, nil
	}
	room, err := a.rooms.LoadOrCreate(ctx, a.id)
	if err != nil {
		return domain.Room{}, err
	}
	a.room = &room
	return room, nil
}

// mutate persists the next state before it replaces the cached one.
// Pending departures ride along. A failed write leaves the room exactly as it was
// and keeps them pending for the next turn.
func (a *RoomActor) mutate(ctx context.Context, fn func(domain.Room) (domain.Room, bool)) (domain.Room, bool, error) {
	current, err := a.load(ctx)
	if err != nil {
		return domain.Room{}, false, err
	}
	next, departures := a.applyDepartures(current)
	next, changed := fn(next)
	if !changed && departures == 0 {
		return current, false, nil
	}
	if err := a.rooms.Save(ctx, a.id, next); err != nil {
		return current, false, err
	}
	a.room = &next
	clear(a.departed)
	return next, true, nil
}

func (a *RoomActor) applyDepartures(room domain.Room) (domain.Room, int) {
	applied := 0
	for sessionID := range a.departed {
		next, changed := room.Leave(sessionID, domain.Millis(a.now()))
		if !changed {
			delete(a.departed, sessionID)
			continue
		}
		room = next
		applied++
	}
	return room, applied
}

func (a *RoomActor) Init(ctx context.Context) (domain.Room, error) {
	return a.Snapshot(ctx)
}

func (a *RoomActor) Snapshot(ctx context.Context) (domain.Room, error) {
	var room domain.Room
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		room, err = a.load(ctx)
		return err
	})
	return room, err
}

func (a *RoomActor) Invite(ctx context.Context) (string, time.Time, error) {
	var (
		token     string
		expiresAt time.Time
	)
	err := a.do(ctx, func(ctx context.Context) error {
		if _, err := a.load(ctx); err != nil {
			return err
		}
		var err error
		token, expiresAt, err = a.invites.Issue(ctx, a.id)
		return err
	})
	return token, expiresAt, err
}

// Connect admits a participant: the token is checked, the connection accepted and registered,
// the join persisted, then the newcomer gets a private presence before everyone gets the broadcast.
func (a *RoomActor) Connect(ctx context.Context, join domain.JoinRequest, accept contract.Accept) (string, error) {
	var sessionID string
	err := a.do(ctx, func(ctx context.Context) error {
		join = join.Normalize(a.limits)
		if err := a.invites.Validate(ctx, a.id, join.Token); err != nil {
			if stderrors.Is(err, errors.ErrTokenNotFound) || stderrors.Is(err, errors.ErrTokenExpired) {
				a.log.Info("Connection refused", "reason", err)
				return errors.ErrUnauthorized
			}
			return err
		}
		if _, err := a.load(ctx); err != nil {
			return err
		}

		conn, err := accept()
		if err != nil {
			return err
		}

		participant := domain.Participant{
			ID:       uuid.NewString(),
			Name:     join.Name,
			Role:     join.Role,
			JoinedAt: domain.Millis(a.now()),
		}
		a.hub.Register(participant.ID, conn, participant.Identity())

		room, _, err := a.mutate(ctx, func(r domain.Room) (domain.Room, bool) {
			return r.Join(participant), true
		})
		if err != nil {
			a.hub.Unregister(participant.ID)
			_ = conn.Close(domain.CloseInternalError, "persistence failure")
			return err
		}

		sessionID = participant.ID
		presence := domain.NewPresence(room)
		if err := a.hub.Send(sessionID, presence); err != nil {
			a.log.Debug("Delivery failure", "session_id", sessionID, "error", err)
		}
		a.hub.Broadcast(presence)
		a.log.Info("Participant joined", "session_id", sessionID, "name", participant.Name)
		return nil
	})
	return sessionID, err
}

// Receive handles one inbound frame from sessionID. Unknown frames are dropped.
func (a *RoomActor) Receive(ctx context.Context, sessionID string, data []byte) error {
	return a.do(ctx, func(ctx context.Context) error {
		switch msg := domain.ParseInbound(data).(type) {
		case domain.SetFocusMessage:
			return a.setFocus(ctx, sessionID, msg.Request)
		case domain.LeaveMessage:
			conn, ok := a.hub.Connection(sessionID)
			if !ok {
				return nil
			}
			return conn.Close(domain.CloseNormalClosure, "leave")
		case domain.UnknownMessage:
			a.log.Debug("Dropping unknown message", "session_id", sessionID, "type", msg.Kind)
		}
		return nil
	})
}

func (a *RoomActor) setFocus(ctx context.Context, sessionID string, req domain.FocusRequest) error {
	author, ok := a.hub.Identity(sessionID)
	if !ok {
		a.log.Debug("Dropping focus from unknown session", "session_id", sessionID)
		return nil
	}
	focus := domain.NewFocus(req, author, a.limits, domain.Millis(a.now()))
	if a.filter != nil {
		focus.Content = a.filter.Censor(focus.Content)
	}
	departures := len(a.departed)
	room, _, err := a.mutate(ctx, func(r domain.Room) (domain.Room, bool) {
		return r.SetFocus(focus), true
	})
	if err != nil {
		return err
	}
	if departures > 0 {
		a.hub.Broadcast(domain.NewPresence(room))
	}
	a.hub.Broadcast(domain.NewFocusChanged(focus))
	return nil
}

// Disconnect is idempotent: a session already gone is a no-op.
// A leave that cannot be stored stays pending until a retry or the next stored mutation.
func (a *RoomActor) Disconnect(ctx context.Context, sessionID string) error {
	return a.do(ctx, func(ctx context.Context) error {
		_, registered := a.hub.Unregister(sessionID)
		_, pending := a.departed[sessionID]
		if !registered && !pending {
			return nil
		}
		a.departed[sessionID] = struct{}{}
		room, changed, err := a.mutate(ctx, func(r domain.Room) (domain.Room, bool) {
			return r, false
		})
		if err != nil {
			return err
		}
		if changed {
			a.hub.Broadcast(domain.NewPresence(room))
			a.log.Info("Participant left", "session_id", sessionID)
		}
		return nil
	})
}

func (a *RoomActor) Sessions() int {
	return a.hub.Len()
}
