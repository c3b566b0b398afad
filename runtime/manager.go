// Package runtime hosts one actor per room and routes every operation to it.
// It sequences work and fans messages out without holding domain rules itself.
package runtime

import (
	"context"
	"log/slog"
	"sync"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"

	"github.com/google/uuid"
)

var _ contract.IManager = (*Manager)(nil)

// Manager spawns room actors lazily, one per room id, under the supervisor.
type Manager struct {
	mu         sync.Mutex
	log        *slog.Logger
	supervisor contract.ISupervisor
	cfg        RoomActorConfig
	actors     map[domain.RoomID]*RoomActor
}

func NewManager(log *slog.Logger, supervisor contract.ISupervisor, cfg RoomActorConfig) *Manager {
	return &Manager{
		log:        log,
		supervisor: supervisor,
		cfg:        cfg,
		actors:     make(map[domain.RoomID]*RoomActor),
	}
}

// CreateRoom allocates a fresh room id and initializes its state.
func (m *Manager) CreateRoom(ctx context.Context) (domain.RoomID, error) {
	roomID := domain.RoomID(uuid.NewString())
	if _, err := m.Room(roomID).Init(ctx); err != nil {
		return "", err
	}
	m.log.Info("Room created", "room_id", roomID)
	return roomID, nil
}

// Room returns the actor owning roomID, starting it on first use.
func (m *Manager) Room(roomID domain.RoomID) contract.IRoomActor {
	m.mu.Lock()
	defer m.mu.Unlock()
	if actor, ok := m.actors[roomID]; ok {
		return actor
	}
	actor := NewRoomActor(roomID, m.cfg, m.log)
	m.actors[roomID] = actor
	m.supervisor.Spawn(actor)
	return actor
}

// Admit returns the actor for a connection attempt. A room without a running actor
// is only started when token is live, so unknown ids cannot pile up actors.
// The actor checks the token again in its own turn.
func (m *Manager) Admit(ctx context.Context, roomID domain.RoomID, token string) (contract.IRoomActor, error) {
	m.mu.Lock()
	actor, ok := m.actors[roomID]
	m.mu.Unlock()
	if ok {
		return actor, nil
	}
	held, err := m.cfg.Invites.Holds(ctx, roomID, token)
	if err != nil {
		return nil, err
	}
	if !held {
		m.log.Info("Connection refused before room start", "room_id", roomID)
		return nil, errors.ErrUnauthorized
	}
	return m.Room(roomID), nil
}

func (m *Manager) Stats() (rooms int, sessions int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, actor := range m.actors {
		sessions += actor.Sessions()
	}
	return len(m.actors), sessions
}
