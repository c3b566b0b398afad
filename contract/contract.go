//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"
	"reflect"
	"time"

	"huddle/domain"
)

type ISupervisor interface {
	Add(worker ...Worker) ISupervisor
	Run(ctx context.Context)
	Start(ctx context.Context, worker Worker)
	Spawn(worker Worker)
	Stop()
}

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// GetWorkerName uses reflection to retrieve the type name of the worker.
// This is used for logging and supervision purposes during worker initialization
// or lifecycle events, avoiding the need for manual naming in the Worker interface.
func GetWorkerName(w Worker) string {
	if w == nil {
		return "NilWorker"
	}
	t := reflect.TypeOf(w)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	return t.Name()
}

// KeyValueStore is the opaque durable substrate. Get returns errors.ErrKeyNotFound for a missing key.
type KeyValueStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}

// Connection is a live, upgraded connection as seen by the room.
// Send must not block on network I/O: a full or closed connection is reported as an error.
type Connection interface {
	Send(data []byte) error
	Close(code int, reason string) error
}

// Accept upgrades the pending connection once the room authorized it.
type Accept func() (Connection, error)

type IRoomRepository interface {
	LoadOrCreate(ctx context.Context, roomID domain.RoomID) (domain.Room, error)
	Save(ctx context.Context, roomID domain.RoomID, room domain.Room) error
}

type IInviteRepository interface {
	Load(ctx context.Context, roomID domain.RoomID) (domain.InviteSet, error)
	Save(ctx context.Context, roomID domain.RoomID, invites domain.InviteSet) error
}

type IInviteManager interface {
	Issue(ctx context.Context, roomID domain.RoomID) (string, time.Time, error)
	Validate(ctx context.Context, roomID domain.RoomID, token string) error
	Holds(ctx context.Context, roomID domain.RoomID, token string) (bool, error)
}

// ContentFilter rewrites user supplied focus content before it is stored.
type ContentFilter interface {
	Censor(content string) string
}

type IRoomActor interface {
	Init(ctx context.Context) (domain.Room, error)
	Invite(ctx context.Context) (string, time.Time, error)
	Connect(ctx context.Context, join domain.JoinRequest, accept Accept) (string, error)
	Receive(ctx context.Context, sessionID string, data []byte) error
	Disconnect(ctx context.Context, sessionID string) error
	Snapshot(ctx context.Context) (domain.Room, error)
	Sessions() int
}

type IManager interface {
	CreateRoom(ctx context.Context) (domain.RoomID, error)
	Room(roomID domain.RoomID) IRoomActor
	Admit(ctx context.Context, roomID domain.RoomID, token string) (IRoomActor, error)
	Stats() (rooms int, sessions int)
}
