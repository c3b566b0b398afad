package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"huddle/domain"
	"huddle/errors"
	"huddle/infrastructure/storage"
	"huddle/mocks"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func newTestStore(t *testing.T) *storage.BadgerStore {
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	require.NoError(t, err)
	store := storage.NewBadgerStore(db, slog.Default())
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func Test_LoadOrCreate_Creates_Fresh_Room_Once(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 1, 2, 3, 4, 5, 6_000_000, time.UTC)
	repository := NewRoomRepository(newTestStore(t), slog.Default(), fixedClock(at))
	ctx := context.Background()

	// Given no room is stored
	// When the room is accessed for the first time
	first, err := repository.LoadOrCreate(ctx, "r1")
	req.NoError(err)

	// Then a fresh room with a single room_started event is returned
	req.Equal(domain.NewRoom(at), first)

	// And later accesses converge on the same room
	repository.now = fixedClock(at.Add(time.Hour))
	second, err := repository.LoadOrCreate(ctx, "r1")
	req.NoError(err)
	req.Equal(first, second)
}

func Test_Save_Then_Load_Round_Trip(t *testing.T) {
	req := require.New(t)
	at := domain.Millis(time.Now())
	repository := NewRoomRepository(newTestStore(t), slog.Default(), fixedClock(at))
	ctx := context.Background()

	room := domain.NewRoom(at).
		Join(domain.Participant{ID: "s1", Name: "Ada", Role: "Host", JoinedAt: at}).
		Join(domain.Participant{ID: "s2", Name: "Bob", Role: "Guest", JoinedAt: at.Add(time.Second)}).
		SetFocus(domain.FocusState{Type: domain.FocusText, Content: "Hello", Author: "s1", AuthorName: "Ada", TS: at})
	room, _ = room.Leave("s2", at.Add(2*time.Second))

	req.NoError(repository.Save(ctx, "r1", room))
	loaded, err := repository.LoadOrCreate(ctx, "r1")

	req.NoError(err)
	req.Equal(room, loaded)
}

func Test_Rooms_Are_Isolated(t *testing.T) {
	req := require.New(t)
	at := domain.Millis(time.Now())
	repository := NewRoomRepository(newTestStore(t), slog.Default(), fixedClock(at))
	ctx := context.Background()

	room := domain.NewRoom(at).Join(domain.Participant{ID: "s1", JoinedAt: at})
	req.NoError(repository.Save(ctx, "r1", room))

	other, err := repository.LoadOrCreate(ctx, "r2")
	req.NoError(err)
	req.Empty(other.Participants)
}

func Test_LoadOrCreate_Persistence_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockKeyValueStore(ctrl)
	repository := NewRoomRepository(store, slog.Default(), nil)
	ctx := context.Background()

	// Given the store is unreachable
	store.EXPECT().Get(gomock.Any(), "room:r1:room").Return(nil, fmt.Errorf("connection refused")).Times(1)

	_, err := repository.LoadOrCreate(ctx, "r1")

	req.ErrorIs(err, errors.ErrPersistence)
}

func Test_LoadOrCreate_Fails_When_Fresh_Room_Cannot_Be_Saved(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockKeyValueStore(ctrl)
	repository := NewRoomRepository(store, slog.Default(), nil)

	store.EXPECT().Get(gomock.Any(), "room:r1:room").Return(nil, errors.ErrKeyNotFound).Times(1)
	store.EXPECT().Put(gomock.Any(), "room:r1:room", gomock.Any()).Return(fmt.Errorf("disk full")).Times(1)

	_, err := repository.LoadOrCreate(context.Background(), "r1")

	req.ErrorIs(err, errors.ErrPersistence)
}

func Test_LoadOrCreate_Corrupted_Record(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	ctx := context.Background()
	req.NoError(store.Put(ctx, storage.Key("r1", storage.RoomKey), []byte("{not json")))
	repository := NewRoomRepository(store, slog.Default(), nil)

	_, err := repository.LoadOrCreate(ctx, "r1")

	req.ErrorIs(err, errors.ErrPersistence)
}

func Test_Stored_Room_Json_Shape(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	at := time.UnixMilli(1_700_000_000_000).UTC()
	repository := NewRoomRepository(store, slog.Default(), fixedClock(at))
	ctx := context.Background()

	_, err := repository.LoadOrCreate(ctx, "r1")
	req.NoError(err)

	data, err := store.Get(ctx, "room:r1:room")
	req.NoError(err)
	req.JSONEq(`{
		"startedAt": 1700000000000,
		"focus": {"type":"question","content":"","author":"","authorName":"","ts":1700000000000},
		"participants": [],
		"timeline": [{"ts":1700000000000,"kind":"room_started","by":""}]
	}`, string(data))
}
