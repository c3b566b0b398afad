package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"log/slog"
	"time"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"
	"huddle/infrastructure/storage"

	"github.com/samber/lo"
)

var _ contract.IRoomRepository = (*RoomRepository)(nil)

type RoomRepository struct {
	store contract.KeyValueStore
	log   *slog.Logger
	now   func() time.Time
}

func NewRoomRepository(store contract.KeyValueStore, log *slog.Logger, now func() time.Time) *RoomRepository {
	if now == nil {
		now = time.Now
	}
	return &RoomRepository{store: store, log: log, now: now}
}

// DiskRoom is the persisted shape under the "room" key. Times are unix milliseconds.
type DiskRoom struct {
	StartedAt    int64               `json:"startedAt"`
	Focus        DiskFocus           `json:"focus"`
	Participants []DiskParticipant   `json:"participants"`
	Timeline     []DiskTimelineEvent `json:"timeline"`
}

type DiskFocus struct {
	Type       string `json:"type"`
	Content    string `json:"content"`
	Author     string `json:"author"`
	AuthorName string `json:"authorName"`
	TS         int64  `json:"ts"`
}

type DiskParticipant struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

type DiskTimelineEvent struct {
	TS   int64  `json:"ts"`
	Kind string `json:"kind"`
	By   string `json:"by"`
}

// LoadOrCreate returns the stored room, or persists and returns a fresh one.
// Calling it any number of times yields the same room once it exists.
func (r *RoomRepository) LoadOrCreate(ctx context.Context, roomID domain.RoomID) (domain.Room, error) {
	data, err := r.store.Get(ctx, storage.Key(roomID, storage.RoomKey))
	switch {
	case err == nil:
		var disk DiskRoom
		if err = json.Unmarshal(data, &disk); err != nil {
			return domain.Room{}, fmt.Errorf("%w: decode room %s: %v", errors.ErrPersistence, roomID, err)
		}
		return ToRoom(disk), nil
	case stderrors.Is(err, errors.ErrKeyNotFound):
		room := domain.NewRoom(domain.Millis(r.now()))
		if err = r.Save(ctx, roomID, room); err != nil {
			return domain.Room{}, err
		}
		r.log.Debug("Room created on first access", "room_id", roomID)
		return room, nil
	default:
		return domain.Room{}, fmt.Errorf("%w: load room %s: %v", errors.ErrPersistence, roomID, err)
	}
}

func (r *RoomRepository) Save(ctx context.Context, roomID domain.RoomID, room domain.Room) error {
	data, err := json.Marshal(FromRoom(room))
	if err != nil {
		return fmt.Errorf("%w: encode room %s: %v", errors.ErrPersistence, roomID, err)
	}
	if err = r.store.Put(ctx, storage.Key(roomID, storage.RoomKey), data); err != nil {
		return fmt.Errorf("%w: save room %s: %v", errors.ErrPersistence, roomID, err)
	}
	return nil
}

func FromRoom(room domain.Room) DiskRoom {
	return DiskRoom{
		StartedAt: room.StartedAt.UnixMilli(),
		Focus: DiskFocus{
			Type:       string(room.Focus.Type),
			Content:    room.Focus.Content,
			Author:     room.Focus.Author,
			AuthorName: room.Focus.AuthorName,
			TS:         room.Focus.TS.UnixMilli(),
		},
		Participants: lo.Map(room.Participants, func(p domain.Participant, _ int) DiskParticipant {
			return DiskParticipant{ID: p.ID, Name: p.Name, Role: p.Role, JoinedAt: p.JoinedAt.UnixMilli()}
		}),
		Timeline: lo.Map(room.Timeline, func(e domain.TimelineEvent, _ int) DiskTimelineEvent {
			return DiskTimelineEvent{TS: e.TS.UnixMilli(), Kind: string(e.Kind), By: e.By}
		}),
	}
}

func ToRoom(disk DiskRoom) domain.Room {
	return domain.Room{
		StartedAt: fromMillis(disk.StartedAt),
		Focus: domain.FocusState{
			Type:       domain.ToFocusType(disk.Focus.Type),
			Content:    disk.Focus.Content,
			Author:     disk.Focus.Author,
			AuthorName: disk.Focus.AuthorName,
			TS:         fromMillis(disk.Focus.TS),
		},
		Participants: lo.Map(disk.Participants, func(p DiskParticipant, _ int) domain.Participant {
			return domain.Participant{ID: p.ID, Name: p.Name, Role: p.Role, JoinedAt: fromMillis(p.JoinedAt)}
		}),
		Timeline: lo.Map(disk.Timeline, func(e DiskTimelineEvent, _ int) domain.TimelineEvent {
			return domain.TimelineEvent{TS: fromMillis(e.TS), Kind: domain.EventKind(e.Kind), By: e.By}
		}),
	}
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}
