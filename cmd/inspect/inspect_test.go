package main

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"huddle/domain"
	"huddle/infrastructure/storage"
	"huddle/repositories"

	"github.com/stretchr/testify/require"
)

func TestCollect_And_Render(t *testing.T) {
	req := require.New(t)
	store, err := storage.OpenBadger(t.TempDir(), slog.Default())
	req.NoError(err)
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()
	at := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	// Given two rooms, one with a participant and invitations
	rooms := repositories.NewRoomRepository(store, slog.Default(), func() time.Time { return at })
	first, err := rooms.LoadOrCreate(ctx, "r1")
	req.NoError(err)
	req.NoError(rooms.Save(ctx, "r1", first.Join(domain.Participant{ID: "p1", Name: "Ada", JoinedAt: at})))
	_, err = rooms.LoadOrCreate(ctx, "r2")
	req.NoError(err)

	invites := repositories.NewInviteRepository(store)
	req.NoError(invites.Save(ctx, "r1", domain.InviteSet{
		"fresh": {Token: "fresh", CreatedAt: at, TTL: time.Hour},
		"stale": {Token: "stale", CreatedAt: at.Add(-2 * time.Hour), TTL: time.Minute},
	}))

	// When the store is inspected
	rows, err := Collect(store, at.Add(time.Minute))

	// Then every room is reported with a consistent roster
	req.NoError(err)
	req.Len(rows, 2)
	byID := map[domain.RoomID]RoomRow{rows[0].RoomID: rows[0], rows[1].RoomID: rows[1]}
	req.Equal(1, byID["r1"].Participants)
	req.Equal(2, byID["r1"].Events)
	req.Equal(1, byID["r1"].LiveInvites)
	req.Equal(1, byID["r1"].ExpiredInvites)
	req.NoError(byID["r1"].RosterErr)
	req.Zero(byID["r2"].Participants)

	var out bytes.Buffer
	Render(&out, rows, false)
	req.Contains(out.String(), "r1")
	req.Contains(out.String(), "1 live / 1 expired")
	req.Contains(out.String(), "ok")
}
