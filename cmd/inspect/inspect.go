package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"huddle/domain"
	"huddle/infrastructure/storage"
	"huddle/projection"
	"huddle/repositories"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
)

// RoomRow is one line of the report.
type RoomRow struct {
	RoomID         domain.RoomID
	StartedAt      time.Time
	Participants   int
	Focus          string
	Events         int
	LiveInvites    int
	ExpiredInvites int
	RosterErr      error
}

// Collect reads every stored room and its invitations.
func Collect(store *storage.BadgerStore, now time.Time) ([]RoomRow, error) {
	rows := make(map[domain.RoomID]*RoomRow)
	row := func(roomID domain.RoomID) *RoomRow {
		if r, ok := rows[roomID]; ok {
			return r
		}
		r := &RoomRow{RoomID: roomID}
		rows[roomID] = r
		return r
	}

	err := store.Scan(storage.RoomPrefix, func(key string, value []byte) error {
		roomID, name, ok := storage.SplitKey(key)
		if !ok || name != storage.RoomKey {
			return nil
		}
		var disk repositories.DiskRoom
		if err := json.Unmarshal(value, &disk); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		room := repositories.ToRoom(disk)
		r := row(roomID)
		r.StartedAt = room.StartedAt
		r.Participants = len(room.Participants)
		r.Focus = fmt.Sprintf("%s: %s", room.Focus.Type, room.Focus.Content)
		r.Events = len(room.Timeline)
		r.RosterErr = projection.Check(room)
		return nil
	})
	if err != nil {
		return nil, err
	}

	invites := repositories.NewInviteRepository(store)
	for roomID, r := range rows {
		set, err := invites.Load(context.Background(), roomID)
		if err != nil {
			return nil, err
		}
		expired := lo.CountBy(lo.Values(set), func(i domain.InviteToken) bool { return i.Expired(now) })
		r.ExpiredInvites = expired
		r.LiveInvites = len(set) - expired
	}

	res := lo.Map(lo.Values(rows), func(r *RoomRow, _ int) RoomRow { return *r })
	sort.Slice(res, func(i, j int) bool { return res[i].StartedAt.Before(res[j].StartedAt) })
	return res, nil
}

func Render(w io.Writer, rows []RoomRow, colours bool) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Room", "Started", "Participants", "Focus", "Events", "Invites", "Roster"})
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")

	for _, r := range rows {
		roster := "ok"
		if r.RosterErr != nil {
			roster = "diverged"
		}
		if colours {
			if r.RosterErr != nil {
				roster = color.Red.Render(roster)
			} else {
				roster = color.Green.Render(roster)
			}
		}
		table.Append([]string{
			r.RoomID.String(),
			r.StartedAt.Format(time.RFC3339),
			strconv.Itoa(r.Participants),
			domain.Truncate(r.Focus, 40),
			strconv.Itoa(r.Events),
			fmt.Sprintf("%d live / %d expired", r.LiveInvites, r.ExpiredInvites),
			roster,
		})
	}
	table.Render()
}
