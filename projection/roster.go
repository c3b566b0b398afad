// Package projection rebuilds views of a room from its timeline alone.
// It never mutates a room, it only reads what was recorded.
package projection

import (
	"fmt"
	"slices"
	"time"

	"huddle/domain"

	"github.com/samber/lo"
)

// Summary is what the timeline says about a room.
type Summary struct {
	Live         []string
	Joins        int
	Leaves       int
	FocusChanges int
	LastActivity time.Time
}

// Replay walks the timeline in order. Live holds the ids still present, in join order.
func Replay(timeline []domain.TimelineEvent) Summary {
	var summary Summary
	for _, e := range timeline {
		switch e.Kind {
		case domain.EventJoin:
			summary.Joins++
			summary.Live = append(summary.Live, e.By)
		case domain.EventLeave:
			summary.Leaves++
			summary.Live = slices.DeleteFunc(summary.Live, func(id string) bool { return id == e.By })
		case domain.EventSetFocus:
			summary.FocusChanges++
		}
		if e.TS.After(summary.LastActivity) {
			summary.LastActivity = e.TS
		}
	}
	return summary
}

// Check reports whether the stored roster matches the one replayed from the timeline.
func Check(room domain.Room) error {
	live := Replay(room.Timeline).Live
	roster := lo.Map(room.Participants, func(p domain.Participant, _ int) string { return p.ID })
	if !slices.Equal(live, roster) {
		return fmt.Errorf("roster %v does not match timeline %v", roster, live)
	}
	return nil
}
