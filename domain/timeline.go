package domain

import "time"

type EventKind string

const (
	EventRoomStarted EventKind = "room_started"
	EventJoin        EventKind = "join"
	EventLeave       EventKind = "leave"
	EventSetFocus    EventKind = "set_focus"
)

// TimelineEvent is one entry of the room audit log.
// By is empty for system events.
type TimelineEvent struct {
	TS   time.Time
	Kind EventKind
	By   string
}

// Millis drops sub-millisecond precision and the monotonic reading so that a time survives
// a round trip through storage unchanged.
func Millis(t time.Time) time.Time {
	return time.UnixMilli(t.UnixMilli()).UTC()
}
