// Package domain contains core concepts of a collaboration room.
// Room methods are pure transformations: they return a new Room and leave the receiver untouched,
// so a failed persistence never leaks a half-applied state.
// No runtime, network, or storage logic should be added here.
package domain

import (
	"slices"
	"time"

	"github.com/samber/lo"
)

type RoomID string

func (id RoomID) String() string {
	return string(id)
}

// Room is the durable state of one room.
// Timeline grows without bound, there is no retention policy.
type Room struct {
	StartedAt    time.Time
	Focus        FocusState
	Participants []Participant
	Timeline     []TimelineEvent
}

// NewRoom returns the fresh shape shared by explicit creation and lazy first access.
func NewRoom(at time.Time) Room {
	return Room{
		StartedAt:    at,
		Focus:        FocusState{Type: FocusQuestion, TS: at},
		Participants: []Participant{},
		Timeline:     []TimelineEvent{{TS: at, Kind: EventRoomStarted}},
	}
}

// Join appends the participant at the end of the roster along with a join event.
func (r Room) Join(p Participant) Room {
	next := r.clone()
	next.Participants = append(next.Participants, p)
	next.Timeline = append(next.Timeline, TimelineEvent{TS: p.JoinedAt, Kind: EventJoin, By: p.ID})
	return next
}

// Leave removes the participant, keeping the join order of the others.
// It returns false, and no event, when the participant is not in the room.
func (r Room) Leave(participantID string, at time.Time) (Room, bool) {
	if _, ok := r.Participant(participantID); !ok {
		return r, false
	}
	next := r.clone()
	next.Participants = lo.Filter(next.Participants, func(p Participant, _ int) bool {
		return p.ID != participantID
	})
	next.Timeline = append(next.Timeline, TimelineEvent{TS: at, Kind: EventLeave, By: participantID})
	return next, true
}

// SetFocus replaces the focus as a whole.
func (r Room) SetFocus(focus FocusState) Room {
	next := r.clone()
	next.Focus = focus
	next.Timeline = append(next.Timeline, TimelineEvent{TS: focus.TS, Kind: EventSetFocus, By: focus.Author})
	return next
}

func (r Room) Participant(participantID string) (Participant, bool) {
	return lo.Find(r.Participants, func(p Participant) bool {
		return p.ID == participantID
	})
}

func (r Room) clone() Room {
	return Room{
		StartedAt:    r.StartedAt,
		Focus:        r.Focus,
		Participants: slices.Clone(r.Participants),
		Timeline:     slices.Clone(r.Timeline),
	}
}
