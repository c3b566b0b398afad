// Package domain contains core concepts of a collaboration room.
// This file defines the frames exchanged over a live connection.
// Inbound frames are a closed set of variants, anything unrecognized becomes UnknownMessage and is dropped.
package domain

import (
	"encoding/json"

	"github.com/samber/lo"
)

type MessageKind string

const (
	KindPresence MessageKind = "presence"
	KindFocus    MessageKind = "focus"
	KindSetFocus MessageKind = "set_focus"
	KindLeave    MessageKind = "leave"
)

// Outbound is a frame sent to connections.
type Outbound struct {
	Kind    MessageKind `json:"kind"`
	Payload any         `json:"payload"`
}

type PresencePayload struct {
	StartedAt    int64             `json:"startedAt"`
	Participants []ParticipantView `json:"participants"`
	Focus        FocusView         `json:"focus"`
}

type ParticipantView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Role     string `json:"role"`
	JoinedAt int64  `json:"joinedAt"`
}

type FocusView struct {
	Type       FocusType `json:"type"`
	Content    string    `json:"content"`
	Author     string    `json:"author"`
	AuthorName string    `json:"authorName"`
	TS         int64     `json:"ts"`
}

// NewPresence builds the full snapshot frame: roster, focus and start time.
func NewPresence(room Room) Outbound {
	return Outbound{
		Kind: KindPresence,
		Payload: PresencePayload{
			StartedAt:    room.StartedAt.UnixMilli(),
			Participants: lo.Map(room.Participants, func(p Participant, _ int) ParticipantView { return ToParticipantView(p) }),
			Focus:        ToFocusView(room.Focus),
		},
	}
}

// NewFocusChanged carries the focus alone, without the roster.
func NewFocusChanged(focus FocusState) Outbound {
	return Outbound{Kind: KindFocus, Payload: ToFocusView(focus)}
}

func ToParticipantView(p Participant) ParticipantView {
	return ParticipantView{ID: p.ID, Name: p.Name, Role: p.Role, JoinedAt: p.JoinedAt.UnixMilli()}
}

func ToFocusView(f FocusState) FocusView {
	return FocusView{
		Type:       f.Type,
		Content:    f.Content,
		Author:     f.Author,
		AuthorName: f.AuthorName,
		TS:         f.TS.UnixMilli(),
	}
}

// Inbound is a frame received from a connection.
type Inbound interface {
	inbound()
}

type SetFocusMessage struct {
	Request FocusRequest
}

type LeaveMessage struct{}

// UnknownMessage stands for unparseable frames and unknown kinds.
type UnknownMessage struct {
	Kind string
}

func (SetFocusMessage) inbound() {}
func (LeaveMessage) inbound()    {}
func (UnknownMessage) inbound()  {}

type rawInbound struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

// Non string values for type or content are treated as absent and normalized later.
type rawFocusPayload struct {
	Type    any `json:"type"`
	Content any `json:"content"`
}

// ParseInbound never fails: malformed input is reported as UnknownMessage.
func ParseInbound(data []byte) Inbound {
	var raw rawInbound
	if err := json.Unmarshal(data, &raw); err != nil {
		return UnknownMessage{}
	}
	switch MessageKind(raw.Kind) {
	case KindSetFocus:
		var payload rawFocusPayload
		if len(raw.Payload) > 0 {
			if err := json.Unmarshal(raw.Payload, &payload); err != nil {
				return UnknownMessage{Kind: raw.Kind}
			}
		}
		return SetFocusMessage{Request: FocusRequest{
			Type:    asString(payload.Type),
			Content: asString(payload.Content),
		}}
	case KindLeave:
		return LeaveMessage{}
	default:
		return UnknownMessage{Kind: raw.Kind}
	}
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}
