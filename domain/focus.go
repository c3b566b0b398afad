package domain

import (
	"time"

	"github.com/go-playground/validator/v10"
)

type FocusType string

const (
	FocusQuestion FocusType = "question"
	FocusText     FocusType = "text"
)

var validate = validator.New()

// FocusState is the single item currently under discussion in a room.
type FocusState struct {
	Type       FocusType
	Content    string
	Author     string
	AuthorName string
	TS         time.Time
}

// FocusRequest is the raw set_focus payload received from a session.
type FocusRequest struct {
	Type    string
	Content string
}

// ToFocusType falls back to FocusQuestion for anything outside the allowed values.
func ToFocusType(raw string) FocusType {
	if err := validate.Var(raw, "required,oneof=question text"); err != nil {
		return FocusQuestion
	}
	return FocusType(raw)
}

// NewFocus builds the focus authored by the given identity. Content is capped, never rejected.
func NewFocus(req FocusRequest, author Identity, limits Limits, at time.Time) FocusState {
	return FocusState{
		Type:       ToFocusType(req.Type),
		Content:    Truncate(req.Content, limits.Content),
		Author:     author.ID,
		AuthorName: author.Name,
		TS:         at,
	}
}
