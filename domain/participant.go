// Package domain contains core concepts of a collaboration room.
// This file defines Participant entities and the join normalization rules.
package domain

import (
	"strings"
	"time"
)

const (
	DefaultName = "Guest"
	DefaultRole = "Participant"
)

// Participant is one live session in a room, not a person.
// The same person reconnecting gets a new ID.
type Participant struct {
	ID       string
	Name     string
	Role     string
	JoinedAt time.Time
}

// Identity is what the hub caches for a session so the actor can author focus changes.
type Identity struct {
	ID   string
	Name string
	Role string
}

func (p Participant) Identity() Identity {
	return Identity{ID: p.ID, Name: p.Name, Role: p.Role}
}

// JoinRequest carries the raw connect parameters.
type JoinRequest struct {
	Token string
	Name  string
	Role  string
}

// Normalize caps every field and substitutes placeholders for blank name and role.
func (j JoinRequest) Normalize(limits Limits) JoinRequest {
	name := Truncate(strings.TrimSpace(j.Name), limits.Name)
	if name == "" {
		name = DefaultName
	}
	role := Truncate(strings.TrimSpace(j.Role), limits.Role)
	if role == "" {
		role = DefaultRole
	}
	return JoinRequest{
		Token: Truncate(strings.TrimSpace(j.Token), limits.Token),
		Name:  name,
		Role:  role,
	}
}
