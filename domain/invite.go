package domain

import "time"

const DefaultInviteTTL = 15 * time.Minute

// InviteToken is an entry of a room invite set.
type InviteToken struct {
	Token     string
	CreatedAt time.Time
	TTL       time.Duration
}

func (i InviteToken) ExpiresAt() time.Time {
	return i.CreatedAt.Add(i.TTL)
}

// Expired reports whether now is strictly past the token lifetime.
func (i InviteToken) Expired(now time.Time) bool {
	return now.Sub(i.CreatedAt) > i.TTL
}

// InviteSet maps a token to its record, scoped to one room.
type InviteSet map[string]InviteToken
