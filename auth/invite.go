// Package auth issues and checks room invite tokens.
// Possessing a valid token is the only credential a participant needs.
package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"
)

var _ contract.IInviteManager = (*InviteManager)(nil)

// InviteManager is not safe for concurrent use on the same room: it expects the room actor
// to serialize calls, as every call is a read-modify-write of the room invite set. Holds only reads.
type InviteManager struct {
	repository contract.IInviteRepository
	ttl        time.Duration
	log        *slog.Logger
	now        func() time.Time
}

func NewInviteManager(repository contract.IInviteRepository, ttl time.Duration, log *slog.Logger, now func() time.Time) *InviteManager {
	if ttl <= 0 {
		ttl = domain.DefaultInviteTTL
	}
	if now == nil {
		now = time.Now
	}
	return &InviteManager{repository: repository, ttl: ttl, log: log, now: now}
}

// Issue records a new token in the room invite set and returns it with its absolute expiry.
func (m *InviteManager) Issue(ctx context.Context, roomID domain.RoomID) (string, time.Time, error) {
	invites, err := m.repository.Load(ctx, roomID)
	if err != nil {
		return "", time.Time{}, err
	}
	token, err := NewToken()
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token generation: %w", err)
	}
	invite := domain.InviteToken{Token: token, CreatedAt: domain.Millis(m.now()), TTL: m.ttl}
	invites[token] = invite
	if err = m.repository.Save(ctx, roomID, invites); err != nil {
		return "", time.Time{}, err
	}
	m.log.Debug("Invite issued", "room_id", roomID, "expires_at", invite.ExpiresAt())
	return token, invite.ExpiresAt(), nil
}

// Validate succeeds for a known token within its lifetime and leaves it usable.
// An expired token is removed from the set before ErrTokenExpired is returned.
func (m *InviteManager) Validate(ctx context.Context, roomID domain.RoomID, token string) error {
	if token == "" {
		return errors.ErrTokenNotFound
	}
	invites, err := m.repository.Load(ctx, roomID)
	if err != nil {
		return err
	}
	invite, ok := invites[token]
	if !ok {
		return errors.ErrTokenNotFound
	}
	if invite.Expired(m.now()) {
		delete(invites, token)
		if err = m.repository.Save(ctx, roomID, invites); err != nil {
			return err
		}
		return errors.ErrTokenExpired
	}
	return nil
}

// Holds reports whether token is live for roomID without touching the stored set.
func (m *InviteManager) Holds(ctx context.Context, roomID domain.RoomID, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	invites, err := m.repository.Load(ctx, roomID)
	if err != nil {
		return false, err
	}
	invite, ok := invites[token]
	return ok && !invite.Expired(m.now()), nil
}
