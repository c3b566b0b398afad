package auth

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"testing"
	"time"

	"huddle/domain"
	"huddle/errors"
	"huddle/infrastructure/storage"
	"huddle/mocks"
	"huddle/repositories"

	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type clock struct {
	at time.Time
}

func (c *clock) Now() time.Time { return c.at }

func newManager(t *testing.T, c *clock) (*InviteManager, *repositories.InviteRepository) {
	store, err := storage.OpenBadger("", slog.Default())
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	repository := repositories.NewInviteRepository(store)
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	return NewInviteManager(repository, 900*time.Second, log, c.Now), repository
}

func TestNewToken_Is_Url_Safe_And_Unique(t *testing.T) {
	req := require.New(t)
	urlSafe := regexp.MustCompile(`^[A-Za-z0-9_-]{32}$`)
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		token, err := NewToken()
		req.NoError(err)
		req.Regexp(urlSafe, token)
		_, dup := seen[token]
		req.False(dup)
		seen[token] = struct{}{}
	}
}

func TestInviteManager_Issue(t *testing.T) {
	req := require.New(t)
	c := &clock{at: time.UnixMilli(1_700_000_000_000)}
	manager, repository := newManager(t, c)
	ctx := context.Background()

	token, expiresAt, err := manager.Issue(ctx, "r1")

	req.NoError(err)
	req.NotEmpty(token)
	req.Equal(c.at.Add(900*time.Second).UTC(), expiresAt)

	// Then the token is recorded in the room invite set only
	invites, err := repository.Load(ctx, "r1")
	req.NoError(err)
	req.Contains(invites, token)
	other, err := repository.Load(ctx, "r2")
	req.NoError(err)
	req.Empty(other)
}

func TestInviteManager_Validate_Is_Multi_Use_Until_Expiry(t *testing.T) {
	req := require.New(t)
	c := &clock{at: time.Now()}
	manager, repository := newManager(t, c)
	ctx := context.Background()
	token, _, err := manager.Issue(ctx, "r1")
	req.NoError(err)

	// When the token is used several times within its lifetime
	for i := 0; i < 3; i++ {
		c.at = c.at.Add(4 * time.Minute)
		req.NoError(manager.Validate(ctx, "r1", token))
	}

	// Then it is still in the set
	invites, err := repository.Load(ctx, "r1")
	req.NoError(err)
	req.Contains(invites, token)

	// When the lifetime elapses
	c.at = c.at.Add(4 * time.Minute)
	req.ErrorIs(manager.Validate(ctx, "r1", token), errors.ErrTokenExpired)

	// Then it has been pruned and is now unknown
	invites, err = repository.Load(ctx, "r1")
	req.NoError(err)
	req.NotContains(invites, token)
	req.ErrorIs(manager.Validate(ctx, "r1", token), errors.ErrTokenNotFound)
}

func TestInviteManager_Validate_At_Exact_Expiry_Is_Valid(t *testing.T) {
	req := require.New(t)
	c := &clock{at: domain.Millis(time.Now())}
	manager, _ := newManager(t, c)
	ctx := context.Background()
	token, expiresAt, err := manager.Issue(ctx, "r1")
	req.NoError(err)

	c.at = expiresAt
	req.NoError(manager.Validate(ctx, "r1", token))
}

func TestInviteManager_Validate_Unknown_Tokens(t *testing.T) {
	req := require.New(t)
	manager, _ := newManager(t, &clock{at: time.Now()})
	ctx := context.Background()
	token, _, err := manager.Issue(ctx, "r1")
	req.NoError(err)

	req.ErrorIs(manager.Validate(ctx, "r1", ""), errors.ErrTokenNotFound)
	req.ErrorIs(manager.Validate(ctx, "r1", "garbage-token"), errors.ErrTokenNotFound)
	// A token is scoped to the room that issued it
	req.ErrorIs(manager.Validate(ctx, "r2", token), errors.ErrTokenNotFound)
}

func TestInviteManager_Holds_Does_Not_Prune(t *testing.T) {
	req := require.New(t)
	c := &clock{at: time.UnixMilli(1_700_000_000_000)}
	manager, repository := newManager(t, c)
	ctx := context.Background()
	token, _, err := manager.Issue(ctx, "r1")
	req.NoError(err)

	held, err := manager.Holds(ctx, "r1", token)
	req.NoError(err)
	req.True(held)
	for _, other := range []struct {
		room  domain.RoomID
		token string
	}{{"r1", ""}, {"r1", "garbage-token"}, {"r2", token}} {
		held, err = manager.Holds(ctx, other.room, other.token)
		req.NoError(err)
		req.False(held)
	}

	// When the token is past its lifetime it is no longer held but stays stored
	c.at = c.at.Add(901 * time.Second)
	held, err = manager.Holds(ctx, "r1", token)
	req.NoError(err)
	req.False(held)
	invites, err := repository.Load(ctx, "r1")
	req.NoError(err)
	req.Contains(invites, token)
}

func TestInviteManager_Issue_Persistence_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	repository := mocks.NewMockIInviteRepository(ctrl)
	manager := NewInviteManager(repository, 0, slog.Default(), nil)
	persistErr := fmt.Errorf("%w: boom", errors.ErrPersistence)

	repository.EXPECT().Load(gomock.Any(), domain.RoomID("r1")).Return(domain.InviteSet{}, nil).Times(1)
	repository.EXPECT().Save(gomock.Any(), domain.RoomID("r1"), gomock.Any()).Return(persistErr).Times(1)

	token, _, err := manager.Issue(context.Background(), "r1")

	req.ErrorIs(err, errors.ErrPersistence)
	req.Empty(token)
}
