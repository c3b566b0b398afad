package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"huddle/domain"
	"huddle/errors"
	"huddle/mocks"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func Test_Invites_Load_Empty(t *testing.T) {
	req := require.New(t)
	repository := NewInviteRepository(newTestStore(t))

	invites, err := repository.Load(context.Background(), "r1")

	req.NoError(err)
	req.NotNil(invites)
	req.Empty(invites)
}

func Test_Invites_Save_Then_Load(t *testing.T) {
	req := require.New(t)
	store := newTestStore(t)
	repository := NewInviteRepository(store)
	ctx := context.Background()
	at := time.UnixMilli(1_700_000_000_000).UTC()
	invites := domain.InviteSet{
		"tok-a": {Token: "tok-a", CreatedAt: at, TTL: 15 * time.Minute},
		"tok-b": {Token: "tok-b", CreatedAt: at.Add(time.Minute), TTL: time.Second},
	}

	req.NoError(repository.Save(ctx, "r1", invites))
	loaded, err := repository.Load(ctx, "r1")

	req.NoError(err)
	req.Equal(invites, loaded)

	data, err := store.Get(ctx, "room:r1:invites")
	req.NoError(err)
	req.JSONEq(`{
		"tok-a": {"createdAt": 1700000000000, "ttl": 900000},
		"tok-b": {"createdAt": 1700000060000, "ttl": 1000}
	}`, string(data))
}

func Test_Invites_Save_Failure(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	store := mocks.NewMockKeyValueStore(ctrl)
	repository := NewInviteRepository(store)

	store.EXPECT().Put(gomock.Any(), "room:r1:invites", gomock.Any()).Return(fmt.Errorf("boom")).Times(1)

	err := repository.Save(context.Background(), "r1", domain.InviteSet{})

	req.ErrorIs(err, errors.ErrPersistence)
}
