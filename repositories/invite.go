package repositories

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"
	"huddle/infrastructure/storage"
)

var _ contract.IInviteRepository = (*InviteRepository)(nil)

type InviteRepository struct {
	store contract.KeyValueStore
}

func NewInviteRepository(store contract.KeyValueStore) *InviteRepository {
	return &InviteRepository{store: store}
}

// DiskInvite is the value of one token under the "invites" key, in milliseconds.
type DiskInvite struct {
	CreatedAt int64 `json:"createdAt"`
	TTL       int64 `json:"ttl"`
}

// Load returns an empty set when the room never issued a token.
func (i *InviteRepository) Load(ctx context.Context, roomID domain.RoomID) (domain.InviteSet, error) {
	data, err := i.store.Get(ctx, storage.Key(roomID, storage.InvitesKey))
	if stderrors.Is(err, errors.ErrKeyNotFound) {
		return domain.InviteSet{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: load invites %s: %v", errors.ErrPersistence, roomID, err)
	}
	var disk map[string]DiskInvite
	if err = json.Unmarshal(data, &disk); err != nil {
		return nil, fmt.Errorf("%w: decode invites %s: %v", errors.ErrPersistence, roomID, err)
	}
	invites := make(domain.InviteSet, len(disk))
	for token, d := range disk {
		invites[token] = domain.InviteToken{
			Token:     token,
			CreatedAt: fromMillis(d.CreatedAt),
			TTL:       time.Duration(d.TTL) * time.Millisecond,
		}
	}
	return invites, nil
}

func (i *InviteRepository) Save(ctx context.Context, roomID domain.RoomID, invites domain.InviteSet) error {
	disk := make(map[string]DiskInvite, len(invites))
	for token, invite := range invites {
		disk[token] = DiskInvite{CreatedAt: invite.CreatedAt.UnixMilli(), TTL: invite.TTL.Milliseconds()}
	}
	data, err := json.Marshal(disk)
	if err != nil {
		return fmt.Errorf("%w: encode invites %s: %v", errors.ErrPersistence, roomID, err)
	}
	if err = i.store.Put(ctx, storage.Key(roomID, storage.InvitesKey), data); err != nil {
		return fmt.Errorf("%w: save invites %s: %v", errors.ErrPersistence, roomID, err)
	}
	return nil
}
