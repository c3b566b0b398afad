package storage

import (
	"context"
	"fmt"
	"log/slog"

	"huddle/contract"
	"huddle/errors"

	"github.com/valkey-io/valkey-go"
)

var _ contract.KeyValueStore = (*ValkeyStore)(nil)

// ValkeyStore keeps room records in a Valkey (or Redis) server so state survives the process.
type ValkeyStore struct {
	client valkey.Client
	log    *slog.Logger
}

func OpenValkey(addr, password string, log *slog.Logger) (*ValkeyStore, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
		Password:    password,
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &ValkeyStore{client: client, log: log}, nil
}

func (s *ValkeyStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Do(ctx, s.client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, errors.ErrKeyNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("valkey get %q: %w", key, err)
	}
	return value, nil
}

func (s *ValkeyStore) Put(ctx context.Context, key string, value []byte) error {
	cmd := s.client.B().Set().Key(key).Value(valkey.BinaryString(value)).Build()
	if err := s.client.Do(ctx, cmd).Error(); err != nil {
		return fmt.Errorf("valkey set %q: %w", key, err)
	}
	return nil
}

func (s *ValkeyStore) Close() error {
	s.log.Info("Closing Valkey client...")
	s.client.Close()
	return nil
}
