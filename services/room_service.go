package services

import (
	"context"
	"fmt"
	"time"

	"huddle/contract"
	"huddle/domain"
	"huddle/errors"

	"github.com/go-playground/validator/v10"
)

type IRoomService interface {
	CreateRoom(ctx context.Context) (domain.RoomID, error)
	Invite(ctx context.Context, roomID string) (string, time.Time, error)
	Connect(ctx context.Context, roomID string, join domain.JoinRequest, accept contract.Accept) (string, error)
	Receive(ctx context.Context, roomID, sessionID string, data []byte) error
	Disconnect(ctx context.Context, roomID, sessionID string) error
}

// RoomService is the entry point of every transport, it only checks room ids and routes to the room actor.
type RoomService struct {
	manager  contract.IManager
	validate *validator.Validate
}

func NewRoomService(manager contract.IManager) *RoomService {
	return &RoomService{manager: manager, validate: validator.New()}
}

func (s *RoomService) CreateRoom(ctx context.Context) (domain.RoomID, error) {
	return s.manager.CreateRoom(ctx)
}

func (s *RoomService) Invite(ctx context.Context, roomID string) (string, time.Time, error) {
	actor, err := s.room(roomID)
	if err != nil {
		return "", time.Time{}, err
	}
	return actor.Invite(ctx)
}

func (s *RoomService) Connect(ctx context.Context, roomID string, join domain.JoinRequest, accept contract.Accept) (string, error) {
	if err := s.validate.Var(roomID, "required,uuid"); err != nil {
		return "", fmt.Errorf("%w: %q", errors.ErrInvalidRoomID, roomID)
	}
	actor, err := s.manager.Admit(ctx, domain.RoomID(roomID), join.Token)
	if err != nil {
		return "", err
	}
	return actor.Connect(ctx, join, accept)
}

func (s *RoomService) Receive(ctx context.Context, roomID, sessionID string, data []byte) error {
	actor, err := s.room(roomID)
	if err != nil {
		return err
	}
	return actor.Receive(ctx, sessionID, data)
}

func (s *RoomService) Disconnect(ctx context.Context, roomID, sessionID string) error {
	actor, err := s.room(roomID)
	if err != nil {
		return err
	}
	return actor.Disconnect(ctx, sessionID)
}

// room rejects ids that could not have been issued by CreateRoom before any actor is spawned.
func (s *RoomService) room(roomID string) (contract.IRoomActor, error) {
	if err := s.validate.Var(roomID, "required,uuid"); err != nil {
		return nil, fmt.Errorf("%w: %q", errors.ErrInvalidRoomID, roomID)
	}
	return s.manager.Room(domain.RoomID(roomID)), nil
}
