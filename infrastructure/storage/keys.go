package storage

import (
	"fmt"
	"strings"

	"huddle/domain"
)

const (
	RoomPrefix = "room:"
	RoomKey    = "room"
	InvitesKey = "invites"
)

// Key namespaces a per room key so that every room shares one backend without collisions,
// e.g. "room:{roomID}:invites".
func Key(roomID domain.RoomID, name string) string {
	return fmt.Sprintf("%s%s:%s", RoomPrefix, roomID, name)
}

// SplitKey is the inverse of Key.
func SplitKey(key string) (domain.RoomID, string, bool) {
	rest, ok := strings.CutPrefix(key, RoomPrefix)
	if !ok {
		return "", "", false
	}
	i := strings.LastIndex(rest, ":")
	if i <= 0 {
		return "", "", false
	}
	return domain.RoomID(rest[:i]), rest[i+1:], true
}
