package errors

import "fmt"

var (
	ErrWorkerPanic   = fmt.Errorf("worker panic")
	ErrUnauthorized  = fmt.Errorf("unauthorized")
	ErrTokenNotFound = fmt.Errorf("invite token not found")
	ErrTokenExpired  = fmt.Errorf("invite token expired")
	ErrPersistence   = fmt.Errorf("persistence failure")
	ErrKeyNotFound   = fmt.Errorf("key not found")
	ErrRoomStopped   = fmt.Errorf("room actor stopped")
	ErrInvalidRoomID = fmt.Errorf("invalid room id")
	ErrSendBuffer    = fmt.Errorf("connection send buffer full")
	ErrConnClosed    = fmt.Errorf("connection closed")
	ErrEmptyWords    = fmt.Errorf("no words have been found")
)
