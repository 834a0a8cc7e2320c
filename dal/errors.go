// Package dal is the data access layer. Functions take the *gorm.DB they run
// against so callers can pass a transaction or a request scoped handle.
package dal

import "errors"

var (
	ErrUserExists     = errors.New("user already exists")
	ErrUserNotFound   = errors.New("user not found")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrAlreadyMember  = errors.New("user is already in the room")
	ErrInvalidMaxSize = errors.New("maxMembers must be at least 1")
)
