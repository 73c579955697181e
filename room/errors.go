package room

import "errors"

var (
	ErrRoomAlreadyExists = errors.New("room already exists")
	ErrRoomNotFound      = errors.New("room not found")
	ErrDuplicateName     = errors.New("player name already taken in this room")
	ErrRoomFull          = errors.New("room is full")
	ErrGameInProgress    = errors.New("game already in progress")
	ErrRoomClosed        = errors.New("room is closed")
)
