package game

import "errors"

var (
	// ErrRoomFull is returned when a fifth player tries to join
	ErrRoomFull = errors.New("room is full")

	// ErrRoomClosed is returned when work is submitted to a stopped room
	ErrRoomClosed = errors.New("room is closed")
)
