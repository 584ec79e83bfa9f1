package game

import "errors"

var (
	ErrRoomNotFound        = errors.New("room not found")
	ErrRoomFull            = errors.New("room is full")
	ErrInvalidColor        = errors.New("invalid or occupied color")
	ErrAlreadySeated       = errors.New("connection already holds a seat in this room")
	ErrNotSeated           = errors.New("connection holds no seat in this room")
	ErrNotYourTurn         = errors.New("not your turn")
	ErrIllegalMove         = errors.New("illegal move")
	ErrGameOver            = errors.New("game is not in progress")
	ErrFlagFall            = errors.New("clock ran out")
	ErrEmptyMessage        = errors.New("message is empty")
	ErrAllocationExhausted = errors.New("could not allocate a room id")
)
