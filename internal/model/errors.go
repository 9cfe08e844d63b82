package model

import (
	"errors"
	"fmt"
)

var (
	ErrIllegalMove     = errors.New("illegal move")
	ErrNotYourTurn     = errors.New("not your turn")
	ErrInvalidPosition = errors.New("invalid position")
)

// MoveError reports which engine operation rejected a move and where.
type MoveError struct {
	Op  string
	Pos *Position
	Err error
}

func (e *MoveError) Error() string {
	if e.Pos != nil {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Pos, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *MoveError) Unwrap() error {
	return e.Err
}

func moveError(op string, pos *Position, err error) error {
	return &MoveError{Op: op, Pos: pos, Err: err}
}

var (
	ErrGameFull       = errors.New("game is full")
	ErrGameNotStarted = errors.New("game has not started")
	ErrGameClosed     = errors.New("game is closed")
	ErrNotInGame      = errors.New("player not in game")
	ErrStaleState     = errors.New("stale game state")
	ErrAlreadyQueued  = errors.New("player already in queue")
)
