package session

import "errors"

var (
	ErrNotFound      = errors.New("game_not_found")
	ErrFull          = errors.New("game_full")
	ErrSpinPending   = errors.New("spin_pending")
	ErrInvalidAction = errors.New("invalid_action")
)
