package errors

import "errors"

// Game engine failures. Each kind maps to a distinct HTTP status in the API
// layer, so callers never have to string-match messages.
var (
	ErrGameNotFound    = errors.New("game not found")
	ErrPlayerNotFound  = errors.New("player not found")
	ErrGameFinished    = errors.New("game is already finished")
	ErrStateNotAllowed = errors.New("action not allowed in current player state")
	ErrInvalidMoveType = errors.New("invalid move type")
	ErrDeckExhausted   = errors.New("no more cards in the deck")
)
