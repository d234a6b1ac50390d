package game

import (
	"strings"

	appErr "blackjack-service/pkg/errors"
)

type GameState string

const (
	StateOngoing  GameState = "ONGOING"
	StateFinished GameState = "FINISHED"
)

// PlayerAction is the per-seat state. PLAYING is the only non-terminal state;
// once a seat leaves it, the seat never gains a card or changes again within
// the round.
type PlayerAction string

const (
	ActionPlaying     PlayerAction = "PLAYING"
	ActionStanding    PlayerAction = "STANDING"
	ActionDoubledDown PlayerAction = "DOUBLED_DOWN"
	ActionBusted      PlayerAction = "BUSTED"
	ActionSurrendered PlayerAction = "SURRENDERED"
)

// MoveType is the action kind a caller submits for one turn.
type MoveType string

const (
	MoveHit        MoveType = "HIT"
	MoveStand      MoveType = "STAND"
	MoveDoubleDown MoveType = "DOUBLE_DOWN"
	MoveSurrender  MoveType = "SURRENDER"
)

// ParseMoveType maps a caller-supplied action kind to a MoveType, failing
// with ErrInvalidMoveType on anything unrecognized.
func ParseMoveType(raw string) (MoveType, error) {
	switch MoveType(strings.ToUpper(strings.TrimSpace(raw))) {
	case MoveHit:
		return MoveHit, nil
	case MoveStand:
		return MoveStand, nil
	case MoveDoubleDown:
		return MoveDoubleDown, nil
	case MoveSurrender:
		return MoveSurrender, nil
	default:
		return "", appErr.ErrInvalidMoveType
	}
}

type Outcome string

const (
	OutcomeWin  Outcome = "win"
	OutcomeLose Outcome = "lose"
	OutcomePush Outcome = "push"
)

type PlayerState struct {
	PlayerID int64        `json:"playerId"`
	Hand     []Card       `json:"hand"`
	Score    int          `json:"score"`
	Action   PlayerAction `json:"action"`
	Bet      int64        `json:"bet"`
	// SplitHand is carried for forward compatibility; no transition
	// populates it yet.
	SplitHand []Card `json:"splitHand,omitempty"`
}

type PlayerOutcome struct {
	PlayerID int64   `json:"playerId"`
	Outcome  Outcome `json:"outcome"`
}

// Game is the aggregate root. It is exclusively owned by the operation
// holding the per-game lock and persisted as a whole on every mutation.
type Game struct {
	ID          string          `json:"id"`
	State       GameState       `json:"state"`
	Players     []*PlayerState  `json:"players"`
	Deck        Deck            `json:"deck"`
	DealerHand  []Card          `json:"dealerHand"`
	DealerScore int             `json:"dealerScore"`
	Results     []PlayerOutcome `json:"results,omitempty"`
}

func (g *Game) playerState(playerID int64) *PlayerState {
	for _, ps := range g.Players {
		if ps.PlayerID == playerID {
			return ps
		}
	}
	return nil
}
