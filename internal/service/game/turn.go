package game

import (
	appErr "blackjack-service/pkg/errors"
)

// applyMove validates and applies one player action. Failures leave the
// aggregate untouched: the finished-game and seat-state checks run before any
// card is drawn, and a draw failure propagates before the hand is mutated.
func applyMove(g *Game, playerID int64, move MoveType, bet int64) error {
	if g.State == StateFinished {
		return appErr.ErrGameFinished
	}

	ps := g.playerState(playerID)
	if ps == nil {
		return appErr.ErrPlayerNotFound
	}
	if ps.Action != ActionPlaying {
		return appErr.ErrStateNotAllowed
	}

	if bet > 0 {
		ps.Bet = bet
	}

	switch move {
	case MoveHit:
		card, err := g.Deck.Draw()
		if err != nil {
			return err
		}
		ps.Hand = append(ps.Hand, card)
		ps.Score = HandValue(ps.Hand)
		if ps.Score > bustThreshold {
			ps.Action = ActionBusted
		}
	case MoveStand:
		ps.Action = ActionStanding
	case MoveDoubleDown:
		card, err := g.Deck.Draw()
		if err != nil {
			return err
		}
		ps.Hand = append(ps.Hand, card)
		ps.Score = HandValue(ps.Hand)
		ps.Bet *= 2
		if ps.Score > bustThreshold {
			ps.Action = ActionBusted
		} else {
			ps.Action = ActionDoubledDown
		}
	case MoveSurrender:
		ps.Action = ActionSurrendered
	default:
		return appErr.ErrInvalidMoveType
	}

	return nil
}
