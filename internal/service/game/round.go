package game

// dealerStandScore is the threshold the dealer draws up to; at 17 or more
// the dealer stands.
const dealerStandScore = 17

// roundComplete reports whether every seat has left the PLAYING state.
func roundComplete(g *Game) bool {
	if len(g.Players) == 0 {
		return false
	}
	for _, ps := range g.Players {
		if ps.Action == ActionPlaying {
			return false
		}
	}
	return true
}

// finishRound runs the dealer phase and resolves outcomes, then marks the
// game FINISHED. The dealer loop always runs, even when every player busted:
// busted players lose unconditionally, so the result is the same and the
// logic stays uniform. An exhausted shoe ends the dealer loop with whatever
// score the dealer holds; that is a normal stop, not an error.
func finishRound(g *Game) {
	for g.DealerScore < dealerStandScore {
		card, err := g.Deck.Draw()
		if err != nil {
			break
		}
		g.DealerHand = append(g.DealerHand, card)
		g.DealerScore = HandValue(g.DealerHand)
	}

	results := make([]PlayerOutcome, 0, len(g.Players))
	for _, ps := range g.Players {
		// Surrendered seats neither win nor lose against the dealer.
		if ps.Action == ActionSurrendered {
			continue
		}

		var outcome Outcome
		switch {
		case ps.Action == ActionBusted:
			outcome = OutcomeLose
		case g.DealerScore > bustThreshold || ps.Score > g.DealerScore:
			outcome = OutcomeWin
		case ps.Score == g.DealerScore:
			outcome = OutcomePush
		default:
			outcome = OutcomeLose
		}
		results = append(results, PlayerOutcome{
			PlayerID: ps.PlayerID,
			Outcome:  outcome,
		})
	}

	g.Results = results
	g.State = StateFinished
}

// initialDeal runs the opening deal round-robin: one card to every seated
// player in order, a second card to every player, then the dealer's two.
func initialDeal(g *Game) error {
	for i := 0; i < 2; i++ {
		for _, ps := range g.Players {
			card, err := g.Deck.Draw()
			if err != nil {
				return err
			}
			ps.Hand = append(ps.Hand, card)
			ps.Score = HandValue(ps.Hand)
		}
	}
	for i := 0; i < 2; i++ {
		card, err := g.Deck.Draw()
		if err != nil {
			return err
		}
		g.DealerHand = append(g.DealerHand, card)
		g.DealerScore = HandValue(g.DealerHand)
	}
	return nil
}
