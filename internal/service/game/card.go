package game

import (
	mrand "math/rand"

	appErr "blackjack-service/pkg/errors"
)

// Card is a two-or-three character token: rank then suit (e.g. "2H", "10D",
// "AS"). Ranks: 2-10, J, Q, K, A. Suits: H, D, C, S. This token form is the
// only wire format the engine defines; it is stored and exchanged as-is.
type Card string

var suits = []string{"H", "D", "C", "S"}

var ranks = []string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

// Rank returns the rank part of the token ("2".."10", "J", "Q", "K", "A").
func (c Card) Rank() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[:len(c)-1])
}

// Suit returns the trailing suit letter.
func (c Card) Suit() string {
	if len(c) < 2 {
		return ""
	}
	return string(c[len(c)-1:])
}

// Deck is an ordered sequence of cards owned exclusively by one game.
type Deck []Card

// NewShuffledDeck concatenates packCount standard 52-card packs and applies a
// uniform random permutation using the supplied source. Every call yields an
// independent ordering; the returned deck shares no state with any other.
func NewShuffledDeck(packCount int, r *mrand.Rand) Deck {
	if packCount <= 0 {
		packCount = 1
	}
	deck := make(Deck, 0, packCount*52)
	for p := 0; p < packCount; p++ {
		for _, suit := range suits {
			for _, rank := range ranks {
				deck = append(deck, Card(rank+suit))
			}
		}
	}
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
	return deck
}

// Draw removes and returns the head card. Drawing from an empty deck fails
// with ErrDeckExhausted and leaves the deck untouched.
func (d *Deck) Draw() (Card, error) {
	if len(*d) == 0 {
		return "", appErr.ErrDeckExhausted
	}
	card := (*d)[0]
	*d = (*d)[1:]
	return card, nil
}
