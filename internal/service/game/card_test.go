package game_test

import (
	"errors"
	mrand "math/rand"
	"testing"

	"blackjack-service/internal/service/game"
	appErr "blackjack-service/pkg/errors"
)

func TestNewShuffledDeckSinglePack(t *testing.T) {
	deck := game.NewShuffledDeck(1, mrand.New(mrand.NewSource(1)))
	if len(deck) != 52 {
		t.Fatalf("expected 52 cards, got %d", len(deck))
	}

	seen := make(map[game.Card]int, len(deck))
	for _, card := range deck {
		seen[card]++
	}
	if len(seen) != 52 {
		t.Fatalf("expected 52 distinct cards, got %d", len(seen))
	}
	for card, count := range seen {
		if count != 1 {
			t.Fatalf("card %s appears %d times", card, count)
		}
	}
}

func TestNewShuffledDeckShoe(t *testing.T) {
	const packCount = 6
	deck := game.NewShuffledDeck(packCount, mrand.New(mrand.NewSource(2)))
	if len(deck) != packCount*52 {
		t.Fatalf("expected %d cards, got %d", packCount*52, len(deck))
	}

	seen := make(map[game.Card]int)
	for _, card := range deck {
		seen[card]++
	}
	if len(seen) != 52 {
		t.Fatalf("expected 52 distinct tokens, got %d", len(seen))
	}
	for card, count := range seen {
		if count != packCount {
			t.Fatalf("card %s appears %d times, want %d", card, count, packCount)
		}
	}
}

func TestNewShuffledDeckIsDeterministicPerSource(t *testing.T) {
	a := game.NewShuffledDeck(1, mrand.New(mrand.NewSource(7)))
	b := game.NewShuffledDeck(1, mrand.New(mrand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different orderings at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestDrawRemovesHeadCard(t *testing.T) {
	deck := game.Deck{"2H", "3D", "9C"}

	card, err := deck.Draw()
	if err != nil {
		t.Fatalf("draw failed: %v", err)
	}
	if card != "2H" {
		t.Fatalf("expected head card 2H, got %s", card)
	}
	if len(deck) != 2 || deck[0] != "3D" {
		t.Fatalf("unexpected deck after draw: %v", deck)
	}
}

func TestDrawFromEmptyDeck(t *testing.T) {
	deck := game.Deck{}
	if _, err := deck.Draw(); !errors.Is(err, appErr.ErrDeckExhausted) {
		t.Fatalf("expected ErrDeckExhausted, got %v", err)
	}
}

func TestCardRankAndSuit(t *testing.T) {
	cases := []struct {
		card game.Card
		rank string
		suit string
	}{
		{"2H", "2", "H"},
		{"10D", "10", "D"},
		{"AS", "A", "S"},
	}
	for _, tc := range cases {
		if got := tc.card.Rank(); got != tc.rank {
			t.Fatalf("Rank(%s) = %s, want %s", tc.card, got, tc.rank)
		}
		if got := tc.card.Suit(); got != tc.suit {
			t.Fatalf("Suit(%s) = %s, want %s", tc.card, got, tc.suit)
		}
	}
}
