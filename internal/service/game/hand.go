package game

import "strconv"

const bustThreshold = 21

// HandValue scores a blackjack hand. J/Q/K count 10, numeric ranks count
// face value, and each ace starts at 11. While the total exceeds 21 and an
// ace is still counted as 11, one ace is demoted to 1. Only the multiset of
// ranks matters, so the result is independent of draw order.
func HandValue(hand []Card) int {
	value := 0
	aces := 0

	for _, card := range hand {
		switch rank := card.Rank(); rank {
		case "J", "Q", "K":
			value += 10
		case "A":
			value += 11
			aces++
		default:
			n, _ := strconv.Atoi(rank)
			value += n
		}
	}

	for value > bustThreshold && aces > 0 {
		value -= 10
		aces--
	}
	return value
}
