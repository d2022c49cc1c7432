// Package gamestate holds one solver snapshot of a partially played deal.
package gamestate

import "github.com/heartsnn/trickdata/card"

const (
	NumPlayers    = 4
	PlaysPerTrick = 4

	// MoonClasses are p(current player shoots), p(other player shoots),
	// p(regular score).
	MoonClasses = 3

	NumExtraFeatures  = 33
	ExtraFeatureLines = 7
)

// Unplayed is one card not yet played, with the probability that each
// player holds it.
type Unplayed struct {
	Card  card.Card
	Probs [NumPlayers]float32
}

// ExpectedOutput is the solver's evaluation of one legal play.
type ExpectedOutput struct {
	Card          card.Card
	ExpectedScore float32
	WinTrickProb  float32
	MoonProbs     [MoonClasses]float32
}

// GameState is one parsed record. It is built by a single parse and
// consumed by a single encode.
type GameState struct {
	DealIndex string

	Play    int // cards already played this deal
	Lead    int
	Current int
	Choices int

	TrickSuit   card.Suit
	TrickSoFar  [PlaysPerTrick]card.Card
	PointsSoFar [NumPlayers]int

	// Distribution lists every unplayed card, in the solver's order.
	Distribution []Unplayed
	// ExpectedOutputs has one entry per legal play.
	ExpectedOutputs []ExpectedOutput
	ExtraFeatures   []float32
}

// PlayInTrick is the number of cards already on the table.
func (gs *GameState) PlayInTrick() int {
	n := 0
	for _, c := range gs.TrickSoFar {
		if c == card.NoCard {
			break
		}
		n++
	}
	return n
}

// HighCardInTrick returns the highest card of the led suit on the table,
// or card.NoCard when nothing has been led yet.
func (gs *GameState) HighCardInTrick() card.Card {
	high := card.NoCard
	for _, c := range gs.TrickSoFar {
		if c == card.NoCard {
			break
		}
		if high == card.NoCard {
			high = c
			continue
		}
		if c.Suit() == high.Suit() && c.Rank() > high.Rank() {
			high = c
		}
	}
	return high
}

// Legal reports whether c has an entry in ExpectedOutputs.
func (gs *GameState) Legal(c card.Card) bool {
	for _, eo := range gs.ExpectedOutputs {
		if eo.Card == c {
			return true
		}
	}
	return false
}
