// Package testhelpers builds consistent game states for tests.
package testhelpers

import (
	"fmt"
	"slices"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/gamestate"
)

// NewState returns a valid GameState after play cards have been played,
// with current on turn holding the legal cards. Played cards are taken in
// deck order, skipping the legal ones; the last play%4 of them are on the
// table. Unplayed cards outside the legal set are spread evenly over all
// four players.
func NewState(play, current int, points [gamestate.NumPlayers]int, legal []card.Card) *gamestate.GameState {
	if len(legal) == 0 || len(legal) > card.CardsInDeck-play {
		panic(fmt.Sprintf("cannot have %d legal plays at play %d", len(legal), play))
	}
	var played []card.Card
	for c := card.Card(0); c < card.CardsInDeck && len(played) < play; c++ {
		if !slices.Contains(legal, c) {
			played = append(played, c)
		}
	}

	gs := &gamestate.GameState{
		DealIndex:   fmt.Sprintf("%x", 0xdea10000+play),
		Play:        play,
		Current:     current,
		Choices:     len(legal),
		TrickSuit:   card.NoSuit,
		PointsSoFar: points,
	}
	inTrick := play % gamestate.PlaysPerTrick
	gs.Lead = (current - inTrick + gamestate.NumPlayers) % gamestate.NumPlayers
	for i := range gs.TrickSoFar {
		gs.TrickSoFar[i] = card.NoCard
	}
	for i := range inTrick {
		gs.TrickSoFar[i] = played[play-inTrick+i]
	}
	if inTrick > 0 {
		gs.TrickSuit = gs.TrickSoFar[0].Suit()
	}

	for c := card.Card(0); c < card.CardsInDeck; c++ {
		if slices.Contains(played, c) {
			continue
		}
		u := gamestate.Unplayed{Card: c}
		if slices.Contains(legal, c) {
			u.Probs[current] = 1
		} else {
			u.Probs = [gamestate.NumPlayers]float32{0.25, 0.25, 0.25, 0.25}
		}
		gs.Distribution = append(gs.Distribution, u)
	}

	for i, c := range legal {
		gs.ExpectedOutputs = append(gs.ExpectedOutputs, gamestate.ExpectedOutput{
			Card:          c,
			ExpectedScore: float32(i) * 0.5,
			WinTrickProb:  0.5,
			MoonProbs:     [gamestate.MoonClasses]float32{0, 0, 1},
		})
	}

	gs.ExtraFeatures = make([]float32, gamestate.NumExtraFeatures)
	for i := range gs.ExtraFeatures {
		gs.ExtraFeatures[i] = float32(i) / 64
	}
	return gs
}
