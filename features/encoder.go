// Package features turns a parsed game state into the fixed-shape float32
// vectors a learner is trained on.
package features

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/samber/lo"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/gamestate"
)

// ErrEncoding matches every *EncodingError with errors.Is.
var ErrEncoding = errors.New("encoding error")

// EncodingError reports a game state that breaks an encoding invariant.
// The sample is never clamped or dropped; the caller must abort.
type EncodingError struct {
	Msg string
}

func (e *EncodingError) Error() string        { return "encoding: " + e.Msg }
func (e *EncodingError) Is(target error) bool { return target == ErrEncoding }

func encodingErrorf(format string, args ...any) error {
	return &EncodingError{Msg: fmt.Sprintf(format, args...)}
}

// Sample is one encoded game state. Its slices are never modified after
// Encode returns.
type Sample struct {
	Main     []float32
	Scores   []float32
	WinTrick []float32
	Moon     []float32
}

// Encoder is a pure function of its Layout: encoding the same state twice
// gives identical samples.
type Encoder struct {
	layout     Layout
	pointValue [card.CardsInDeck]float32
}

func NewEncoder(l Layout) (*Encoder, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &Encoder{layout: l, pointValue: card.PointValues()}, nil
}

func (e *Encoder) Layout() Layout { return e.layout }

// Encode builds the feature vector and the three label vectors for gs.
func (e *Encoder) Encode(gs *gamestate.GameState) (*Sample, error) {
	if err := e.check(gs); err != nil {
		return nil, err
	}
	l := e.layout
	const nCards = card.CardsInDeck

	main := make([]float32, l.MainLen())
	// Named views into main, in the order the learner expects.
	off := 0
	take := func(n int) []float32 {
		s := main[off : off+n]
		off += n
		return s
	}
	distribution := take(nCards * l.NumPlayers)
	legalPlays := take(nCards)
	canTakeTrick := take(nCards)
	pointValueColumn := take(nCards)
	pointsSoFar := take(l.PointsSoFarLen)
	extra := take(l.ExtraFeatures)
	if off != len(main) {
		return nil, encodingErrorf("layout covers %d of %d scalars", off, len(main))
	}

	// Dense (player, card) probabilities; played cards stay zero.
	dense := make([][nCards]float32, l.NumPlayers)
	for _, u := range gs.Distribution {
		for p := range l.NumPlayers {
			dense[p][u.Card] = u.Probs[p]
		}
	}

	for c := range nCards {
		var inPlay float32
		for p := range l.NumPlayers {
			inPlay += dense[p][c]
		}
		pointValueColumn[c] = inPlay * e.pointValue[c]
	}

	for p, row := range rotate(dense, gs.Current) {
		copy(distribution[p*nCards:(p+1)*nCards], row[:])
	}

	for _, eo := range gs.ExpectedOutputs {
		legalPlays[eo.Card] = 1
	}

	e.fillCanTakeTrick(canTakeTrick, gs)

	if err := e.fillPointsSoFar(pointsSoFar, gs); err != nil {
		return nil, err
	}

	copy(extra, gs.ExtraFeatures)

	scores, winTrick, moon := e.labels(gs)
	s := &Sample{Main: main, Scores: scores, WinTrick: winTrick, Moon: moon}
	if err := e.checkShapes(s); err != nil {
		return nil, err
	}
	return s, nil
}

// rotate shifts the player axis so that current becomes index 0.
// Every per-player quantity goes through here.
func rotate[T any](perPlayer []T, current int) []T {
	n := len(perPlayer)
	out := make([]T, n)
	for i := range n {
		out[i] = perPlayer[(i+current)%n]
	}
	return out
}

// fillCanTakeTrick marks legal plays that beat the highest card of the led
// suit. When leading, every legal play gets the fixed neutral value.
func (e *Encoder) fillCanTakeTrick(dst []float32, gs *gamestate.GameState) {
	high := gs.HighCardInTrick()
	for _, eo := range gs.ExpectedOutputs {
		switch {
		case high == card.NoCard:
			dst[eo.Card] = e.layout.LeadingTakeTrick
		case eo.Card.Suit() == high.Suit() && eo.Card.Rank() > high.Rank():
			dst[eo.Card] = 1
		default:
			dst[eo.Card] = 0
		}
	}
}

func oneIfTrue(b bool) float32 {
	if b {
		return 1
	}
	return 0
}

func (e *Encoder) fillPointsSoFar(dst []float32, gs *gamestate.GameState) error {
	points := rotate(gs.PointsSoFar[:], gs.Current)
	total := lo.Sum(points)
	if total < 0 || total >= card.TotalPoints {
		return encodingErrorf("points so far total %d outside [0, %d)", total, card.TotalPoints)
	}

	var pointsSplit, currentCanShoot, otherCanShoot bool
	if total == 0 {
		currentCanShoot, otherCanShoot = true, true
	} else {
		// A player can still shoot only while holding every point taken.
		shooter := -1
		for i, p := range points {
			if p == total {
				shooter = i
			}
		}
		pointsSplit = shooter == -1
		currentCanShoot = shooter == 0
		otherCanShoot = shooter > 0
	}

	var onTable float32
	for _, c := range gs.TrickSoFar {
		if c != card.NoCard {
			onTable += e.pointValue[c]
		}
	}

	for i, p := range points {
		dst[i] = float32(p) / e.layout.PointScale
	}
	n := len(points)
	dst[n] = onTable
	dst[n+1] = oneIfTrue(!pointsSplit)
	dst[n+2] = oneIfTrue(pointsSplit)
	dst[n+3] = oneIfTrue(currentCanShoot)
	dst[n+4] = oneIfTrue(otherCanShoot)
	return nil
}

// labels expands the sparse expected outputs. Illegal plays score 0, never
// win the trick and are certain to score regularly.
func (e *Encoder) labels(gs *gamestate.GameState) (scores, winTrick, moon []float32) {
	l := e.layout
	scores = make([]float32, l.ScoresLen())
	winTrick = make([]float32, l.WinTrickLen())
	moon = make([]float32, l.MoonLen())
	for c := range l.CardsInDeck {
		moon[c*l.MoonClasses+l.MoonClasses-1] = 1
	}
	for _, eo := range gs.ExpectedOutputs {
		scores[eo.Card] = eo.ExpectedScore / l.ScoreScale
		winTrick[eo.Card] = eo.WinTrickProb
		copy(moon[int(eo.Card)*l.MoonClasses:], eo.MoonProbs[:])
	}
	return scores, winTrick, moon
}

// check rejects states whose cards, counts or values cannot be encoded.
func (e *Encoder) check(gs *gamestate.GameState) error {
	l := e.layout
	if gs.Current < 0 || gs.Current >= l.NumPlayers {
		return encodingErrorf("current player %d out of range", gs.Current)
	}
	if len(gs.Distribution) != l.CardsInDeck-gs.Play {
		return encodingErrorf("%d unplayed cards listed at play %d", len(gs.Distribution), gs.Play)
	}
	if len(gs.ExpectedOutputs) != gs.Choices {
		return encodingErrorf("%d expected outputs for %d choices", len(gs.ExpectedOutputs), gs.Choices)
	}
	if len(gs.ExtraFeatures) != l.ExtraFeatures {
		return encodingErrorf("%d extra features, want %d", len(gs.ExtraFeatures), l.ExtraFeatures)
	}

	var seen [card.CardsInDeck]bool
	for _, u := range gs.Distribution {
		if !u.Card.Valid() {
			return encodingErrorf("unplayed card index %d out of range", u.Card)
		}
		if seen[u.Card] {
			return encodingErrorf("unplayed card %s listed twice", u.Card)
		}
		seen[u.Card] = true
		for p, v := range u.Probs {
			if !finite(v) || v < 0 {
				return encodingErrorf("probability %v for %s, player %d", v, u.Card, p)
			}
		}
	}

	var legal [card.CardsInDeck]bool
	for _, eo := range gs.ExpectedOutputs {
		if !eo.Card.Valid() {
			return encodingErrorf("legal card index %d out of range", eo.Card)
		}
		if legal[eo.Card] {
			return encodingErrorf("legal card %s listed twice", eo.Card)
		}
		legal[eo.Card] = true
		if !finite(eo.ExpectedScore) || !finite(eo.WinTrickProb) {
			return encodingErrorf("non-finite score %v or win probability %v for %s",
				eo.ExpectedScore, eo.WinTrickProb, eo.Card)
		}
		for _, v := range eo.MoonProbs {
			if !finite(v) {
				return encodingErrorf("non-finite moon probability for %s", eo.Card)
			}
		}
	}

	for _, c := range gs.TrickSoFar {
		if c != card.NoCard && !c.Valid() {
			return encodingErrorf("trick card index %d out of range", c)
		}
	}
	for p, pts := range gs.PointsSoFar {
		if pts < 0 {
			return encodingErrorf("negative points %d for player %d", pts, p)
		}
	}
	for i, v := range gs.ExtraFeatures {
		if !finite(v) {
			return encodingErrorf("non-finite extra feature %d", i)
		}
	}
	return nil
}

func (e *Encoder) checkShapes(s *Sample) error {
	l := e.layout
	type shape struct {
		name string
		got  int
		want int
	}
	for _, sh := range []shape{
		{"main", len(s.Main), l.MainLen()},
		{"scores", len(s.Scores), l.ScoresLen()},
		{"win trick", len(s.WinTrick), l.WinTrickLen()},
		{"moon", len(s.Moon), l.MoonLen()},
	} {
		if sh.got != sh.want {
			return encodingErrorf("%s vector has %d values, want %d", sh.name, sh.got, sh.want)
		}
	}
	for i, v := range s.Main {
		if !finite(v) {
			return encodingErrorf("main feature %d is %v", i, v)
		}
	}
	return nil
}

func finite(v float32) bool {
	return !math32.IsNaN(v) && !math32.IsInf(v, 0)
}
