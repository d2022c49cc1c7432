package features

import (
	"fmt"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/gamestate"
)

// Layout fixes the shape and scaling of an encoded sample. The shape part
// is a contract with whatever later reads the dataset files, which carry
// no header.
type Layout struct {
	NumPlayers  int `yaml:"players"`
	CardsInDeck int `yaml:"cards"`
	// AuxColumns are the per-card columns after the player probabilities:
	// legal play, can take trick, point value.
	AuxColumns     int `yaml:"aux_columns"`
	PointsSoFarLen int `yaml:"points_so_far"`
	ExtraFeatures  int `yaml:"extra_features"`
	MoonClasses    int `yaml:"moon_classes"`

	// PointScale divides per-player point totals.
	PointScale float32 `yaml:"point_scale"`
	// ScoreScale divides the solver's expected score, mapping
	// [-19.5, 18.5] onto about [-1, 0.95].
	ScoreScale float32 `yaml:"score_scale"`
	// LeadingTakeTrick is the can-take-trick value given to every legal
	// play when no suit has been led yet.
	LeadingTakeTrick float32 `yaml:"leading_take_trick"`
}

const (
	DefaultPointScale       = 26.0
	DefaultScoreScale       = 19.5
	DefaultLeadingTakeTrick = 0.5

	auxColumns = 3
	// four rotated totals, points on the table, four moon flags
	pointsSoFarLen = gamestate.NumPlayers + 1 + 4
)

func DefaultLayout() Layout {
	return Layout{
		NumPlayers:       gamestate.NumPlayers,
		CardsInDeck:      card.CardsInDeck,
		AuxColumns:       auxColumns,
		PointsSoFarLen:   pointsSoFarLen,
		ExtraFeatures:    gamestate.NumExtraFeatures,
		MoonClasses:      gamestate.MoonClasses,
		PointScale:       DefaultPointScale,
		ScoreScale:       DefaultScoreScale,
		LeadingTakeTrick: DefaultLeadingTakeTrick,
	}
}

// Validate checks that the shape constants are ones this encoder produces
// and that the scales are usable.
func (l Layout) Validate() error {
	d := DefaultLayout()
	switch {
	case l.NumPlayers != d.NumPlayers, l.CardsInDeck != d.CardsInDeck,
		l.AuxColumns != d.AuxColumns, l.PointsSoFarLen != d.PointsSoFarLen,
		l.ExtraFeatures != d.ExtraFeatures, l.MoonClasses != d.MoonClasses:
		return fmt.Errorf("unsupported layout %d players, %d cards, %d aux, %d points, %d extra, %d moon",
			l.NumPlayers, l.CardsInDeck, l.AuxColumns, l.PointsSoFarLen, l.ExtraFeatures, l.MoonClasses)
	case !(l.PointScale > 0), !(l.ScoreScale > 0):
		return fmt.Errorf("scales must be positive, got point %v score %v", l.PointScale, l.ScoreScale)
	case !(l.LeadingTakeTrick >= 0 && l.LeadingTakeTrick <= 1):
		return fmt.Errorf("leading take-trick value %v outside [0, 1]", l.LeadingTakeTrick)
	}
	return nil
}

// MainLen is the number of scalars in the main feature vector:
// 52*7 + 9 + 33 = 406 for the default layout.
func (l Layout) MainLen() int {
	return l.CardsInDeck*(l.NumPlayers+l.AuxColumns) + l.PointsSoFarLen + l.ExtraFeatures
}

// LegalOffset is where the legal-play vector starts in the main vector.
func (l Layout) LegalOffset() int { return l.CardsInDeck * l.NumPlayers }

func (l Layout) ScoresLen() int   { return l.CardsInDeck }
func (l Layout) WinTrickLen() int { return l.CardsInDeck }
func (l Layout) MoonLen() int     { return l.CardsInDeck * l.MoonClasses }
