package card

import (
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestSuitAndRankRoundTrip(t *testing.T) {
	is := is.New(t)
	for c := Card(0); c < CardsInDeck; c++ {
		s, r := c.SuitAndRank()
		is.Equal(FromSuitAndRank(s, r), c)
		is.Equal(s, c.Suit())
		is.Equal(r, c.Rank())
	}
}

func TestNameRoundTrip(t *testing.T) {
	is := is.New(t)
	for c := Card(0); c < CardsInDeck; c++ {
		parsed, err := Parse(c.String())
		is.NoErr(err)
		is.Equal(parsed, c)
	}
}

func TestParse(t *testing.T) {
	is := is.New(t)
	type tc struct {
		token string
		card  Card
	}
	cases := []tc{
		{"2♣️", FromSuitAndRank(Clubs, Two)},
		{"2♣", FromSuitAndRank(Clubs, Two)},
		{" 10♥️", FromSuitAndRank(Hearts, Ten)},
		{"Q♠", QueenOfSpades},
		{"A♦️", FromSuitAndRank(Diamonds, Ace)},
		{".", NoCard},
	}
	for _, c := range cases {
		got, err := Parse(c.token)
		is.NoErr(err)
		is.Equal(got, c.card)
	}
}

func TestParseErrors(t *testing.T) {
	is := is.New(t)
	_, err := Parse("1♠️")
	is.True(errors.Is(err, ErrBadRank))
	_, err = Parse("Q♤")
	is.True(errors.Is(err, ErrBadSuit))
	_, err = Parse("QS")
	is.True(errors.Is(err, ErrBadCard))
	_, err = Parse("")
	is.True(errors.Is(err, ErrBadCard))
}

func TestParseSuit(t *testing.T) {
	is := is.New(t)
	s, err := ParseSuit("♠")
	is.NoErr(err)
	is.Equal(s, Spades)
	s, err = ParseSuit("♥️")
	is.NoErr(err)
	is.Equal(s, Hearts)
	s, err = ParseSuit("?")
	is.NoErr(err)
	is.Equal(s, NoSuit)
	_, err = ParseSuit("S")
	is.True(errors.Is(err, ErrBadSuit))
}

func TestPoints(t *testing.T) {
	is := is.New(t)
	total := 0
	for c := Card(0); c < CardsInDeck; c++ {
		total += c.Points()
	}
	is.Equal(total, TotalPoints)
	is.Equal(int(QueenOfSpades), 36)
	is.Equal(QueenOfSpades.PointValue(), float32(13)/26)
	is.Equal(FromSuitAndRank(Hearts, Two).PointValue(), float32(1)/26)
	is.Equal(FromSuitAndRank(Spades, King).PointValue(), float32(0))
	is.Equal(NoCard.Points(), 0)

	v := PointValues()
	for c := Card(39); c < CardsInDeck; c++ {
		is.Equal(v[c], float32(1)/26)
	}
}
