// Package card maps the 52 cards of a standard deck to and from their
// integer index, their printed names and their point worth in hearts.
package card

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
)

const (
	NumSuits    = 4
	NumRanks    = 13
	CardsInDeck = NumSuits * NumRanks

	// TotalPoints is the number of points held by all point cards together.
	TotalPoints = 26
)

// Suit is one of the four suits, or NoSuit.
type Suit int8

const (
	NoSuit   Suit = -1
	Clubs    Suit = 0
	Diamonds Suit = 1
	Spades   Suit = 2
	Hearts   Suit = 3
)

// Rank is 0 for a deuce up to 12 for an ace.
type Rank int8

const (
	Two   Rank = 0
	Ten   Rank = 8
	Jack  Rank = 9
	Queen Rank = 10
	King  Rank = 11
	Ace   Rank = 12
)

// A Card is suit*13 + rank. NoCard marks an empty trick slot.
type Card int8

const NoCard Card = -1

// Symbols used by the solver. Suit glyphs are printed with a trailing
// emoji variation selector; parsing accepts them with or without it.
const (
	NoCardSymbol = "."
	NoSuitSymbol = "?"
)

var (
	ErrBadRank = errors.New("unrecognized rank symbol")
	ErrBadSuit = errors.New("unrecognized suit symbol")
	ErrBadCard = errors.New("malformed card token")
)

var rankNames = [NumRanks]string{"2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K", "A"}

var suitGlyphs = [NumSuits]string{"♣", "♦", "♠", "♥"}

const variationSelector = "\uFE0F"

var (
	asRank = map[string]Rank{}
	asSuit = map[string]Suit{}

	// points holds each card's worth in points: 1 for every heart,
	// 13 for the queen of spades.
	points [CardsInDeck]int
)

func init() {
	for i, n := range rankNames {
		asRank[n] = Rank(i)
	}
	for i, g := range suitGlyphs {
		asSuit[g] = Suit(i)
	}
	for c := Card(0); c < CardsInDeck; c++ {
		switch {
		case c.Suit() == Hearts:
			points[c] = 1
		case c == QueenOfSpades:
			points[c] = 13
		}
	}
}

// QueenOfSpades is the 13 point card.
var QueenOfSpades = FromSuitAndRank(Spades, Queen)

// FromSuitAndRank returns the card index for a suit and rank.
func FromSuitAndRank(s Suit, r Rank) Card {
	return Card(int(s)*NumRanks + int(r))
}

// SuitAndRank splits a card into its suit and rank.
func (c Card) SuitAndRank() (Suit, Rank) {
	return Suit(int(c) / NumRanks), Rank(int(c) % NumRanks)
}

func (c Card) Suit() Suit { return Suit(int(c) / NumRanks) }
func (c Card) Rank() Rank { return Rank(int(c) % NumRanks) }

// Valid reports whether c is a real card (not NoCard, not out of range).
func (c Card) Valid() bool {
	return c >= 0 && c < CardsInDeck
}

// Points returns the number of points the card is worth.
func (c Card) Points() int {
	if !c.Valid() {
		return 0
	}
	return points[c]
}

// PointValue returns the card's worth as a fraction of all points in the deck.
func (c Card) PointValue() float32 {
	return float32(c.Points()) / TotalPoints
}

// String returns the name the solver prints for the card, e.g. "10♥️".
func (c Card) String() string {
	if c == NoCard {
		return NoCardSymbol
	}
	if !c.Valid() {
		return fmt.Sprintf("Card(%d)", int8(c))
	}
	s, r := c.SuitAndRank()
	return rankNames[r] + s.String()
}

func (s Suit) String() string {
	if s < 0 || s >= NumSuits {
		return NoSuitSymbol
	}
	return suitGlyphs[s] + variationSelector
}

func (r Rank) String() string {
	if r < 0 || r >= NumRanks {
		return "?"
	}
	return rankNames[r]
}

var stripSelectors = runes.Remove(runes.In(unicode.Variation_Selector))

func normalize(s string) string {
	out, _, err := transform.String(stripSelectors, strings.TrimSpace(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return out
}

// ParseSuit parses a suit glyph. The no-trick symbols "?" and "." give NoSuit.
func ParseSuit(sym string) (Suit, error) {
	sym = normalize(sym)
	if sym == NoSuitSymbol || sym == NoCardSymbol {
		return NoSuit, nil
	}
	s, ok := asSuit[sym]
	if !ok {
		return NoSuit, fmt.Errorf("%w: %q", ErrBadSuit, sym)
	}
	return s, nil
}

// Parse parses a card token such as "Q♠️", "10♥" or the sentinel ".".
func Parse(token string) (Card, error) {
	tok := normalize(token)
	if tok == NoCardSymbol {
		return NoCard, nil
	}
	// The rank is the leading run of ASCII characters; the suit glyph follows.
	i := strings.IndexFunc(tok, func(r rune) bool { return r >= 0x80 })
	if i <= 0 {
		return NoCard, fmt.Errorf("%w: %q", ErrBadCard, token)
	}
	r, ok := asRank[tok[:i]]
	if !ok {
		return NoCard, fmt.Errorf("%w: %q in %q", ErrBadRank, tok[:i], token)
	}
	s, ok := asSuit[tok[i:]]
	if !ok {
		return NoCard, fmt.Errorf("%w: %q in %q", ErrBadSuit, tok[i:], token)
	}
	return FromSuitAndRank(s, r), nil
}

// PointValues returns the point worth of every card as a fraction of
// TotalPoints, indexed by card.
func PointValues() [CardsInDeck]float32 {
	var v [CardsInDeck]float32
	for c := Card(0); c < CardsInDeck; c++ {
		v[c] = c.PointValue()
	}
	return v
}
