// Package solverio reads and writes the line-oriented game-state records
// emitted by the hearts solver.
//
// A record looks like:
//
//	3f9a0c21
//	Play 43, Player Leading 0, Current Player 3, Choices 2 TrickSuit ♠️
//	TrickSoFar: 3♠️   J♥️   9♠️  .
//	PointsSoFar:3 0 4 17
//	 4♣️  0.500 0.250 0.250 0.000      (52 - Play unplayed-card lines)
//	--
//	 5♠️  5.0000 0.0000 | 0.000 0.000 1.000   (Choices lines)
//	--
//	...                                 (7 lines, 33 extra features)
//	----
package solverio

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/gamestate"
)

const (
	Separator  = "--"
	Terminator = "----"

	// moonSumTolerance allows for the solver's 3-decimal fixed point.
	moonSumTolerance = 1e-3
)

var (
	dealIndexRe = regexp.MustCompile(`^[0-9a-f]+$`)
	headerRe    = regexp.MustCompile(`^Play (\d+), Player Leading (\d), Current Player (\d), Choices (\d+) TrickSuit (\S+)$`)
	trickRe     = regexp.MustCompile(`^TrickSoFar:\s*(.*)$`)
	pointsRe    = regexp.MustCompile(`^PointsSoFar:\s*(.*)$`)
)

// Reader parses one record at a time from a stream.
type Reader struct {
	scanner *bufio.Scanner
	source  string
	line    int
	records int

	state *gamestate.GameState
	err   error
}

// NewReader returns a Reader. source names the stream in errors.
func NewReader(r io.Reader, source string) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1<<20)
	return &Reader{scanner: sc, source: source}
}

// Records returns the number of records parsed so far.
func (r *Reader) Records() int { return r.records }

func (r *Reader) Source() string { return r.source }

// Scan advances to the next record. It returns false at the end of the
// stream or on the first error; Err tells them apart.
func (r *Reader) Scan() bool {
	if r.err != nil {
		return false
	}
	gs, err := r.Read()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		r.state = nil
		return false
	}
	r.state = gs
	return true
}

func (r *Reader) State() *gamestate.GameState { return r.state }
func (r *Reader) Err() error                  { return r.err }

// Read parses the next record. It returns io.EOF only when the stream ends
// exactly at a record boundary; every other failure is a *ProtocolError.
func (r *Reader) Read() (*gamestate.GameState, error) {
	line, err := r.next()
	if err == io.EOF {
		return nil, io.EOF
	} else if err != nil {
		return nil, err
	}
	gs := &gamestate.GameState{}
	if err := r.parseRecord(line, gs); err != nil {
		return nil, err
	}
	r.records++
	return gs, nil
}

func (r *Reader) parseRecord(first string, gs *gamestate.GameState) error {
	if !dealIndexRe.MatchString(first) {
		return r.errorf(nil, "expected deal index, got %q", first)
	}
	gs.DealIndex = first

	steps := []func(*gamestate.GameState) error{
		r.parseHeader,
		r.parseTrickSoFar,
		r.parsePointsSoFar,
		r.parseDistribution,
		r.expectLine(Separator),
		r.parseExpectedOutputs,
		r.expectLine(Separator),
		r.parseExtraFeatures,
		r.expectLine(Terminator),
	}
	for _, step := range steps {
		if err := step(gs); err != nil {
			return err
		}
	}
	return nil
}

// next returns the next trimmed line. A clean end of stream gives io.EOF.
func (r *Reader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", r.errorf(err, "read failed")
		}
		return "", io.EOF
	}
	r.line++
	return strings.TrimSpace(r.scanner.Text()), nil
}

// mustNext is next for lines inside a record, where end of stream is an error.
func (r *Reader) mustNext() (string, error) {
	line, err := r.next()
	if err == io.EOF {
		return "", r.errorf(io.ErrUnexpectedEOF, "stream ended inside record")
	}
	return line, err
}

func (r *Reader) errorf(err error, format string, args ...any) error {
	var pe *ProtocolError
	if errors.As(err, &pe) {
		return pe
	}
	return &ProtocolError{
		Source: r.source,
		Line:   r.line,
		Record: r.records,
		Msg:    fmt.Sprintf(format, args...),
		Err:    err,
	}
}

func (r *Reader) expectLine(want string) func(*gamestate.GameState) error {
	return func(*gamestate.GameState) error {
		line, err := r.mustNext()
		if err != nil {
			return err
		}
		if line != want {
			return r.errorf(nil, "expected %q, got %q", want, line)
		}
		return nil
	}
}

func (r *Reader) parseHeader(gs *gamestate.GameState) error {
	line, err := r.mustNext()
	if err != nil {
		return err
	}
	m := headerRe.FindStringSubmatch(line)
	if m == nil {
		return r.errorf(nil, "malformed header %q", line)
	}
	ints := make([]int, 4)
	for i := range ints {
		ints[i], err = strconv.Atoi(m[i+1])
		if err != nil {
			return r.errorf(err, "bad header field %q", m[i+1])
		}
	}
	gs.Play, gs.Lead, gs.Current, gs.Choices = ints[0], ints[1], ints[2], ints[3]
	switch {
	case gs.Play > card.CardsInDeck:
		return r.errorf(nil, "play %d exceeds deck size", gs.Play)
	case gs.Lead >= gamestate.NumPlayers:
		return r.errorf(nil, "leading player %d out of range", gs.Lead)
	case gs.Current >= gamestate.NumPlayers:
		return r.errorf(nil, "current player %d out of range", gs.Current)
	case gs.Choices < 1 || gs.Choices > card.CardsInDeck-gs.Play:
		return r.errorf(nil, "choices %d impossible with %d cards unplayed", gs.Choices, card.CardsInDeck-gs.Play)
	}
	gs.TrickSuit, err = card.ParseSuit(m[5])
	if err != nil {
		return r.errorf(err, "bad trick suit")
	}
	return nil
}

func (r *Reader) parseTrickSoFar(gs *gamestate.GameState) error {
	line, err := r.mustNext()
	if err != nil {
		return err
	}
	m := trickRe.FindStringSubmatch(line)
	if m == nil {
		return r.errorf(nil, "expected TrickSoFar, got %q", line)
	}
	fields := strings.Fields(m[1])
	if len(fields) != gamestate.PlaysPerTrick {
		return r.errorf(nil, "TrickSoFar has %d cards, want %d", len(fields), gamestate.PlaysPerTrick)
	}
	ended := false
	for i, f := range fields {
		c, err := card.Parse(f)
		if err != nil {
			return r.errorf(err, "bad trick card")
		}
		if c == card.NoCard {
			ended = true
		} else if ended {
			return r.errorf(nil, "trick card %s follows an empty slot", c)
		}
		gs.TrickSoFar[i] = c
	}
	first := gs.TrickSoFar[0]
	switch {
	case first == card.NoCard && gs.TrickSuit != card.NoSuit:
		return r.errorf(nil, "trick suit %s with no card led", gs.TrickSuit)
	case first != card.NoCard && first.Suit() != gs.TrickSuit:
		return r.errorf(nil, "trick suit %s does not match led card %s", gs.TrickSuit, first)
	}
	return nil
}

func (r *Reader) parsePointsSoFar(gs *gamestate.GameState) error {
	line, err := r.mustNext()
	if err != nil {
		return err
	}
	m := pointsRe.FindStringSubmatch(line)
	if m == nil {
		return r.errorf(nil, "expected PointsSoFar, got %q", line)
	}
	fields := strings.Fields(m[1])
	if len(fields) != gamestate.NumPlayers {
		return r.errorf(nil, "PointsSoFar has %d values, want %d", len(fields), gamestate.NumPlayers)
	}
	for i, f := range fields {
		p, err := strconv.ParseUint(f, 10, 16)
		if err != nil {
			return r.errorf(err, "bad point total %q", f)
		}
		gs.PointsSoFar[i] = int(p)
	}
	return nil
}

func (r *Reader) parseDistribution(gs *gamestate.GameState) error {
	remaining := card.CardsInDeck - gs.Play
	gs.Distribution = make([]gamestate.Unplayed, remaining)
	for i := range remaining {
		line, err := r.mustNext()
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) != 1+gamestate.NumPlayers {
			return r.errorf(nil, "unplayed card line has %d fields, want %d", len(fields), 1+gamestate.NumPlayers)
		}
		u := &gs.Distribution[i]
		if u.Card, err = r.parseRealCard(fields[0]); err != nil {
			return err
		}
		for p := range gamestate.NumPlayers {
			if u.Probs[p], err = r.parseFloat(fields[1+p]); err != nil {
				return err
			}
		}
	}
	return nil
}

func (r *Reader) parseExpectedOutputs(gs *gamestate.GameState) error {
	gs.ExpectedOutputs = make([]gamestate.ExpectedOutput, gs.Choices)
	for i := range gs.Choices {
		line, err := r.mustNext()
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(fields) != 4+gamestate.MoonClasses {
			return r.errorf(nil, "expected output line has %d fields, want %d", len(fields), 4+gamestate.MoonClasses)
		}
		if fields[3] != "|" {
			return r.errorf(nil, "expected '|' before moon probabilities, got %q", fields[3])
		}
		eo := &gs.ExpectedOutputs[i]
		if eo.Card, err = r.parseRealCard(fields[0]); err != nil {
			return err
		}
		if eo.ExpectedScore, err = r.parseFloat(fields[1]); err != nil {
			return err
		}
		if eo.WinTrickProb, err = r.parseFloat(fields[2]); err != nil {
			return err
		}
		var sum float64
		for j := range gamestate.MoonClasses {
			if eo.MoonProbs[j], err = r.parseFloat(fields[4+j]); err != nil {
				return err
			}
			sum += float64(eo.MoonProbs[j])
		}
		if math.Abs(sum-1) > moonSumTolerance {
			return r.errorf(nil, "moon probabilities for %s sum to %g", eo.Card, sum)
		}
	}
	return nil
}

func (r *Reader) parseExtraFeatures(gs *gamestate.GameState) error {
	gs.ExtraFeatures = make([]float32, 0, gamestate.NumExtraFeatures)
	for range gamestate.ExtraFeatureLines {
		line, err := r.mustNext()
		if err != nil {
			return err
		}
		for _, f := range strings.Fields(line) {
			v, err := r.parseFloat(f)
			if err != nil {
				return err
			}
			gs.ExtraFeatures = append(gs.ExtraFeatures, v)
		}
	}
	if len(gs.ExtraFeatures) != gamestate.NumExtraFeatures {
		return r.errorf(nil, "got %d extra features, want %d", len(gs.ExtraFeatures), gamestate.NumExtraFeatures)
	}
	return nil
}

func (r *Reader) parseRealCard(tok string) (card.Card, error) {
	c, err := card.Parse(tok)
	if err != nil {
		return card.NoCard, r.errorf(err, "bad card")
	}
	if c == card.NoCard {
		return card.NoCard, r.errorf(nil, "expected a card, got %q", tok)
	}
	return c, nil
}

func (r *Reader) parseFloat(tok string) (float32, error) {
	v, err := strconv.ParseFloat(tok, 32)
	if err != nil {
		return 0, r.errorf(err, "bad number %q", tok)
	}
	return float32(v), nil
}
