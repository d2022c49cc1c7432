package solverio

import (
	"bytes"
	"io"
	"os"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/matryer/is"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartsnn/trickdata/card"
	"github.com/heartsnn/trickdata/gamestate"
	"github.com/heartsnn/trickdata/testhelpers"
)

func slurp(t *testing.T, filename string) string {
	t.Helper()
	b, err := os.ReadFile(filename)
	require.NoError(t, err)
	return string(b)
}

func TestReadRecord(t *testing.T) {
	is := is.New(t)
	r := NewReader(strings.NewReader(slurp(t, "testdata/play43.txt")), "play43")

	gs, err := r.Read()
	is.NoErr(err)
	is.Equal(gs.DealIndex, "1a2b3c")
	is.Equal(gs.Play, 43)
	is.Equal(gs.Lead, 0)
	is.Equal(gs.Current, 3)
	is.Equal(gs.Choices, 2)
	is.Equal(gs.TrickSuit, card.Spades)
	is.Equal(gs.TrickSoFar, [4]card.Card{
		card.FromSuitAndRank(card.Spades, 1),
		card.FromSuitAndRank(card.Hearts, card.Jack),
		card.FromSuitAndRank(card.Spades, 7),
		card.NoCard,
	})
	is.Equal(gs.PointsSoFar, [4]int{3, 0, 4, 17})
	is.Equal(len(gs.Distribution), 9)
	is.Equal(gs.Distribution[2].Card, card.FromSuitAndRank(card.Diamonds, card.Two))
	is.Equal(gs.Distribution[2].Probs, [4]float32{0, 0, 0, 1})
	is.Equal(len(gs.ExpectedOutputs), 2)
	is.Equal(gs.ExpectedOutputs[1].Card, card.FromSuitAndRank(card.Spades, card.King))
	is.Equal(gs.ExpectedOutputs[1].ExpectedScore, float32(-3))
	is.Equal(gs.ExpectedOutputs[1].WinTrickProb, float32(1))
	is.Equal(gs.ExpectedOutputs[1].MoonProbs, [3]float32{0, 0, 1})
	is.Equal(len(gs.ExtraFeatures), gamestate.NumExtraFeatures)
	is.Equal(gs.ExtraFeatures[32], float32(0.33))

	_, err = r.Read()
	is.Equal(err, io.EOF)
	is.Equal(r.Records(), 1)
}

func TestScanMultipleRecords(t *testing.T) {
	is := is.New(t)
	rec := slurp(t, "testdata/play43.txt")
	r := NewReader(strings.NewReader(rec+rec+rec), "three")
	n := 0
	for r.Scan() {
		is.Equal(r.State().Play, 43)
		n++
	}
	is.NoErr(r.Err())
	is.Equal(n, 3)
}

func TestEmptyStream(t *testing.T) {
	is := is.New(t)
	r := NewReader(strings.NewReader(""), "empty")
	is.True(!r.Scan())
	is.NoErr(r.Err())
}

func TestShortTrickSoFar(t *testing.T) {
	rec := slurp(t, "testdata/play43.txt")
	bad := strings.Replace(rec, "TrickSoFar: 3♠️   J♥️   9♠️  . ", "TrickSoFar: 3♠️   J♥️   9♠️", 1)
	require.NotEqual(t, rec, bad)

	r := NewReader(strings.NewReader(bad), "short")
	assert.False(t, r.Scan())
	assert.Nil(t, r.State())

	var pe *ProtocolError
	require.ErrorAs(t, r.Err(), &pe)
	assert.ErrorIs(t, r.Err(), ErrProtocol)
	assert.Equal(t, 3, pe.Line)
	assert.Equal(t, 0, pe.Record)
	assert.Contains(t, pe.Error(), "TrickSoFar has 3 cards")
}

func TestTruncatedRecord(t *testing.T) {
	rec := slurp(t, "testdata/play43.txt")
	cut := rec[:strings.Index(rec, "--")]
	r := NewReader(strings.NewReader(rec+cut), "truncated")

	require.True(t, r.Scan())
	assert.False(t, r.Scan())
	assert.ErrorIs(t, r.Err(), ErrProtocol)
	assert.ErrorIs(t, r.Err(), io.ErrUnexpectedEOF)

	var pe *ProtocolError
	require.ErrorAs(t, r.Err(), &pe)
	assert.Equal(t, 1, pe.Record)
}

func TestMalformedLines(t *testing.T) {
	rec := slurp(t, "testdata/play43.txt")
	cases := []struct {
		name, old, new, msg string
	}{
		{"deal index", "1a2b3c", "1A2B3C", "expected deal index"},
		{"header", "Choices 2 TrickSuit", "Choices: 2 TrickSuit", "malformed header"},
		{"bad rank", " 4♣️  0.500", " 1♣️  0.500", "bad card"},
		{"bad suit", " 4♣️  0.500", " 4♤  0.500", "bad card"},
		{"points", "PointsSoFar:3 0 4 17", "PointsSoFar:3 0 -4 17", "bad point total"},
		{"pipe", "5.0000 0.0000 | 0.000", "5.0000 0.0000 / 0.000", "expected '|'"},
		{"moon sum", "5.0000 0.0000 | 0.000 0.000 1.000", "5.0000 0.0000 | 0.500 0.000 1.000", "moon probabilities"},
		{"extra count", "0.29 0.3 0.31 0.32 0.33", "0.29 0.3 0.31 0.32", "extra features"},
		{"terminator", "0.33\n----", "0.33\n---", "expected \"----\""},
		{"trick suit", "TrickSuit ♠️", "TrickSuit ♥️", "does not match led card"},
		{"choices", "Choices 2", "Choices 10", "impossible"},
		{"float", " 2♦️  0.000", " 2♦️  zero", "bad number"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			bad := strings.Replace(rec, c.old, c.new, 1)
			require.NotEqual(t, rec, bad)
			_, err := NewReader(strings.NewReader(bad), c.name).Read()
			require.ErrorIs(t, err, ErrProtocol)
			assert.Contains(t, err.Error(), c.msg)
		})
	}
}

func TestWriteThenRead(t *testing.T) {
	is := is.New(t)
	legal := []card.Card{card.QueenOfSpades, card.FromSuitAndRank(card.Hearts, card.Ace)}
	states := []*gamestate.GameState{
		testhelpers.NewState(0, 2, [4]int{}, legal),
		testhelpers.NewState(21, 1, [4]int{0, 5, 0, 1}, legal),
	}
	var buf bytes.Buffer
	for _, gs := range states {
		is.NoErr(Write(&buf, gs))
	}

	r := NewReader(&buf, "written")
	for _, want := range states {
		is.True(r.Scan())
		got := r.State()
		is.Equal(got.DealIndex, want.DealIndex)
		is.Equal(got.Play, want.Play)
		is.Equal(got.Lead, want.Lead)
		is.Equal(got.Current, want.Current)
		is.Equal(got.TrickSuit, want.TrickSuit)
		is.Equal(got.TrickSoFar, want.TrickSoFar)
		is.Equal(got.PointsSoFar, want.PointsSoFar)
		is.Equal(got.Distribution, want.Distribution)
		is.Equal(got.ExpectedOutputs, want.ExpectedOutputs)
		is.Equal(got.ExtraFeatures, want.ExtraFeatures)
	}
	is.True(!r.Scan())
	is.NoErr(r.Err())
}

func TestOpenGzip(t *testing.T) {
	is := is.New(t)
	path := t.TempDir() + "/07.gz"
	f, err := os.Create(path)
	is.NoErr(err)
	zw := gzip.NewWriter(f)
	_, err = zw.Write([]byte(slurp(t, "testdata/play43.txt")))
	is.NoErr(err)
	is.NoErr(zw.Close())
	is.NoErr(f.Close())

	rc, err := Open(path)
	is.NoErr(err)
	defer rc.Close()
	r := NewReader(rc, path)
	is.True(r.Scan())
	is.Equal(r.State().DealIndex, "1a2b3c")
	is.True(!r.Scan())
	is.NoErr(r.Err())
}
