// Package accumulator runs solver output through the encoder and collects
// the encoded samples into an in-memory dataset group.
package accumulator

import (
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/heartsnn/trickdata/dataset"
	"github.com/heartsnn/trickdata/features"
	"github.com/heartsnn/trickdata/gamestate"
	"github.com/heartsnn/trickdata/solverio"
)

// RecordError locates a record that parsed but could not be encoded.
// Parse failures are *solverio.ProtocolError, which carries its own
// location.
type RecordError struct {
	Source string
	Record int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("%s: record %d: %v", e.Source, e.Record, e.Err)
}

func (e *RecordError) Unwrap() error { return e.Err }

// Accumulator appends encoded samples to four growing arrays. It is not
// safe for concurrent use; run one per input.
type Accumulator struct {
	enc   *features.Encoder
	group *dataset.Group
	rows  int
}

func New(enc *features.Encoder) *Accumulator {
	return &Accumulator{
		enc:   enc,
		group: dataset.NewGroup(dataset.SchemaFor(enc.Layout())),
	}
}

// Len is the number of samples accumulated so far.
func (a *Accumulator) Len() int { return a.rows }

// Group returns the accumulated arrays. The accumulator must not be used
// after this.
func (a *Accumulator) Group() *dataset.Group { return a.group }

// Add encodes gs and appends the sample.
func (a *Accumulator) Add(gs *gamestate.GameState) error {
	s, err := a.enc.Encode(gs)
	if err != nil {
		return err
	}
	return a.AddSample(s)
}

// AddSample appends all four parts of s, or none of them.
func (a *Accumulator) AddSample(s *features.Sample) error {
	parts := [dataset.NumKinds][]float32{
		dataset.Main:  s.Main,
		dataset.Score: s.Scores,
		dataset.Trick: s.WinTrick,
		dataset.Moon:  s.Moon,
	}
	for _, k := range dataset.Kinds {
		if len(parts[k]) != a.group.Mem(k).RowLen() {
			return &features.EncodingError{Msg: fmt.Sprintf("%s row has %d values, want %d",
				k, len(parts[k]), a.group.Mem(k).RowLen())}
		}
	}
	for _, k := range dataset.Kinds {
		if err := a.group.Mem(k).Append(parts[k]); err != nil {
			return err
		}
	}
	a.rows++
	return nil
}

// ReadAll adds every record r yields until end of stream. It stops at the
// first parse or encoding error and reports which record caused it.
func (a *Accumulator) ReadAll(r *solverio.Reader) (int, error) {
	n := 0
	for {
		gs, err := r.Read()
		if errors.Is(err, io.EOF) {
			return n, nil
		}
		if err != nil {
			return n, err
		}
		if err := a.Add(gs); err != nil {
			return n, &RecordError{Source: r.Source(), Record: n, Err: err}
		}
		n++
	}
}

// AccumulateFile encodes every record of the solver output at path, which
// may be gzipped. On any error no group is returned.
func AccumulateFile(path string, enc *features.Encoder) (*dataset.Group, error) {
	f, err := solverio.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a := New(enc)
	n, err := a.ReadAll(solverio.NewReader(f, path))
	if err != nil {
		log.Error().Err(err).Str("path", path).Int("goodRecords", n).Msg("abandoning-input")
		return nil, err
	}
	log.Debug().Str("path", path).Int("records", n).Msg("accumulated")
	return a.Group(), nil
}
