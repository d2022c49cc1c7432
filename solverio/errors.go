package solverio

import (
	"errors"
	"fmt"
)

// ErrProtocol matches every *ProtocolError with errors.Is.
var ErrProtocol = errors.New("protocol error")

// ProtocolError reports input that does not follow the solver's record
// grammar. There is no recovery: the rest of the source is abandoned.
type ProtocolError struct {
	Source string
	Line   int // 1-based line number, 0 if unknown
	Record int // 0-based index of the record being parsed
	Msg    string
	Err    error
}

func (e *ProtocolError) Error() string {
	s := fmt.Sprintf("%s:%d: record %d: %s", e.Source, e.Line, e.Record, e.Msg)
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *ProtocolError) Unwrap() error { return e.Err }

func (e *ProtocolError) Is(target error) bool { return target == ErrProtocol }
