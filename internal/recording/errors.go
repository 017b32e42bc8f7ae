package recording

import (
	"errors"
	"fmt"
	"time"
)

// ParseError reports a document that is not valid JSON or does not conform
// to the recording schema. Path is a JSON pointer to the offending value
// when known.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("recording: parse error: %v", e.Err)
	}
	return fmt.Sprintf("recording: parse error at %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Sequence names the part of a document a violation was found in.
type Sequence string

const (
	SequenceEvents    Sequence = "events"
	SequenceSnapshots Sequence = "snapshots"
	SequenceStats     Sequence = "stats"
)

// OrderingViolation reports a sequence that was not sorted by timestamp, or
// declared stats that disagree with the sequences. On import these are
// normalized and returned as warnings; strict imports fail with them.
type OrderingViolation struct {
	Sequence Sequence
	Index    int
	Previous time.Duration
	Current  time.Duration
	Detail   string
}

func (v *OrderingViolation) Error() string {
	if v.Detail != "" {
		return fmt.Sprintf("recording: %s: %s", v.Sequence, v.Detail)
	}
	return fmt.Sprintf("recording: %s[%d] at %s precedes previous timestamp %s",
		v.Sequence, v.Index, v.Current, v.Previous)
}

// Warnings collects the violations normalized during an import.
type Warnings []*OrderingViolation

// Err joins the warnings into a single error, or returns nil when empty.
func (w Warnings) Err() error {
	if len(w) == 0 {
		return nil
	}
	errs := make([]error, len(w))
	for i, v := range w {
		errs[i] = v
	}
	return errors.Join(errs...)
}
