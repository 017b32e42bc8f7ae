// Package recording is the public view of the portable recording document
// and its canonical codec.
package recording

import (
	"io"
	"time"

	internalrecording "github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Export is a complete recording document.
type Export = internalrecording.Export

// Config describes how a recording was captured.
type Config = internalrecording.Config

// CaptureFlags selects what a session records.
type CaptureFlags = internalrecording.CaptureFlags

// Stats summarises a recording.
type Stats = internalrecording.Stats

// Event is one captured input event.
type Event = internalrecording.Event

// Kind names the variant of an input event.
type Kind = internalrecording.Kind

// Payload is the kind-specific data of an event.
type Payload = internalrecording.Payload

type (
	Button      = internalrecording.Button
	Modifiers   = internalrecording.Modifiers
	Pointer     = internalrecording.Pointer
	Motion      = internalrecording.Motion
	Wheel       = internalrecording.Wheel
	Key         = internalrecording.Key
	Text        = internalrecording.Text
	Focus       = internalrecording.Focus
	Hover       = internalrecording.Hover
	Resize      = internalrecording.Resize
	WindowFocus = internalrecording.WindowFocus
	Custom      = internalrecording.Custom
)

// Snapshot is the UI state at one instant.
type Snapshot = internalrecording.Snapshot

type (
	Element = internalrecording.Element
	Bounds  = internalrecording.Bounds
	Window  = internalrecording.Window
)

// ParseError reports a document that failed schema or type validation.
type ParseError = internalrecording.ParseError

// OrderingViolation reports a repair made during import.
type OrderingViolation = internalrecording.OrderingViolation

// Warnings collects the violations normalized during an import.
type Warnings = internalrecording.Warnings

// Sequence names the part of a document a violation was found in.
type Sequence = internalrecording.Sequence

// DecodeOption customises Decode.
type DecodeOption = internalrecording.DecodeOption

const (
	KindClick        = internalrecording.KindClick
	KindDoubleClick  = internalrecording.KindDoubleClick
	KindMouseDown    = internalrecording.KindMouseDown
	KindMouseUp      = internalrecording.KindMouseUp
	KindMouseMove    = internalrecording.KindMouseMove
	KindScroll       = internalrecording.KindScroll
	KindKeyDown      = internalrecording.KindKeyDown
	KindKeyUp        = internalrecording.KindKeyUp
	KindTextInput    = internalrecording.KindTextInput
	KindFocusChange  = internalrecording.KindFocusChange
	KindHoverEnter   = internalrecording.KindHoverEnter
	KindHoverLeave   = internalrecording.KindHoverLeave
	KindWindowResize = internalrecording.KindWindowResize
	KindWindowFocus  = internalrecording.KindWindowFocus
	KindCustom       = internalrecording.KindCustom
)

const (
	ButtonLeft   = internalrecording.ButtonLeft
	ButtonRight  = internalrecording.ButtonRight
	ButtonMiddle = internalrecording.ButtonMiddle
	ButtonOther  = internalrecording.ButtonOther
)

const (
	SequenceEvents    = internalrecording.SequenceEvents
	SequenceSnapshots = internalrecording.SequenceSnapshots
	SequenceStats     = internalrecording.SequenceStats
)

// DefaultConfig captures everything.
func DefaultConfig(appName string) Config {
	return internalrecording.DefaultConfig(appName)
}

// MinimalConfig captures discrete input events only.
func MinimalConfig(appName string) Config {
	return internalrecording.MinimalConfig(appName)
}

// NewEvent builds an event, checking that data matches kind.
func NewEvent(ts time.Duration, kind Kind, data Payload) (Event, error) {
	return internalrecording.NewEvent(ts, kind, data)
}

// ComputeStats derives stats from sorted sequences.
func ComputeStats(events []Event, snapshots []Snapshot) Stats {
	return internalrecording.ComputeStats(events, snapshots)
}

// Marshal encodes the document as canonical JSON.
func Marshal(e Export) ([]byte, error) {
	return internalrecording.Marshal(e)
}

// MarshalIndent encodes the document for humans.
func MarshalIndent(e Export) ([]byte, error) {
	return internalrecording.MarshalIndent(e)
}

// Encode writes the canonical document followed by a newline.
func Encode(w io.Writer, e Export) error {
	return internalrecording.Encode(w, e)
}

// Decode validates and decodes a recording document.
func Decode(data []byte, opts ...DecodeOption) (Export, Warnings, error) {
	return internalrecording.Decode(data, opts...)
}

// Read decodes a document from r.
func Read(r io.Reader, opts ...DecodeOption) (Export, Warnings, error) {
	return internalrecording.Read(r, opts...)
}

// ReadFile decodes the document stored at path.
func ReadFile(path string, opts ...DecodeOption) (Export, Warnings, error) {
	return internalrecording.ReadFile(path, opts...)
}

// WriteFile stores the document at path.
func WriteFile(path string, e Export, pretty bool) error {
	return internalrecording.WriteFile(path, e, pretty)
}

// Strict makes Decode fail instead of returning warnings.
func Strict() DecodeOption {
	return internalrecording.Strict()
}

// Equal reports whether two documents have the same canonical encoding.
func Equal(a, b Export) bool {
	return internalrecording.Equal(a, b)
}
