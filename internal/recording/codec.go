package recording

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/gowebpki/jcs"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Marshal encodes the document as canonical JSON (RFC 8785). Encoding the
// result of a successful Decode yields the same bytes again.
func Marshal(e Export) ([]byte, error) {
	if e.Events == nil {
		e.Events = []Event{}
	}
	if e.Snapshots == nil {
		e.Snapshots = []Snapshot{}
	}
	raw, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding recording: %w", err)
	}
	out, err := jcs.Transform(raw)
	if err != nil {
		return nil, fmt.Errorf("canonicalizing recording: %w", err)
	}
	return out, nil
}

// MarshalIndent encodes the document for humans. It decodes to the same
// document as Marshal but is not byte-stable.
func MarshalIndent(e Export) ([]byte, error) {
	canonical, err := Marshal(e)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, canonical, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// Encode writes the canonical document followed by a single newline.
func Encode(w io.Writer, e Export) error {
	data, err := Marshal(e)
	if err != nil {
		return err
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

// Equal reports whether two documents have identical canonical encodings.
func Equal(a, b Export) bool {
	ab, err := Marshal(a)
	if err != nil {
		return false
	}
	bb, err := Marshal(b)
	if err != nil {
		return false
	}
	return bytes.Equal(ab, bb)
}

type decodeOptions struct {
	strict bool
}

// DecodeOption customises Decode.
type DecodeOption func(*decodeOptions)

// Strict makes Decode fail when the document needed normalizing, instead of
// returning the violations as warnings.
func Strict() DecodeOption {
	return func(o *decodeOptions) { o.strict = true }
}

// Decode validates and decodes a recording document.
//
// Schema and type errors fail with *ParseError. Out-of-order sequences are
// stably sorted and stats that disagree with the sequences are replaced by
// derived values; each such repair is reported in the returned Warnings.
// With Strict, any warning turns into an error.
func Decode(data []byte, opts ...DecodeOption) (Export, Warnings, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return Export{}, nil, &ParseError{Err: err}
	}

	schema, err := documentSchema()
	if err != nil {
		return Export{}, nil, err
	}
	if err := schema.Validate(doc); err != nil {
		var ve *jsonschema.ValidationError
		if errors.As(err, &ve) {
			leaf := ve
			for len(leaf.Causes) > 0 {
				leaf = leaf.Causes[0]
			}
			return Export{}, nil, &ParseError{Path: leaf.InstanceLocation, Err: errors.New(leaf.Message)}
		}
		return Export{}, nil, &ParseError{Err: err}
	}

	var e Export
	if err := json.Unmarshal(data, &e); err != nil {
		return Export{}, nil, &ParseError{Err: err}
	}

	warnings := normalize(&e)
	if o.strict && len(warnings) > 0 {
		return Export{}, warnings, warnings.Err()
	}
	return e, warnings, nil
}

// Read decodes a document from r.
func Read(r io.Reader, opts ...DecodeOption) (Export, Warnings, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Export{}, nil, fmt.Errorf("reading recording: %w", err)
	}
	return Decode(data, opts...)
}

// ReadFile decodes the document stored at path.
func ReadFile(path string, opts ...DecodeOption) (Export, Warnings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Export{}, nil, fmt.Errorf("reading recording file: %w", err)
	}
	return Decode(data, opts...)
}

// WriteFile stores the document at path, indented when pretty is set.
func WriteFile(path string, e Export, pretty bool) error {
	var (
		data []byte
		err  error
	)
	if pretty {
		data, err = MarshalIndent(e)
	} else {
		data, err = Marshal(e)
		data = append(data, '\n')
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func normalize(e *Export) Warnings {
	var warnings Warnings

	for i := 1; i < len(e.Events); i++ {
		if e.Events[i].Timestamp < e.Events[i-1].Timestamp {
			warnings = append(warnings, &OrderingViolation{
				Sequence: SequenceEvents,
				Index:    i,
				Previous: e.Events[i-1].Timestamp,
				Current:  e.Events[i].Timestamp,
			})
			sort.SliceStable(e.Events, func(a, b int) bool {
				return e.Events[a].Timestamp < e.Events[b].Timestamp
			})
			break
		}
	}

	for i := 1; i < len(e.Snapshots); i++ {
		if e.Snapshots[i].Timestamp < e.Snapshots[i-1].Timestamp {
			warnings = append(warnings, &OrderingViolation{
				Sequence: SequenceSnapshots,
				Index:    i,
				Previous: e.Snapshots[i-1].Timestamp,
				Current:  e.Snapshots[i].Timestamp,
			})
			sort.SliceStable(e.Snapshots, func(a, b int) bool {
				return e.Snapshots[a].Timestamp < e.Snapshots[b].Timestamp
			})
			break
		}
	}

	derived := ComputeStats(e.Events, e.Snapshots)
	declared := e.Stats
	if declared.TotalEvents != derived.TotalEvents {
		warnings = append(warnings, &OrderingViolation{
			Sequence: SequenceStats,
			Detail:   fmt.Sprintf("declared total_events %d, document has %d", declared.TotalEvents, derived.TotalEvents),
		})
	}
	if declared.TotalSnapshots != derived.TotalSnapshots {
		warnings = append(warnings, &OrderingViolation{
			Sequence: SequenceStats,
			Detail:   fmt.Sprintf("declared total_snapshots %d, document has %d", declared.TotalSnapshots, derived.TotalSnapshots),
		})
	}
	if declared.Duration != derived.Duration {
		warnings = append(warnings, &OrderingViolation{
			Sequence: SequenceStats,
			Previous: declared.Duration,
			Current:  derived.Duration,
			Detail:   fmt.Sprintf("declared duration %s, last timestamp is %s", declared.Duration, derived.Duration),
		})
	}
	e.Stats = derived

	return warnings
}
