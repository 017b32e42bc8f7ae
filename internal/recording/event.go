package recording

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"
)

// Kind names the variant of an input event. The set is closed: documents
// carrying any other kind are rejected on import.
type Kind string

const (
	KindClick        Kind = "click"
	KindDoubleClick  Kind = "double_click"
	KindMouseDown    Kind = "mouse_down"
	KindMouseUp      Kind = "mouse_up"
	KindMouseMove    Kind = "mouse_move"
	KindScroll       Kind = "scroll"
	KindKeyDown      Kind = "key_down"
	KindKeyUp        Kind = "key_up"
	KindTextInput    Kind = "text_input"
	KindFocusChange  Kind = "focus_change"
	KindHoverEnter   Kind = "hover_enter"
	KindHoverLeave   Kind = "hover_leave"
	KindWindowResize Kind = "window_resize"
	KindWindowFocus  Kind = "window_focus"
	KindCustom       Kind = "custom"
)

// Kinds lists every event kind in a stable order.
var Kinds = []Kind{
	KindClick, KindDoubleClick, KindMouseDown, KindMouseUp, KindMouseMove,
	KindScroll, KindKeyDown, KindKeyUp, KindTextInput, KindFocusChange,
	KindHoverEnter, KindHoverLeave, KindWindowResize, KindWindowFocus, KindCustom,
}

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	for _, v := range Kinds {
		if v == k {
			return true
		}
	}
	return false
}

// IsPointer reports whether the kind carries a pointer position.
func (k Kind) IsPointer() bool {
	switch k {
	case KindClick, KindDoubleClick, KindMouseDown, KindMouseUp, KindMouseMove, KindScroll:
		return true
	}
	return false
}

// IsKeyboard reports whether the kind is produced by the keyboard.
func (k Kind) IsKeyboard() bool {
	return k == KindKeyDown || k == KindKeyUp || k == KindTextInput
}

// Button identifies a mouse button.
type Button string

const (
	ButtonLeft   Button = "left"
	ButtonRight  Button = "right"
	ButtonMiddle Button = "middle"
	ButtonOther  Button = "other"
)

// Modifiers is the keyboard modifier state at the time of an event.
type Modifiers struct {
	Shift bool `json:"shift"`
	Ctrl  bool `json:"ctrl"`
	Alt   bool `json:"alt"`
	Meta  bool `json:"meta"`
}

// Any reports whether at least one modifier is held.
func (m Modifiers) Any() bool {
	return m.Shift || m.Ctrl || m.Alt || m.Meta
}

// Payload is the kind-specific data of an event. Implementations are the
// value types declared in this file.
type Payload interface {
	accepts(Kind) bool
}

// Pointer is the payload of click, double_click, mouse_down and mouse_up.
type Pointer struct {
	X         float64   `json:"x"`
	Y         float64   `json:"y"`
	Button    Button    `json:"button"`
	Modifiers Modifiers `json:"modifiers"`
	Target    string    `json:"target,omitempty"`
}

// Motion is the payload of mouse_move.
type Motion struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Hover string  `json:"hover,omitempty"`
}

// Wheel is the payload of scroll.
type Wheel struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	DX     float64 `json:"dx"`
	DY     float64 `json:"dy"`
	Target string  `json:"target,omitempty"`
}

// Key is the payload of key_down and key_up.
type Key struct {
	Code      string    `json:"code"`
	Modifiers Modifiers `json:"modifiers"`
	Repeat    bool      `json:"repeat"`
	Focused   string    `json:"focused,omitempty"`
}

// Text is the payload of text_input.
type Text struct {
	Text    string `json:"text"`
	Focused string `json:"focused,omitempty"`
}

// Focus is the payload of focus_change. Empty From or To means no element.
type Focus struct {
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`
}

// Hover is the payload of hover_enter and hover_leave.
type Hover struct {
	ElementID string  `json:"element_id"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
}

// Resize is the payload of window_resize.
type Resize struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ScaleFactor float64 `json:"scale_factor"`
}

// WindowFocus is the payload of window_focus.
type WindowFocus struct {
	Focused bool `json:"focused"`
}

// Custom is an application-defined event. Payload holds arbitrary JSON.
type Custom struct {
	Name    string          `json:"name"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

func (Pointer) accepts(k Kind) bool {
	return k == KindClick || k == KindDoubleClick || k == KindMouseDown || k == KindMouseUp
}
func (Motion) accepts(k Kind) bool      { return k == KindMouseMove }
func (Wheel) accepts(k Kind) bool       { return k == KindScroll }
func (Key) accepts(k Kind) bool         { return k == KindKeyDown || k == KindKeyUp }
func (Text) accepts(k Kind) bool        { return k == KindTextInput }
func (Focus) accepts(k Kind) bool       { return k == KindFocusChange }
func (Hover) accepts(k Kind) bool       { return k == KindHoverEnter || k == KindHoverLeave }
func (Resize) accepts(k Kind) bool      { return k == KindWindowResize }
func (WindowFocus) accepts(k Kind) bool { return k == KindWindowFocus }
func (Custom) accepts(k Kind) bool      { return k == KindCustom }

// Event is one captured input event. Timestamp is the offset from the
// moment recording started.
type Event struct {
	Timestamp time.Duration
	Kind      Kind
	Data      Payload
}

// NewEvent builds an event, checking that data matches kind.
func NewEvent(ts time.Duration, kind Kind, data Payload) (Event, error) {
	if !kind.Valid() {
		return Event{}, fmt.Errorf("unknown event kind %q", kind)
	}
	if data == nil || !data.accepts(kind) {
		return Event{}, fmt.Errorf("payload %T does not match event kind %q", data, kind)
	}
	if err := checkPayload(data); err != nil {
		return Event{}, fmt.Errorf("event kind %q: %w", kind, err)
	}
	return Event{Timestamp: ts, Kind: kind, Data: data}, nil
}

// checkPayload rejects values the document cannot encode: non-finite
// numbers and custom payloads that are not valid JSON.
func checkPayload(data Payload) error {
	var nums []float64
	switch d := data.(type) {
	case Pointer:
		nums = []float64{d.X, d.Y}
	case Motion:
		nums = []float64{d.X, d.Y}
	case Wheel:
		nums = []float64{d.X, d.Y, d.DX, d.DY}
	case Hover:
		nums = []float64{d.X, d.Y}
	case Resize:
		nums = []float64{d.Width, d.Height, d.ScaleFactor}
	case Custom:
		if len(d.Payload) > 0 && !json.Valid(d.Payload) {
			return errors.New("custom payload is not valid JSON")
		}
	}
	return checkFinite(nums...)
}

func checkFinite(nums ...float64) error {
	for _, n := range nums {
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return fmt.Errorf("non-finite value %v", n)
		}
	}
	return nil
}

// Position returns the pointer position carried by the event, if any.
func (e Event) Position() (x, y float64, ok bool) {
	switch d := e.Data.(type) {
	case Pointer:
		return d.X, d.Y, true
	case Motion:
		return d.X, d.Y, true
	case Wheel:
		return d.X, d.Y, true
	case Hover:
		return d.X, d.Y, true
	}
	return 0, 0, false
}

type eventJSON struct {
	Timestamp time.Duration   `json:"timestamp"`
	Kind      Kind            `json:"kind"`
	Data      json.RawMessage `json:"data"`
}

// MarshalJSON encodes the event as {"timestamp", "kind", "data"}.
func (e Event) MarshalJSON() ([]byte, error) {
	if !e.Kind.Valid() {
		return nil, fmt.Errorf("unknown event kind %q", e.Kind)
	}
	if e.Data == nil || !e.Data.accepts(e.Kind) {
		return nil, fmt.Errorf("payload %T does not match event kind %q", e.Data, e.Kind)
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventJSON{Timestamp: e.Timestamp, Kind: e.Kind, Data: data})
}

// UnmarshalJSON decodes an event, selecting the payload type from the kind.
func (e *Event) UnmarshalJSON(b []byte) error {
	var raw eventJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var (
		data Payload
		err  error
	)
	switch raw.Kind {
	case KindClick, KindDoubleClick, KindMouseDown, KindMouseUp:
		data, err = decodePayload[Pointer](raw.Data)
	case KindMouseMove:
		data, err = decodePayload[Motion](raw.Data)
	case KindScroll:
		data, err = decodePayload[Wheel](raw.Data)
	case KindKeyDown, KindKeyUp:
		data, err = decodePayload[Key](raw.Data)
	case KindTextInput:
		data, err = decodePayload[Text](raw.Data)
	case KindFocusChange:
		data, err = decodePayload[Focus](raw.Data)
	case KindHoverEnter, KindHoverLeave:
		data, err = decodePayload[Hover](raw.Data)
	case KindWindowResize:
		data, err = decodePayload[Resize](raw.Data)
	case KindWindowFocus:
		data, err = decodePayload[WindowFocus](raw.Data)
	case KindCustom:
		data, err = decodePayload[Custom](raw.Data)
	default:
		return fmt.Errorf("unknown event kind %q", raw.Kind)
	}
	if err != nil {
		return fmt.Errorf("decoding %s payload: %w", raw.Kind, err)
	}

	*e = Event{Timestamp: raw.Timestamp, Kind: raw.Kind, Data: data}
	return nil
}

func decodePayload[T Payload](raw json.RawMessage) (Payload, error) {
	var v T
	if len(raw) == 0 {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
