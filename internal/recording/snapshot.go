package recording

import (
	"fmt"
	"time"
)

// Bounds is an element's layout rectangle in window coordinates.
type Bounds struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Contains reports whether the point lies inside the rectangle.
func (b Bounds) Contains(x, y float64) bool {
	return x >= b.X && x < b.X+b.Width && y >= b.Y && y < b.Y+b.Height
}

// Element is one node of a captured UI tree. Children order is significant.
type Element struct {
	ID       string            `json:"id"`
	Type     string            `json:"type"`
	Bounds   Bounds            `json:"bounds"`
	Styles   map[string]string `json:"styles,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []Element         `json:"children,omitempty"`
}

// Find returns the first element with the given id in depth-first order.
func (e *Element) Find(id string) *Element {
	if e == nil {
		return nil
	}
	if e.ID == id {
		return e
	}
	for i := range e.Children {
		if found := e.Children[i].Find(id); found != nil {
			return found
		}
	}
	return nil
}

// HitTest returns the deepest element containing the point, or nil.
func (e *Element) HitTest(x, y float64) *Element {
	if e == nil || !e.Bounds.Contains(x, y) {
		return nil
	}
	// Later children paint over earlier ones.
	for i := len(e.Children) - 1; i >= 0; i-- {
		if hit := e.Children[i].HitTest(x, y); hit != nil {
			return hit
		}
	}
	return e
}

// Count returns the number of elements in the subtree rooted at e.
func (e *Element) Count() int {
	if e == nil {
		return 0
	}
	n := 1
	for i := range e.Children {
		n += e.Children[i].Count()
	}
	return n
}

// Window describes the window a snapshot was taken from.
type Window struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	ScaleFactor float64 `json:"scale_factor"`
}

// Snapshot is the UI state at one instant.
type Snapshot struct {
	Timestamp time.Duration `json:"timestamp"`
	Root      *Element      `json:"root,omitempty"`
	Focused   string        `json:"focused,omitempty"`
	Hovered   string        `json:"hovered,omitempty"`
	Window    Window        `json:"window"`
}

// Clone returns a deep copy of the subtree rooted at e.
func (e *Element) Clone() *Element {
	if e == nil {
		return nil
	}
	out := *e
	if e.Styles != nil {
		out.Styles = make(map[string]string, len(e.Styles))
		for k, v := range e.Styles {
			out.Styles[k] = v
		}
	}
	if e.Children != nil {
		out.Children = make([]Element, len(e.Children))
		for i := range e.Children {
			out.Children[i] = *e.Children[i].Clone()
		}
	}
	return &out
}

// Check reports the first value in the snapshot that cannot be encoded:
// a non-finite window size or element bound.
func (s Snapshot) Check() error {
	if err := checkFinite(s.Window.Width, s.Window.Height, s.Window.ScaleFactor); err != nil {
		return fmt.Errorf("window: %w", err)
	}
	return s.Root.check()
}

func (e *Element) check() error {
	if e == nil {
		return nil
	}
	b := e.Bounds
	if err := checkFinite(b.X, b.Y, b.Width, b.Height); err != nil {
		return fmt.Errorf("element %q bounds: %w", e.ID, err)
	}
	for i := range e.Children {
		if err := e.Children[i].check(); err != nil {
			return err
		}
	}
	return nil
}
