// Package capture exposes the process-wide capture hooks. Host applications
// call these from their input handlers; calls are dropped unless a session
// is installed and recording.
package capture

import (
	"github.com/SmitUplenchwar2687/Rewind/internal/capture"
	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Install makes s the target of all hooks and returns the previous session.
func Install(s *recorder.Session) *recorder.Session { return capture.Install(s) }

// Uninstall removes the installed session and returns it.
func Uninstall() *recorder.Session { return capture.Uninstall() }

// Installed returns the installed session, or nil.
func Installed() *recorder.Session { return capture.Installed() }

// Run records body in a fresh session and returns the export.
func Run(cfg recording.Config, clk clock.Clock, body func(s *recorder.Session)) recording.Export {
	return capture.Run(cfg, clk, body)
}

func RecordEvent(kind recording.Kind, data recording.Payload) bool {
	return capture.RecordEvent(kind, data)
}

func RecordSnapshot(snap recording.Snapshot) bool {
	return capture.RecordSnapshot(snap)
}

func Click(x, y float64, button recording.Button, mods recording.Modifiers, target string) bool {
	return capture.Click(x, y, button, mods, target)
}

func DoubleClick(x, y float64, button recording.Button, mods recording.Modifiers, target string) bool {
	return capture.DoubleClick(x, y, button, mods, target)
}

func MouseDown(x, y float64, button recording.Button, mods recording.Modifiers) bool {
	return capture.MouseDown(x, y, button, mods)
}

func MouseUp(x, y float64, button recording.Button, mods recording.Modifiers) bool {
	return capture.MouseUp(x, y, button, mods)
}

// MouseMove is dropped when the session does not capture mouse moves.
func MouseMove(x, y float64, hover string) bool {
	return capture.MouseMove(x, y, hover)
}

func Scroll(x, y, dx, dy float64, target string) bool {
	return capture.Scroll(x, y, dx, dy, target)
}

func KeyDown(code string, mods recording.Modifiers, repeat bool, focused string) bool {
	return capture.KeyDown(code, mods, repeat, focused)
}

func KeyUp(code string, mods recording.Modifiers, focused string) bool {
	return capture.KeyUp(code, mods, focused)
}

func TextInput(text, focused string) bool {
	return capture.TextInput(text, focused)
}

func FocusChange(from, to string) bool {
	return capture.FocusChange(from, to)
}

func HoverEnter(elementID string, x, y float64) bool {
	return capture.HoverEnter(elementID, x, y)
}

func HoverLeave(elementID string, x, y float64) bool {
	return capture.HoverLeave(elementID, x, y)
}

func WindowResize(width, height, scale float64) bool {
	return capture.WindowResize(width, height, scale)
}

func WindowFocus(focused bool) bool {
	return capture.WindowFocus(focused)
}

// Custom records an application-defined event with a JSON-encoded payload.
func Custom(name string, payload any) bool {
	return capture.Custom(name, payload)
}
