package cli

import (
	"fmt"
	"math/rand"
	"slices"
	"time"

	"github.com/SmitUplenchwar2687/Rewind/internal/capture"
	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// demoEpoch anchors generated recordings so identical seeds give identical
// documents.
var demoEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const (
	demoWidth  = 800
	demoHeight = 600
)

// demoControl is one widget of the demo form.
type demoControl struct {
	id     string
	typ    string
	bounds recording.Bounds
	label  string
}

var demoControls = []demoControl{
	{id: "name", typ: "text_input", bounds: recording.Bounds{X: 40, Y: 80, Width: 320, Height: 32}, label: "Name"},
	{id: "email", typ: "text_input", bounds: recording.Bounds{X: 40, Y: 140, Width: 320, Height: 32}, label: "Email"},
	{id: "notes", typ: "text_area", bounds: recording.Bounds{X: 40, Y: 200, Width: 520, Height: 160}, label: "Notes"},
	{id: "submit", typ: "button", bounds: recording.Bounds{X: 40, Y: 400, Width: 120, Height: 40}, label: "Submit"},
	{id: "cancel", typ: "button", bounds: recording.Bounds{X: 180, Y: 400, Width: 120, Height: 40}, label: "Cancel"},
}

// demoHost simulates a user working through a small form. Every action goes
// through the capture hooks, so it lands in whichever session is installed.
type demoHost struct {
	rng     *rand.Rand
	x, y    float64
	focused string
	hovered string
	values  map[string]string
	scroll  float64
}

func newDemoHost(seed int64) *demoHost {
	return &demoHost{
		rng:    rand.New(rand.NewSource(seed)),
		x:      demoWidth / 2,
		y:      demoHeight / 2,
		values: make(map[string]string),
	}
}

// act performs one random user action.
func (h *demoHost) act() {
	switch n := h.rng.Intn(10); {
	case n < 3:
		h.moveTo(h.pickControl())
	case n < 5:
		h.click(h.pickControl())
	case n < 8:
		h.typeKey()
	case n < 9:
		dy := float64(h.rng.Intn(5)-2) * 40
		h.scroll += dy
		capture.Scroll(h.x, h.y, 0, dy, h.hovered)
	default:
		capture.Custom("heartbeat", map[string]any{"values": len(h.values)})
	}
}

func (h *demoHost) pickControl() demoControl {
	return demoControls[h.rng.Intn(len(demoControls))]
}

func (h *demoHost) moveTo(c demoControl) {
	x := c.bounds.X + h.rng.Float64()*c.bounds.Width
	y := c.bounds.Y + h.rng.Float64()*c.bounds.Height
	h.x, h.y = x, y
	capture.MouseMove(x, y, c.id)

	if h.hovered == c.id {
		return
	}
	if h.hovered != "" {
		capture.HoverLeave(h.hovered, x, y)
	}
	h.hovered = c.id
	capture.HoverEnter(c.id, x, y)
}

func (h *demoHost) click(c demoControl) {
	h.moveTo(c)
	capture.MouseDown(h.x, h.y, recording.ButtonLeft, recording.Modifiers{})
	capture.MouseUp(h.x, h.y, recording.ButtonLeft, recording.Modifiers{})
	capture.Click(h.x, h.y, recording.ButtonLeft, recording.Modifiers{}, c.id)

	if c.typ == "button" {
		if c.id == "cancel" {
			clear(h.values)
		}
		return
	}
	if h.focused != c.id {
		capture.FocusChange(h.focused, c.id)
		h.focused = c.id
	}
}

func (h *demoHost) typeKey() {
	if h.focused == "" {
		h.click(demoControls[h.rng.Intn(3)])
	}
	r := rune('a' + h.rng.Intn(26))
	code := fmt.Sprintf("Key%c", r-'a'+'A')
	mods := recording.Modifiers{Shift: h.rng.Intn(8) == 0}
	if mods.Shift {
		r -= 'a' - 'A'
	}
	capture.KeyDown(code, mods, false, h.focused)
	capture.TextInput(string(r), h.focused)
	capture.KeyUp(code, mods, h.focused)
	h.values[h.focused] += string(r)
}

// snapshot renders the current form state.
func (h *demoHost) snapshot() recording.Snapshot {
	root := &recording.Element{
		ID:     "root",
		Type:   "window",
		Bounds: recording.Bounds{Width: demoWidth, Height: demoHeight},
		Styles: map[string]string{"scroll_y": fmt.Sprintf("%.0f", h.scroll)},
	}
	for _, c := range demoControls {
		el := recording.Element{ID: c.id, Type: c.typ, Bounds: c.bounds, Text: c.label}
		if v, ok := h.values[c.id]; ok {
			el.Text = v
		}
		if c.id == h.focused {
			el.Styles = map[string]string{"outline": "focus"}
		}
		root.Children = append(root.Children, el)
	}
	return recording.Snapshot{
		Root:    root,
		Focused: h.focused,
		Hovered: h.hovered,
		Window:  recording.Window{Width: demoWidth, Height: demoHeight, ScaleFactor: 1},
	}
}

// demoSchedule returns count action offsets spread over dur.
//
// Patterns:
//
//	steady  evenly spaced actions
//	burst   four bursts of rapid input separated by idle gaps
//	ramp    input that gets faster over time
func demoSchedule(rng *rand.Rand, count int, dur time.Duration, pattern string) ([]time.Duration, error) {
	if count <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", count)
	}
	if dur <= 0 {
		return nil, fmt.Errorf("duration must be positive, got %s", dur)
	}

	offsets := make([]time.Duration, 0, count)
	switch pattern {
	case "", "steady":
		interval := dur / time.Duration(count)
		for i := 0; i < count; i++ {
			offsets = append(offsets, time.Duration(i)*interval)
		}
	case "burst":
		const numBursts = 4
		gap := dur / numBursts
		for i := 0; i < count; i++ {
			b := i * numBursts / count
			// Each burst occupies the first tenth of its slot.
			jitter := time.Duration(rng.Int63n(int64(gap/10) + 1))
			offsets = append(offsets, time.Duration(b)*gap+jitter)
		}
	case "ramp":
		for i := 0; i < count; i++ {
			// Quadratic spacing: gaps shrink as i grows.
			frac := float64(i) / float64(count)
			offsets = append(offsets, time.Duration(float64(dur)*(1-(1-frac)*(1-frac))))
		}
	default:
		return nil, fmt.Errorf("unknown pattern %q, must be one of: steady, burst, ramp", pattern)
	}

	// Bursts draw jitter independently, so restore order.
	slices.Sort(offsets)
	return offsets, nil
}

// generateRecording drives a demo host on a virtual clock and returns the
// finished recording. Snapshots are taken every snapEvery when enabled.
func generateRecording(cfg recording.Config, seed int64, count int, dur time.Duration, pattern string, snapEvery time.Duration) (recording.Export, error) {
	rng := rand.New(rand.NewSource(seed))
	offsets, err := demoSchedule(rng, count, dur, pattern)
	if err != nil {
		return recording.Export{}, err
	}

	vc := clock.NewVirtualClock(demoEpoch)
	host := newDemoHost(seed)

	return capture.Run(cfg, vc, func(*recorder.Session) {
		var now, nextSnap time.Duration
		advanceTo := func(t time.Duration) {
			vc.Advance(t - now)
			now = t
		}
		snapshotsUntil := func(t time.Duration) {
			for snapEvery > 0 && nextSnap <= t {
				advanceTo(nextSnap)
				capture.RecordSnapshot(host.snapshot())
				nextSnap += snapEvery
			}
		}

		capture.WindowResize(demoWidth, demoHeight, 1)
		capture.WindowFocus(true)
		for _, off := range offsets {
			snapshotsUntil(off)
			advanceTo(off)
			host.act()
		}
		snapshotsUntil(dur)
		advanceTo(dur)
		capture.WindowFocus(false)
	}), nil
}
