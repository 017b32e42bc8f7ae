package capture

import (
	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

// Run records body in a fresh session and returns the export. The session
// is installed for the duration of body and the previously installed
// session, if any, is restored afterwards. A nil clk uses real time.
//
// Tests use Run to produce fixtures by driving the hooks directly.
func Run(cfg recording.Config, clk clock.Clock, body func(s *recorder.Session)) recording.Export {
	var opts []recorder.Option
	if clk != nil {
		opts = append(opts, recorder.WithClock(clk))
	}
	s := recorder.New(cfg, opts...)

	prev := Install(s)
	defer Install(prev)

	s.Start()
	body(s)
	s.Stop()
	return s.Export()
}
