package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
	"github.com/SmitUplenchwar2687/Rewind/internal/replay"
)

// replayedEvent is one line of --json output.
type replayedEvent struct {
	Position time.Duration   `json:"position"`
	Event    recording.Event `json:"event"`
}

func newReplayCmd(root *rootOptions) *cobra.Command {
	var (
		file       string
		id         string
		speed      float64
		frame      time.Duration
		kinds      []string
		targets    []string
		from       time.Duration
		to         time.Duration
		strict     bool
		outputJSON bool
		storageOpt = defaultStorageOptions()
	)

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recording headlessly",
		Long: `Replays a recording frame by frame and prints every event as it becomes
due, followed by a summary.

The recording is read from --file, or pulled from the archive with --id.
Events are delivered in timestamp order; playback advances one frame at a
time, scaled by the speed.

Speed: 0 = instant, 1 = real-time, 2 = twice as fast, 0.5 = half speed`,
		Example: `  rewind replay --file session.json
  rewind replay --file session.json --speed 0 --kinds click,key_down
  rewind replay --file session.json --targets submit,email --from 2s --to 5s
  rewind replay --id 0190f3a4-... --storage sqlite --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if (file == "") == (id == "") {
				return fmt.Errorf("exactly one of --file or --id is required")
			}

			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("speed") {
				speed = cfg.Replay.Speed
			}
			if !cmd.Flags().Changed("frame") {
				frame = cfg.Replay.FrameDuration
			}
			if speed < 0 {
				return fmt.Errorf("--speed must not be negative, got %g", speed)
			}
			if frame <= 0 {
				return fmt.Errorf("--frame must be positive, got %s", frame)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			var opts []recording.DecodeOption
			if strict {
				opts = append(opts, recording.Strict())
			}

			var (
				rec      recording.Export
				warnings recording.Warnings
			)
			if file != "" {
				rec, warnings, err = recording.ReadFile(file, opts...)
			} else {
				arch, aerr := storageOpt.openArchive(ctx, cmd, &cfg.Storage, logger)
				if aerr != nil {
					return aerr
				}
				defer arch.Close()
				rec, _, warnings, err = arch.Pull(ctx, id, opts...)
			}
			if err != nil {
				return err
			}
			for _, w := range warnings {
				logger.Warn("recording imported with warning", "warning", w.Error())
			}

			filter := &replay.Filter{
				Targets: targets,
				After:   from,
				Before:  to,
			}
			for _, k := range kinds {
				kind := recording.Kind(k)
				if !kind.Valid() {
					return fmt.Errorf("unknown event kind %q", k)
				}
				filter.Kinds = append(filter.Kinds, kind)
			}
			rec = filter.Apply(rec)

			p := replay.New(rec, replay.Config{Speed: speed, Mode: replay.Headless, FrameDuration: frame})

			out := cmd.OutOrStdout()
			if !outputJSON {
				source := file
				if source == "" {
					source = id
				}
				fmt.Fprintf(out, "Replaying %s (%d events, %s) at %s...\n\n", source, len(rec.Events), rec.Duration(), speedLabel(speed))
			}

			var replayed []replayedEvent
			summary, err := replay.Run(ctx, p, clock.NewRealClock(), func(f replay.Frame) {
				for _, ev := range f.Events {
					if outputJSON {
						replayed = append(replayed, replayedEvent{Position: f.Position, Event: ev})
						continue
					}
					fmt.Fprintf(out, "  [%9s] %-13s %s\n", ev.Timestamp.Round(time.Millisecond), ev.Kind, describeEvent(ev))
				}
			})
			if err != nil && summary == nil {
				return err
			}

			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if encErr := enc.Encode(map[string]any{
					"events":  replayed,
					"summary": summary,
				}); encErr != nil {
					return encErr
				}
				return err
			}

			fmt.Fprintln(out)
			fmt.Fprintln(out, "--- Replay Summary ---")
			fmt.Fprintf(out, "  Total events:   %d\n", summary.TotalEvents)
			fmt.Fprintf(out, "  Replayed:       %d\n", summary.Replayed)
			fmt.Fprintf(out, "  Snapshots:      %d\n", summary.Snapshots)
			fmt.Fprintf(out, "  Frames:         %d\n", summary.Frames)
			fmt.Fprintf(out, "  Virtual time:   %s\n", summary.Duration)
			fmt.Fprintf(out, "  Wall time:      %s\n", summary.WallDuration.Round(time.Millisecond))

			if len(summary.PerKind) > 1 {
				fmt.Fprintln(out)
				fmt.Fprintln(out, "  Per kind:")
				for _, k := range recording.Kinds {
					if n := summary.PerKind[k]; n > 0 {
						fmt.Fprintf(out, "    %-13s %d\n", k, n)
					}
				}
			}

			sim := p.Simulator()
			if x, y, ok := sim.Pointer(); ok {
				fmt.Fprintln(out)
				fmt.Fprintf(out, "  Final pointer:  (%.0f, %.0f)\n", x, y)
				fmt.Fprintf(out, "  Final focus:    %s\n", orDash(sim.Focused()))
			}
			return err
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a recording file")
	cmd.Flags().StringVar(&id, "id", "", "archive id of the recording")
	cmd.Flags().Float64Var(&speed, "speed", 1, "replay speed (0=instant, 1=real-time)")
	cmd.Flags().DurationVar(&frame, "frame", replay.DefaultFrameDuration, "frame duration")
	cmd.Flags().StringSliceVar(&kinds, "kinds", nil, "only replay these event kinds (comma-separated)")
	cmd.Flags().StringSliceVar(&targets, "targets", nil, "only replay events whose target element id contains one of these (comma-separated)")
	cmd.Flags().DurationVar(&from, "from", 0, "only replay events after this offset")
	cmd.Flags().DurationVar(&to, "to", 0, "only replay events before this offset")
	cmd.Flags().BoolVar(&strict, "strict", false, "fail on import warnings")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output results as JSON")
	storageOpt.addFlags(cmd)

	return cmd
}

func speedLabel(speed float64) string {
	if speed == 0 {
		return "instant speed"
	}
	return fmt.Sprintf("%gx speed", speed)
}

// describeEvent renders the interesting fields of an event payload.
func describeEvent(ev recording.Event) string {
	switch d := ev.Data.(type) {
	case recording.Pointer:
		return fmt.Sprintf("(%.0f, %.0f) %s target=%s", d.X, d.Y, d.Button, orDash(d.Target))
	case recording.Motion:
		return fmt.Sprintf("(%.0f, %.0f) hover=%s", d.X, d.Y, orDash(d.Hover))
	case recording.Wheel:
		return fmt.Sprintf("(%.0f, %.0f) dx=%g dy=%g target=%s", d.X, d.Y, d.DX, d.DY, orDash(d.Target))
	case recording.Key:
		return fmt.Sprintf("%s focused=%s", d.Code, orDash(d.Focused))
	case recording.Text:
		return fmt.Sprintf("%q focused=%s", d.Text, orDash(d.Focused))
	case recording.Focus:
		return fmt.Sprintf("%s -> %s", orDash(d.From), orDash(d.To))
	case recording.Hover:
		return fmt.Sprintf("%s (%.0f, %.0f)", d.ElementID, d.X, d.Y)
	case recording.Resize:
		return fmt.Sprintf("%gx%g @%g", d.Width, d.Height, d.ScaleFactor)
	case recording.WindowFocus:
		return fmt.Sprintf("focused=%t", d.Focused)
	case recording.Custom:
		return fmt.Sprintf("%s %s", d.Name, string(d.Payload))
	default:
		return ""
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
