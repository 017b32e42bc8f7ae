package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/debugserver"
	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

func newAttachCmd(root *rootOptions) *cobra.Command {
	var (
		output     string
		pretty     bool
		framing    string
		timeout    time.Duration
		outputJSON bool
	)

	cmd := &cobra.Command{
		Use:   "attach <address>",
		Short: "Pull the live recording from a running host",
		Long: `Connects to a host's debug server and retrieves the recording as it was
at the moment of connection. The host keeps recording.

The address is an application name (resolved to its default socket), a
Unix socket path, or host:port.`,
		Example: `  rewind attach rewind-demo
  rewind attach /tmp/rewind/checkout.sock --output snapshot.json
  rewind attach 127.0.0.1:7070 --framing length --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}
			addr, err := debugserver.ParseAddress(args[0])
			if err != nil {
				return err
			}
			f, err := parseFraming(framing)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, timeout)
				defer cancel()
			}

			client := &debugserver.Client{Framing: f}
			e, warnings, err := client.Fetch(ctx, addr)
			if err != nil {
				return err
			}
			for _, w := range warnings {
				logger.Warn("recording imported with warning", "warning", w.Error())
			}

			out := cmd.OutOrStdout()
			if output != "" {
				if err := recording.WriteFile(output, e, pretty); err != nil {
					return fmt.Errorf("writing recording: %w", err)
				}
				fmt.Fprintf(out, "Saved %d events and %d snapshots from %s to %s\n",
					e.Stats.TotalEvents, e.Stats.TotalSnapshots, addr, output)
				return nil
			}
			if outputJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(map[string]any{
					"address": addr.String(),
					"app":     e.Config.AppName,
					"stats":   e.Stats,
					"by_kind": e.CountByKind(),
				})
			}

			fmt.Fprintf(out, "Attached to %s\n\n", addr)
			printStats(out, e)
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "save the recording to this file")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the saved recording")
	cmd.Flags().StringVar(&framing, "framing", "newline", "debug server framing (newline, length)")
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Second, "give up after this long (0 = no limit)")
	cmd.Flags().BoolVar(&outputJSON, "json", false, "output stats as JSON")

	return cmd
}

// printStats writes a human-readable summary of a recording.
func printStats(out io.Writer, e recording.Export) {
	fmt.Fprintf(out, "  App:         %s\n", e.Config.AppName)
	fmt.Fprintf(out, "  Events:      %d\n", e.Stats.TotalEvents)
	fmt.Fprintf(out, "  Snapshots:   %d\n", e.Stats.TotalSnapshots)
	fmt.Fprintf(out, "  Duration:    %s\n", e.Stats.Duration)

	counts := e.CountByKind()
	if len(counts) == 0 {
		return
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Per kind:")
	for _, k := range recording.Kinds {
		if n := counts[k]; n > 0 {
			fmt.Fprintf(out, "    %-13s %d\n", k, n)
		}
	}
}

// writeOutput writes data to path, or to out when path is empty or "-".
func writeOutput(out io.Writer, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := out.Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
