package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
)

func newValidateCmd() *cobra.Command {
	var (
		file   string
		strict bool
	)

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check a recording file",
		Long: `Imports a recording the same way replay does and reports problems.

Schema and parse errors fail. Out-of-order sequences and stale stats are
repaired on import and reported as warnings; with --strict they fail.`,
		Example: `  rewind validate --file session.json
  rewind validate --file session.json --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}

			var opts []recording.DecodeOption
			if strict {
				opts = append(opts, recording.Strict())
			}

			out := cmd.OutOrStdout()
			e, warnings, err := recording.ReadFile(file, opts...)
			if err != nil {
				var pe *recording.ParseError
				if errors.As(err, &pe) {
					fmt.Fprintf(out, "INVALID %s\n", file)
				}
				return err
			}

			for _, w := range warnings {
				fmt.Fprintf(out, "  warning: %s\n", w.Error())
			}
			fmt.Fprintf(out, "OK %s (%d events, %d snapshots, %s)\n",
				file, e.Stats.TotalEvents, e.Stats.TotalSnapshots, e.Stats.Duration)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a recording file (required)")
	cmd.Flags().BoolVar(&strict, "strict", false, "treat ordering and stats warnings as errors")

	return cmd
}
