package cli

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/recording"
	"github.com/SmitUplenchwar2687/Rewind/internal/storage"
)

func newArchiveCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "archive",
		Short: "Store and retrieve recordings",
		Long: `Manages recordings in an archive backend: memory, redis, s3 or sqlite.

Backend settings come from the storage section of --config, overridden by
the --storage and backend-specific flags. Stored documents are canonical,
and are imported with full validation when pulled.`,
	}

	cmd.AddCommand(
		newArchivePushCmd(root),
		newArchivePullCmd(root),
		newArchiveListCmd(root),
		newArchiveDeleteCmd(root),
	)
	return cmd
}

// withArchive opens the configured archive, runs fn and closes it.
func withArchive(root *rootOptions, opts *storageOptions, cmd *cobra.Command, fn func(*storage.Archive) error) error {
	cfg, err := root.load()
	if err != nil {
		return err
	}
	logger, err := root.logger(cmd)
	if err != nil {
		return err
	}
	arch, err := opts.openArchive(cmd.Context(), cmd, &cfg.Storage, logger)
	if err != nil {
		return err
	}
	defer arch.Close()
	return fn(arch)
}

func newArchivePushCmd(root *rootOptions) *cobra.Command {
	var (
		file       string
		strict     bool
		storageOpt = defaultStorageOptions()
	)

	cmd := &cobra.Command{
		Use:     "push",
		Short:   "Import a recording file and store it",
		Example: `  rewind archive push --file session.json --storage sqlite`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if file == "" {
				return fmt.Errorf("--file is required")
			}
			var opts []recording.DecodeOption
			if strict {
				opts = append(opts, recording.Strict())
			}
			e, warnings, err := recording.ReadFile(file, opts...)
			if err != nil {
				return err
			}

			return withArchive(root, &storageOpt, cmd, func(arch *storage.Archive) error {
				entry, err := arch.Push(cmd.Context(), e)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				for _, w := range warnings {
					fmt.Fprintf(out, "  warning: %s\n", w.Error())
				}
				fmt.Fprintf(out, "Stored %s as %s (%d bytes)\n", file, entry.ID, entry.Size)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "path to a recording file (required)")
	cmd.Flags().BoolVar(&strict, "strict", false, "refuse recordings with ordering or stats warnings")
	storageOpt.addFlags(cmd)
	return cmd
}

func newArchivePullCmd(root *rootOptions) *cobra.Command {
	var (
		output     string
		raw        bool
		pretty     bool
		storageOpt = defaultStorageOptions()
	)

	cmd := &cobra.Command{
		Use:   "pull <id>",
		Short: "Retrieve a stored recording",
		Long: `Retrieves a stored recording. By default the document is imported and
re-encoded; --raw writes the stored bytes unchanged.`,
		Example: `  rewind archive pull 0190f3a4-... --output session.json --storage sqlite`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(root, &storageOpt, cmd, func(arch *storage.Archive) error {
				out := cmd.OutOrStdout()
				if raw {
					data, err := arch.PullRaw(cmd.Context(), args[0])
					if err != nil {
						return err
					}
					return writeOutput(out, output, data)
				}

				e, _, warnings, err := arch.Pull(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, w := range warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s\n", w.Error())
				}
				if pretty {
					data, err := recording.MarshalIndent(e)
					if err != nil {
						return err
					}
					return writeOutput(out, output, data)
				}
				data, err := recording.Marshal(e)
				if err != nil {
					return err
				}
				return writeOutput(out, output, append(data, '\n'))
			})
		},
	}

	cmd.Flags().StringVar(&output, "output", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&raw, "raw", false, "write the stored bytes without importing them")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the output")
	storageOpt.addFlags(cmd)
	return cmd
}

func newArchiveListCmd(root *rootOptions) *cobra.Command {
	var (
		outputJSON bool
		storageOpt = defaultStorageOptions()
	)

	cmd := &cobra.Command{
		Use:     "list",
		Short:   "List stored recordings, newest first",
		Example: `  rewind archive list --storage redis --redis-host localhost:6379`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(root, &storageOpt, cmd, func(arch *storage.Archive) error {
				entries, err := arch.List(cmd.Context())
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if outputJSON {
					enc := json.NewEncoder(out)
					enc.SetIndent("", "  ")
					return enc.Encode(entries)
				}
				if len(entries) == 0 {
					fmt.Fprintln(out, "No recordings stored.")
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tAPP\tCREATED\tEVENTS\tSNAPSHOTS\tDURATION\tSIZE")
				for _, e := range entries {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\t%d\n",
						e.ID, e.AppName, e.CreatedAt.Format(time.RFC3339),
						e.Stats.TotalEvents, e.Stats.TotalSnapshots, e.Stats.Duration, e.Size)
				}
				return tw.Flush()
			})
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false, "output entries as JSON")
	storageOpt.addFlags(cmd)
	return cmd
}

func newArchiveDeleteCmd(root *rootOptions) *cobra.Command {
	storageOpt := defaultStorageOptions()

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Short:   "Delete a stored recording",
		Example: `  rewind archive delete 0190f3a4-... --storage sqlite`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(root, &storageOpt, cmd, func(arch *storage.Archive) error {
				if err := arch.Delete(cmd.Context(), args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
				return nil
			})
		},
	}

	storageOpt.addFlags(cmd)
	return cmd
}
