package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/SmitUplenchwar2687/Rewind/internal/capture"
	"github.com/SmitUplenchwar2687/Rewind/internal/clock"
	"github.com/SmitUplenchwar2687/Rewind/internal/config"
	"github.com/SmitUplenchwar2687/Rewind/internal/debugserver"
	"github.com/SmitUplenchwar2687/Rewind/internal/recorder"
	"github.com/SmitUplenchwar2687/Rewind/internal/server"
	"github.com/SmitUplenchwar2687/Rewind/internal/storage"
)

func newRecordCmd(root *rootOptions) *cobra.Command {
	var (
		appName    string
		duration   time.Duration
		interval   time.Duration
		seed       int64
		output     string
		pretty     bool
		archive    bool
		debugAddr  string
		noDebug    bool
		framing    string
		httpAddr   string
		storageOpt = defaultStorageOptions()
	)

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Run a demo host that records simulated input",
		Long: `Runs a small demo application driven by simulated user input and records
every input event and periodic UI snapshots into a live session.

While recording, the session is served on a debug socket so that
"rewind attach" can pull the current document. With --http, a read-only
inspector with a live dashboard is served as well.

Recording stops after --duration, or on SIGINT/SIGTERM. The finished
recording is written to --output and/or pushed to the archive.`,
		Example: `  rewind record --duration 10s --output session.json
  rewind record --app checkout --debug-addr 127.0.0.1:7070
  rewind record --http :8080 --archive --storage sqlite --sqlite-path rewind.db`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.load()
			if err != nil {
				return err
			}
			logger, err := root.logger(cmd)
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("app") {
				cfg.Recording.AppName = appName
			}
			if cmd.Flags().Changed("debug-addr") {
				cfg.DebugServer.Address = debugAddr
			}
			if cmd.Flags().Changed("framing") {
				cfg.DebugServer.Framing = framing
			}
			if noDebug {
				cfg.DebugServer.Enabled = false
			}
			if cmd.Flags().Changed("http") {
				cfg.HTTP.Enabled = true
				cfg.HTTP.Addr = httpAddr
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			if interval <= 0 {
				return fmt.Errorf("--interval must be positive, got %s", interval)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			if duration > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, duration)
				defer cancel()
			}

			var arch *storage.Archive
			if archive {
				a, err := storageOpt.openArchive(ctx, cmd, &cfg.Storage, logger)
				if err != nil {
					return err
				}
				defer a.Close()
				arch = a
			}

			sess := recorder.New(cfg.Recording.Capture(), recorder.WithLogger(logger))
			prev := capture.Install(sess)
			defer capture.Install(prev)

			errCh := make(chan error, 2)

			if cfg.DebugServer.Enabled {
				dbg, err := startDebugServer(ctx, cfg, sess, logger)
				if err != nil {
					return err
				}
				defer dbg.Close()
				fmt.Fprintf(cmd.OutOrStdout(), "Debug server: %s\n", dbg.Addr())
			}

			if cfg.HTTP.Enabled {
				srv := server.New(cfg.HTTP.Addr, sess,
					server.WithLogger(logger),
					server.WithBroadcastInterval(cfg.HTTP.BroadcastInterval),
					server.WithAllowedOrigins(cfg.HTTP.AllowedOrigins),
					server.WithExportRateLimit(cfg.HTTP.ExportRate, time.Minute, cfg.HTTP.ExportBurst),
				)
				go func() {
					if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
				}()
				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
					defer cancel()
					_ = srv.Shutdown(shutdownCtx)
				}()
				fmt.Fprintf(cmd.OutOrStdout(), "Inspector:    http://localhost%s/dashboard\n", cfg.HTTP.Addr)
			}

			sess.Start()
			logger.Info("recording started", "app", cfg.Recording.AppName)

			runErr := driveDemo(ctx, newDemoHost(seed), clock.NewRealClock(), interval, cfg.Recording.SnapshotInterval, errCh)
			sess.Stop()

			events, snapshots := sess.Len()
			logger.Info("recording stopped", "events", events, "snapshots", snapshots, "elapsed", sess.Elapsed())
			if runErr != nil {
				return runErr
			}

			e := sess.Export()
			if output != "" {
				if err := sess.ExportFile(output, pretty); err != nil {
					return fmt.Errorf("writing recording: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d events and %d snapshots to %s\n", events, snapshots, output)
			}
			if arch != nil {
				// The signal context may already be done; archiving gets its own.
				pushCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				entry, err := arch.Push(pushCtx, e)
				if err != nil {
					return fmt.Errorf("archiving recording: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Archived as %s\n", entry.ID)
			}
			if output == "" && arch == nil {
				printStats(cmd.OutOrStdout(), e)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&appName, "app", "", "application name (default from config)")
	cmd.Flags().DurationVar(&duration, "duration", 0, "stop after this long (0 = until interrupted)")
	cmd.Flags().DurationVar(&interval, "interval", 50*time.Millisecond, "time between simulated user actions")
	cmd.Flags().Int64Var(&seed, "seed", 1, "seed for simulated input")
	cmd.Flags().StringVar(&output, "output", "", "write the recording to this file when stopped")
	cmd.Flags().BoolVar(&pretty, "pretty", false, "indent the written recording")
	cmd.Flags().BoolVar(&archive, "archive", false, "push the recording to the archive when stopped")
	cmd.Flags().StringVar(&debugAddr, "debug-addr", "", "debug server address: name, socket path or host:port (default derived from app name)")
	cmd.Flags().BoolVar(&noDebug, "no-debug-server", false, "do not serve the live session")
	cmd.Flags().StringVar(&framing, "framing", "newline", "debug server framing (newline, length)")
	cmd.Flags().StringVar(&httpAddr, "http", ":8080", "serve the HTTP inspector on this address")
	cmd.Flags().Lookup("http").NoOptDefVal = ":8080"
	storageOpt.addFlags(cmd)

	return cmd
}

func startDebugServer(ctx context.Context, cfg config.Config, sess *recorder.Session, logger *slog.Logger) (*debugserver.Server, error) {
	addr := debugserver.NameAddress(cfg.Recording.AppName)
	if cfg.DebugServer.Address != "" {
		a, err := debugserver.ParseAddress(cfg.DebugServer.Address)
		if err != nil {
			return nil, err
		}
		addr = a
	}
	f, err := parseFraming(cfg.DebugServer.Framing)
	if err != nil {
		return nil, err
	}

	dbg := debugserver.New(addr, sess,
		debugserver.WithLogger(logger),
		debugserver.WithFraming(f),
		debugserver.WithErrorHandler(func(err error) {
			logger.Warn("debug server error", "error", err)
		}),
	)
	if err := dbg.Start(ctx); err != nil {
		return nil, err
	}
	return dbg, nil
}

func parseFraming(s string) (debugserver.Framing, error) {
	switch s {
	case "", "newline":
		return debugserver.FramingNewline, nil
	case "length":
		return debugserver.FramingLength, nil
	default:
		return 0, fmt.Errorf("unknown framing %q, must be one of: newline, length", s)
	}
}

// driveDemo runs the demo host until ctx is done, taking a snapshot every
// snapEvery. An error on errCh aborts the run; cancellation is a normal stop.
func driveDemo(ctx context.Context, host *demoHost, clk clock.Clock, interval, snapEvery time.Duration, errCh <-chan error) error {
	capture.RecordSnapshot(host.snapshot())
	nextAct := clk.After(interval)
	nextSnap := clk.After(snapEvery)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errCh:
			return err
		case <-nextAct:
			host.act()
			nextAct = clk.After(interval)
		case <-nextSnap:
			capture.RecordSnapshot(host.snapshot())
			nextSnap = clk.After(snapEvery)
		}
	}
}
