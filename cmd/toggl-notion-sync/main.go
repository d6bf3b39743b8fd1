package main

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

	"toggl-notion-sync/internal/app"
	"toggl-notion-sync/internal/config"
	"toggl-notion-sync/internal/logging"
)

// Exit codes.
const (
	exitOK      = 0
	exitFailed  = 1
	exitPartial = 2
)

// errPartial signals that the run finished but some entries were skipped.
var errPartial = errors.New("sync finished with skipped entries")

func main() {
	err := newRootCmd().Execute()
	switch {
	case err == nil:
		os.Exit(exitOK)
	case errors.Is(err, errPartial):
		os.Exit(exitPartial)
	default:
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(exitFailed)
	}
}

type rootOptions struct {
	from     string
	to       string
	daily    bool
	interval time.Duration
	verbose  bool
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	root := &cobra.Command{
		Use:   "toggl-notion-sync",
		Short: "Sync Toggl time entries into Notion",
		Long: `Fetch Toggl time entries since the last synced Notion record and write one
Notion page per completed entry, linking projects, clients, tags and days.

Without flags a single run is performed, resuming at the end of the newest
record in the time database (at most 90 days back).

Exit status is 0 on success, 2 when some entries were skipped and 1 when the
run failed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runSync(cmd.Context(), opts)
		},
	}
	root.Flags().StringVar(&opts.from, "from", "", "RFC3339 or YYYY-MM-DD start (default: checkpoint)")
	root.Flags().StringVar(&opts.to, "to", "", "RFC3339 or YYYY-MM-DD end, inclusive for dates (default: now)")
	root.Flags().BoolVar(&opts.daily, "daily", false, "Run at local midnight each day (uses SYNC_TZ)")
	root.Flags().DurationVar(&opts.interval, "interval", 0, "Run repeatedly at this interval instead of once")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable verbose logging")

	root.AddCommand(newServeCmd(&opts.verbose))
	return root
}

func newServeCmd(verbose *bool) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Expose /sync and /healthz over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log, cfg, application, cleanup, err := setup(ctx, *verbose)
			if err != nil {
				return err
			}
			defer cleanup()
			if addr == "" {
				addr = cfg.HTTP.Addr
			}

			srv := application.HTTPServer(addr)
			errCh := make(chan error, 1)
			go func() { errCh <- srv.ListenAndServe() }()

			select {
			case <-ctx.Done():
				log.Info("shutting down")
				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()
				return srv.Shutdown(shutdownCtx)
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			}
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: HTTP_ADDR or :8080)")
	return cmd
}

func runSync(parent context.Context, opts rootOptions) error {
	fromTime, err := app.ParseStart(opts.from)
	if err != nil {
		return err
	}
	toTime, err := app.ParseEnd(opts.to)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log, cfg, application, cleanup, err := setup(ctx, opts.verbose)
	if err != nil {
		return err
	}
	defer cleanup()

	switch {
	case opts.daily:
		application.RunDaily(ctx, cfg.Location())
		return nil
	case opts.interval > 0:
		application.RunEvery(ctx, opts.interval)
		return nil
	}

	report, err := application.RunOnce(ctx, fromTime, toTime)
	if err != nil {
		log.Error("sync failed", slog.String("error", err.Error()))
		return err
	}
	log.Info("sync completed",
		slog.Int("fetched", report.Fetched),
		slog.Int("created", report.Created),
		slog.Int("skipped", report.Skipped),
		slog.Int("duplicates", report.Duplicates),
	)
	if report.Partial() {
		return errPartial
	}
	return nil
}

func setup(ctx context.Context, verbose bool) (*slog.Logger, config.Config, *app.App, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, cfg, nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	log, logCloser := logging.New(logging.Options{Verbose: verbose, File: cfg.Log.File})
	slog.SetDefault(log)

	application, err := app.New(ctx, log, cfg)
	if err != nil {
		_ = logCloser.Close()
		return nil, cfg, nil, nil, fmt.Errorf("failed to initialize app: %w", err)
	}
	cleanup := func() {
		if err := application.Close(); err != nil {
			log.Warn("close failed", slog.String("error", err.Error()))
		}
		_ = logCloser.Close()
	}
	return log, cfg, application, cleanup, nil
}
