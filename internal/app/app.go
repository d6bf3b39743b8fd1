package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"toggl-notion-sync/internal/adapter/awssecrets"
	msql "toggl-notion-sync/internal/adapter/mysql"
	"toggl-notion-sync/internal/adapter/notion"
	tg "toggl-notion-sync/internal/adapter/toggl"
	"toggl-notion-sync/internal/config"
	"toggl-notion-sync/internal/domain"
	"toggl-notion-sync/internal/usecase"
)

// ErrSyncRunning is returned when a run is requested while another is in progress.
var ErrSyncRunning = errors.New("sync already running")

// Runner performs one sync run.
type Runner interface {
	Run(ctx context.Context, from, to time.Time) (domain.Report, error)
}

// App wires adapters and use cases.
type App struct {
	log     *slog.Logger
	runner  Runner
	running sync.Mutex
	closers []io.Closer
}

// New resolves credentials, validates the configuration and wires the sync.
func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	if cfg.Secrets.ID != "" {
		loader, err := awssecrets.NewLoader(ctx, log)
		if err != nil {
			return nil, err
		}
		creds, err := loader.Credentials(ctx, cfg.Secrets.ID)
		if err != nil {
			return nil, err
		}
		cfg.Apply(creds)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	togglClient := tg.NewClient(cfg.Toggl.BaseURL, tg.Credentials{
		APIToken: cfg.Toggl.APIToken,
		Email:    cfg.Toggl.Email,
		Password: cfg.Toggl.Password,
	}, cfg.Toggl.WorkspaceID, log)

	store := notion.NewStore(notion.NewClient(cfg.Notion.BaseURL, cfg.Notion.Token, log), notion.Databases{
		Time:     cfg.Notion.TimeDatabaseID,
		Projects: cfg.Notion.ProjectDatabaseID,
		Clients:  cfg.Notion.ClientDatabaseID,
		Tags:     cfg.Notion.TagDatabaseID,
		Days:     cfg.Notion.DayDatabaseID,
	}, cfg.Notion.Properties, log)
	logDatabases(log, cfg)

	uc := &usecase.SyncUseCase{
		Log:              log,
		Toggl:            togglClient,
		Store:            store,
		Location:         cfg.Location(),
		TagIcon:          domain.ExternalIcon(cfg.Sync.TagIconURL),
		DefaultWorkspace: togglClient.DefaultWorkspace(),
	}

	a := &App{log: log, runner: uc}
	if cfg.MySQL.DSN != "" {
		ledger, err := msql.Open(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		uc.Ledger = ledger
		a.closers = append(a.closers, ledger)
	}
	return a, nil
}

// NewWithRunner builds an App around an existing runner.
func NewWithRunner(log *slog.Logger, r Runner) *App {
	return &App{log: log, runner: r}
}

// RunOnce runs a single sync. Zero bounds resume at the checkpoint and end now.
func (a *App) RunOnce(ctx context.Context, from, to time.Time) (domain.Report, error) {
	if !a.running.TryLock() {
		return domain.Report{}, ErrSyncRunning
	}
	defer a.running.Unlock()
	return a.runner.Run(ctx, from, to)
}

// Close releases the ledger connection, if any.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

func logDatabases(log *slog.Logger, cfg config.Config) {
	state := func(id string) string {
		if id == "" {
			return "not configured"
		}
		return "configured"
	}
	log.Info("notion databases",
		slog.String("time", state(cfg.Notion.TimeDatabaseID)),
		slog.String("project", state(cfg.Notion.ProjectDatabaseID)),
		slog.String("client", state(cfg.Notion.ClientDatabaseID)),
		slog.String("tag", state(cfg.Notion.TagDatabaseID)),
		slog.String("day", state(cfg.Notion.DayDatabaseID)),
		slog.Bool("ledger", cfg.MySQL.DSN != ""),
	)
}
