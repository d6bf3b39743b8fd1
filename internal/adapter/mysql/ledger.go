package mysql

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"toggl-notion-sync/internal/domain"
	"toggl-notion-sync/internal/migrate"
)

// Ledger implements ports.Ledger on a MySQL database. It mirrors every entry
// and project written to Notion so later runs can skip entries already synced.
type Ledger struct {
	db  *sql.DB
	log *slog.Logger
}

// Open connects to MySQL, applies pending migrations and returns the ledger.
// Example DSN: user:pass@tcp(host:3306)/dbname?parseTime=true&multiStatements=true
func Open(ctx context.Context, dsn string, log *slog.Logger) (*Ledger, error) {
	if dsn == "" {
		return nil, errors.New("mysql: DSN is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	c, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(c); err != nil {
		db.Close()
		return nil, err
	}
	if err := migrate.Run(ctx, db, log); err != nil {
		db.Close()
		return nil, err
	}
	return &Ledger{db: db, log: log}, nil
}

// Lookup returns the Notion page written for entryID, if any.
func (l *Ledger) Lookup(ctx context.Context, entryID int64) (string, bool, error) {
	var pageID string
	err := l.db.QueryRowContext(ctx, "SELECT page_id FROM synced_entries WHERE entry_id = ?", entryID).Scan(&pageID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return pageID, true, nil
}

// RecordEntry upserts a synced entry.
func (l *Ledger) RecordEntry(ctx context.Context, e domain.SyncedEntry) error {
	const q = `
INSERT INTO synced_entries
  (entry_id, page_id, project_id, workspace_id, title, start, stop, synced_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  page_id=VALUES(page_id),
  project_id=VALUES(project_id),
  workspace_id=VALUES(workspace_id),
  title=VALUES(title),
  start=VALUES(start),
  stop=VALUES(stop),
  synced_at=VALUES(synced_at);
`
	_, err := l.db.ExecContext(ctx, q,
		e.EntryID,
		e.PageID,
		nullable(e.ProjectID),
		nullable(e.WorkspaceID),
		e.Title,
		e.Start.UTC(),
		e.Stop.UTC(),
		time.Now().UTC(),
	)
	if err != nil {
		return err
	}
	l.log.Debug("ledger recorded entry", slog.Int64("entry_id", e.EntryID))
	return nil
}

// RecordProject upserts a project mirrored into Notion.
func (l *Ledger) RecordProject(ctx context.Context, p domain.SyncedProject) error {
	const q = `
INSERT INTO synced_projects
  (id, workspace_id, name, emoji, client_id, page_id, synced_at)
VALUES
  (?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  workspace_id=VALUES(workspace_id),
  name=VALUES(name),
  emoji=VALUES(emoji),
  client_id=VALUES(client_id),
  page_id=VALUES(page_id),
  synced_at=VALUES(synced_at);
`
	_, err := l.db.ExecContext(ctx, q,
		p.ID,
		p.WorkspaceID,
		p.Name,
		p.Emoji,
		nullable(p.ClientID),
		p.PageID,
		time.Now().UTC(),
	)
	return err
}

// Close closes the underlying DB.
func (l *Ledger) Close() error { return l.db.Close() }

func nullable(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}
