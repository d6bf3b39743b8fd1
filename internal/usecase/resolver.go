package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"toggl-notion-sync/internal/domain"
	"toggl-notion-sync/internal/emoji"
	"toggl-notion-sync/internal/ports"
)

// DefaultProjectCoins is the numeric attribute new project records start with.
const DefaultProjectCoins = 1

// skip marks an entry that cannot be written; the run continues.
type skip struct{ reason string }

func (s *skip) Error() string { return s.reason }

type projectLookup struct {
	project domain.Project
	err     error
}

// resolver turns time entries into destination records. It owns the caches of
// a single run, so each project and client is fetched from Toggl at most once
// and each related record is looked up or created at most once.
type resolver struct {
	log              *slog.Logger
	toggl            ports.TogglClient
	store            ports.Store
	ledger           ports.Ledger
	tagIcon          domain.Icon
	defaultWorkspace int64

	projects  map[int64]projectLookup
	clients   map[int64]*domain.Client // nil when the fetch failed
	relations map[relationKey]string
	warned    map[domain.Collection]bool

	projectFetches int
	clientFetches  int
}

type relationKey struct {
	collection domain.Collection
	name       string
}

func newResolver(log *slog.Logger, toggl ports.TogglClient, store ports.Store, ledger ports.Ledger, tagIcon domain.Icon, defaultWorkspace int64) *resolver {
	return &resolver{
		log:              log,
		toggl:            toggl,
		store:            store,
		ledger:           ledger,
		tagIcon:          tagIcon,
		defaultWorkspace: defaultWorkspace,
		projects:         make(map[int64]projectLookup),
		clients:          make(map[int64]*domain.Client),
		relations:        make(map[relationKey]string),
		warned:           make(map[domain.Collection]bool),
	}
}

// resolve builds the time record for e. A *skip error means the entry must not
// be written; any other error is a destination failure.
func (r *resolver) resolve(ctx context.Context, e domain.TimeEntry) (domain.TimeRecord, error) {
	rec := domain.TimeRecord{
		EntryID:     e.ID,
		Description: e.Description,
		Start:       e.Start,
		Icon:        domain.EmojiIcon(emoji.Default),
	}
	if e.Stop != nil {
		rec.Stop = *e.Stop
	}

	tagIDs, err := r.tags(ctx, e.Tags)
	if err != nil {
		return rec, err
	}
	rec.TagIDs = tagIDs

	if e.ProjectID != nil {
		if err := r.resolveProject(ctx, e, &rec); err != nil {
			return rec, err
		}
	}

	if e.Stop != nil && r.available(domain.CollectionDays) {
		day := *e.Stop
		id, err := r.relation(ctx, domain.CollectionDays, day.Format("2006-01-02"), domain.RelatedRecord{Date: &day})
		if err != nil {
			return rec, err
		}
		rec.DayIDs = []string{id}
	}
	return rec, nil
}

func (r *resolver) resolveProject(ctx context.Context, e domain.TimeEntry, rec *domain.TimeRecord) error {
	ws := r.defaultWorkspace
	if e.WorkspaceID != nil {
		ws = *e.WorkspaceID
	}
	if ws == 0 {
		return &skip{reason: fmt.Sprintf("entry %d has no workspace", e.ID)}
	}

	project, err := r.project(ctx, ws, *e.ProjectID)
	if err != nil {
		return &skip{reason: fmt.Sprintf("project %d: %v", *e.ProjectID, err)}
	}
	if project.Name == "" {
		return &skip{reason: fmt.Sprintf("project %d has no name", *e.ProjectID)}
	}
	icon, name := emoji.Split(project.Name)
	rec.Title = name
	rec.Icon = domain.EmojiIcon(icon)

	if project.ClientID != nil {
		clientIDs, err := r.resolveClient(ctx, ws, *project.ClientID)
		if err != nil {
			return err
		}
		rec.ClientIDs = clientIDs
	}

	if !r.available(domain.CollectionProjects) {
		return nil
	}
	coins := float64(DefaultProjectCoins)
	key := relationKey{collection: domain.CollectionProjects, name: name}
	_, seen := r.relations[key]
	id, err := r.relation(ctx, domain.CollectionProjects, name, domain.RelatedRecord{
		Name:      name,
		Icon:      rec.Icon,
		Coins:     &coins,
		ClientIDs: rec.ClientIDs,
	})
	if err != nil {
		return err
	}
	rec.ProjectIDs = []string{id}
	if !seen {
		if err := r.ledger.RecordProject(ctx, domain.SyncedProject{
			ID:          project.ID,
			WorkspaceID: ws,
			Name:        name,
			Emoji:       icon,
			ClientID:    project.ClientID,
			PageID:      id,
		}); err != nil {
			r.log.Warn("failed to record project in ledger", slog.Int64("project_id", project.ID), slog.String("error", err.Error()))
		}
	}
	return nil
}

// resolveClient returns the client relation for a project, or nothing when
// the client cannot be resolved.
func (r *resolver) resolveClient(ctx context.Context, ws, clientID int64) ([]string, error) {
	client := r.client(ctx, ws, clientID)
	if client == nil {
		return nil, nil
	}
	if client.Name == "" {
		r.log.Warn("client name not found", slog.Int64("client_id", clientID))
		return nil, nil
	}
	if !r.available(domain.CollectionClients) {
		return nil, nil
	}
	icon, name := emoji.Split(client.Name)
	id, err := r.relation(ctx, domain.CollectionClients, name, domain.RelatedRecord{
		Name: name,
		Icon: domain.EmojiIcon(icon),
	})
	if err != nil {
		return nil, err
	}
	return []string{id}, nil
}

func (r *resolver) tags(ctx context.Context, tags []string) ([]string, error) {
	if len(tags) == 0 || !r.available(domain.CollectionTags) {
		return nil, nil
	}
	ids := make([]string, 0, len(tags))
	for _, tag := range tags {
		id, err := r.relation(ctx, domain.CollectionTags, tag, domain.RelatedRecord{Name: tag, Icon: r.tagIcon})
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (r *resolver) project(ctx context.Context, ws, id int64) (domain.Project, error) {
	if hit, ok := r.projects[id]; ok {
		return hit.project, hit.err
	}
	r.projectFetches++
	p, err := r.toggl.GetProject(ctx, ws, id)
	if err != nil {
		r.log.Warn("failed to get project info", slog.Int64("project_id", id), slog.String("error", err.Error()))
	}
	r.projects[id] = projectLookup{project: p, err: err}
	return p, err
}

func (r *resolver) client(ctx context.Context, ws, id int64) *domain.Client {
	if hit, ok := r.clients[id]; ok {
		return hit
	}
	r.clientFetches++
	c, err := r.toggl.GetClient(ctx, ws, id)
	if err != nil {
		r.log.Warn("failed to get client info", slog.Int64("client_id", id), slog.String("error", err.Error()))
		r.clients[id] = nil
		return nil
	}
	r.clients[id] = &c
	return &c
}

func (r *resolver) relation(ctx context.Context, c domain.Collection, name string, rec domain.RelatedRecord) (string, error) {
	key := relationKey{collection: c, name: name}
	if id, ok := r.relations[key]; ok {
		return id, nil
	}
	id, err := r.store.GetOrCreate(ctx, c, rec)
	if err != nil {
		return "", fmt.Errorf("get or create %s %q: %w", c, name, err)
	}
	r.relations[key] = id
	return id, nil
}

// available reports whether the collection is configured, warning once per run when it is not.
func (r *resolver) available(c domain.Collection) bool {
	if r.store.Has(c) {
		return true
	}
	if !r.warned[c] {
		r.warned[c] = true
		r.log.Warn("database not configured, skipping relation", slog.String("collection", string(c)))
	}
	return false
}
