package notion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"toggl-notion-sync/internal/config"
	"toggl-notion-sync/internal/domain"
)

// Databases holds the IDs of the Notion databases the sync writes to.
// Only Time is required.
type Databases struct {
	Time     string
	Projects string
	Clients  string
	Tags     string
	Days     string
}

// Store implements ports.Store on top of a Notion workspace.
type Store struct {
	client *Client
	dbs    Databases
	props  config.Properties
	log    *slog.Logger
}

func NewStore(client *Client, dbs Databases, props config.Properties, log *slog.Logger) *Store {
	return &Store{client: client, dbs: dbs, props: props, log: log}
}

// LatestRecordEnd returns the end of the newest time record.
func (s *Store) LatestRecordEnd(ctx context.Context) (time.Time, bool, error) {
	sorts := []map[string]string{{"property": s.props.Time, "direction": "descending"}}
	pages, err := s.client.Query(ctx, s.dbs.Time, nil, sorts, 1)
	if err != nil {
		return time.Time{}, false, err
	}
	if len(pages) == 0 {
		return time.Time{}, false, nil
	}
	raw, ok := pages[0].Properties[s.props.Time]
	if !ok {
		return time.Time{}, false, fmt.Errorf("notion: page %s has no %q property", pages[0].ID, s.props.Time)
	}
	end, err := rangeEnd(raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return end, true, nil
}

// Has reports whether the collection's database is configured.
func (s *Store) Has(c domain.Collection) bool {
	return s.database(c) != ""
}

func (s *Store) database(c domain.Collection) string {
	switch c {
	case domain.CollectionProjects:
		return s.dbs.Projects
	case domain.CollectionClients:
		return s.dbs.Clients
	case domain.CollectionTags:
		return s.dbs.Tags
	case domain.CollectionDays:
		return s.dbs.Days
	}
	return ""
}

// GetOrCreate finds a record by its title and creates it when missing.
// Daily records are titled by their date.
func (s *Store) GetOrCreate(ctx context.Context, c domain.Collection, rec domain.RelatedRecord) (string, error) {
	db := s.database(c)
	if db == "" {
		return "", fmt.Errorf("notion: %s database is not configured", c)
	}
	name := rec.Name
	if c == domain.CollectionDays && rec.Date != nil && name == "" {
		name = rec.Date.Format(dayTitleLayout)
	}

	filter := map[string]any{
		"property": s.props.RelationTitle,
		"title":    map[string]string{"equals": name},
	}
	pages, err := s.client.Query(ctx, db, filter, nil, 1)
	if err != nil {
		return "", err
	}
	if len(pages) > 0 {
		return pages[0].ID, nil
	}

	props := map[string]any{s.props.RelationTitle: title(name)}
	if rec.Coins != nil && s.props.ProjectCoins != "" {
		props[s.props.ProjectCoins] = number(*rec.Coins)
	}
	setRelation(props, s.props.ProjectClient, rec.ClientIDs)
	if rec.Date != nil && s.props.DayDate != "" {
		props[s.props.DayDate] = date(*rec.Date)
	}
	id, err := s.client.CreatePage(ctx, db, props, icon(rec.Icon))
	if err != nil {
		return "", err
	}
	s.log.Info("created notion record", slog.String("collection", string(c)), slog.String("name", name))
	return id, nil
}

// CreateTimeRecord writes one time entry page.
func (s *Store) CreateTimeRecord(ctx context.Context, rec domain.TimeRecord) (string, error) {
	return s.client.CreatePage(ctx, s.dbs.Time, s.timeProperties(rec), icon(rec.Icon))
}

func (s *Store) timeProperties(rec domain.TimeRecord) map[string]any {
	p := s.props
	props := map[string]any{
		p.Title: title(rec.Title),
		p.Time:  dateRange(rec.Start, rec.Stop),
	}
	if p.EntryID != "" {
		props[p.EntryID] = number(float64(rec.EntryID))
	}
	if p.Description != "" && rec.Description != "" {
		props[p.Description] = richText(rec.Description)
	}
	setRelation(props, p.Project, rec.ProjectIDs)
	setRelation(props, p.Client, rec.ClientIDs)
	setRelation(props, p.Tags, rec.TagIDs)
	setRelation(props, p.Day, rec.DayIDs)
	return props
}
