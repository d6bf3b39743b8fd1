package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"toggl-notion-sync/internal/domain"
)

type fakeToggl struct {
	entries    []domain.TimeEntry
	listErr    error
	projects   map[int64]domain.Project
	projectErr map[int64]error
	clients    map[int64]domain.Client
	clientErr  map[int64]error

	listCalls     int
	projectCalls  map[int64]int
	clientCalls   map[int64]int
	lastListRange [2]time.Time
}

func (f *fakeToggl) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	f.listCalls++
	f.lastListRange = [2]time.Time{from, to}
	return f.entries, f.listErr
}

func (f *fakeToggl) GetProject(ctx context.Context, workspaceID, projectID int64) (domain.Project, error) {
	if f.projectCalls == nil {
		f.projectCalls = map[int64]int{}
	}
	f.projectCalls[projectID]++
	if err := f.projectErr[projectID]; err != nil {
		return domain.Project{}, err
	}
	p, ok := f.projects[projectID]
	if !ok {
		return domain.Project{}, fmt.Errorf("toggl: unexpected status 404")
	}
	return p, nil
}

func (f *fakeToggl) GetClient(ctx context.Context, workspaceID, clientID int64) (domain.Client, error) {
	if f.clientCalls == nil {
		f.clientCalls = map[int64]int{}
	}
	f.clientCalls[clientID]++
	if err := f.clientErr[clientID]; err != nil {
		return domain.Client{}, err
	}
	c, ok := f.clients[clientID]
	if !ok {
		return domain.Client{}, fmt.Errorf("toggl: unexpected status 404")
	}
	return c, nil
}

type getOrCreateCall struct {
	Collection domain.Collection
	Record     domain.RelatedRecord
}

type fakeStore struct {
	latest     *time.Time
	latestErr  error
	configured map[domain.Collection]bool
	createErr  error
	failOnPage int // 1-based index of the CreateTimeRecord call that fails

	getOrCreate []getOrCreateCall
	pages       []domain.TimeRecord
}

func newFakeStore(collections ...domain.Collection) *fakeStore {
	s := &fakeStore{configured: map[domain.Collection]bool{}}
	for _, c := range collections {
		s.configured[c] = true
	}
	return s
}

func (s *fakeStore) LatestRecordEnd(ctx context.Context) (time.Time, bool, error) {
	if s.latestErr != nil {
		return time.Time{}, false, s.latestErr
	}
	if s.latest == nil {
		return time.Time{}, false, nil
	}
	return *s.latest, true, nil
}

func (s *fakeStore) Has(c domain.Collection) bool { return s.configured[c] }

func (s *fakeStore) GetOrCreate(ctx context.Context, c domain.Collection, rec domain.RelatedRecord) (string, error) {
	if s.createErr != nil {
		return "", s.createErr
	}
	s.getOrCreate = append(s.getOrCreate, getOrCreateCall{Collection: c, Record: rec})
	name := rec.Name
	if rec.Date != nil {
		name = rec.Date.Format(time.DateOnly)
	}
	return fmt.Sprintf("%s:%s", c, name), nil
}

func (s *fakeStore) CreateTimeRecord(ctx context.Context, rec domain.TimeRecord) (string, error) {
	if s.failOnPage > 0 && len(s.pages)+1 == s.failOnPage {
		return "", errors.New("notion: status 500 internal_server_error: boom")
	}
	s.pages = append(s.pages, rec)
	return fmt.Sprintf("page-%d", rec.EntryID), nil
}

func (s *fakeStore) calls(c domain.Collection) []getOrCreateCall {
	var out []getOrCreateCall
	for _, call := range s.getOrCreate {
		if call.Collection == c {
			out = append(out, call)
		}
	}
	return out
}

type fakeLedger struct {
	seen     map[int64]string
	entries  []domain.SyncedEntry
	projects []domain.SyncedProject
}

func (l *fakeLedger) Lookup(ctx context.Context, entryID int64) (string, bool, error) {
	id, ok := l.seen[entryID]
	return id, ok, nil
}

func (l *fakeLedger) RecordEntry(ctx context.Context, e domain.SyncedEntry) error {
	l.entries = append(l.entries, e)
	return nil
}

func (l *fakeLedger) RecordProject(ctx context.Context, p domain.SyncedProject) error {
	l.projects = append(l.projects, p)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }
