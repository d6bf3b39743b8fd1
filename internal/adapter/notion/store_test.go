package notion

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"toggl-notion-sync/internal/config"
	"toggl-notion-sync/internal/domain"
)

type recordedRequest struct {
	Path string
	Body map[string]any
}

type fakeNotion struct {
	mu       sync.Mutex
	requests []recordedRequest
	respond  func(path string, body map[string]any) (int, string)
}

func (f *fakeNotion) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)
	f.mu.Lock()
	f.requests = append(f.requests, recordedRequest{Path: r.URL.Path, Body: body})
	f.mu.Unlock()
	if r.Header.Get("Notion-Version") != APIVersion || r.Header.Get("Authorization") != "Bearer tok" {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = io.WriteString(w, `{"object":"error","status":401,"code":"unauthorized","message":"bad headers"}`)
		return
	}
	status, resp := f.respond(r.URL.Path, body)
	w.WriteHeader(status)
	_, _ = io.WriteString(w, resp)
}

func newTestStore(t *testing.T, f *fakeNotion, dbs Databases) *Store {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStore(NewClient(srv.URL, "tok", log), dbs, config.DefaultProperties(), log)
}

func TestLatestRecordEnd(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		return 200, `{"results":[{"id":"p1","properties":{"时间":{"type":"date","date":{"start":"2024-03-01T09:00:00.000+08:00","end":"2024-03-01T10:30:00.000+08:00"}}}}]}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db"})

	end, ok, err := s.LatestRecordEnd(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, end.Equal(time.Date(2024, 3, 1, 2, 30, 0, 0, time.UTC)))

	require.Len(t, f.requests, 1)
	assert.Equal(t, "/v1/databases/time-db/query", f.requests[0].Path)
	assert.EqualValues(t, 1, f.requests[0].Body["page_size"])
	sorts := f.requests[0].Body["sorts"].([]any)
	assert.Equal(t, map[string]any{"property": "时间", "direction": "descending"}, sorts[0])
}

func TestLatestRecordEnd_FallsBackToStart(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		return 200, `{"results":[{"id":"p1","properties":{"时间":{"date":{"start":"2024-03-01","end":null}}}}]}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db"})

	end, ok, err := s.LatestRecordEnd(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", end.Format(time.DateOnly))
}

func TestLatestRecordEnd_Empty(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		return 200, `{"results":[]}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db"})

	_, ok, err := s.LatestRecordEnd(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestLatestRecordEnd_APIError(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		return 404, `{"object":"error","status":404,"code":"object_not_found","message":"no such database"}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db"})

	_, _, err := s.LatestRecordEnd(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 404, apiErr.Status)
	assert.Equal(t, "object_not_found", apiErr.Code)
}

func TestGetOrCreate_Existing(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		return 200, `{"results":[{"id":"tag-1","properties":{}}]}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db", Tags: "tag-db"})

	id, err := s.GetOrCreate(context.Background(), domain.CollectionTags, domain.RelatedRecord{Name: "deep"})
	require.NoError(t, err)
	assert.Equal(t, "tag-1", id)
	require.Len(t, f.requests, 1)
	assert.Equal(t, map[string]any{
		"property": "标题",
		"title":    map[string]any{"equals": "deep"},
	}, f.requests[0].Body["filter"])
}

func TestGetOrCreate_CreatesProject(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		if strings.HasSuffix(path, "/query") {
			return 200, `{"results":[]}`
		}
		return 200, `{"id":"proj-1"}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db", Projects: "proj-db"})

	coins := 1.0
	id, err := s.GetOrCreate(context.Background(), domain.CollectionProjects, domain.RelatedRecord{
		Name:      "Launch",
		Icon:      domain.EmojiIcon("🚀"),
		Coins:     &coins,
		ClientIDs: []string{"client-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "proj-1", id)

	require.Len(t, f.requests, 2)
	create := f.requests[1].Body
	assert.Equal(t, "/v1/pages", f.requests[1].Path)
	assert.Equal(t, map[string]any{"database_id": "proj-db", "type": "database_id"}, create["parent"])
	assert.Equal(t, map[string]any{"type": "emoji", "emoji": "🚀"}, create["icon"])
	props := create["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"number": 1.0}, props["金币"])
	assert.Equal(t, map[string]any{"relation": []any{map[string]any{"id": "client-1"}}}, props["Client"])
}

func TestGetOrCreate_DayTitledByDate(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		if strings.HasSuffix(path, "/query") {
			return 200, `{"results":[]}`
		}
		return 200, `{"id":"day-1"}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db", Days: "day-db"})

	d := time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)
	_, err := s.GetOrCreate(context.Background(), domain.CollectionDays, domain.RelatedRecord{Date: &d})
	require.NoError(t, err)

	filter := f.requests[0].Body["filter"].(map[string]any)
	assert.Equal(t, map[string]any{"equals": "2024年01月02日"}, filter["title"])
	props := f.requests[1].Body["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"date": map[string]any{"start": "2024-01-02"}}, props["日期"])
}

func TestGetOrCreate_Unconfigured(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) { return 200, `{}` }}
	s := newTestStore(t, f, Databases{Time: "time-db"})

	assert.False(t, s.Has(domain.CollectionClients))
	_, err := s.GetOrCreate(context.Background(), domain.CollectionClients, domain.RelatedRecord{Name: "Acme"})
	require.Error(t, err)
	assert.Empty(t, f.requests)
}

func TestCreateTimeRecord(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		return 200, `{"id":"page-1"}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db"})

	loc := time.FixedZone("CST", 8*3600)
	id, err := s.CreateTimeRecord(context.Background(), domain.TimeRecord{
		EntryID:     99,
		Title:       "Launch",
		Description: "write docs",
		Start:       time.Date(2024, 1, 2, 9, 0, 0, 0, loc),
		Stop:        time.Date(2024, 1, 2, 10, 0, 0, 0, loc),
		ProjectIDs:  []string{"proj-1"},
		TagIDs:      []string{"tag-1", "tag-2"},
		Icon:        domain.EmojiIcon("🚀"),
	})
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)

	props := f.requests[0].Body["properties"].(map[string]any)
	assert.Equal(t, map[string]any{"date": map[string]any{
		"start": "2024-01-02T09:00:00+08:00",
		"end":   "2024-01-02T10:00:00+08:00",
	}}, props["时间"])
	assert.Equal(t, map[string]any{"number": 99.0}, props["Id"])
	assert.Contains(t, props, "toggl项目")
	assert.Contains(t, props, "toggl任务")
	assert.Contains(t, props, "项目")
	assert.Contains(t, props, "标签")
	assert.NotContains(t, props, "Client")
	assert.NotContains(t, props, "日")
}

func TestGetOrCreate_TagWithoutIconOmitsIcon(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		if strings.HasSuffix(path, "/query") {
			return 200, `{"results":[]}`
		}
		return 200, `{"id":"tag-1"}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db", Tags: "tag-db"})

	_, err := s.GetOrCreate(context.Background(), domain.CollectionTags, domain.RelatedRecord{
		Name: "deep",
		Icon: domain.ExternalIcon(""),
	})
	require.NoError(t, err)
	require.Len(t, f.requests, 2)
	assert.NotContains(t, f.requests[1].Body, "icon")
}

func TestGetOrCreate_TagWithExternalIcon(t *testing.T) {
	f := &fakeNotion{respond: func(path string, body map[string]any) (int, string) {
		if strings.HasSuffix(path, "/query") {
			return 200, `{"results":[]}`
		}
		return 200, `{"id":"tag-1"}`
	}}
	s := newTestStore(t, f, Databases{Time: "time-db", Tags: "tag-db"})

	_, err := s.GetOrCreate(context.Background(), domain.CollectionTags, domain.RelatedRecord{
		Name: "deep",
		Icon: domain.ExternalIcon("https://www.notion.so/icons/tag_gray.svg"),
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{
		"type":     "external",
		"external": map[string]any{"url": "https://www.notion.so/icons/tag_gray.svg"},
	}, f.requests[1].Body["icon"])
}
