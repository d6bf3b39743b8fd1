package toggl

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"toggl-notion-sync/internal/domain"
)

// ErrMalformedResponse is returned when a Toggl response body cannot be decoded.
var ErrMalformedResponse = errors.New("toggl: malformed response")

// StatusError is returned for any non-2xx Toggl response.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("toggl: unexpected status %d: %s", e.Code, e.Body)
}

// Credentials authenticate against Toggl with either an API token or email and password.
type Credentials struct {
	APIToken string
	Email    string
	Password string
}

func (c Credentials) basicAuth() (string, string, error) {
	if c.APIToken != "" {
		return c.APIToken, "api_token", nil
	}
	if c.Email != "" && c.Password != "" {
		return c.Email, c.Password, nil
	}
	return "", "", errors.New("missing api token or email/password")
}

// Client implements ports.TogglClient using the Toggl Track API v9.
type Client struct {
	baseURL   string
	creds     Credentials
	http      *http.Client
	workspace int64
	log       *slog.Logger
}

func NewClient(baseURL string, creds Credentials, workspaceID int64, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.track.toggl.com"
	}
	return &Client{
		baseURL:   baseURL,
		creds:     creds,
		workspace: workspaceID,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// DefaultWorkspace returns the configured workspace, used when an entry carries none.
func (c *Client) DefaultWorkspace() int64 { return c.workspace }

// ListTimeEntries fetches entries in [from, to].
// Toggl v9: GET /api/v9/me/time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, from, to time.Time) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("start_date", from.Format(time.RFC3339))
	q.Set("end_date", to.Format(time.RFC3339))

	var raw []rawTimeEntry
	if err := c.get(ctx, "/api/v9/me/time_entries", q, &raw); err != nil {
		return nil, err
	}
	out := make([]domain.TimeEntry, 0, len(raw))
	for _, r := range raw {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// GetProject fetches a single project.
// Toggl v9: GET /api/v9/workspaces/{workspace_id}/projects/{project_id}
func (c *Client) GetProject(ctx context.Context, workspaceID, projectID int64) (domain.Project, error) {
	var raw rawProject
	path := fmt.Sprintf("/api/v9/workspaces/%d/projects/%d", c.workspaceOr(workspaceID), projectID)
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return domain.Project{}, err
	}
	clientID := raw.ClientID
	if clientID == nil {
		clientID = raw.CID
	}
	return domain.Project{
		ID:          raw.ID,
		WorkspaceID: raw.WorkspaceID,
		Name:        raw.Name,
		ClientID:    clientID,
	}, nil
}

// GetClient fetches a single client.
// Toggl v9: GET /api/v9/workspaces/{workspace_id}/clients/{client_id}
func (c *Client) GetClient(ctx context.Context, workspaceID, clientID int64) (domain.Client, error) {
	var raw rawClient
	path := fmt.Sprintf("/api/v9/workspaces/%d/clients/%d", c.workspaceOr(workspaceID), clientID)
	if err := c.get(ctx, path, nil, &raw); err != nil {
		return domain.Client{}, err
	}
	return domain.Client{ID: raw.ID, WorkspaceID: raw.WorkspaceID, Name: raw.Name}, nil
}

func (c *Client) workspaceOr(id int64) int64 {
	if id == 0 {
		return c.workspace
	}
	return id
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	user, pass, err := c.creds.basicAuth()
	if err != nil {
		return err
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u = u.JoinPath(path)
	if query != nil {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.SetBasicAuth(user, pass)
	req.Header.Set("Accept", "application/json")

	c.log.Debug("toggl request", slog.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &StatusError{Code: resp.StatusCode, Body: string(body)}
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformedResponse, path, err)
	}
	return nil
}

// rawTimeEntry mirrors the JSON from Toggl v9. The legacy pid/wid fields are
// still returned alongside project_id/workspace_id.
type rawTimeEntry struct {
	ID          int64      `json:"id"`
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id"`
	PID         *int64     `json:"pid"`
	WorkspaceID *int64     `json:"workspace_id"`
	WID         *int64     `json:"wid"`
	Tags        []string   `json:"tags"`
	Start       time.Time  `json:"start"`
	Stop        *time.Time `json:"stop"`
	Duration    int64      `json:"duration"`
}

func (r rawTimeEntry) toDomain() domain.TimeEntry {
	project := r.ProjectID
	if project == nil {
		project = r.PID
	}
	workspace := r.WorkspaceID
	if workspace == nil {
		workspace = r.WID
	}
	return domain.TimeEntry{
		ID:          r.ID,
		Description: r.Description,
		ProjectID:   project,
		WorkspaceID: workspace,
		Tags:        r.Tags,
		Start:       r.Start,
		Stop:        r.Stop,
		DurationSec: r.Duration,
	}
}

type rawProject struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"workspace_id"`
	Name        string `json:"name"`
	ClientID    *int64 `json:"client_id"`
	CID         *int64 `json:"cid"`
}

type rawClient struct {
	ID          int64  `json:"id"`
	WorkspaceID int64  `json:"wid"`
	Name        string `json:"name"`
}
