package notion

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// APIVersion is the Notion-Version header sent with every request.
const APIVersion = "2022-06-28"

// APIError is returned for any non-2xx Notion response.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion: status %d %s: %s", e.Status, e.Code, e.Message)
}

// Client is a minimal Notion REST client covering database queries and page creation.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	log     *slog.Logger
}

func NewClient(baseURL, token string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://api.notion.com"
	}
	return &Client{
		baseURL: baseURL,
		token:   token,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// Page is the subset of a Notion page object the sync reads.
type Page struct {
	ID         string                     `json:"id"`
	Properties map[string]json.RawMessage `json:"properties"`
}

type queryResponse struct {
	Results []Page `json:"results"`
}

// Query runs POST /v1/databases/{id}/query with the given filter and sorts.
func (c *Client) Query(ctx context.Context, databaseID string, filter any, sorts []map[string]string, pageSize int) ([]Page, error) {
	body := map[string]any{}
	if filter != nil {
		body["filter"] = filter
	}
	if len(sorts) > 0 {
		body["sorts"] = sorts
	}
	if pageSize > 0 {
		body["page_size"] = pageSize
	}
	var resp queryResponse
	if err := c.post(ctx, "/v1/databases/"+databaseID+"/query", body, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// CreatePage runs POST /v1/pages under a database parent and returns the new page ID.
func (c *Client) CreatePage(ctx context.Context, databaseID string, properties map[string]any, icon map[string]any) (string, error) {
	body := map[string]any{
		"parent": map[string]string{
			"database_id": databaseID,
			"type":        "database_id",
		},
		"properties": properties,
	}
	if icon != nil {
		body["icon"] = icon
	}
	var resp Page
	if err := c.post(ctx, "/v1/pages", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("notion: created page has no id")
	}
	return resp.ID, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	if c.token == "" {
		return errors.New("notion: missing token")
	}
	payload, err := json.Marshal(in)
	if err != nil {
		return err
	}
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	u = u.JoinPath(path)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Notion-Version", APIVersion)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.log.Debug("notion request", slog.String("path", path))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		apiErr := &APIError{Status: resp.StatusCode}
		if json.Unmarshal(body, apiErr) != nil || apiErr.Message == "" {
			apiErr.Message = string(body)
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("notion: decode %s: %w", path, err)
	}
	return nil
}
