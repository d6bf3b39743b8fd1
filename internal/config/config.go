package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds environment-driven configuration.
type Config struct {
	Toggl struct {
		APIToken    string
		Email       string
		Password    string
		WorkspaceID int64
		BaseURL     string // default: https://api.track.toggl.com
	}
	Notion struct {
		Token             string
		BaseURL           string // default: https://api.notion.com
		TimeDatabaseID    string
		ProjectDatabaseID string
		ClientDatabaseID  string
		TagDatabaseID     string
		DayDatabaseID     string
		PropertiesFile    string
		Properties        Properties
	}
	MySQL struct {
		DSN string // optional; enables the sync ledger
	}
	Sync struct {
		Timezone   string // default: Asia/Shanghai
		TagIconURL string
	}
	Secrets struct {
		ID string // AWS Secrets Manager secret holding credentials
	}
	Log struct {
		File string
	}
	HTTP struct {
		Addr string
	}
}

// Credentials are the secrets that may be supplied outside the environment.
type Credentials struct {
	TogglAPIToken string `json:"toggl_api_token"`
	TogglEmail    string `json:"toggl_email"`
	TogglPassword string `json:"toggl_password"`
	NotionToken   string `json:"notion_token"`
}

// Load reads configuration from a .env file (if present) and environment variables.
// Credentials are not validated here because they may still be overlaid from
// a secret store; call Validate once they are final.
func Load() (Config, error) {
	var cfg Config

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return cfg, fmt.Errorf("loading .env: %w", err)
	}

	cfg.Toggl.APIToken = env("TOGGL_API_TOKEN")
	cfg.Toggl.Email = env("EMAIL")
	cfg.Toggl.Password = env("PASSWORD")
	if ws := env("TOGGL_WORKSPACE_ID"); ws != "" {
		if v, err := strconv.ParseInt(ws, 10, 64); err == nil {
			cfg.Toggl.WorkspaceID = v
		} else {
			return cfg, errors.New("TOGGL_WORKSPACE_ID must be an integer")
		}
	}
	cfg.Toggl.BaseURL = envOr("TOGGL_BASE_URL", "https://api.track.toggl.com")

	cfg.Notion.Token = env("NOTION_TOKEN")
	cfg.Notion.BaseURL = envOr("NOTION_BASE_URL", "https://api.notion.com")
	cfg.Notion.TimeDatabaseID = env("NOTION_TIME_DATABASE_ID")
	cfg.Notion.ProjectDatabaseID = env("NOTION_PROJECT_DATABASE_ID")
	cfg.Notion.ClientDatabaseID = env("NOTION_CLIENT_DATABASE_ID")
	cfg.Notion.TagDatabaseID = env("NOTION_TAG_DATABASE_ID")
	cfg.Notion.DayDatabaseID = env("NOTION_DAY_DATABASE_ID")
	cfg.Notion.PropertiesFile = env("NOTION_PROPERTIES_FILE")
	props, err := LoadProperties(cfg.Notion.PropertiesFile)
	if err != nil {
		return cfg, err
	}
	cfg.Notion.Properties = props

	cfg.MySQL.DSN = env("MYSQL_DSN")

	cfg.Sync.Timezone = envOr("SYNC_TZ", "Asia/Shanghai")
	cfg.Sync.TagIconURL = envOr("TAG_ICON_URL", "https://www.notion.so/icons/tag_gray.svg")
	if _, err := time.LoadLocation(cfg.Sync.Timezone); err != nil {
		return cfg, fmt.Errorf("invalid SYNC_TZ %q: %w", cfg.Sync.Timezone, err)
	}

	cfg.Secrets.ID = env("AWS_SECRET_ID")
	cfg.Log.File = env("LOG_FILE")
	cfg.HTTP.Addr = envOr("HTTP_ADDR", ":8080")

	return cfg, nil
}

// Apply overlays non-empty credentials onto the configuration.
func (c *Config) Apply(creds Credentials) {
	if creds.TogglAPIToken != "" {
		c.Toggl.APIToken = creds.TogglAPIToken
	}
	if creds.TogglEmail != "" {
		c.Toggl.Email = creds.TogglEmail
	}
	if creds.TogglPassword != "" {
		c.Toggl.Password = creds.TogglPassword
	}
	if creds.NotionToken != "" {
		c.Notion.Token = creds.NotionToken
	}
}

// Validate checks that everything a sync run needs is present.
func (c Config) Validate() error {
	var errs []error
	if c.Toggl.APIToken == "" && (c.Toggl.Email == "" || c.Toggl.Password == "") {
		errs = append(errs, errors.New("TOGGL_API_TOKEN or EMAIL and PASSWORD are required"))
	}
	if c.Notion.Token == "" {
		errs = append(errs, errors.New("NOTION_TOKEN is required"))
	}
	if c.Notion.TimeDatabaseID == "" {
		errs = append(errs, errors.New("NOTION_TIME_DATABASE_ID is required"))
	}
	return errors.Join(errs...)
}

// Location returns the timezone entries are converted to.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Sync.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func env(key string) string { return strings.TrimSpace(os.Getenv(key)) }

func envOr(key, def string) string {
	if v := env(key); v != "" {
		return v
	}
	return def
}
