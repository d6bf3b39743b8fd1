package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Properties maps logical fields to property names in the Notion databases.
// The two historical layouts of the time database differ only in these names.
type Properties struct {
	// Time database.
	Time        string `yaml:"time"`
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
	EntryID     string `yaml:"entry_id"`
	Project     string `yaml:"project"`
	Client      string `yaml:"client"`
	Tags        string `yaml:"tags"`
	Day         string `yaml:"day"`

	// Related databases (projects, clients, tags, days).
	RelationTitle string `yaml:"relation_title"`
	ProjectCoins  string `yaml:"project_coins"`
	ProjectClient string `yaml:"project_client"`
	DayDate       string `yaml:"day_date"`
}

// DefaultProperties returns the property names used by the stock template.
func DefaultProperties() Properties {
	return Properties{
		Time:          "时间",
		Title:         "toggl项目",
		Description:   "toggl任务",
		EntryID:       "Id",
		Project:       "项目",
		Client:        "Client",
		Tags:          "标签",
		Day:           "日",
		RelationTitle: "标题",
		ProjectCoins:  "金币",
		ProjectClient: "Client",
		DayDate:       "日期",
	}
}

// LoadProperties reads a YAML property mapping over the defaults.
// An empty path yields the defaults.
func LoadProperties(path string) (Properties, error) {
	props := DefaultProperties()
	if path == "" {
		return props, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return props, fmt.Errorf("read properties file: %w", err)
	}
	if err := yaml.Unmarshal(data, &props); err != nil {
		return props, fmt.Errorf("parse properties file: %w", err)
	}
	if props.Time == "" || props.Title == "" || props.RelationTitle == "" {
		return props, fmt.Errorf("properties file %s: time, title and relation_title must not be empty", path)
	}
	return props, nil
}
