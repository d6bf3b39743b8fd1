package notion

import (
	"encoding/json"
	"fmt"
	"time"

	"toggl-notion-sync/internal/domain"
)

// dayTitleLayout names daily records, e.g. 2024年01月02日.
const dayTitleLayout = "2006年01月02日"

func title(s string) map[string]any {
	return map[string]any{"title": []map[string]any{textBlock(s)}}
}

func richText(s string) map[string]any {
	return map[string]any{"rich_text": []map[string]any{textBlock(s)}}
}

func textBlock(s string) map[string]any {
	return map[string]any{"type": "text", "text": map[string]string{"content": s}}
}

func number(n float64) map[string]any {
	return map[string]any{"number": n}
}

func relation(ids []string) map[string]any {
	rel := make([]map[string]string, 0, len(ids))
	for _, id := range ids {
		rel = append(rel, map[string]string{"id": id})
	}
	return map[string]any{"relation": rel}
}

func dateRange(start, end time.Time) map[string]any {
	return map[string]any{"date": map[string]string{
		"start": start.Format(time.RFC3339),
		"end":   end.Format(time.RFC3339),
	}}
}

func date(t time.Time) map[string]any {
	return map[string]any{"date": map[string]string{"start": t.Format(time.DateOnly)}}
}

func icon(i domain.Icon) map[string]any {
	if i.IsZero() {
		return nil
	}
	if i.Emoji != "" {
		return map[string]any{"type": "emoji", "emoji": i.Emoji}
	}
	return map[string]any{"type": "external", "external": map[string]string{"url": i.URL}}
}

// setRelation adds a relation property when both the name and the ids are present.
func setRelation(props map[string]any, name string, ids []string) {
	if name == "" || len(ids) == 0 {
		return
	}
	props[name] = relation(ids)
}

type dateValue struct {
	Date *struct {
		Start string  `json:"start"`
		End   *string `json:"end"`
	} `json:"date"`
}

// rangeEnd reads the end of a date property, falling back to its start.
func rangeEnd(raw json.RawMessage) (time.Time, error) {
	var v dateValue
	if err := json.Unmarshal(raw, &v); err != nil {
		return time.Time{}, fmt.Errorf("notion: decode date property: %w", err)
	}
	if v.Date == nil {
		return time.Time{}, fmt.Errorf("notion: date property is empty")
	}
	s := v.Date.Start
	if v.Date.End != nil && *v.Date.End != "" {
		s = *v.Date.End
	}
	return parseDate(s)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("notion: unparseable date %q", s)
	}
	return t, nil
}
