package domain

import "time"

// Collection names a destination database that holds related records.
type Collection string

const (
	CollectionProjects Collection = "projects"
	CollectionClients  Collection = "clients"
	CollectionTags     Collection = "tags"
	CollectionDays     Collection = "days"
)

// Icon is a page icon: either an emoji or an external image URL.
type Icon struct {
	Emoji string
	URL   string
}

// EmojiIcon returns an emoji icon.
func EmojiIcon(e string) Icon { return Icon{Emoji: e} }

// ExternalIcon returns an icon pointing at an external image.
func ExternalIcon(url string) Icon { return Icon{URL: url} }

// IsZero reports whether no icon is set.
func (i Icon) IsZero() bool { return i.Emoji == "" && i.URL == "" }

// RelatedRecord describes a destination record looked up (or created) by its title.
type RelatedRecord struct {
	Name string
	Icon Icon
	// Coins is the default numeric attribute attached to project records.
	Coins *float64
	// ClientIDs links a project record to its client record.
	ClientIDs []string
	// Date is set for daily records.
	Date *time.Time
}

// TimeRecord is the destination page written for one time entry.
type TimeRecord struct {
	EntryID     int64
	Title       string
	Description string
	Start       time.Time
	Stop        time.Time
	ProjectIDs  []string
	ClientIDs   []string
	TagIDs      []string
	DayIDs      []string
	Icon        Icon
}
