package domain

// Project represents a Toggl project in the domain layer.
type Project struct {
	ID          int64
	WorkspaceID int64
	Name        string
	ClientID    *int64
}

// Client represents a Toggl client.
type Client struct {
	ID          int64
	WorkspaceID int64
	Name        string
}
