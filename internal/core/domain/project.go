package domain

import "time"

// ProjectStatus enumerates lifecycle states of a project.
type ProjectStatus string

const (
	ProjectStatusActive   ProjectStatus = "active"
	ProjectStatusPaused   ProjectStatus = "paused"
	ProjectStatusArchived ProjectStatus = "archived"
)

// Project mirrors the persisted representation in the projects table.
type Project struct {
	ID          string
	Slug        string
	Name        string
	Description *string
	Category    *string
	OwnerID     string
	Status      ProjectStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TeamRole describes an open or filled position on a project.
type TeamRole struct {
	ID        string
	ProjectID string
	Name      string
	UserID    *string
	CreatedAt time.Time
}

// IsOpen reports whether the role is still unfilled.
func (r TeamRole) IsOpen() bool {
	return r.UserID == nil
}

// ProjectStats aggregates counters shown on a project page.
type ProjectStats struct {
	ProjectID  string
	Followers  int
	Favorites  int
	Members    int
	OpenRoles  int
	ComputedAt time.Time
}

// ProjectFilter narrows project listings. A zero filter means the default
// unfiltered listing, which is the only variant that gets cached.
type ProjectFilter struct {
	Category string
	Status   ProjectStatus
}

// IsZero reports whether no filter criteria are set.
func (f ProjectFilter) IsZero() bool {
	return f.Category == "" && f.Status == ""
}
