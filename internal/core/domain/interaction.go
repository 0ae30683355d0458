package domain

import "time"

// Follow records one profile following another.
type Follow struct {
	FollowerID  string
	FollowingID string
	CreatedAt   time.Time
}

// Favorite records a user bookmarking a project.
type Favorite struct {
	UserID    string
	ProjectID string
	CreatedAt time.Time
}

// ToggleOutcome reports the resulting state of a follow/favorite toggle.
type ToggleOutcome struct {
	Active    bool
	ChangedAt time.Time
}
