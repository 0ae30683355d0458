package domain

import "time"

// FollowChangedEvent represents the payload for social.follow.changed messages.
type FollowChangedEvent struct {
	EventID     string
	FollowerID  string
	FollowingID string
	Active      bool
	ChangedAt   time.Time
	Metadata    map[string]any
}

// FavoriteChangedEvent represents the payload for social.favorite.changed messages.
type FavoriteChangedEvent struct {
	EventID   string
	UserID    string
	ProjectID string
	Active    bool
	ChangedAt time.Time
	Metadata  map[string]any
}

// InvitationSentEvent represents the payload for social.invitation.sent messages.
type InvitationSentEvent struct {
	EventID      string
	InvitationID string
	ProjectID    string
	InviterID    string
	InviteeID    string
	RoleID       *string
	SentAt       time.Time
	Metadata     map[string]any
}

// InvitationAnsweredEvent represents the payload for social.invitation.answered messages.
type InvitationAnsweredEvent struct {
	EventID      string
	InvitationID string
	ProjectID    string
	InviteeID    string
	Status       string
	AnsweredAt   time.Time
	Metadata     map[string]any
}

// ProjectChangedEvent represents the payload for social.project.changed messages.
type ProjectChangedEvent struct {
	EventID   string
	ProjectID string
	Slug      string
	OwnerID   string
	Change    string
	ChangedAt time.Time
	Metadata  map[string]any
}
