package domain

import "time"

// InvitationStatus enumerates the lifecycle of a team invitation.
type InvitationStatus string

const (
	InvitationStatusPending  InvitationStatus = "pending"
	InvitationStatusAccepted InvitationStatus = "accepted"
	InvitationStatusDeclined InvitationStatus = "declined"
	InvitationStatusExpired  InvitationStatus = "expired"
)

// Invitation mirrors the persisted representation in the invitations table.
type Invitation struct {
	ID          string
	ProjectID   string
	RoleID      *string
	InviterID   string
	InviteeID   string
	Message     *string
	Status      InvitationStatus
	CreatedAt   time.Time
	RespondedAt *time.Time
}

// IsPending reports whether the invitation still awaits an answer.
func (i Invitation) IsPending() bool {
	return i.Status == InvitationStatusPending
}
