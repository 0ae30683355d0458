package port

import (
	"context"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
)

// InvitationRepository persists team invitations.
type InvitationRepository interface {
	Create(ctx context.Context, invitation domain.Invitation) error
	GetByID(ctx context.Context, id string) (*domain.Invitation, error)
	FindPending(ctx context.Context, projectID, inviteeID string) (*domain.Invitation, error)
	ListForInvitee(ctx context.Context, inviteeID string, page domain.Page) ([]domain.Invitation, error)
	UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error
}
