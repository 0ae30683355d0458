package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

var (
	// ErrInvitationNotFound indicates no invitation matches the request.
	ErrInvitationNotFound = errors.New("invitation not found")
	// ErrInvitationPending indicates the invitee already has an open invitation to the project.
	ErrInvitationPending = errors.New("invitation already pending for this invitee")
	// ErrInvitationClosed indicates the invitation has already been answered.
	ErrInvitationClosed = errors.New("invitation is no longer pending")
	// ErrNotInvitee indicates the actor is not the invitation's recipient.
	ErrNotInvitee = errors.New("invitation does not belong to actor")
	// ErrInvitationAnswer indicates the response is not accepted or declined.
	ErrInvitationAnswer = errors.New("answer must be accepted or declined")
)

const maxInvitationMessage = 500

// SendInvitationInput captures the payload for inviting a user to a project.
type SendInvitationInput struct {
	ProjectID string
	InviteeID string
	RoleID    *string
	Message   *string
}

// InvitationService handles team invitations.
type InvitationService struct {
	invitations port.InvitationRepository
	projects    port.ProjectRepository
	limiter     *Limiter
	events      port.EventPublisher
	logger      *zap.Logger
	now         func() time.Time
}

// NewInvitationService constructs InvitationService.
func NewInvitationService(invitations port.InvitationRepository, projects port.ProjectRepository, limiter *Limiter, events port.EventPublisher, logger *zap.Logger) *InvitationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InvitationService{
		invitations: invitations,
		projects:    projects,
		limiter:     limiter,
		events:      events,
		logger:      logger,
		now:         time.Now,
	}
}

// WithClock overrides the clock, primarily for deterministic testing.
func (s *InvitationService) WithClock(now func() time.Time) *InvitationService {
	if now != nil {
		s.now = now
	}
	return s
}

// SendInvitation invites a user to join a project. Only the project owner
// may invite, and at most one pending invitation per invitee and project is
// allowed.
func (s *InvitationService) SendInvitation(ctx context.Context, subject Subject, input SendInvitationInput) (*domain.Invitation, error) {
	if subject.UserID == "" {
		return nil, ErrNotProjectOwner
	}
	inviteeID := strings.TrimSpace(input.InviteeID)
	if inviteeID == "" {
		return nil, fmt.Errorf("invitee id is required")
	}
	if inviteeID == subject.UserID {
		return nil, fmt.Errorf("cannot invite yourself")
	}
	if input.Message != nil && len(*input.Message) > maxInvitationMessage {
		return nil, fmt.Errorf("message exceeds %d characters", maxInvitationMessage)
	}

	subject.PairTarget = inviteeID
	if decision := s.limiter.Check(ctx, "invitation.send", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	project, err := s.projects.GetByID(ctx, input.ProjectID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("lookup project: %w", err)
	}
	if project.OwnerID != subject.UserID {
		return nil, ErrNotProjectOwner
	}

	if existing, err := s.invitations.FindPending(ctx, project.ID, inviteeID); err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("check pending invitation: %w", err)
		}
	} else if existing != nil {
		return nil, ErrInvitationPending
	}

	invitation := domain.Invitation{
		ID:        uuid.NewString(),
		ProjectID: project.ID,
		RoleID:    input.RoleID,
		InviterID: subject.UserID,
		InviteeID: inviteeID,
		Message:   input.Message,
		Status:    domain.InvitationStatusPending,
		CreatedAt: s.now().UTC(),
	}

	if err := s.invitations.Create(ctx, invitation); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrInvitationPending
		}
		return nil, fmt.Errorf("create invitation: %w", err)
	}

	s.publishInvitationSent(ctx, invitation)
	return &invitation, nil
}

// RespondInvitation records the invitee's answer. Only pending invitations
// can be answered, and only by their recipient.
func (s *InvitationService) RespondInvitation(ctx context.Context, subject Subject, invitationID string, answer domain.InvitationStatus) (*domain.Invitation, error) {
	if subject.UserID == "" {
		return nil, ErrNotInvitee
	}
	if answer != domain.InvitationStatusAccepted && answer != domain.InvitationStatusDeclined {
		return nil, ErrInvitationAnswer
	}

	if decision := s.limiter.Check(ctx, "invitation.respond", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	invitation, err := s.invitations.GetByID(ctx, invitationID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvitationNotFound
		}
		return nil, fmt.Errorf("lookup invitation: %w", err)
	}
	if invitation.InviteeID != subject.UserID {
		return nil, ErrNotInvitee
	}
	if !invitation.IsPending() {
		return nil, ErrInvitationClosed
	}

	if err := s.invitations.UpdateStatus(ctx, invitation.ID, answer); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Lost the race with another answer or an expiry sweep.
			return nil, ErrInvitationClosed
		}
		return nil, fmt.Errorf("update invitation: %w", err)
	}

	answeredAt := s.now().UTC()
	invitation.Status = answer
	invitation.RespondedAt = &answeredAt

	s.publishInvitationAnswered(ctx, *invitation)
	return invitation, nil
}

// ListInvitations returns the invitations addressed to the subject, newest
// first. The listing is per-user so it skips the shared cache.
func (s *InvitationService) ListInvitations(ctx context.Context, inviteeID string, page domain.Page) ([]domain.Invitation, error) {
	if strings.TrimSpace(inviteeID) == "" {
		return nil, ErrNotInvitee
	}

	invitations, err := s.invitations.ListForInvitee(ctx, inviteeID, normalizePage(page))
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	return invitations, nil
}

func (s *InvitationService) publishInvitationSent(ctx context.Context, invitation domain.Invitation) {
	if s.events == nil {
		return
	}

	event := domain.InvitationSentEvent{
		InvitationID: invitation.ID,
		ProjectID:    invitation.ProjectID,
		InviterID:    invitation.InviterID,
		InviteeID:    invitation.InviteeID,
		RoleID:       invitation.RoleID,
		SentAt:       invitation.CreatedAt,
	}
	if err := s.events.PublishInvitationSent(ctx, event); err != nil {
		s.logger.Warn("publish invitation sent event failed",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err),
		)
	}
}

func (s *InvitationService) publishInvitationAnswered(ctx context.Context, invitation domain.Invitation) {
	if s.events == nil {
		return
	}

	event := domain.InvitationAnsweredEvent{
		InvitationID: invitation.ID,
		ProjectID:    invitation.ProjectID,
		InviteeID:    invitation.InviteeID,
		Status:       string(invitation.Status),
	}
	if invitation.RespondedAt != nil {
		event.AnsweredAt = *invitation.RespondedAt
	}
	if err := s.events.PublishInvitationAnswered(ctx, event); err != nil {
		s.logger.Warn("publish invitation answered event failed",
			zap.String("invitation_id", invitation.ID),
			zap.Error(err),
		)
	}
}
