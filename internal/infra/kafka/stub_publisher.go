package kafka

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
)

// StubPublisher logs events instead of sending them to Kafka. Useful for development environments.
type StubPublisher struct {
	logger *zap.Logger
}

// NewStubPublisher constructs a development-friendly event publisher.
func NewStubPublisher(logger *zap.Logger) *StubPublisher {
	return &StubPublisher{logger: logger}
}

func (p *StubPublisher) logEvent(eventType, actorID string, at time.Time, payload any) {
	if at.IsZero() {
		at = time.Now().UTC()
	}

	p.logger.Info("Stub event published",
		zap.String("event_type", eventType),
		zap.String("actor_id", actorID),
		zap.Time("timestamp", at.UTC()),
		zap.Any("payload", payload),
	)
}

// PublishFollowChanged logs social.follow.changed events.
func (p *StubPublisher) PublishFollowChanged(_ context.Context, event domain.FollowChangedEvent) error {
	payload := map[string]any{
		"follower_id":  event.FollowerID,
		"following_id": event.FollowingID,
		"active":       event.Active,
		"changed_at":   event.ChangedAt,
		"metadata":     event.Metadata,
	}
	p.logEvent("social.follow.changed", event.FollowerID, event.ChangedAt, payload)
	return nil
}

// PublishFavoriteChanged logs social.favorite.changed events.
func (p *StubPublisher) PublishFavoriteChanged(_ context.Context, event domain.FavoriteChangedEvent) error {
	payload := map[string]any{
		"user_id":    event.UserID,
		"project_id": event.ProjectID,
		"active":     event.Active,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("social.favorite.changed", event.UserID, event.ChangedAt, payload)
	return nil
}

// PublishInvitationSent logs social.invitation.sent events.
func (p *StubPublisher) PublishInvitationSent(_ context.Context, event domain.InvitationSentEvent) error {
	payload := map[string]any{
		"invitation_id": event.InvitationID,
		"project_id":    event.ProjectID,
		"inviter_id":    event.InviterID,
		"invitee_id":    event.InviteeID,
		"role_id":       event.RoleID,
		"sent_at":       event.SentAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("social.invitation.sent", event.InviterID, event.SentAt, payload)
	return nil
}

// PublishInvitationAnswered logs social.invitation.answered events.
func (p *StubPublisher) PublishInvitationAnswered(_ context.Context, event domain.InvitationAnsweredEvent) error {
	payload := map[string]any{
		"invitation_id": event.InvitationID,
		"project_id":    event.ProjectID,
		"invitee_id":    event.InviteeID,
		"status":        event.Status,
		"answered_at":   event.AnsweredAt,
		"metadata":      event.Metadata,
	}
	p.logEvent("social.invitation.answered", event.InviteeID, event.AnsweredAt, payload)
	return nil
}

// PublishProjectChanged logs social.project.changed events.
func (p *StubPublisher) PublishProjectChanged(_ context.Context, event domain.ProjectChangedEvent) error {
	payload := map[string]any{
		"project_id": event.ProjectID,
		"slug":       event.Slug,
		"owner_id":   event.OwnerID,
		"change":     event.Change,
		"changed_at": event.ChangedAt,
		"metadata":   event.Metadata,
	}
	p.logEvent("social.project.changed", event.OwnerID, event.ChangedAt, payload)
	return nil
}

var _ port.EventPublisher = (*StubPublisher)(nil)
