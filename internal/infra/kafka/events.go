package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/IBM/sarama"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/infra/config"
)

const schemaVersion = "1.0"

// EventPublisher implements port.EventPublisher using Kafka.
type EventPublisher struct {
	producer *Producer
	logger   *zap.Logger
	appCfg   config.AppSettings
}

// NewEventPublisher constructs a Kafka-backed event publisher.
func NewEventPublisher(producer *Producer, appCfg config.AppSettings, logger *zap.Logger) *EventPublisher {
	return &EventPublisher{producer: producer, appCfg: appCfg, logger: logger}
}

type envelopeMetadata map[string]string

type eventEnvelope struct {
	EventID   string           `json:"event_id"`
	EventType string           `json:"event_type"`
	ActorID   string           `json:"actor_id,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
	Version   string           `json:"version"`
	Payload   any              `json:"payload"`
	Metadata  envelopeMetadata `json:"metadata,omitempty"`
}

func (p *EventPublisher) publish(ctx context.Context, eventID, eventType, actorID string, ts time.Time, payload any) error {
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	id := eventID
	if id == "" {
		id = uuid.NewString()
	}

	metadata := envelopeMetadata{
		"service":     p.appCfg.Name,
		"environment": p.appCfg.Env,
	}

	if span := trace.SpanFromContext(ctx); span != nil {
		if sc := span.SpanContext(); sc.IsValid() {
			metadata["trace_id"] = sc.TraceID().String()
		}
	}

	envelope := eventEnvelope{
		EventID:   id,
		EventType: eventType,
		ActorID:   actorID,
		Timestamp: ts.UTC(),
		Version:   schemaVersion,
		Payload:   payload,
		Metadata:  metadata,
	}

	bytes, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event envelope: %w", err)
	}

	message := &sarama.ProducerMessage{
		Topic: p.producer.TopicName(eventType),
		Value: sarama.ByteEncoder(bytes),
	}

	select {
	case p.producer.Producer().Input() <- message:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// PublishFollowChanged publishes social.follow.changed events.
func (p *EventPublisher) PublishFollowChanged(ctx context.Context, event domain.FollowChangedEvent) error {
	payload := struct {
		FollowerID  string         `json:"follower_id"`
		FollowingID string         `json:"following_id"`
		Active      bool           `json:"active"`
		ChangedAt   time.Time      `json:"changed_at"`
		Metadata    map[string]any `json:"metadata,omitempty"`
	}{
		FollowerID:  event.FollowerID,
		FollowingID: event.FollowingID,
		Active:      event.Active,
		ChangedAt:   event.ChangedAt.UTC(),
		Metadata:    event.Metadata,
	}

	return p.publish(ctx, event.EventID, "social.follow.changed", event.FollowerID, event.ChangedAt, payload)
}

// PublishFavoriteChanged publishes social.favorite.changed events.
func (p *EventPublisher) PublishFavoriteChanged(ctx context.Context, event domain.FavoriteChangedEvent) error {
	payload := struct {
		UserID    string         `json:"user_id"`
		ProjectID string         `json:"project_id"`
		Active    bool           `json:"active"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		UserID:    event.UserID,
		ProjectID: event.ProjectID,
		Active:    event.Active,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "social.favorite.changed", event.UserID, event.ChangedAt, payload)
}

// PublishInvitationSent publishes social.invitation.sent events.
func (p *EventPublisher) PublishInvitationSent(ctx context.Context, event domain.InvitationSentEvent) error {
	payload := struct {
		InvitationID string         `json:"invitation_id"`
		ProjectID    string         `json:"project_id"`
		InviterID    string         `json:"inviter_id"`
		InviteeID    string         `json:"invitee_id"`
		RoleID       *string        `json:"role_id,omitempty"`
		SentAt       time.Time      `json:"sent_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		InvitationID: event.InvitationID,
		ProjectID:    event.ProjectID,
		InviterID:    event.InviterID,
		InviteeID:    event.InviteeID,
		RoleID:       event.RoleID,
		SentAt:       event.SentAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "social.invitation.sent", event.InviterID, event.SentAt, payload)
}

// PublishInvitationAnswered publishes social.invitation.answered events.
func (p *EventPublisher) PublishInvitationAnswered(ctx context.Context, event domain.InvitationAnsweredEvent) error {
	payload := struct {
		InvitationID string         `json:"invitation_id"`
		ProjectID    string         `json:"project_id"`
		InviteeID    string         `json:"invitee_id"`
		Status       string         `json:"status"`
		AnsweredAt   time.Time      `json:"answered_at"`
		Metadata     map[string]any `json:"metadata,omitempty"`
	}{
		InvitationID: event.InvitationID,
		ProjectID:    event.ProjectID,
		InviteeID:    event.InviteeID,
		Status:       event.Status,
		AnsweredAt:   event.AnsweredAt.UTC(),
		Metadata:     event.Metadata,
	}

	return p.publish(ctx, event.EventID, "social.invitation.answered", event.InviteeID, event.AnsweredAt, payload)
}

// PublishProjectChanged publishes social.project.changed events.
func (p *EventPublisher) PublishProjectChanged(ctx context.Context, event domain.ProjectChangedEvent) error {
	payload := struct {
		ProjectID string         `json:"project_id"`
		Slug      string         `json:"slug"`
		OwnerID   string         `json:"owner_id"`
		Change    string         `json:"change"`
		ChangedAt time.Time      `json:"changed_at"`
		Metadata  map[string]any `json:"metadata,omitempty"`
	}{
		ProjectID: event.ProjectID,
		Slug:      event.Slug,
		OwnerID:   event.OwnerID,
		Change:    event.Change,
		ChangedAt: event.ChangedAt.UTC(),
		Metadata:  event.Metadata,
	}

	return p.publish(ctx, event.EventID, "social.project.changed", event.OwnerID, event.ChangedAt, payload)
}

var _ port.EventPublisher = (*EventPublisher)(nil)
