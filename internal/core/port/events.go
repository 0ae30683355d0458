package port

import (
	"context"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
)

// EventPublisher emits notification events to interested consumers. Delivery
// is best effort: publishers enqueue asynchronously and callers never block
// on broker acknowledgement.
type EventPublisher interface {
	PublishFollowChanged(ctx context.Context, event domain.FollowChangedEvent) error
	PublishFavoriteChanged(ctx context.Context, event domain.FavoriteChangedEvent) error
	PublishInvitationSent(ctx context.Context, event domain.InvitationSentEvent) error
	PublishInvitationAnswered(ctx context.Context, event domain.InvitationAnsweredEvent) error
	PublishProjectChanged(ctx context.Context, event domain.ProjectChangedEvent) error
}
