package port

import (
	"context"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
)

// InteractionRepository persists follow and favorite edges. Toggle operations
// flip the edge and report the resulting state in one statement so concurrent
// toggles cannot double-insert.
type InteractionRepository interface {
	ToggleFollow(ctx context.Context, followerID, followingID string) (domain.ToggleOutcome, error)
	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	ToggleFavorite(ctx context.Context, userID, projectID string) (domain.ToggleOutcome, error)
	IsFavorite(ctx context.Context, userID, projectID string) (bool, error)
}
