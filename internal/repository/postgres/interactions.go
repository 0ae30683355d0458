package postgres

import (
	"context"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
)

// InteractionRepository implements port.InteractionRepository using PostgreSQL.
// Toggles run as a single DELETE-or-INSERT CTE so concurrent requests for the
// same edge cannot both insert.
type InteractionRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewInteractionRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewInteractionRepository(exec pgExecutor) *InteractionRepository {
	return &InteractionRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     time.Now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (r *InteractionRepository) WithClock(clock func() time.Time) *InteractionRepository {
	if clock != nil {
		r.now = clock
	}
	return r
}

const toggleFollowStmt = `
	WITH removed AS (
		DELETE FROM social.follows
		WHERE follower_id = $1 AND following_id = $2
		RETURNING 1
	), added AS (
		INSERT INTO social.follows (follower_id, following_id, created_at)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT (follower_id, following_id) DO NOTHING
		RETURNING 1
	)
	SELECT EXISTS (SELECT 1 FROM added)`

// ToggleFollow flips the follow edge and reports the resulting state.
func (r *InteractionRepository) ToggleFollow(ctx context.Context, followerID, followingID string) (domain.ToggleOutcome, error) {
	at := r.now().UTC()

	var active bool
	row := r.exec.QueryRow(ctx, toggleFollowStmt, followerID, followingID, at)
	if err := row.Scan(&active); err != nil {
		return domain.ToggleOutcome{}, fmt.Errorf("toggle follow: %w", mapWriteError(err))
	}

	return domain.ToggleOutcome{Active: active, ChangedAt: at}, nil
}

// IsFollowing reports whether the follow edge exists.
func (r *InteractionRepository) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	const stmt = `SELECT EXISTS (SELECT 1 FROM social.follows WHERE follower_id = $1 AND following_id = $2)`

	var exists bool
	row := r.exec.QueryRow(ctx, stmt, followerID, followingID)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("follow status: %w", err)
	}

	return exists, nil
}

const toggleFavoriteStmt = `
	WITH removed AS (
		DELETE FROM social.favorites
		WHERE user_id = $1 AND project_id = $2
		RETURNING 1
	), added AS (
		INSERT INTO social.favorites (user_id, project_id, created_at)
		SELECT $1, $2, $3
		WHERE NOT EXISTS (SELECT 1 FROM removed)
		ON CONFLICT (user_id, project_id) DO NOTHING
		RETURNING 1
	)
	SELECT EXISTS (SELECT 1 FROM added)`

// ToggleFavorite flips the favorite edge and reports the resulting state.
func (r *InteractionRepository) ToggleFavorite(ctx context.Context, userID, projectID string) (domain.ToggleOutcome, error) {
	at := r.now().UTC()

	var active bool
	row := r.exec.QueryRow(ctx, toggleFavoriteStmt, userID, projectID, at)
	if err := row.Scan(&active); err != nil {
		return domain.ToggleOutcome{}, fmt.Errorf("toggle favorite: %w", mapWriteError(err))
	}

	return domain.ToggleOutcome{Active: active, ChangedAt: at}, nil
}

// IsFavorite reports whether the favorite edge exists.
func (r *InteractionRepository) IsFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	const stmt = `SELECT EXISTS (SELECT 1 FROM social.favorites WHERE user_id = $1 AND project_id = $2)`

	var exists bool
	row := r.exec.QueryRow(ctx, stmt, userID, projectID)
	if err := row.Scan(&exists); err != nil {
		return false, fmt.Errorf("favorite status: %w", err)
	}

	return exists, nil
}

var _ port.InteractionRepository = (*InteractionRepository)(nil)
