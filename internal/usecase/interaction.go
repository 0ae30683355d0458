package usecase

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/infra/config"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

var (
	// ErrSelfInteraction indicates the actor targeted themselves.
	ErrSelfInteraction = errors.New("cannot follow or favorite yourself")
	// ErrInteractionTarget indicates the follow/favorite target does not exist.
	ErrInteractionTarget = errors.New("interaction target not found")
)

// InteractionService handles follow and favorite toggles. Both toggles share
// the interaction.toggle quota so a client cannot double its budget by
// alternating between them.
type InteractionService struct {
	interactions port.InteractionRepository
	profiles     port.ProfileRepository
	projects     port.ProjectRepository
	limiter      *Limiter
	cache        *ReadThroughCache
	events       port.EventPublisher
	ttls         config.CacheSettings
	logger       *zap.Logger
}

// NewInteractionService constructs InteractionService.
func NewInteractionService(interactions port.InteractionRepository, profiles port.ProfileRepository, projects port.ProjectRepository, limiter *Limiter, cache *ReadThroughCache, events port.EventPublisher, ttls config.CacheSettings, logger *zap.Logger) *InteractionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InteractionService{
		interactions: interactions,
		profiles:     profiles,
		projects:     projects,
		limiter:      limiter,
		cache:        cache,
		events:       events,
		ttls:         ttls,
		logger:       logger,
	}
}

// ToggleFollow flips the follow edge from the subject to followingID and
// returns the resulting state.
func (s *InteractionService) ToggleFollow(ctx context.Context, subject Subject, followingID string) (*domain.ToggleOutcome, error) {
	if subject.UserID == "" || followingID == "" {
		return nil, ErrInteractionTarget
	}
	if subject.UserID == followingID {
		return nil, ErrSelfInteraction
	}

	subject.PairTarget = followingID
	if decision := s.limiter.Check(ctx, "interaction.toggle", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	if _, err := s.profiles.GetByID(ctx, followingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInteractionTarget
		}
		return nil, fmt.Errorf("lookup follow target: %w", err)
	}

	outcome, err := s.interactions.ToggleFollow(ctx, subject.UserID, followingID)
	if err != nil {
		return nil, fmt.Errorf("toggle follow: %w", err)
	}

	s.cache.Invalidate(ctx,
		followKey(subject.UserID, followingID),
		profileStatsKey(subject.UserID),
		profileStatsKey(followingID),
	)

	s.publishFollowChanged(ctx, domain.FollowChangedEvent{
		FollowerID:  subject.UserID,
		FollowingID: followingID,
		Active:      outcome.Active,
		ChangedAt:   outcome.ChangedAt,
	})
	return &outcome, nil
}

// IsFollowing reports whether followerID currently follows followingID.
func (s *InteractionService) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	if followerID == "" || followingID == "" {
		return false, nil
	}

	active, err := cachedJSON(ctx, s.cache, followKey(followerID, followingID), s.ttls.InteractionTTL, func(ctx context.Context) (bool, error) {
		return s.interactions.IsFollowing(ctx, followerID, followingID)
	})
	if err != nil {
		return false, fmt.Errorf("check follow: %w", err)
	}
	return active, nil
}

// ToggleFavorite flips the favorite edge from the subject to projectID and
// returns the resulting state.
func (s *InteractionService) ToggleFavorite(ctx context.Context, subject Subject, projectID string) (*domain.ToggleOutcome, error) {
	if subject.UserID == "" || projectID == "" {
		return nil, ErrInteractionTarget
	}

	subject.PairTarget = projectID
	if decision := s.limiter.Check(ctx, "interaction.toggle", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInteractionTarget
		}
		return nil, fmt.Errorf("lookup favorite target: %w", err)
	}

	outcome, err := s.interactions.ToggleFavorite(ctx, subject.UserID, projectID)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}

	s.cache.Invalidate(ctx,
		favoriteKey(subject.UserID, projectID),
		projectStatsKey(projectID),
	)

	s.publishFavoriteChanged(ctx, domain.FavoriteChangedEvent{
		UserID:    subject.UserID,
		ProjectID: projectID,
		Active:    outcome.Active,
		ChangedAt: outcome.ChangedAt,
	})
	return &outcome, nil
}

// IsFavorite reports whether userID currently favorites projectID.
func (s *InteractionService) IsFavorite(ctx context.Context, userID, projectID string) (bool, error) {
	if userID == "" || projectID == "" {
		return false, nil
	}

	active, err := cachedJSON(ctx, s.cache, favoriteKey(userID, projectID), s.ttls.InteractionTTL, func(ctx context.Context) (bool, error) {
		return s.interactions.IsFavorite(ctx, userID, projectID)
	})
	if err != nil {
		return false, fmt.Errorf("check favorite: %w", err)
	}
	return active, nil
}

func (s *InteractionService) publishFollowChanged(ctx context.Context, event domain.FollowChangedEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishFollowChanged(ctx, event); err != nil {
		s.logger.Warn("publish follow changed event failed",
			zap.String("follower_id", event.FollowerID),
			zap.Error(err),
		)
	}
}

func (s *InteractionService) publishFavoriteChanged(ctx context.Context, event domain.FavoriteChangedEvent) {
	if s.events == nil {
		return
	}
	if err := s.events.PublishFavoriteChanged(ctx, event); err != nil {
		s.logger.Warn("publish favorite changed event failed",
			zap.String("user_id", event.UserID),
			zap.Error(err),
		)
	}
}
