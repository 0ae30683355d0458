package port

import (
	"context"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
)

// ProfileRepository persists and queries member profiles.
type ProfileRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Profile, error)
	GetByID(ctx context.Context, id string) (*domain.Profile, error)
	List(ctx context.Context, filter domain.ProfileFilter, page domain.Page) ([]domain.Profile, error)
	Update(ctx context.Context, profile domain.Profile) error
	Stats(ctx context.Context, profileID string) (*domain.ProfileStats, error)
}
