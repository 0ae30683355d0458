package port

import (
	"context"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
)

// ProjectRepository persists and queries projects and their team roles.
type ProjectRepository interface {
	Create(ctx context.Context, project domain.Project) error
	GetBySlug(ctx context.Context, slug string) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, filter domain.ProjectFilter, page domain.Page) ([]domain.Project, error)
	Update(ctx context.Context, project domain.Project) error
	Delete(ctx context.Context, id string) error
	ListRoles(ctx context.Context, projectID string) ([]domain.TeamRole, error)
	Stats(ctx context.Context, projectID string) (*domain.ProjectStats, error)
}
