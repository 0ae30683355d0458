package usecase

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/infra/config"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

var (
	// ErrProjectNotFound indicates no project matches the request.
	ErrProjectNotFound = errors.New("project not found")
	// ErrProjectExists indicates the slug is already taken.
	ErrProjectExists = errors.New("project slug already exists")
	// ErrNotProjectOwner indicates the actor does not own the project.
	ErrNotProjectOwner = errors.New("project does not belong to actor")
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

const maxSlugLength = 80

// CreateProjectInput captures the payload for creating a project.
type CreateProjectInput struct {
	Slug        string
	Name        string
	Description *string
	Category    *string
}

// UpdateProjectInput captures the editable project fields.
type UpdateProjectInput struct {
	Name        string
	Description *string
	Category    *string
	Status      domain.ProjectStatus
}

// ProjectService handles project lifecycle operations.
type ProjectService struct {
	projects port.ProjectRepository
	limiter  *Limiter
	cache    *ReadThroughCache
	events   port.EventPublisher
	ttls     config.CacheSettings
	logger   *zap.Logger
	now      func() time.Time
}

// NewProjectService constructs ProjectService.
func NewProjectService(projects port.ProjectRepository, limiter *Limiter, cache *ReadThroughCache, events port.EventPublisher, ttls config.CacheSettings, logger *zap.Logger) *ProjectService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProjectService{
		projects: projects,
		limiter:  limiter,
		cache:    cache,
		events:   events,
		ttls:     ttls,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the clock, primarily for deterministic testing.
func (s *ProjectService) WithClock(now func() time.Time) *ProjectService {
	if now != nil {
		s.now = now
	}
	return s
}

// CreateProject registers a new project owned by the subject.
func (s *ProjectService) CreateProject(ctx context.Context, subject Subject, input CreateProjectInput) (*domain.Project, error) {
	if subject.UserID == "" {
		return nil, ErrNotProjectOwner
	}
	slug := strings.ToLower(strings.TrimSpace(input.Slug))
	if err := validateSlug(slug); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}

	if decision := s.limiter.Check(ctx, "project.create", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	now := s.now().UTC()
	project := domain.Project{
		ID:          uuid.NewString(),
		Slug:        slug,
		Name:        name,
		Description: input.Description,
		Category:    input.Category,
		OwnerID:     subject.UserID,
		Status:      domain.ProjectStatusActive,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.projects.Create(ctx, project); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, ErrProjectExists
		}
		return nil, fmt.Errorf("create project: %w", err)
	}

	s.publishProjectChanged(ctx, project, "created")
	return &project, nil
}

// GetProject returns the project behind slug.
func (s *ProjectService) GetProject(ctx context.Context, slug string) (*domain.Project, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProjectNotFound
	}

	project, err := cachedJSON(ctx, s.cache, projectKey(slug), s.ttls.ProjectTTL, func(ctx context.Context) (*domain.Project, error) {
		return s.projects.GetBySlug(ctx, slug)
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("lookup project: %w", err)
	}
	return project, nil
}

// ListProjects returns a page of projects. Only the unfiltered listing is
// cached.
func (s *ProjectService) ListProjects(ctx context.Context, filter domain.ProjectFilter, page domain.Page) ([]domain.Project, error) {
	page = normalizePage(page)

	if !filter.IsZero() {
		projects, err := s.projects.List(ctx, filter, page)
		if err != nil {
			return nil, fmt.Errorf("list projects: %w", err)
		}
		return projects, nil
	}

	projects, err := cachedJSON(ctx, s.cache, projectPageKey(page.Number, page.PerPage), s.ttls.ListingTTL, func(ctx context.Context) ([]domain.Project, error) {
		return s.projects.List(ctx, filter, page)
	})
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProjectStats returns the aggregate counters for the project behind slug.
func (s *ProjectService) GetProjectStats(ctx context.Context, slug string) (*domain.ProjectStats, error) {
	project, err := s.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}

	stats, err := cachedJSON(ctx, s.cache, projectStatsKey(project.ID), s.ttls.StatsTTL, func(ctx context.Context) (*domain.ProjectStats, error) {
		return s.projects.Stats(ctx, project.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("load project stats: %w", err)
	}
	return stats, nil
}

// ListRoles returns the team roles declared on the project behind slug.
func (s *ProjectService) ListRoles(ctx context.Context, slug string) ([]domain.TeamRole, error) {
	project, err := s.GetProject(ctx, slug)
	if err != nil {
		return nil, err
	}

	roles, err := cachedJSON(ctx, s.cache, projectRolesKey(project.ID), s.ttls.ProjectTTL, func(ctx context.Context) ([]domain.TeamRole, error) {
		return s.projects.ListRoles(ctx, project.ID)
	})
	if err != nil {
		return nil, fmt.Errorf("list project roles: %w", err)
	}
	return roles, nil
}

// UpdateProject applies the edit after verifying ownership. Cached entries
// for the project are invalidated only after the row is written.
func (s *ProjectService) UpdateProject(ctx context.Context, subject Subject, slug string, input UpdateProjectInput) (*domain.Project, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	switch input.Status {
	case "", domain.ProjectStatusActive, domain.ProjectStatusPaused, domain.ProjectStatusArchived:
	default:
		return nil, fmt.Errorf("status %q is not valid", input.Status)
	}

	if decision := s.limiter.Check(ctx, "project.update", subject); !decision.Allowed {
		return nil, &ThrottledError{Decision: decision}
	}

	project, err := s.ownedProject(ctx, subject.UserID, slug)
	if err != nil {
		return nil, err
	}

	updated := *project
	updated.Name = name
	updated.Description = input.Description
	updated.Category = input.Category
	if input.Status != "" {
		updated.Status = input.Status
	}
	updated.UpdatedAt = s.now().UTC()

	if err := s.projects.Update(ctx, updated); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("update project: %w", err)
	}

	s.cache.Invalidate(ctx, projectKey(updated.Slug), projectStatsKey(updated.ID), projectRolesKey(updated.ID))
	s.publishProjectChanged(ctx, updated, "updated")
	return &updated, nil
}

// DeleteProject removes the project after verifying ownership.
func (s *ProjectService) DeleteProject(ctx context.Context, subject Subject, slug string) error {
	if decision := s.limiter.Check(ctx, "project.delete", subject); !decision.Allowed {
		return &ThrottledError{Decision: decision}
	}

	project, err := s.ownedProject(ctx, subject.UserID, slug)
	if err != nil {
		return err
	}

	if err := s.projects.Delete(ctx, project.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrProjectNotFound
		}
		return fmt.Errorf("delete project: %w", err)
	}

	s.cache.Invalidate(ctx, projectKey(project.Slug), projectStatsKey(project.ID), projectRolesKey(project.ID))
	s.publishProjectChanged(ctx, *project, "deleted")
	return nil
}

// ownedProject loads the project and enforces ownership. The lookup goes
// straight to the repository so a stale cache entry cannot hide a transfer.
func (s *ProjectService) ownedProject(ctx context.Context, actorID, slug string) (*domain.Project, error) {
	if actorID == "" {
		return nil, ErrNotProjectOwner
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProjectNotFound
	}

	project, err := s.projects.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, fmt.Errorf("lookup project: %w", err)
	}
	if project.OwnerID != actorID {
		return nil, ErrNotProjectOwner
	}
	return project, nil
}

func (s *ProjectService) publishProjectChanged(ctx context.Context, project domain.Project, change string) {
	if s.events == nil {
		return
	}

	event := domain.ProjectChangedEvent{
		ProjectID: project.ID,
		Slug:      project.Slug,
		OwnerID:   project.OwnerID,
		Change:    change,
		ChangedAt: s.now().UTC(),
	}
	if err := s.events.PublishProjectChanged(ctx, event); err != nil {
		s.logger.Warn("publish project changed event failed",
			zap.String("project_id", project.ID),
			zap.String("change", change),
			zap.Error(err),
		)
	}
}

func validateSlug(slug string) error {
	if slug == "" {
		return fmt.Errorf("slug is required")
	}
	if len(slug) > maxSlugLength {
		return fmt.Errorf("slug exceeds %d characters", maxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return fmt.Errorf("slug must be lowercase letters, digits and hyphens")
	}
	return nil
}
