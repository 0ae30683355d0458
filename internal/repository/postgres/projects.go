package postgres

import (
	"context"
	"errors"
	"fmt"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

// ProjectRepository implements port.ProjectRepository using PostgreSQL.
type ProjectRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProjectRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewProjectRepository(exec pgExecutor) *ProjectRepository {
	return &ProjectRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var projectColumns = []string{
	"id",
	"slug",
	"name",
	"description",
	"category",
	"owner_id",
	"status",
	"created_at",
	"updated_at",
}

// Create inserts a new project row.
func (r *ProjectRepository) Create(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.
		Insert("social.projects").
		Columns(projectColumns...).
		Values(
			project.ID,
			project.Slug,
			project.Name,
			project.Description,
			project.Category,
			project.OwnerID,
			project.Status,
			project.CreatedAt,
			project.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert project sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert project: %w", mapWriteError(err))
	}

	return nil
}

// GetBySlug retrieves a project by its URL slug.
func (r *ProjectRepository) GetBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	stmt, args, err := r.builder.
		Select(projectColumns...).
		From("social.projects").
		Where(squirrel.Eq{"slug": slug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select project sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return project, nil
}

// GetByID retrieves a project by its identifier.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	stmt, args, err := r.builder.
		Select(projectColumns...).
		From("social.projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select project sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return project, nil
}

// List returns projects ordered by creation time, newest first.
func (r *ProjectRepository) List(ctx context.Context, filter domain.ProjectFilter, page domain.Page) ([]domain.Project, error) {
	query := r.builder.
		Select(projectColumns...).
		From("social.projects").
		OrderBy("created_at DESC").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset()))

	if filter.Category != "" {
		query = query.Where(squirrel.Eq{"category": filter.Category})
	}
	if filter.Status != "" {
		query = query.Where(squirrel.Eq{"status": filter.Status})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list projects sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, err
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate projects: %w", err)
	}

	return projects, nil
}

// Update persists mutable project fields.
func (r *ProjectRepository) Update(ctx context.Context, project domain.Project) error {
	stmt, args, err := r.builder.
		Update("social.projects").
		Set("name", project.Name).
		Set("description", project.Description).
		Set("category", project.Category).
		Set("status", project.Status).
		Set("updated_at", project.UpdatedAt).
		Where(squirrel.Eq{"id": project.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update project sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update project: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Delete removes a project row.
func (r *ProjectRepository) Delete(ctx context.Context, id string) error {
	stmt, args, err := r.builder.
		Delete("social.projects").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete project sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// ListRoles returns the project's team roles, open roles first.
func (r *ProjectRepository) ListRoles(ctx context.Context, projectID string) ([]domain.TeamRole, error) {
	stmt, args, err := r.builder.
		Select("id", "project_id", "name", "user_id", "created_at").
		From("social.team_roles").
		Where(squirrel.Eq{"project_id": projectID}).
		OrderBy("user_id NULLS FIRST", "created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list roles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list team roles: %w", err)
	}
	defer rows.Close()

	var roles []domain.TeamRole
	for rows.Next() {
		var role domain.TeamRole
		if err := rows.Scan(&role.ID, &role.ProjectID, &role.Name, &role.UserID, &role.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan team role: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate team roles: %w", err)
	}

	return roles, nil
}

// Stats aggregates follower/favorite/member counters for a project.
func (r *ProjectRepository) Stats(ctx context.Context, projectID string) (*domain.ProjectStats, error) {
	const stmt = `
		SELECT
			(SELECT COUNT(*) FROM social.project_follows WHERE project_id = $1),
			(SELECT COUNT(*) FROM social.favorites WHERE project_id = $1),
			(SELECT COUNT(*) FROM social.team_roles WHERE project_id = $1 AND user_id IS NOT NULL),
			(SELECT COUNT(*) FROM social.team_roles WHERE project_id = $1 AND user_id IS NULL)`

	stats := domain.ProjectStats{ProjectID: projectID}
	row := r.exec.QueryRow(ctx, stmt, projectID)
	if err := row.Scan(&stats.Followers, &stats.Favorites, &stats.Members, &stats.OpenRoles); err != nil {
		return nil, fmt.Errorf("project stats: %w", err)
	}

	return &stats, nil
}

func scanProject(row pgx.Row) (*domain.Project, error) {
	var project domain.Project
	if err := row.Scan(
		&project.ID,
		&project.Slug,
		&project.Name,
		&project.Description,
		&project.Category,
		&project.OwnerID,
		&project.Status,
		&project.CreatedAt,
		&project.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan project: %w", err)
	}
	return &project, nil
}

var _ port.ProjectRepository = (*ProjectRepository)(nil)
