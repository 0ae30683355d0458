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

// ProfileRepository implements port.ProfileRepository using PostgreSQL.
type ProfileRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewProfileRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewProfileRepository(exec pgExecutor) *ProfileRepository {
	return &ProfileRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

var profileColumns = []string{
	"id",
	"username",
	"name",
	"tagline",
	"about",
	"skills",
	"location",
	"visibility",
	"created_at",
	"updated_at",
}

// GetByUsername retrieves a profile by its unique username.
func (r *ProfileRepository) GetByUsername(ctx context.Context, username string) (*domain.Profile, error) {
	stmt, args, err := r.builder.
		Select(profileColumns...).
		From("social.profiles").
		Where(squirrel.Eq{"username": username}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// GetByID retrieves a profile by identifier.
func (r *ProfileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	stmt, args, err := r.builder.
		Select(profileColumns...).
		From("social.profiles").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select profile sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// List returns public profiles ordered by creation time, newest first.
func (r *ProfileRepository) List(ctx context.Context, filter domain.ProfileFilter, page domain.Page) ([]domain.Profile, error) {
	query := r.builder.
		Select(profileColumns...).
		From("social.profiles").
		Where(squirrel.Eq{"visibility": domain.ProfileVisibilityPublic}).
		OrderBy("created_at DESC").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset()))

	if filter.Skill != "" {
		query = query.Where("? = ANY(skills)", filter.Skill)
	}
	if filter.Location != "" {
		query = query.Where(squirrel.Eq{"location": filter.Location})
	}

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list profiles sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	defer rows.Close()

	var profiles []domain.Profile
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, *profile)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate profiles: %w", err)
	}

	return profiles, nil
}

// Update persists mutable profile fields.
func (r *ProfileRepository) Update(ctx context.Context, profile domain.Profile) error {
	stmt, args, err := r.builder.
		Update("social.profiles").
		Set("name", profile.Name).
		Set("tagline", profile.Tagline).
		Set("about", profile.About).
		Set("skills", profile.Skills).
		Set("location", profile.Location).
		Set("visibility", profile.Visibility).
		Set("updated_at", profile.UpdatedAt).
		Where(squirrel.Eq{"id": profile.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update profile sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update profile: %w", mapWriteError(err))
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Stats aggregates follower/following/project counters for a profile.
func (r *ProfileRepository) Stats(ctx context.Context, profileID string) (*domain.ProfileStats, error) {
	const stmt = `
		SELECT
			(SELECT COUNT(*) FROM social.follows WHERE following_id = $1),
			(SELECT COUNT(*) FROM social.follows WHERE follower_id = $1),
			(SELECT COUNT(*) FROM social.projects WHERE owner_id = $1)`

	stats := domain.ProfileStats{ProfileID: profileID}
	row := r.exec.QueryRow(ctx, stmt, profileID)
	if err := row.Scan(&stats.Followers, &stats.Following, &stats.Projects); err != nil {
		return nil, fmt.Errorf("profile stats: %w", err)
	}

	return &stats, nil
}

func (r *ProfileRepository) scanOne(ctx context.Context, stmt string, args []any) (*domain.Profile, error) {
	row := r.exec.QueryRow(ctx, stmt, args...)
	profile, err := scanProfile(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (*domain.Profile, error) {
	var profile domain.Profile
	if err := row.Scan(
		&profile.ID,
		&profile.Username,
		&profile.Name,
		&profile.Tagline,
		&profile.About,
		&profile.Skills,
		&profile.Location,
		&profile.Visibility,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan profile: %w", err)
	}
	return &profile, nil
}

var _ port.ProfileRepository = (*ProfileRepository)(nil)
