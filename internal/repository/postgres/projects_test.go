package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

func TestProjectRepository_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProjectRepository(mock)

	createdAt := time.Now().UTC()
	description := "Find your co-founder"
	category := "saas"
	project := domain.Project{
		ID:          "project-123",
		Slug:        "acme-inc",
		Name:        "Acme Inc",
		Description: &description,
		Category:    &category,
		OwnerID:     "user-123",
		Status:      domain.ProjectStatusActive,
		CreatedAt:   createdAt,
		UpdatedAt:   createdAt,
	}

	mock.ExpectExec(`INSERT INTO social\.projects`).
		WithArgs(
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
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), project); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectRepository_GetBySlugNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProjectRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM social\.projects`).
		WithArgs("missing").
		WillReturnRows(pgxmock.NewRows(projectColumns))

	if _, err := repo.GetBySlug(context.Background(), "missing"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectRepository_UpdateMissingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProjectRepository(mock)

	description := "updated"
	category := "devtools"
	project := domain.Project{
		ID:          "project-404",
		Name:        "Renamed",
		Description: &description,
		Category:    &category,
		Status:      domain.ProjectStatusActive,
		UpdatedAt:   time.Now().UTC(),
	}

	mock.ExpectExec(`UPDATE social\.projects`).
		WithArgs(project.Name, project.Description, project.Category, project.Status, project.UpdatedAt, project.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.Update(context.Background(), project); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestProjectRepository_Stats(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewProjectRepository(mock)

	mock.ExpectQuery(`SELECT`).
		WithArgs("project-123").
		WillReturnRows(pgxmock.NewRows([]string{"followers", "favorites", "members", "open_roles"}).
			AddRow(12, 4, 3, 2))

	stats, err := repo.Stats(context.Background(), "project-123")
	if err != nil {
		t.Fatalf("Stats returned error: %v", err)
	}
	if stats.Followers != 12 || stats.Favorites != 4 || stats.Members != 3 || stats.OpenRoles != 2 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
