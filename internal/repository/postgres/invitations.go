package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/core/port"
	"github.com/tarasovcad/matchme-platform/internal/repository"
)

// InvitationRepository implements port.InvitationRepository using PostgreSQL.
type InvitationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewInvitationRepository constructs a repository backed by any executor that satisfies pgExecutor.
func NewInvitationRepository(exec pgExecutor) *InvitationRepository {
	return &InvitationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     time.Now,
	}
}

var invitationColumns = []string{
	"id",
	"project_id",
	"role_id",
	"inviter_id",
	"invitee_id",
	"message",
	"status",
	"created_at",
	"responded_at",
}

// Create inserts a new invitation row.
func (r *InvitationRepository) Create(ctx context.Context, invitation domain.Invitation) error {
	stmt, args, err := r.builder.
		Insert("social.invitations").
		Columns(invitationColumns...).
		Values(
			invitation.ID,
			invitation.ProjectID,
			invitation.RoleID,
			invitation.InviterID,
			invitation.InviteeID,
			invitation.Message,
			invitation.Status,
			invitation.CreatedAt,
			invitation.RespondedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert invitation sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert invitation: %w", mapWriteError(err))
	}

	return nil
}

// GetByID retrieves an invitation by identifier.
func (r *InvitationRepository) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	stmt, args, err := r.builder.
		Select(invitationColumns...).
		From("social.invitations").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select invitation sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// FindPending returns the pending invitation for a project/invitee pair, if any.
func (r *InvitationRepository) FindPending(ctx context.Context, projectID, inviteeID string) (*domain.Invitation, error) {
	stmt, args, err := r.builder.
		Select(invitationColumns...).
		From("social.invitations").
		Where(squirrel.Eq{
			"project_id": projectID,
			"invitee_id": inviteeID,
			"status":     domain.InvitationStatusPending,
		}).
		OrderBy("created_at DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build find pending invitation sql: %w", err)
	}

	return r.scanOne(ctx, stmt, args)
}

// ListForInvitee returns invitations addressed to a user, newest first.
func (r *InvitationRepository) ListForInvitee(ctx context.Context, inviteeID string, page domain.Page) ([]domain.Invitation, error) {
	stmt, args, err := r.builder.
		Select(invitationColumns...).
		From("social.invitations").
		Where(squirrel.Eq{"invitee_id": inviteeID}).
		OrderBy("created_at DESC").
		Limit(uint64(page.PerPage)).
		Offset(uint64(page.Offset())).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list invitations sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("list invitations: %w", err)
	}
	defer rows.Close()

	var invitations []domain.Invitation
	for rows.Next() {
		invitation, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		invitations = append(invitations, *invitation)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invitations: %w", err)
	}

	return invitations, nil
}

// UpdateStatus records the invitee's answer.
func (r *InvitationRepository) UpdateStatus(ctx context.Context, id string, status domain.InvitationStatus) error {
	stmt, args, err := r.builder.
		Update("social.invitations").
		Set("status", status).
		Set("responded_at", r.now().UTC()).
		Where(squirrel.Eq{"id": id, "status": domain.InvitationStatusPending}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update invitation sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update invitation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *InvitationRepository) scanOne(ctx context.Context, stmt string, args []any) (*domain.Invitation, error) {
	row := r.exec.QueryRow(ctx, stmt, args...)
	invitation, err := scanInvitation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return invitation, nil
}

func scanInvitation(row pgx.Row) (*domain.Invitation, error) {
	var invitation domain.Invitation
	if err := row.Scan(
		&invitation.ID,
		&invitation.ProjectID,
		&invitation.RoleID,
		&invitation.InviterID,
		&invitation.InviteeID,
		&invitation.Message,
		&invitation.Status,
		&invitation.CreatedAt,
		&invitation.RespondedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, pgx.ErrNoRows
		}
		return nil, fmt.Errorf("scan invitation: %w", err)
	}
	return &invitation, nil
}

var _ port.InvitationRepository = (*InvitationRepository)(nil)
