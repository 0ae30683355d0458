package postgres

import "github.com/jackc/pgx/v5/pgxpool"

// Repositories groups concrete PostgreSQL repository implementations.
type Repositories struct {
	Profiles     *ProfileRepository
	Projects     *ProjectRepository
	Interactions *InteractionRepository
	Invitations  *InvitationRepository
}

// NewRepositories wires all repositories backed by the provided pool.
func NewRepositories(pool *pgxpool.Pool) *Repositories {
	return &Repositories{
		Profiles:     NewProfileRepository(pool),
		Projects:     NewProjectRepository(pool),
		Interactions: NewInteractionRepository(pool),
		Invitations:  NewInvitationRepository(pool),
	}
}
