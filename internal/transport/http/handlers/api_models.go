package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
)

// ErrorResponse represents a generic error payload with trace ID for debugging.
type ErrorResponse struct {
	Error   string `json:"error"`
	TraceID string `json:"trace_id,omitempty"`
}

// NewErrorResponse creates an error response with trace ID from context
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	traceID, _ := c.Get("trace_id")
	traceIDStr, _ := traceID.(string)

	return ErrorResponse{
		Error:   errorMsg,
		TraceID: traceIDStr,
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// HealthResponse reports service status for probes.
type HealthResponse struct {
	Status    string            `json:"status"`
	StartedAt time.Time         `json:"started_at"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// ProfileResponse describes a member profile returned by the API.
type ProfileResponse struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Tagline    *string   `json:"tagline,omitempty"`
	About      *string   `json:"about,omitempty"`
	Skills     []string  `json:"skills,omitempty"`
	Location   *string   `json:"location,omitempty"`
	Visibility string    `json:"visibility"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toProfileResponse(p domain.Profile) ProfileResponse {
	return ProfileResponse{
		ID:         p.ID,
		Username:   p.Username,
		Name:       p.Name,
		Tagline:    p.Tagline,
		About:      p.About,
		Skills:     p.Skills,
		Location:   p.Location,
		Visibility: string(p.Visibility),
		CreatedAt:  p.CreatedAt,
		UpdatedAt:  p.UpdatedAt,
	}
}

// ProfileStatsResponse aggregates counters shown on a profile page.
type ProfileStatsResponse struct {
	ProfileID string `json:"profile_id"`
	Followers int    `json:"followers"`
	Following int    `json:"following"`
	Projects  int    `json:"projects"`
}

// ProfileUpdateRequest defines the payload for profile edits.
type ProfileUpdateRequest struct {
	Name       string   `json:"name" binding:"required"`
	Tagline    *string  `json:"tagline"`
	About      *string  `json:"about"`
	Skills     []string `json:"skills"`
	Location   *string  `json:"location"`
	Visibility string   `json:"visibility" binding:"omitempty,oneof=public private"`
}

// ProjectResponse describes a project returned by the API.
type ProjectResponse struct {
	ID          string    `json:"id"`
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	OwnerID     string    `json:"owner_id"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func toProjectResponse(p domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Slug:        p.Slug,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		OwnerID:     p.OwnerID,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

// ProjectCreateRequest defines the payload for creating a project.
type ProjectCreateRequest struct {
	Slug        string  `json:"slug" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
}

// ProjectUpdateRequest defines the payload for project edits.
type ProjectUpdateRequest struct {
	Name        string  `json:"name" binding:"required"`
	Description *string `json:"description"`
	Category    *string `json:"category"`
	Status      string  `json:"status" binding:"omitempty,oneof=active paused archived"`
}

// ProjectStatsResponse aggregates counters shown on a project page.
type ProjectStatsResponse struct {
	ProjectID string `json:"project_id"`
	Followers int    `json:"followers"`
	Favorites int    `json:"favorites"`
	Members   int    `json:"members"`
	OpenRoles int    `json:"open_roles"`
}

// TeamRoleResponse describes an open or filled position on a project.
type TeamRoleResponse struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	UserID *string `json:"user_id,omitempty"`
	Open   bool    `json:"open"`
}

// ToggleResponse reports the resulting state of a follow/favorite toggle.
type ToggleResponse struct {
	Active    bool      `json:"active"`
	ChangedAt time.Time `json:"changed_at"`
}

// InteractionStateResponse reports whether an edge currently exists.
type InteractionStateResponse struct {
	Active bool `json:"active"`
}

// InvitationSendRequest defines the payload for inviting a user to a project.
type InvitationSendRequest struct {
	ProjectID string  `json:"project_id" binding:"required"`
	InviteeID string  `json:"invitee_id" binding:"required"`
	RoleID    *string `json:"role_id"`
	Message   *string `json:"message"`
}

// InvitationRespondRequest defines the payload for answering an invitation.
type InvitationRespondRequest struct {
	Answer string `json:"answer" binding:"required,oneof=accepted declined"`
}

// InvitationResponse describes a team invitation returned by the API.
type InvitationResponse struct {
	ID          string     `json:"id"`
	ProjectID   string     `json:"project_id"`
	RoleID      *string    `json:"role_id,omitempty"`
	InviterID   string     `json:"inviter_id"`
	InviteeID   string     `json:"invitee_id"`
	Message     *string    `json:"message,omitempty"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func toInvitationResponse(i domain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:          i.ID,
		ProjectID:   i.ProjectID,
		RoleID:      i.RoleID,
		InviterID:   i.InviterID,
		InviteeID:   i.InviteeID,
		Message:     i.Message,
		Status:      string(i.Status),
		CreatedAt:   i.CreatedAt,
		RespondedAt: i.RespondedAt,
	}
}
