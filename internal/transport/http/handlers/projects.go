package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

// ProjectHandler serves project CRUD and aggregate endpoints.
type ProjectHandler struct {
	projects *usecase.ProjectService
}

// NewProjectHandler builds a ProjectHandler.
func NewProjectHandler(projects *usecase.ProjectService) *ProjectHandler {
	return &ProjectHandler{projects: projects}
}

// RegisterRoutes wires project endpoints onto the group.
func (h *ProjectHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.GET("/:slug", h.Get)
	r.GET("/:slug/stats", h.Stats)
	r.GET("/:slug/roles", h.Roles)
	r.POST("", middleware.RequireUser(), h.Create)
	r.PUT("/:slug", middleware.RequireUser(), h.Update)
	r.DELETE("/:slug", middleware.RequireUser(), h.Delete)
}

var projectErrorCases = []ErrorCase{
	{Err: usecase.ErrProjectNotFound, Status: http.StatusNotFound, Message: "project not found"},
	{Err: usecase.ErrProjectExists, Status: http.StatusConflict, Message: "project slug already exists"},
	{Err: usecase.ErrNotProjectOwner, Status: http.StatusForbidden, Message: "project does not belong to you"},
}

// List returns a page of projects, optionally filtered by category or status.
func (h *ProjectHandler) List(c *gin.Context) {
	filter := domain.ProjectFilter{
		Category: c.Query("category"),
		Status:   domain.ProjectStatus(c.Query("status")),
	}

	projects, err := h.projects.ListProjects(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to list projects")
		return
	}

	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, toProjectResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"projects": out})
}

// Get returns a single project by slug.
func (h *ProjectHandler) Get(c *gin.Context) {
	project, err := h.projects.GetProject(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to load project")
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project))
}

// Stats returns follower/favorite/member counters for a project.
func (h *ProjectHandler) Stats(c *gin.Context) {
	stats, err := h.projects.GetProjectStats(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to load project stats")
		return
	}

	c.JSON(http.StatusOK, ProjectStatsResponse{
		ProjectID: stats.ProjectID,
		Followers: stats.Followers,
		Favorites: stats.Favorites,
		Members:   stats.Members,
		OpenRoles: stats.OpenRoles,
	})
}

// Roles returns the team roles declared on a project.
func (h *ProjectHandler) Roles(c *gin.Context) {
	roles, err := h.projects.ListRoles(c.Request.Context(), c.Param("slug"))
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to list project roles")
		return
	}

	out := make([]TeamRoleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, TeamRoleResponse{
			ID:     role.ID,
			Name:   role.Name,
			UserID: role.UserID,
			Open:   role.IsOpen(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"roles": out})
}

// Create registers a new project owned by the caller.
func (h *ProjectHandler) Create(c *gin.Context) {
	var req ProjectCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid project payload"))
		return
	}

	project, err := h.projects.CreateProject(c.Request.Context(), subjectFromRequest(c), usecase.CreateProjectInput{
		Slug:        req.Slug,
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
	})
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, toProjectResponse(*project))
}

// Update applies edits to a project owned by the caller.
func (h *ProjectHandler) Update(c *gin.Context) {
	var req ProjectUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid project payload"))
		return
	}

	project, err := h.projects.UpdateProject(c.Request.Context(), subjectFromRequest(c), c.Param("slug"), usecase.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Status:      domain.ProjectStatus(req.Status),
	})
	if err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, toProjectResponse(*project))
}

// Delete removes a project owned by the caller.
func (h *ProjectHandler) Delete(c *gin.Context) {
	if err := h.projects.DeleteProject(c.Request.Context(), subjectFromRequest(c), c.Param("slug")); err != nil {
		RespondWithMappedError(c, err, projectErrorCases, http.StatusInternalServerError, "failed to delete project")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "project deleted"})
}
