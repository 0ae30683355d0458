package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

// InteractionHandler serves follow and favorite toggles.
type InteractionHandler struct {
	interactions *usecase.InteractionService
}

// NewInteractionHandler builds an InteractionHandler.
func NewInteractionHandler(interactions *usecase.InteractionService) *InteractionHandler {
	return &InteractionHandler{interactions: interactions}
}

// RegisterRoutes wires interaction endpoints onto the group. Every route
// requires a resolved identity.
func (h *InteractionHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireUser())
	r.POST("/follows/:userID", h.ToggleFollow)
	r.GET("/follows/:userID", h.FollowState)
	r.POST("/favorites/:projectID", h.ToggleFavorite)
	r.GET("/favorites/:projectID", h.FavoriteState)
}

var interactionErrorCases = []ErrorCase{
	{Err: usecase.ErrSelfInteraction, Status: http.StatusBadRequest, Message: "cannot follow or favorite yourself"},
	{Err: usecase.ErrInteractionTarget, Status: http.StatusNotFound, Message: "target not found"},
}

// ToggleFollow flips the follow edge from the caller to the target user.
func (h *InteractionHandler) ToggleFollow(c *gin.Context) {
	outcome, err := h.interactions.ToggleFollow(c.Request.Context(), subjectFromRequest(c), c.Param("userID"))
	if err != nil {
		RespondWithMappedError(c, err, interactionErrorCases, http.StatusInternalServerError, "failed to toggle follow")
		return
	}

	c.JSON(http.StatusOK, ToggleResponse{Active: outcome.Active, ChangedAt: outcome.ChangedAt})
}

// FollowState reports whether the caller follows the target user.
func (h *InteractionHandler) FollowState(c *gin.Context) {
	active, err := h.interactions.IsFollowing(c.Request.Context(), middleware.CurrentUserID(c), c.Param("userID"))
	if err != nil {
		RespondWithMappedError(c, err, interactionErrorCases, http.StatusInternalServerError, "failed to check follow")
		return
	}

	c.JSON(http.StatusOK, InteractionStateResponse{Active: active})
}

// ToggleFavorite flips the favorite edge from the caller to the project.
func (h *InteractionHandler) ToggleFavorite(c *gin.Context) {
	outcome, err := h.interactions.ToggleFavorite(c.Request.Context(), subjectFromRequest(c), c.Param("projectID"))
	if err != nil {
		RespondWithMappedError(c, err, interactionErrorCases, http.StatusInternalServerError, "failed to toggle favorite")
		return
	}

	c.JSON(http.StatusOK, ToggleResponse{Active: outcome.Active, ChangedAt: outcome.ChangedAt})
}

// FavoriteState reports whether the caller favorites the project.
func (h *InteractionHandler) FavoriteState(c *gin.Context) {
	active, err := h.interactions.IsFavorite(c.Request.Context(), middleware.CurrentUserID(c), c.Param("projectID"))
	if err != nil {
		RespondWithMappedError(c, err, interactionErrorCases, http.StatusInternalServerError, "failed to check favorite")
		return
	}

	c.JSON(http.StatusOK, InteractionStateResponse{Active: active})
}
