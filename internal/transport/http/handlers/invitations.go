package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

// InvitationHandler serves team invitation endpoints.
type InvitationHandler struct {
	invitations *usecase.InvitationService
}

// NewInvitationHandler builds an InvitationHandler.
func NewInvitationHandler(invitations *usecase.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitations: invitations}
}

// RegisterRoutes wires invitation endpoints onto the group. Every route
// requires a resolved identity.
func (h *InvitationHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.Use(middleware.RequireUser())
	r.GET("", h.List)
	r.POST("", h.Send)
	r.POST("/:id/response", h.Respond)
}

var invitationErrorCases = []ErrorCase{
	{Err: usecase.ErrInvitationNotFound, Status: http.StatusNotFound, Message: "invitation not found"},
	{Err: usecase.ErrInvitationPending, Status: http.StatusConflict, Message: "an invitation is already pending for this user"},
	{Err: usecase.ErrInvitationClosed, Status: http.StatusConflict, Message: "invitation has already been answered"},
	{Err: usecase.ErrNotInvitee, Status: http.StatusForbidden, Message: "invitation is not addressed to you"},
	{Err: usecase.ErrInvitationAnswer, Status: http.StatusBadRequest, Message: "answer must be accepted or declined"},
	{Err: usecase.ErrProjectNotFound, Status: http.StatusNotFound, Message: "project not found"},
	{Err: usecase.ErrNotProjectOwner, Status: http.StatusForbidden, Message: "only the project owner can invite"},
}

// List returns the invitations addressed to the caller.
func (h *InvitationHandler) List(c *gin.Context) {
	invitations, err := h.invitations.ListInvitations(c.Request.Context(), middleware.CurrentUserID(c), pageFromQuery(c))
	if err != nil {
		RespondWithMappedError(c, err, invitationErrorCases, http.StatusInternalServerError, "failed to list invitations")
		return
	}

	out := make([]InvitationResponse, 0, len(invitations))
	for _, inv := range invitations {
		out = append(out, toInvitationResponse(inv))
	}
	c.JSON(http.StatusOK, gin.H{"invitations": out})
}

// Send invites a user to join one of the caller's projects.
func (h *InvitationHandler) Send(c *gin.Context) {
	var req InvitationSendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid invitation payload"))
		return
	}

	invitation, err := h.invitations.SendInvitation(c.Request.Context(), subjectFromRequest(c), usecase.SendInvitationInput{
		ProjectID: req.ProjectID,
		InviteeID: req.InviteeID,
		RoleID:    req.RoleID,
		Message:   req.Message,
	})
	if err != nil {
		RespondWithMappedError(c, err, invitationErrorCases, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(*invitation))
}

// Respond records the caller's answer to an invitation.
func (h *InvitationHandler) Respond(c *gin.Context) {
	var req InvitationRespondRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid response payload"))
		return
	}

	invitation, err := h.invitations.RespondInvitation(c.Request.Context(), subjectFromRequest(c), c.Param("id"), domain.InvitationStatus(req.Answer))
	if err != nil {
		RespondWithMappedError(c, err, invitationErrorCases, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, toInvitationResponse(*invitation))
}
