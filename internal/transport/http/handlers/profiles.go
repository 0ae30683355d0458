package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/tarasovcad/matchme-platform/internal/core/domain"
	"github.com/tarasovcad/matchme-platform/internal/transport/http/middleware"
	"github.com/tarasovcad/matchme-platform/internal/usecase"
)

// ProfileHandler serves profile reads and edits.
type ProfileHandler struct {
	profiles *usecase.ProfileService
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(profiles *usecase.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// RegisterRoutes wires profile endpoints onto the group.
func (h *ProfileHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("", h.List)
	r.GET("/:username", h.Get)
	r.GET("/:username/stats", h.Stats)
	r.PUT("/me", middleware.RequireUser(), h.UpdateMe)
}

var profileErrorCases = []ErrorCase{
	{Err: usecase.ErrProfileNotFound, Status: http.StatusNotFound, Message: "profile not found"},
	{Err: usecase.ErrProfileForbidden, Status: http.StatusForbidden, Message: "profile does not belong to you"},
}

// List returns a page of public profiles, optionally filtered by skill or location.
func (h *ProfileHandler) List(c *gin.Context) {
	filter := domain.ProfileFilter{
		Skill:    strings.TrimSpace(c.Query("skill")),
		Location: strings.TrimSpace(c.Query("location")),
	}

	profiles, err := h.profiles.ListProfiles(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		RespondWithMappedError(c, err, profileErrorCases, http.StatusInternalServerError, "failed to list profiles")
		return
	}

	out := make([]ProfileResponse, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, toProfileResponse(p))
	}
	c.JSON(http.StatusOK, gin.H{"profiles": out})
}

// Get returns a single profile by username.
func (h *ProfileHandler) Get(c *gin.Context) {
	viewerID := middleware.CurrentUserID(c)
	username := c.Param("username")

	profile, err := h.profiles.GetProfile(c.Request.Context(), viewerID, username)
	if err != nil {
		RespondWithMappedError(c, err, profileErrorCases, http.StatusInternalServerError, "failed to load profile")
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(*profile))
}

// Stats returns follower/following/project counters for a profile.
func (h *ProfileHandler) Stats(c *gin.Context) {
	viewerID := middleware.CurrentUserID(c)

	profile, err := h.profiles.GetProfile(c.Request.Context(), viewerID, c.Param("username"))
	if err != nil {
		RespondWithMappedError(c, err, profileErrorCases, http.StatusInternalServerError, "failed to load profile")
		return
	}

	stats, err := h.profiles.GetProfileStats(c.Request.Context(), profile.ID)
	if err != nil {
		RespondWithMappedError(c, err, profileErrorCases, http.StatusInternalServerError, "failed to load profile stats")
		return
	}

	c.JSON(http.StatusOK, ProfileStatsResponse{
		ProfileID: stats.ProfileID,
		Followers: stats.Followers,
		Following: stats.Following,
		Projects:  stats.Projects,
	})
}

// UpdateMe applies profile edits for the authenticated user.
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var req ProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "invalid profile payload"))
		return
	}

	subject := subjectFromRequest(c)
	input := usecase.UpdateProfileInput{
		Name:       req.Name,
		Tagline:    req.Tagline,
		About:      req.About,
		Skills:     req.Skills,
		Location:   req.Location,
		Visibility: domain.ProfileVisibility(req.Visibility),
	}

	profile, err := h.profiles.UpdateProfile(c.Request.Context(), subject, input)
	if err != nil {
		RespondWithMappedError(c, err, profileErrorCases, http.StatusBadRequest, err.Error())
		return
	}

	c.JSON(http.StatusOK, toProfileResponse(*profile))
}

func subjectFromRequest(c *gin.Context) usecase.Subject {
	return usecase.Subject{
		UserID: middleware.CurrentUserID(c),
		IP:     c.ClientIP(),
	}
}

func pageFromQuery(c *gin.Context) domain.Page {
	page := domain.Page{Number: 1, PerPage: 20}
	if raw := c.Query("page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.Number = n
		}
	}
	if raw := c.Query("per_page"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			page.PerPage = n
		}
	}
	return page
}
