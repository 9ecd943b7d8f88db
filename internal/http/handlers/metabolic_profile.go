package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/http/response"
	"github.com/yungbote/glucobridge-backend/internal/services"
)

type MetabolicProfileHandler struct {
	profiles services.MetabolicProfileService
}

func NewMetabolicProfileHandler(profiles services.MetabolicProfileService) *MetabolicProfileHandler {
	return &MetabolicProfileHandler{profiles: profiles}
}

// POST /api/metabolic-profile/refresh
// body: { "user_id": "...", "force_refresh": false }
func (h *MetabolicProfileHandler) Refresh(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id"`
		ForceRefresh bool   `json:"force_refresh"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	res, err := h.profiles.Refresh(c.Request.Context(), userID, req.ForceRefresh)
	if err != nil {
		if errors.Is(err, types.ErrMissingUser) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/metabolic-profile/:user_id
func (h *MetabolicProfileHandler) Get(c *gin.Context) {
	userID, err := resolveUserID(c, c.Param("user_id"))
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	profile, err := h.profiles.Get(c.Request.Context(), userID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	if profile == nil {
		response.RespondError(c, http.StatusNotFound, "profile_not_found", nil)
		return
	}
	response.RespondOK(c, gin.H{"profile": profile})
}
