package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/http/response"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/services"
)

type MealHandler struct {
	analyze services.AnalyzeService
}

func NewMealHandler(analyze services.AnalyzeService) *MealHandler {
	return &MealHandler{analyze: analyze}
}

type analyzeRequest struct {
	UserID    string               `json:"user_id"`
	MealDraft prediction.MealDraft `json:"meal_draft"`
}

// POST /api/meals/analyze
// body: { "user_id": "...", "meal_draft": { "name": "...", "logged_at": "RFC3339", "items": [...] } }
func (h *MealHandler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	userID, err := resolveUserID(c, req.UserID)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	resp, err := h.analyze.Analyze(c.Request.Context(), userID, req.MealDraft)
	if err != nil {
		if errors.Is(err, types.ErrMissingUser) || errors.Is(err, types.ErrInvalidMeal) {
			response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
			return
		}
		response.RespondAPIError(c, err)
		return
	}
	c.Header("X-Analysis-Source", resp.Source)
	response.RespondOK(c, resp)
}
