package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	types "github.com/yungbote/glucobridge-backend/internal/domain/glucose"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction"
	"github.com/yungbote/glucobridge-backend/internal/modules/prediction/explain"
	"github.com/yungbote/glucobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/glucobridge-backend/internal/services"
)

type stubAnalyze struct {
	gotUser  uuid.UUID
	gotDraft prediction.MealDraft
}

func (s *stubAnalyze) Analyze(_ context.Context, userID uuid.UUID, d prediction.MealDraft) (*services.AnalyzeResponse, error) {
	s.gotUser, s.gotDraft = userID, d
	return &services.AnalyzeResponse{
		Drivers: []explain.Driver{{Text: "A large carb load.", ReasonCode: prediction.ReasonHighNetCarbs}},
		Source:  "computed",
	}, nil
}

type stubProfiles struct {
	services.MetabolicProfileService
	profile *types.UserMetabolicProfile
	err     error
	force   bool
}

func (s *stubProfiles) Refresh(_ context.Context, userID uuid.UUID, force bool) (*services.ProfileRefreshResult, error) {
	s.force = force
	if s.err != nil {
		return nil, s.err
	}
	return &services.ProfileRefreshResult{Profile: &types.UserMetabolicProfile{UserID: userID}, Cached: !force}, nil
}

func (s *stubProfiles) Get(context.Context, uuid.UUID) (*types.UserMetabolicProfile, error) {
	return s.profile, s.err
}

func newTestRouter(subject string, meal *MealHandler, prof *MetabolicProfileHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if subject != "" {
		r.Use(func(c *gin.Context) {
			c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), subject))
			c.Next()
		})
	}
	if meal != nil {
		r.POST("/api/meals/analyze", meal.Analyze)
	}
	if prof != nil {
		r.POST("/api/metabolic-profile/refresh", prof.Refresh)
		r.GET("/api/metabolic-profile/:user_id", prof.Get)
	}
	return r
}

func do(r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var env struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.NotEmpty(t, env.Error.Message)
	return env.Error.Code
}

func TestMealHandler_Analyze(t *testing.T) {
	stub := &stubAnalyze{}
	r := newTestRouter("", NewMealHandler(stub), nil)
	user := uuid.New()

	rec := do(r, http.MethodPost, "/api/meals/analyze", gin.H{
		"user_id": user.String(),
		"meal_draft": gin.H{
			"name":      "Rice bowl",
			"logged_at": "2026-03-10T19:00:00Z",
			"items": []gin.H{{
				"display_name": "rice",
				"nutrients":    gin.H{"carbs_g": 80, "fibre_g": 1},
			}},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, user, stub.gotUser)
	assert.Equal(t, "Rice bowl", stub.gotDraft.Name)
	require.Len(t, stub.gotDraft.Items, 1)
	assert.Equal(t, 80.0, stub.gotDraft.Items[0].Nutrients.CarbsG)
	assert.Equal(t, "computed", rec.Header().Get("X-Analysis-Source"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "drivers")
	assert.Contains(t, body, "adjustment_tips")
	assert.Contains(t, body, "debug")
	assert.NotContains(t, body, "Source")
}

func TestMealHandler_AnalyzeRejects(t *testing.T) {
	r := newTestRouter("", NewMealHandler(&stubAnalyze{}), nil)

	rec := do(r, http.MethodPost, "/api/meals/analyze", gin.H{"meal_draft": gin.H{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "missing_user_id", errorCode(t, rec))

	rec = do(r, http.MethodPost, "/api/meals/analyze", gin.H{"user_id": "nope"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_user_id", errorCode(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/api/meals/analyze", bytes.NewBufferString("{"))
	req.Header.Set("Content-Type", "application/json")
	raw := httptest.NewRecorder()
	r.ServeHTTP(raw, req)
	assert.Equal(t, http.StatusBadRequest, raw.Code)
	assert.Equal(t, "invalid_request", errorCode(t, raw))
}

func TestMealHandler_TokenSubjectWins(t *testing.T) {
	subject := uuid.New()
	stub := &stubAnalyze{}
	r := newTestRouter(subject.String(), NewMealHandler(stub), nil)

	rec := do(r, http.MethodPost, "/api/meals/analyze", gin.H{"meal_draft": gin.H{"name": "Toast"}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, subject, stub.gotUser)

	rec = do(r, http.MethodPost, "/api/meals/analyze", gin.H{"user_id": uuid.NewString()})
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "forbidden", errorCode(t, rec))
}

func TestMetabolicProfileHandler(t *testing.T) {
	stub := &stubProfiles{}
	r := newTestRouter("", nil, NewMetabolicProfileHandler(stub))
	user := uuid.New()

	rec := do(r, http.MethodPost, "/api/metabolic-profile/refresh", gin.H{"user_id": user.String(), "force_refresh": true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, stub.force)
	var res struct {
		Cached  bool                        `json:"cached"`
		Profile *types.UserMetabolicProfile `json:"profile"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.False(t, res.Cached)
	require.NotNil(t, res.Profile)
	assert.Equal(t, user, res.Profile.UserID)

	rec = do(r, http.MethodGet, "/api/metabolic-profile/"+user.String(), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "profile_not_found", errorCode(t, rec))

	stub.profile = &types.UserMetabolicProfile{UserID: user}
	rec = do(r, http.MethodGet, "/api/metabolic-profile/"+user.String(), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	stub.err = errors.New("db down")
	rec = do(r, http.MethodPost, "/api/metabolic-profile/refresh", gin.H{"user_id": user.String()})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal_error", errorCode(t, rec))
}

func TestHealthHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/healthcheck", NewHealthHandler(nil).HealthCheck)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
