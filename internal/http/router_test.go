package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	httpH "github.com/yungbote/glucobridge-backend/internal/http/handlers"
	httpMW "github.com/yungbote/glucobridge-backend/internal/http/middleware"
	"github.com/yungbote/glucobridge-backend/internal/observability"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

func TestRouter_PublicAndProtectedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := observability.NewMetrics()
	r := NewRouter(RouterConfig{
		Log:                     logger.NewNop(),
		Metrics:                 m,
		AuthMiddleware:          httpMW.NewAuthMiddleware(logger.NewNop(), "secret"),
		MealHandler:             httpH.NewMealHandler(nil),
		MetabolicProfileHandler: httpH.NewMetabolicProfileHandler(nil),
		HealthHandler:           httpH.NewHealthHandler(nil),
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthcheck", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(httpMW.HeaderRequestID))

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/meals/analyze", strings.NewReader("{}")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `glucose_api_requests_total{method="GET",route="/healthcheck",status="200"} 1`)
	assert.Contains(t, rec.Body.String(), `route="/api/meals/analyze",status="401"`)
}
