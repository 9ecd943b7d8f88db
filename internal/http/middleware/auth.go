package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yungbote/glucobridge-backend/internal/http/response"
	"github.com/yungbote/glucobridge-backend/internal/platform/ctxutil"
	"github.com/yungbote/glucobridge-backend/internal/platform/logger"
)

// AuthMiddleware verifies HS256 bearer tokens issued by the account service. The subject claim
// must be the user's uuid.
type AuthMiddleware struct {
	log    *logger.Logger
	secret []byte
}

func NewAuthMiddleware(log *logger.Logger, secret string) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), secret: []byte(secret)}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractBearer(c)
		if tokenString == "" {
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("missing or invalid token"))
			return
		}
		userID, err := am.subject(tokenString)
		if err != nil {
			am.log.Debug("Rejected bearer token", "error", err)
			response.AbortError(c, http.StatusUnauthorized, "unauthorized", errors.New("invalid or expired token"))
			return
		}
		c.Request = c.Request.WithContext(ctxutil.WithUserID(c.Request.Context(), userID.String()))
		c.Set("user_id", userID.String())
		c.Next()
	}
}

func (am *AuthMiddleware) subject(tokenString string) (uuid.UUID, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return am.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return uuid.Nil, errors.New("token not valid")
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("invalid subject %q", claims.Subject)
	}
	return id, nil
}

func extractBearer(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
