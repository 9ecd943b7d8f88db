package handlers

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/glucobridge-backend/internal/platform/apierr"
	"github.com/yungbote/glucobridge-backend/internal/platform/ctxutil"
)

// resolveUserID picks the acting user. With auth enabled the token subject wins and a
// different explicit id is refused.
func resolveUserID(c *gin.Context, explicit string) (uuid.UUID, error) {
	explicit = strings.TrimSpace(explicit)
	subject := ctxutil.GetUserID(c.Request.Context())
	if subject != "" {
		if explicit != "" && !strings.EqualFold(explicit, subject) {
			return uuid.Nil, apierr.Forbidden(errors.New("user_id does not match token"))
		}
		explicit = subject
	}
	if explicit == "" {
		return uuid.Nil, apierr.BadRequest("missing_user_id", errors.New("user_id is required"))
	}
	id, err := uuid.Parse(explicit)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, apierr.BadRequest("invalid_user_id", errors.New("user_id must be a uuid"))
	}
	return id, nil
}
