package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"teamsync.backend/pkg/jwt"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/redis"
)

// SessionTokenHeader carries an opaque session id issued alongside the JWT.
const SessionTokenHeader = "X-Session-Token"

// SessionReader resolves an opaque session token.
type SessionReader interface {
	GetSession(ctx context.Context, sessionID string) (*redis.SessionData, error)
}

// DualAuthMiddleware accepts either an X-Session-Token resolved through the
// encrypted session store or a Bearer JWT. The session token wins when both
// are present. sessions may be nil, which disables the session path.
func DualAuthMiddleware(jwtService *jwt.JWTService, sessions SessionReader) gin.HandlerFunc {
	return func(c *gin.Context) {
		if sessionID := c.GetHeader(SessionTokenHeader); sessionID != "" && sessions != nil {
			session, err := sessions.GetSession(c.Request.Context(), sessionID)
			if err != nil || session == nil {
				logger.Debug(c.Request.Context(), "Session lookup failed",
					zap.String("path", c.Request.URL.Path),
					zap.Error(err),
				)
				reject(c, "Invalid or expired session")
				return
			}
			id, err := uuid.Parse(session.ParticipantID)
			if err != nil || id == uuid.Nil {
				reject(c, "Invalid or expired session")
				return
			}
			setIdentity(c, id, session.Email, session.Role)
			c.Next()
			return
		}

		authHeader := c.GetHeader(AuthorizationHeader)
		if strings.HasPrefix(authHeader, BearerPrefix) {
			if !authenticateBearer(c, jwtService, strings.TrimPrefix(authHeader, BearerPrefix)) {
				return
			}
			c.Next()
			return
		}

		reject(c, "Authentication required (Bearer token or session token)")
	}
}
