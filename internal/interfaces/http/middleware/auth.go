package middleware

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/interfaces/http/response"
	"teamsync.backend/pkg/jwt"
	"teamsync.backend/pkg/logger"
)

const (
	// AuthorizationHeader is the header key for authorization
	AuthorizationHeader = "Authorization"
	// BearerPrefix is the prefix for bearer tokens
	BearerPrefix = "Bearer "
	// ParticipantIDKey is the context key for the caller's participant id
	ParticipantIDKey = "participantId"
	// ParticipantEmailKey is the context key for the caller's email
	ParticipantEmailKey = "participantEmail"
	// RoleKey is the context key for the caller's role
	RoleKey = "role"

	RoleParticipant = "participant"
	RoleOrganizer   = "organizer"
)

// authenticateBearer validates a JWT and stores its identity in the context.
// It aborts the request and returns false on failure.
func authenticateBearer(c *gin.Context, jwtService *jwt.JWTService, token string) bool {
	claims, err := jwtService.ValidateToken(token)
	if err != nil {
		logger.Debug(c.Request.Context(), "JWT validation failed",
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		if errors.Is(err, jwt.ErrExpiredToken) {
			reject(c, "Token has expired")
			return false
		}
		reject(c, "Invalid token")
		return false
	}
	setIdentity(c, claims.ParticipantID, claims.Email, claims.Role)
	return true
}

func setIdentity(c *gin.Context, id uuid.UUID, email, role string) {
	if role == "" {
		role = RoleParticipant
	}
	c.Set(ParticipantIDKey, id)
	c.Set(ParticipantEmailKey, email)
	c.Set(RoleKey, role)
}

func reject(c *gin.Context, message string) {
	response.Error(c, domainerrors.Unauthorized(message))
}

// GetParticipantID gets the caller's participant id from context
func GetParticipantID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(ParticipantIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetParticipantEmail gets the caller's email from context
func GetParticipantEmail(c *gin.Context) (string, bool) {
	return getString(c, ParticipantEmailKey)
}

// GetRole gets the caller's role from context
func GetRole(c *gin.Context) (string, bool) {
	return getString(c, RoleKey)
}

func getString(c *gin.Context, key string) (string, bool) {
	v, exists := c.Get(key)
	if !exists {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := GetRole(c)
		if !exists {
			reject(c, "User role not found")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		response.Error(c, domainerrors.Forbidden("Insufficient permissions"))
	}
}

// RequireOrganizer restricts a route to event organizers.
func RequireOrganizer() gin.HandlerFunc {
	return RequireRole(RoleOrganizer)
}
