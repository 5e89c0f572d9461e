package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/pkg/logger"
)

// Success sends a success response
func Success(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// Error resolves err to its stable kind and renders {code, message, error}.
// Internal errors are logged and never expose the wrapped cause.
func Error(c *gin.Context, err error) {
	appErr := domainerrors.From(err)
	if appErr == nil {
		appErr = domainerrors.InternalError(nil)
	}
	if appErr.Status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), "Request failed",
			zap.String("path", c.FullPath()),
			zap.Error(err),
		)
	}

	c.AbortWithStatusJSON(appErr.Status, gin.H{
		"code":    appErr.Code,
		"message": appErr.Message,
		"error":   appErr.Message, // Backward compatibility
	})
}

// ErrorWithError sends an error response with a specific status and message
func ErrorWithError(c *gin.Context, status int, code string, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"code":    code,
		"message": message,
		"error":   message,
	})
}
