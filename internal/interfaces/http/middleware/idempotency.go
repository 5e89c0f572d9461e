package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/internal/interfaces/http/response"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/redis"
)

const (
	IdempotencyHeader = "Idempotency-Key"
	// LockDuration is the time we hold the lock while processing
	LockDuration = 30 * time.Second
	// RetentionDuration is the default time a stored response is replayed
	RetentionDuration = 24 * time.Hour

	processingMarker = "processing"
)

var (
	redisGet   = redis.Get
	redisSet   = redis.Set
	redisSetNX = redis.SetNX
	redisDel   = redis.Del
)

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func conflict(message string) *domainerrors.AppError {
	return domainerrors.NewAppError(http.StatusConflict, domainerrors.CodeDuplicate, message, nil)
}

// IdempotencyMiddleware replays the stored response for a repeated
// Idempotency-Key from the same participant. Only 2xx responses are kept;
// failures release the key so the client can retry. A zero ttl uses
// RetentionDuration.
func IdempotencyMiddleware(ttl time.Duration) gin.HandlerFunc {
	if ttl <= 0 {
		ttl = RetentionDuration
	}
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		owner := "anonymous"
		if id, ok := GetParticipantID(c); ok {
			owner = id.String()
		}
		storageKey := fmt.Sprintf("idempotency:%s:%s:%s", owner, c.FullPath(), key)
		ctx := c.Request.Context()

		val, err := redisGet(ctx, storageKey)
		switch {
		case err == nil:
			if val == processingMarker {
				response.Error(c, conflict("Request already in progress"))
				return
			}
			var stored storedResponse
			if jsonErr := json.Unmarshal([]byte(val), &stored); jsonErr != nil {
				logger.Warn(ctx, "Discarding unreadable idempotent response",
					zap.String("key", storageKey), zap.Error(jsonErr))
				_ = redisDel(ctx, storageKey)
				break
			}
			c.Header("X-Idempotency-Hit", "true")
			c.Data(stored.Status, "application/json; charset=utf-8", []byte(stored.Body))
			c.Abort()
			return
		case !errors.Is(err, goredis.Nil):
			// Redis is unavailable; serve the request without replay protection
			logger.Warn(ctx, "Idempotency store unavailable", zap.Error(err))
			c.Next()
			return
		}

		acquired, err := redisSetNX(ctx, storageKey, processingMarker, LockDuration)
		if err != nil || !acquired {
			response.Error(c, conflict("Request already in progress"))
			return
		}

		w := &responseWriter{body: &bytes.Buffer{}, ResponseWriter: c.Writer}
		c.Writer = w

		c.Next()

		status := c.Writer.Status()
		if status < 200 || status >= 300 {
			_ = redisDel(ctx, storageKey)
			return
		}
		payload, err := json.Marshal(storedResponse{Status: status, Body: w.body.String()})
		if err != nil {
			_ = redisDel(ctx, storageKey)
			return
		}
		if err := redisSet(ctx, storageKey, payload, ttl); err != nil {
			logger.Warn(ctx, "Failed to store idempotent response", zap.Error(err))
		}
	}
}
