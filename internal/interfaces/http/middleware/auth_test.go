package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "teamsync.backend/internal/domain/errors"
	"teamsync.backend/pkg/jwt"
	"teamsync.backend/pkg/redis"
)

const testSecret = "middleware-test-secret"

type fakeSessions struct {
	sessions map[string]*redis.SessionData
}

func (f *fakeSessions) GetSession(_ context.Context, id string) (*redis.SessionData, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, errors.New("session not found")
	}
	return s, nil
}

type identity struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  string    `json:"role"`
}

func newAuthRouter(jwtService *jwt.JWTService, sessions SessionReader, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{DualAuthMiddleware(jwtService, sessions)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := GetParticipantID(c)
		email, _ := GetParticipantEmail(c)
		role, _ := GetRole(c)
		c.JSON(http.StatusOK, identity{ID: id, Email: email, Role: role})
	})
	r.GET("/me", handlers...)
	return r
}

func serve(r http.Handler, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestDualAuth_BearerToken(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	id := uuid.New()
	token, err := svc.GenerateAccessToken(id, "ada@example.com", RoleOrganizer)
	require.NoError(t, err)

	w := serve(newAuthRouter(svc, nil), map[string]string{AuthorizationHeader: BearerPrefix + token})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())
	assert.Contains(t, w.Body.String(), `"role":"organizer"`)
}

func TestDualAuth_DefaultsRoleToParticipant(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	token, err := svc.GenerateAccessToken(uuid.New(), "bo@example.com", "")
	require.NoError(t, err)

	w := serve(newAuthRouter(svc, nil), map[string]string{AuthorizationHeader: BearerPrefix + token})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"role":"participant"`)
}

func TestDualAuth_Rejections(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	expired, err := jwt.NewJWTService(testSecret, -time.Minute).GenerateAccessToken(uuid.New(), "x@example.com", "")
	require.NoError(t, err)
	foreign, err := jwt.NewJWTService("other-secret", time.Hour).GenerateAccessToken(uuid.New(), "x@example.com", "")
	require.NoError(t, err)

	cases := []struct {
		name    string
		headers map[string]string
		message string
	}{
		{"missing", nil, "Authentication required"},
		{"basic scheme", map[string]string{AuthorizationHeader: "Basic abc"}, "Authentication required"},
		{"expired", map[string]string{AuthorizationHeader: BearerPrefix + expired}, "Token has expired"},
		{"wrong secret", map[string]string{AuthorizationHeader: BearerPrefix + foreign}, "Invalid token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := serve(newAuthRouter(svc, nil), tc.headers)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), domainerrors.CodeUnauthorized)
			assert.Contains(t, w.Body.String(), tc.message)
		})
	}
}

func TestDualAuth_SessionToken(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	id := uuid.New()
	sessions := &fakeSessions{sessions: map[string]*redis.SessionData{
		"good":   {ParticipantID: id.String(), Email: "cy@example.com", Role: RoleParticipant},
		"broken": {ParticipantID: "not-a-uuid"},
	}}
	r := newAuthRouter(svc, sessions)

	w := serve(r, map[string]string{SessionTokenHeader: "good"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), id.String())

	w = serve(r, map[string]string{SessionTokenHeader: "unknown"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid or expired session")

	w = serve(r, map[string]string{SessionTokenHeader: "broken"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestDualAuth_SessionWinsOverBearer(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	sessionID := uuid.New()
	token, err := svc.GenerateAccessToken(uuid.New(), "jwt@example.com", "")
	require.NoError(t, err)
	sessions := &fakeSessions{sessions: map[string]*redis.SessionData{
		"s1": {ParticipantID: sessionID.String(), Email: "session@example.com"},
	}}

	w := serve(newAuthRouter(svc, sessions), map[string]string{
		SessionTokenHeader:  "s1",
		AuthorizationHeader: BearerPrefix + token,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), sessionID.String())
	assert.Contains(t, w.Body.String(), "session@example.com")
}

func TestDualAuth_SessionHeaderIgnoredWithoutStore(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	token, err := svc.GenerateAccessToken(uuid.New(), "jwt@example.com", "")
	require.NoError(t, err)

	w := serve(newAuthRouter(svc, nil), map[string]string{
		SessionTokenHeader:  "s1",
		AuthorizationHeader: BearerPrefix + token,
	})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "jwt@example.com")
}

func TestRequireOrganizer(t *testing.T) {
	svc := jwt.NewJWTService(testSecret, time.Hour)
	r := newAuthRouter(svc, nil, RequireOrganizer())

	participant, err := svc.GenerateAccessToken(uuid.New(), "p@example.com", RoleParticipant)
	require.NoError(t, err)
	w := serve(r, map[string]string{AuthorizationHeader: BearerPrefix + participant})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Insufficient permissions")

	organizer, err := svc.GenerateAccessToken(uuid.New(), "o@example.com", RoleOrganizer)
	require.NoError(t, err)
	w = serve(r, map[string]string{AuthorizationHeader: BearerPrefix + organizer})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireRole_MissingRole(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/me", RequireRole(RoleOrganizer), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := serve(r, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetParticipantID_Absent(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	_, ok := GetParticipantID(c)
	assert.False(t, ok)

	c.Set(ParticipantIDKey, "not-a-uuid")
	_, ok = GetParticipantID(c)
	assert.False(t, ok)

	c.Set(ParticipantIDKey, uuid.Nil)
	_, ok = GetParticipantID(c)
	assert.False(t, ok)
}
