package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"teamsync.backend/internal/config"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/pkg/jwt"
	"teamsync.backend/pkg/redis"
)

const testSessionKey = "0000000000000000000000000000000000000000000000000000000000000000"

type fakeProvisioner struct {
	participant *entities.Participant
	created     bool
	err         error
}

func (f fakeProvisioner) Provision(_ context.Context, email string) (*entities.Participant, bool, error) {
	if f.err != nil {
		return nil, false, f.err
	}
	p := *f.participant
	p.Email = strings.ToLower(email)
	return &p, f.created, nil
}

type failingSessions struct{}

func (failingSessions) CreateSession(context.Context, string, *redis.SessionData, time.Duration) error {
	return errors.New("redis down")
}

func (failingSessions) DeleteSession(context.Context, string) error {
	return errors.New("redis down")
}

func parseOutput(out string) map[string]string {
	fields := map[string]string{}
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		if k, v, ok := strings.Cut(line, "="); ok {
			fields[k] = v
		}
	}
	return fields
}

func deps(rt *issueRuntime, out io.Writer) issueSessionDeps {
	return issueSessionDeps{
		loadEnv:      func() error { return errors.New("no .env") },
		loadCfg:      func() *config.Config { return &config.Config{} },
		prepare:      func(*config.Config) (*issueRuntime, io.Closer, error) { return rt, nil, nil },
		newSessionID: func() string { return "session-1" },
		now:          func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) },
		out:          out,
	}
}

func TestParseRole(t *testing.T) {
	got, err := parseRole(" Organizer ")
	require.NoError(t, err)
	assert.Equal(t, "organizer", got)

	got, err = parseRole("participant")
	require.NoError(t, err)
	assert.Equal(t, "participant", got)

	_, err = parseRole("admin")
	assert.Error(t, err)
}

func TestRunIssueSession_TokenOnlyWithoutRedis(t *testing.T) {
	id := uuid.New()
	tokens := jwt.NewJWTService("secret", time.Hour)
	rt := &issueRuntime{
		participants: fakeProvisioner{participant: &entities.Participant{ID: id}, created: true},
		tokens:       tokens,
	}
	var out bytes.Buffer

	require.NoError(t, runIssueSession([]string{"--email", "Ada@Example.com", "--role", "organizer"}, deps(rt, &out)))

	fields := parseOutput(out.String())
	assert.Equal(t, id.String(), fields["participant_id"])
	assert.Equal(t, "true", fields["created"])
	assert.NotContains(t, fields, "SESSION_TOKEN")
	assert.Contains(t, out.String(), "no session token issued")

	claims, err := tokens.ValidateToken(fields["ACCESS_TOKEN"])
	require.NoError(t, err)
	assert.Equal(t, id, claims.ParticipantID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "organizer", claims.Role)
}

func TestRunIssueSession_StoresSession(t *testing.T) {
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	defer srv.Close()
	require.NoError(t, redis.Init("redis://"+srv.Addr(), ""))
	t.Cleanup(func() { redis.SetClient(nil) })

	store, err := redis.NewSessionStore(testSessionKey)
	require.NoError(t, err)

	id := uuid.New()
	rt := &issueRuntime{
		participants: fakeProvisioner{participant: &entities.Participant{ID: id}},
		tokens:       jwt.NewJWTService("secret", time.Hour),
		sessions:     store,
		sessionTTL:   2 * time.Hour,
	}
	var out bytes.Buffer

	require.NoError(t, runIssueSession([]string{"--email", "ada@example.com"}, deps(rt, &out)))

	fields := parseOutput(out.String())
	assert.Equal(t, "false", fields["created"])
	assert.Equal(t, "participant", fields["role"])
	require.Equal(t, "session-1", fields["SESSION_TOKEN"])

	data, err := store.GetSession(context.Background(), "session-1")
	require.NoError(t, err)
	assert.Equal(t, id.String(), data.ParticipantID)
	assert.Equal(t, "participant", data.Role)
	assert.Equal(t, 2*time.Hour, srv.TTL("session:session-1"))

	out.Reset()
	require.NoError(t, runIssueSession([]string{"--revoke", "session-1"}, deps(rt, &out)))
	assert.Contains(t, out.String(), "Revoked session session-1")
	_, err = store.GetSession(context.Background(), "session-1")
	assert.ErrorIs(t, err, redis.ErrSessionNotFound)
}

func TestRunIssueSession_Errors(t *testing.T) {
	rt := &issueRuntime{
		participants: fakeProvisioner{participant: &entities.Participant{ID: uuid.New()}},
		tokens:       jwt.NewJWTService("secret", time.Hour),
	}

	assert.ErrorContains(t, runIssueSession(nil, deps(rt, io.Discard)), "--email is required")
	assert.Error(t, runIssueSession([]string{"--email", "a@b.co", "--role", "admin"}, deps(rt, io.Discard)))
	assert.Error(t, runIssueSession([]string{"--bogus"}, deps(rt, io.Discard)))

	bad := deps(rt, io.Discard)
	bad.prepare = func(*config.Config) (*issueRuntime, io.Closer, error) {
		return nil, nil, errors.New("JWT_SECRET is required")
	}
	assert.ErrorContains(t, runIssueSession([]string{"--email", "a@b.co"}, bad), "JWT_SECRET")

	rt.participants = fakeProvisioner{err: errors.New("email must be a valid email")}
	assert.ErrorContains(t, runIssueSession([]string{"--email", "nope"}, deps(rt, io.Discard)), "failed to provision participant")

	rt.participants = fakeProvisioner{participant: &entities.Participant{ID: uuid.New()}}
	rt.sessions = failingSessions{}
	assert.ErrorContains(t, runIssueSession([]string{"--email", "a@b.co"}, deps(rt, io.Discard)), "failed to store session")
	assert.ErrorContains(t, runIssueSession([]string{"--revoke", "sid"}, deps(rt, io.Discard)), "failed to revoke session")

	rt.sessions = nil
	assert.ErrorContains(t, runIssueSession([]string{"--revoke", "sid"}, deps(rt, io.Discard)), "REDIS_URL is required")
}

func withIssueSessionHooks(t *testing.T) {
	t.Helper()
	origDB, origSQL, origRedis := openIssueSessionDB, openIssueSessionSQLDB, initIssueSessionRedis
	t.Cleanup(func() {
		openIssueSessionDB, openIssueSessionSQLDB, initIssueSessionRedis = origDB, origSQL, origRedis
	})
	openIssueSessionDB = func(config.DatabaseConfig) (*gorm.DB, error) {
		return gorm.Open(sqlite.Open(fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", t.Name(), time.Now().UnixNano())), &gorm.Config{})
	}
	initIssueSessionRedis = func(string, string) error { return nil }
}

func TestPrepareIssueSession(t *testing.T) {
	cfg := func() *config.Config {
		return &config.Config{
			JWT:      config.JWTConfig{Secret: "secret", AccessExpiry: time.Hour},
			Security: config.SecurityConfig{SessionEncryptionKey: testSessionKey, SessionTTL: time.Hour},
		}
	}

	t.Run("requires jwt secret", func(t *testing.T) {
		withIssueSessionHooks(t)
		_, _, err := prepareIssueSession(&config.Config{})
		assert.ErrorContains(t, err, "JWT_SECRET")
	})

	t.Run("without redis", func(t *testing.T) {
		withIssueSessionHooks(t)
		rt, closer, err := prepareIssueSession(cfg())
		require.NoError(t, err)
		defer closer.Close()
		assert.Nil(t, rt.sessions)
		assert.Equal(t, time.Hour, rt.sessionTTL)
	})

	t.Run("with redis", func(t *testing.T) {
		withIssueSessionHooks(t)
		c := cfg()
		c.Redis.URL = "redis://localhost:6379"
		rt, closer, err := prepareIssueSession(c)
		require.NoError(t, err)
		defer closer.Close()
		assert.NotNil(t, rt.sessions)
	})

	t.Run("bad session key", func(t *testing.T) {
		withIssueSessionHooks(t)
		c := cfg()
		c.Redis.URL = "redis://localhost:6379"
		c.Security.SessionEncryptionKey = "zz"
		_, _, err := prepareIssueSession(c)
		assert.ErrorContains(t, err, "failed to initialize session store")
	})

	t.Run("redis error", func(t *testing.T) {
		withIssueSessionHooks(t)
		initIssueSessionRedis = func(string, string) error { return errors.New("refused") }
		c := cfg()
		c.Redis.URL = "redis://localhost:6379"
		_, _, err := prepareIssueSession(c)
		assert.ErrorContains(t, err, "failed to initialize redis")
	})

	t.Run("db error", func(t *testing.T) {
		withIssueSessionHooks(t)
		openIssueSessionDB = func(config.DatabaseConfig) (*gorm.DB, error) { return nil, errors.New("refused") }
		_, _, err := prepareIssueSession(cfg())
		assert.ErrorContains(t, err, "failed to connect db")
	})
}
