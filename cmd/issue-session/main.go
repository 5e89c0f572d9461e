package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"teamsync.backend/internal/config"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/infrastructure/datasources/postgres"
	repoimpl "teamsync.backend/internal/infrastructure/repositories"
	"teamsync.backend/internal/interfaces/http/middleware"
	"teamsync.backend/internal/usecases"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/jwt"
	"teamsync.backend/pkg/redis"
)

var openIssueSessionDB = postgres.NewConnection

var openIssueSessionSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

var initIssueSessionRedis = redis.Init

type participantProvisioner interface {
	Provision(ctx context.Context, email string) (*entities.Participant, bool, error)
}

type tokenIssuer interface {
	GenerateAccessToken(participantID uuid.UUID, email, role string) (string, error)
}

type sessionWriter interface {
	CreateSession(ctx context.Context, sessionID string, data *redis.SessionData, expiration time.Duration) error
	DeleteSession(ctx context.Context, sessionID string) error
}

// issueRuntime is nil-safe on sessions: without Redis only a bearer token is minted.
type issueRuntime struct {
	participants participantProvisioner
	tokens       tokenIssuer
	sessions     sessionWriter
	sessionTTL   time.Duration
}

type issueSessionDeps struct {
	loadEnv      func() error
	loadCfg      func() *config.Config
	prepare      func(cfg *config.Config) (*issueRuntime, io.Closer, error)
	newSessionID func() string
	now          func() time.Time
	out          io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func defaultIssueSessionDeps() issueSessionDeps {
	return issueSessionDeps{
		loadEnv:      func() error { return godotenv.Load() },
		loadCfg:      config.Load,
		prepare:      prepareIssueSession,
		newSessionID: func() string { return uuid.NewString() },
		now:          time.Now,
		out:          os.Stdout,
	}
}

func prepareIssueSession(cfg *config.Config) (*issueRuntime, io.Closer, error) {
	if cfg.JWT.Secret == "" {
		return nil, nil, fmt.Errorf("JWT_SECRET is required")
	}

	db, err := openIssueSessionDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}
	sqlDB, err := openIssueSessionSQLDB(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}

	rt := &issueRuntime{
		participants: usecases.NewParticipantUsecase(
			repoimpl.NewParticipantRepository(db),
			repoimpl.NewTeamRepository(db),
			repoimpl.NewUnitOfWork(db),
			clock.Real{},
			cfg.Hackathon.TeamFormationDeadline,
		),
		tokens:     jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry),
		sessionTTL: cfg.Security.SessionTTL,
	}

	if cfg.Redis.URL != "" {
		if err := initIssueSessionRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		store, err := redis.NewSessionStore(cfg.Security.SessionEncryptionKey)
		if err != nil {
			_ = redis.Close()
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to initialize session store: %w", err)
		}
		rt.sessions = store
		return rt, closerFunc(func() error {
			_ = redis.Close()
			return sqlDB.Close()
		}), nil
	}
	return rt, sqlDB, nil
}

func parseRole(role string) (string, error) {
	switch r := strings.ToLower(strings.TrimSpace(role)); r {
	case middleware.RoleParticipant, middleware.RoleOrganizer:
		return r, nil
	default:
		return "", fmt.Errorf("--role must be %q or %q", middleware.RoleParticipant, middleware.RoleOrganizer)
	}
}

func runIssueSession(args []string, deps issueSessionDeps) error {
	def := defaultIssueSessionDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.newSessionID == nil {
		deps.newSessionID = def.newSessionID
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("issue-session", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "participant email (required)")
	roleFlag := fs.String("role", middleware.RoleParticipant, "participant or organizer")
	revokeFlag := fs.String("revoke", "", "session token to revoke instead of issuing one")
	if err := fs.Parse(args); err != nil {
		return err
	}
	revoke := strings.TrimSpace(*revokeFlag)
	if revoke == "" && strings.TrimSpace(*emailFlag) == "" {
		return fmt.Errorf("--email is required")
	}
	role, err := parseRole(*roleFlag)
	if err != nil {
		return err
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	rt, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	if revoke != "" {
		if rt.sessions == nil {
			return fmt.Errorf("REDIS_URL is required to revoke sessions")
		}
		if err := rt.sessions.DeleteSession(ctx, revoke); err != nil {
			return fmt.Errorf("failed to revoke session: %w", err)
		}
		_, _ = fmt.Fprintf(deps.out, "Revoked session %s\n", revoke)
		return nil
	}

	participant, created, err := rt.participants.Provision(ctx, *emailFlag)
	if err != nil {
		return fmt.Errorf("failed to provision participant: %w", err)
	}

	token, err := rt.tokens.GenerateAccessToken(participant.ID, participant.Email, role)
	if err != nil {
		return fmt.Errorf("failed to sign access token: %w", err)
	}

	_, _ = fmt.Fprintf(deps.out, "participant_id=%s\n", participant.ID.String())
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", participant.Email)
	_, _ = fmt.Fprintf(deps.out, "role=%s\n", role)
	_, _ = fmt.Fprintf(deps.out, "created=%t\n", created)
	_, _ = fmt.Fprintf(deps.out, "ACCESS_TOKEN=%s\n", token)

	if rt.sessions == nil {
		_, _ = fmt.Fprintln(deps.out, "REDIS_URL not set, no session token issued")
		return nil
	}

	sessionID := deps.newSessionID()
	err = rt.sessions.CreateSession(ctx, sessionID, &redis.SessionData{
		ParticipantID: participant.ID.String(),
		Email:         participant.Email,
		Role:          role,
		IssuedAt:      deps.now().UTC(),
	}, rt.sessionTTL)
	if err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	_, _ = fmt.Fprintf(deps.out, "SESSION_TOKEN=%s\n", sessionID)
	return nil
}

func main() {
	if err := runIssueSession(os.Args[1:], defaultIssueSessionDeps()); err != nil {
		log.Fatal(err)
	}
}
