package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"teamsync.backend/internal/config"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/internal/infrastructure/datasources/postgres"
	"teamsync.backend/internal/infrastructure/genai"
	"teamsync.backend/internal/infrastructure/jobs"
	"teamsync.backend/internal/infrastructure/metrics"
	"teamsync.backend/internal/infrastructure/models"
	"teamsync.backend/internal/infrastructure/notification"
	repoimpl "teamsync.backend/internal/infrastructure/repositories"
	"teamsync.backend/internal/interfaces/http/handlers"
	"teamsync.backend/internal/interfaces/http/middleware"
	"teamsync.backend/internal/usecases"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/jwt"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/redis"
)

var (
	loadDotenv      = godotenv.Load
	loadCfg         = config.Load
	initLog         = logger.InitWithFile
	initRedis       = redis.Init
	openDB          = postgres.NewConnection
	migrateDB       = models.Migrate
	newSessionStore = redis.NewSessionStore
	closeRedis      = redis.Close
	runServer       = serveHTTP
	getStdDB        = func(db *gorm.DB) (*sql.DB, error) { return db.DB() }
)

func main() {
	if err := runMainProcess(); err != nil {
		log.Fatal(err)
	}
}

// app is everything the HTTP process wires together.
type app struct {
	router     *gin.Engine
	automation *usecases.AutomationUsecase
}

// redisDeps are the Redis-backed collaborators. Without Redis the process
// runs single-instance: in-process team locks, no session tokens and no
// idempotent replay.
type redisDeps struct {
	locker      repositories.TeamLocker
	sessions    middleware.SessionReader
	idempotency gin.HandlerFunc
}

func runMainProcess() error {
	// Load .env file
	if err := loadDotenv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := loadCfg()

	initLog(cfg.Server.Env, cfg.Log.File)
	ctx := context.Background()
	logger.Info(ctx, "Logger initialized", zap.String("env", cfg.Server.Env))

	rd, err := setupRedis(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeRedis() }()

	if cfg.Server.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	sqlDB, err := getStdDB(db)
	if err != nil {
		return fmt.Errorf("failed to get generic database object: %w", err)
	}
	defer sqlDB.Close()
	logger.Info(ctx, "Connected to PostgreSQL via GORM")

	if cfg.Database.AutoMigrate {
		if err := migrateDB(db); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		logger.Info(ctx, "Database schema migrated")
	}

	a := buildApp(cfg, db, rd)

	// Stop on SIGINT or SIGTERM
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Automation.Enabled {
		automationJob, err := jobs.NewAutomationJob(a.automation, cfg.Automation.Cron, 0)
		if err != nil {
			return err
		}
		if err := automationJob.Start(runCtx); err != nil {
			return err
		}
		defer automationJob.Stop()
	}

	logger.Info(ctx, "TeamSync backend starting",
		zap.String("port", cfg.Server.Port),
		zap.Int("routes", len(a.router.Routes())),
	)
	if err := runServer(runCtx, a.router, cfg.Server.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	logger.Info(ctx, "Server stopped")
	return nil
}

// serveHTTP serves until ctx is cancelled, then drains in-flight requests.
func serveHTTP(ctx context.Context, h http.Handler, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func setupRedis(ctx context.Context, cfg *config.Config) (redisDeps, error) {
	if cfg.Redis.URL == "" {
		logger.Warn(ctx, "REDIS_URL not set, using in-process team locks without sessions or idempotency")
		return redisDeps{locker: redis.NewLocalLocker()}, nil
	}

	if err := initRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
		logger.Error(ctx, "Failed to initialize Redis", zap.Error(err))
		return redisDeps{}, fmt.Errorf("failed to initialize redis: %w", err)
	}
	logger.Info(ctx, "Redis initialized")

	sessionStore, err := newSessionStore(cfg.Security.SessionEncryptionKey)
	if err != nil {
		return redisDeps{}, fmt.Errorf("failed to initialize session store: %w", err)
	}

	return redisDeps{
		locker:      redis.NewLocker(redis.GetClient(), cfg.Redis.LockTTL, cfg.Redis.LockWait),
		sessions:    sessionStore,
		idempotency: middleware.IdempotencyMiddleware(cfg.Redis.IdempotencyTTL),
	}, nil
}

func buildApp(cfg *config.Config, db *gorm.DB, rd redisDeps) *app {
	clk := clock.Real{}
	recorder := metrics.NewRecorder()

	// Initialize repositories
	participantRepo := repoimpl.NewParticipantRepository(db)
	teamRepo := repoimpl.NewTeamRepository(db)
	uow := repoimpl.NewUnitOfWork(db)

	// Initialize collaborators
	notifier := notification.NewEmailNotifier(cfg.Mail)
	genaiClient := genai.NewClient(cfg.AI)
	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiry)

	// Initialize usecases
	membershipUsecase := usecases.NewMembershipUsecase(teamRepo, participantRepo, uow, rd.locker, clk, notifier, recorder, cfg.Hackathon.InviteTTL)
	teamUsecase := usecases.NewTeamUsecase(teamRepo, participantRepo, uow, rd.locker, clk)
	participantUsecase := usecases.NewParticipantUsecase(participantRepo, teamRepo, uow, clk, cfg.Hackathon.TeamFormationDeadline)
	organizerUsecase := usecases.NewOrganizerUsecase(participantRepo, teamRepo, clk, cfg.Hackathon.SoloBoostAfter)
	automationUsecase := usecases.NewAutomationUsecase(participantRepo, membershipUsecase, clk, recorder, usecases.AutomationConfig{
		SoloBoostAfter:        cfg.Hackathon.SoloBoostAfter,
		TeamFormationDeadline: cfg.Hackathon.TeamFormationDeadline,
		EndDate:               cfg.Hackathon.EndDate,
	})
	assistantUsecase := usecases.NewAssistantUsecase(genaiClient, teamRepo, participantRepo, uow, rd.locker)

	// Initialize router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.MetricsMiddleware(recorder))

	applyCORSMiddleware(r, cfg.CORS.AllowedOrigins...)
	registerHealthRoute(r)
	registerMetricsRoute(r, recorder.Handler())
	registerAPIV1Routes(r, routeDeps{
		teamHandler:        handlers.NewTeamHandler(membershipUsecase, teamUsecase),
		participantHandler: handlers.NewParticipantHandler(participantUsecase, teamUsecase),
		organizerHandler:   handlers.NewOrganizerHandler(organizerUsecase, automationUsecase),
		assistantHandler:   handlers.NewAssistantHandler(assistantUsecase),
		authMiddleware:     middleware.DualAuthMiddleware(jwtService, rd.sessions),
		organizerOnly:      middleware.RequireOrganizer(),
		idempotency:        rd.idempotency,
	})

	return &app{router: r, automation: automationUsecase}
}
