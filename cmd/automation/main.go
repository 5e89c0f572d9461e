package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"teamsync.backend/internal/config"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/internal/infrastructure/datasources/postgres"
	"teamsync.backend/internal/infrastructure/metrics"
	"teamsync.backend/internal/infrastructure/notification"
	repoimpl "teamsync.backend/internal/infrastructure/repositories"
	"teamsync.backend/internal/usecases"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/logger"
	"teamsync.backend/pkg/redis"
)

var openAutomationDB = postgres.NewConnection

var openAutomationSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

var initAutomationRedis = redis.Init

type automationRunner interface {
	RunAll(ctx context.Context) *entities.AutomationReport
}

type automationDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config) (automationRunner, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func defaultAutomationDeps() automationDeps {
	return automationDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareAutomation,
		out:     os.Stdout,
	}
}

func prepareAutomation(cfg *config.Config) (automationRunner, io.Closer, error) {
	db, err := openAutomationDB(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}
	sqlDB, err := openAutomationSQLDB(db)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}

	// Share team locks with running servers when Redis is configured.
	var locker repositories.TeamLocker = redis.NewLocalLocker()
	closer := io.Closer(sqlDB)
	if cfg.Redis.URL != "" {
		if err := initAutomationRedis(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			_ = sqlDB.Close()
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		locker = redis.NewLocker(redis.GetClient(), cfg.Redis.LockTTL, cfg.Redis.LockWait)
		closer = closerFunc(func() error {
			_ = redis.Close()
			return sqlDB.Close()
		})
	}

	clk := clock.Real{}
	recorder := metrics.NewRecorder()
	participantRepo := repoimpl.NewParticipantRepository(db)
	teamRepo := repoimpl.NewTeamRepository(db)
	uow := repoimpl.NewUnitOfWork(db)

	membership := usecases.NewMembershipUsecase(teamRepo, participantRepo, uow, locker, clk,
		notification.NewEmailNotifier(cfg.Mail), recorder, cfg.Hackathon.InviteTTL)
	return usecases.NewAutomationUsecase(participantRepo, membership, clk, recorder, usecases.AutomationConfig{
		SoloBoostAfter:        cfg.Hackathon.SoloBoostAfter,
		TeamFormationDeadline: cfg.Hackathon.TeamFormationDeadline,
		EndDate:               cfg.Hackathon.EndDate,
	}), closer, nil
}

func writeReport(out io.Writer, report *entities.AutomationReport, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	_, _ = fmt.Fprintf(out, "Automation sweep started at %s\n", report.StartedAt.Format(time.RFC3339))
	for _, t := range report.Tasks {
		switch {
		case t.Error != "":
			_, _ = fmt.Fprintf(out, "%s: FAILED (%s)\n", t.Task, t.Error)
		case t.Skipped:
			_, _ = fmt.Fprintf(out, "%s: skipped\n", t.Task)
		default:
			_, _ = fmt.Fprintf(out, "%s: affected=%d duration=%s\n", t.Task, t.Affected, t.Duration)
		}
	}
	return nil
}

func runAutomation(args []string, deps automationDeps) error {
	def := defaultAutomationDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("automation", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 5*time.Minute, "upper bound for the whole sweep")
	asJSON := fs.Bool("json", false, "print the report as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *timeout <= 0 {
		return fmt.Errorf("--timeout must be positive")
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	logger.Init(cfg.Server.Env)

	runner, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report := runner.RunAll(ctx)
	if err := writeReport(deps.out, report, *asJSON); err != nil {
		return err
	}
	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("%d automation task(s) failed", failed)
	}
	return nil
}

func main() {
	if err := runAutomation(os.Args[1:], defaultAutomationDeps()); err != nil {
		log.Fatal(err)
	}
}
