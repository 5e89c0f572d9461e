package usecases

import (
	"context"
	"time"

	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/internal/domain/repositories"
	"teamsync.backend/pkg/clock"
	"teamsync.backend/pkg/logger"
)

const (
	DefaultSoloBoostAfter = 72 * time.Hour
	SoloBoostReason       = "Solo for 3+ days"
)

// InviteExpirer expires pending invites past their expiry. The membership
// usecase implements it so invite statuses keep a single writer.
type InviteExpirer interface {
	ExpireOldInvites(ctx context.Context) (int64, error)
}

// AutomationConfig carries the event calendar the sweeper acts on. Zero times
// disable the matching task.
type AutomationConfig struct {
	SoloBoostAfter        time.Duration
	TeamFormationDeadline time.Time
	EndDate               time.Time
}

// AutomationUsecase runs the periodic sweeper tasks. Every task is a one-way
// bulk update, so reruns and overlap with user requests are harmless.
type AutomationUsecase struct {
	participantRepo repositories.ParticipantRepository
	invites         InviteExpirer
	clock           clock.Clock
	metrics         Metrics
	cfg             AutomationConfig
}

func NewAutomationUsecase(
	participantRepo repositories.ParticipantRepository,
	invites InviteExpirer,
	clk clock.Clock,
	metrics Metrics,
	cfg AutomationConfig,
) *AutomationUsecase {
	if clk == nil {
		clk = clock.Real{}
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	if cfg.SoloBoostAfter <= 0 {
		cfg.SoloBoostAfter = DefaultSoloBoostAfter
	}
	return &AutomationUsecase{
		participantRepo: participantRepo,
		invites:         invites,
		clock:           clk,
		metrics:         metrics,
		cfg:             cfg,
	}
}

// BoostSoloParticipants flags Available, teamless participants that have been
// around longer than the solo threshold and are not boosted yet.
func (u *AutomationUsecase) BoostSoloParticipants(ctx context.Context) (int64, error) {
	now := u.clock.Now()
	return u.participantRepo.BoostSolo(ctx, now.Add(-u.cfg.SoloBoostAfter), now, SoloBoostReason)
}

func (u *AutomationUsecase) ExpireOldInvites(ctx context.Context) (int64, error) {
	return u.invites.ExpireOldInvites(ctx)
}

// LockProfilesAfterDeadline locks every profile once the team formation
// deadline has passed. It reports false when the deadline is unset or ahead.
func (u *AutomationUsecase) LockProfilesAfterDeadline(ctx context.Context) (int64, bool, error) {
	if !passed(u.cfg.TeamFormationDeadline, u.clock.Now()) {
		return 0, false, nil
	}
	n, err := u.participantRepo.LockAllProfiles(ctx)
	return n, true, err
}

// DisableAvailabilityAfterEvent marks every Available participant Not
// Available once the event is over.
func (u *AutomationUsecase) DisableAvailabilityAfterEvent(ctx context.Context) (int64, bool, error) {
	now := u.clock.Now()
	if !passed(u.cfg.EndDate, now) {
		return 0, false, nil
	}
	n, err := u.participantRepo.DisableAvailable(ctx, now)
	return n, true, err
}

// RunAll runs every task in order. A failing task is logged and reported;
// the remaining tasks still run.
func (u *AutomationUsecase) RunAll(ctx context.Context) *entities.AutomationReport {
	report := &entities.AutomationReport{
		StartedAt: u.clock.Now(),
		Tasks:     make([]entities.AutomationTaskResult, 0, 4),
	}

	always := func(fn func(context.Context) (int64, error)) func(context.Context) (int64, bool, error) {
		return func(ctx context.Context) (int64, bool, error) {
			n, err := fn(ctx)
			return n, true, err
		}
	}
	tasks := []struct {
		name string
		run  func(context.Context) (int64, bool, error)
	}{
		{entities.TaskBoostSolo, always(u.BoostSoloParticipants)},
		{entities.TaskExpireInvites, always(u.ExpireOldInvites)},
		{entities.TaskLockProfiles, u.LockProfilesAfterDeadline},
		{entities.TaskDisableAvailability, u.DisableAvailabilityAfterEvent},
	}

	for _, task := range tasks {
		report.Tasks = append(report.Tasks, u.runTask(ctx, task.name, task.run))
	}

	logger.Info(ctx, "Automation sweep finished",
		zap.Int("tasks", len(report.Tasks)),
		zap.Int("failed", report.Failed()),
	)
	return report
}

func (u *AutomationUsecase) runTask(ctx context.Context, name string, run func(context.Context) (int64, bool, error)) entities.AutomationTaskResult {
	start := time.Now()
	affected, ran, err := run(ctx)
	elapsed := time.Since(start)

	result := entities.AutomationTaskResult{Task: name, Affected: affected, Skipped: !ran, Duration: elapsed}
	if err != nil {
		result.Error = err.Error()
		logger.Error(ctx, "Automation task failed", zap.String("task", name), zap.Error(err))
	} else if ran {
		logger.Debug(ctx, "Automation task done", zap.String("task", name), zap.Int64("affected", affected))
	}
	if ran {
		u.metrics.AutomationTask(name, affected, elapsed, err)
	}
	return result
}

func passed(at, now time.Time) bool {
	return !at.IsZero() && now.After(at)
}
