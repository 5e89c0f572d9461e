package jobs

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron"
	"go.uber.org/zap"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/pkg/logger"
)

// Sweeper runs every automation task once.
type Sweeper interface {
	RunAll(ctx context.Context) *entities.AutomationReport
}

// AutomationJob runs the sweeper on a cron schedule. A tick that fires while
// the previous sweep is still running is skipped.
type AutomationJob struct {
	sweeper Sweeper
	spec    string
	timeout time.Duration

	cron    *cron.Cron
	running int32
	stop    chan struct{}
	once    sync.Once
}

func NewAutomationJob(sweeper Sweeper, spec string, timeout time.Duration) (*AutomationJob, error) {
	if _, err := cron.Parse(spec); err != nil {
		return nil, fmt.Errorf("invalid automation schedule %q: %w", spec, err)
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &AutomationJob{
		sweeper: sweeper,
		spec:    spec,
		timeout: timeout,
		cron:    cron.NewWithLocation(time.UTC),
		stop:    make(chan struct{}),
	}, nil
}

// Start schedules the sweep and returns. The scheduler stops when ctx is
// cancelled or Stop is called.
func (j *AutomationJob) Start(ctx context.Context) error {
	if err := j.cron.AddFunc(j.spec, func() { j.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule automation job: %w", err)
	}
	j.cron.Start()
	logger.Info(ctx, "Automation job started", zap.String("schedule", j.spec))

	go func() {
		select {
		case <-ctx.Done():
		case <-j.stop:
		}
		j.cron.Stop()
		logger.Info(context.Background(), "Automation job stopped")
	}()
	return nil
}

func (j *AutomationJob) Stop() {
	j.once.Do(func() { close(j.stop) })
}

// RunOnce runs one sweep unless another is in flight. ran is false when the
// sweep was skipped.
func (j *AutomationJob) RunOnce(ctx context.Context) (report *entities.AutomationReport, ran bool) {
	if !atomic.CompareAndSwapInt32(&j.running, 0, 1) {
		logger.Warn(ctx, "Automation sweep still running, skipping tick")
		return nil, false
	}
	defer atomic.StoreInt32(&j.running, 0)

	runCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	start := time.Now()
	report = j.sweeper.RunAll(runCtx)
	logger.Debug(ctx, "Automation tick done", zap.Duration("elapsed", time.Since(start)))
	return report, true
}
