package jobs

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"teamsync.backend/internal/domain/entities"
)

type sweeperStub struct {
	calls   int32
	block   chan struct{}
	started chan struct{}
	once    sync.Once
}

func (s *sweeperStub) RunAll(ctx context.Context) *entities.AutomationReport {
	atomic.AddInt32(&s.calls, 1)
	if s.started != nil {
		s.once.Do(func() { close(s.started) })
	}
	if s.block != nil {
		<-s.block
	}
	return &entities.AutomationReport{
		Tasks: []entities.AutomationTaskResult{
			{Task: entities.TaskBoostSolo, Affected: 2},
			{Task: entities.TaskExpireInvites, Error: "db down"},
		},
	}
}

func TestNewAutomationJob_InvalidSchedule(t *testing.T) {
	_, err := NewAutomationJob(&sweeperStub{}, "not a schedule", time.Second)
	require.Error(t, err)

	job, err := NewAutomationJob(&sweeperStub{}, "@every 1h", 0)
	require.NoError(t, err)
	assert.Equal(t, 5*time.Minute, job.timeout)
}

func TestAutomationJob_RunOnce(t *testing.T) {
	stub := &sweeperStub{}
	job, err := NewAutomationJob(stub, "@every 1h", time.Second)
	require.NoError(t, err)

	report, ran := job.RunOnce(context.Background())
	require.True(t, ran)
	require.NotNil(t, report)
	assert.Equal(t, 1, report.Failed())
	assert.Equal(t, int32(1), atomic.LoadInt32(&stub.calls))
}

func TestAutomationJob_SkipsOverlappingRun(t *testing.T) {
	stub := &sweeperStub{block: make(chan struct{}), started: make(chan struct{})}
	job, err := NewAutomationJob(stub, "@every 1h", time.Second)
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		defer close(done)
		job.RunOnce(context.Background())
	}()
	<-stub.started

	report, ran := job.RunOnce(context.Background())
	assert.False(t, ran)
	assert.Nil(t, report)

	close(stub.block)
	<-done
	_, ran = job.RunOnce(context.Background())
	assert.True(t, ran)
	assert.Equal(t, int32(2), atomic.LoadInt32(&stub.calls))
}

func TestAutomationJob_StartRunsOnScheduleUntilStopped(t *testing.T) {
	stub := &sweeperStub{}
	job, err := NewAutomationJob(stub, "@every 1s", time.Second)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, job.Start(ctx))

	require.Eventually(t, func() bool {
		return atomic.LoadInt32(&stub.calls) >= 1
	}, 3*time.Second, 50*time.Millisecond)

	job.Stop()
	job.Stop()
}
