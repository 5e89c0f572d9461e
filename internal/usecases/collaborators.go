package usecases

import (
	"context"
	"time"

	"teamsync.backend/internal/domain/entities"
)

// InviteNotifier tells a participant about a new invite. Failures never undo
// the invite.
type InviteNotifier interface {
	NotifyInvite(ctx context.Context, invite entities.InviteNotification) error
}

// GenerativeClient produces free text for a prompt.
type GenerativeClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Metrics receives membership and automation outcomes.
type Metrics interface {
	MembershipTransition(operation, outcome string)
	AutomationTask(task string, affected int64, duration time.Duration, err error)
}

type noopNotifier struct{}

func (noopNotifier) NotifyInvite(context.Context, entities.InviteNotification) error { return nil }

type noopMetrics struct{}

func (noopMetrics) MembershipTransition(string, string)                {}
func (noopMetrics) AutomationTask(string, int64, time.Duration, error) {}
