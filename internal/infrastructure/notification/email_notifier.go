package notification

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
	"teamsync.backend/internal/config"
	"teamsync.backend/internal/domain/entities"
	"teamsync.backend/pkg/logger"
)

var sendMail = func(d *gomail.Dialer, m ...*gomail.Message) error {
	return d.DialAndSend(m...)
}

// EmailNotifier sends invite emails over SMTP. Without a host configured it
// only logs what it would have sent.
type EmailNotifier struct {
	cfg    config.MailConfig
	dialer *gomail.Dialer
}

func NewEmailNotifier(cfg config.MailConfig) *EmailNotifier {
	n := &EmailNotifier{cfg: cfg}
	if cfg.Host != "" {
		n.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	}
	return n
}

func (n *EmailNotifier) NotifyInvite(ctx context.Context, invite entities.InviteNotification) error {
	if invite.ToEmail == "" {
		return fmt.Errorf("invite notification has no recipient")
	}

	if n.dialer == nil {
		logger.Info(ctx, "Invite email skipped, SMTP not configured",
			zap.String("to", invite.ToEmail),
			zap.String("team", invite.TeamName),
		)
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.From)
	m.SetHeader("To", invite.ToEmail)
	m.SetHeader("Subject", inviteSubject(invite))
	m.SetBody("text/plain", inviteBody(invite))

	if err := sendMail(n.dialer, m); err != nil {
		return fmt.Errorf("error sending invite email: %w", err)
	}
	logger.Info(ctx, "Invite email sent", zap.String("to", invite.ToEmail), zap.String("team", invite.TeamName))
	return nil
}

func inviteSubject(invite entities.InviteNotification) string {
	return fmt.Sprintf("You're invited to join %s", invite.TeamName)
}

func inviteBody(invite entities.InviteNotification) string {
	var b strings.Builder
	greeting := invite.ToName
	if greeting == "" {
		greeting = "there"
	}
	fmt.Fprintf(&b, "Hi %s,\n\n", greeting)
	fmt.Fprintf(&b, "%s invited you to join the team %s", invite.InviterName, invite.TeamName)
	if invite.Role != "" {
		fmt.Fprintf(&b, " as %s", invite.Role)
	}
	b.WriteString(".\n")
	if invite.Message != "" {
		fmt.Fprintf(&b, "\n\"%s\"\n", invite.Message)
	}
	b.WriteString("\nOpen TeamSync to accept or decline before the invite expires.\n")
	return b.String()
}
