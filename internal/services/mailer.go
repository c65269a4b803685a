package services

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/eris-monitor/backend/internal/config"
	"github.com/eris-monitor/backend/internal/models"
	"go.uber.org/zap"
)

// Mailer sends critical-error broadcasts over plain SMTP. When no SMTP host
// is configured it degrades to a no-op so local setups work without a relay.
type Mailer struct {
	cfg *config.Config
	log *zap.Logger
}

func NewMailer(cfg *config.Config, log *zap.Logger) *Mailer {
	return &Mailer{cfg: cfg, log: log}
}

func (m *Mailer) SendCriticalAlert(ctx context.Context, appName string, logRec *models.ErrorLog, recipients []string) error {
	if m.cfg.SMTPHost == "" {
		m.log.Debug("smtp not configured, skipping critical alert")
		return nil
	}

	subject := fmt.Sprintf("[CRITICAL] %s: %s", appName, truncate(logRec.Message, 80))
	body := fmt.Sprintf(
		"A critical error was reported.\r\n\r\nApplication: %s\r\nSeverity: %s\r\nTime: %s\r\n\r\nMessage:\r\n%s\r\n",
		appName, logRec.Severity, logRec.CreatedAt.Format("2006-01-02 15:04:05 MST"), logRec.Message,
	)
	if logRec.StackTrace != nil && *logRec.StackTrace != "" {
		body += fmt.Sprintf("\r\nStack trace:\r\n%s\r\n", truncate(*logRec.StackTrace, 4000))
	}

	msg := strings.Join([]string{
		"From: " + m.cfg.SMTPFrom,
		"To: " + strings.Join(recipients, ", "),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=UTF-8",
		"",
		body,
	}, "\r\n")

	var auth smtp.Auth
	if m.cfg.SMTPUsername != "" {
		auth = smtp.PlainAuth("", m.cfg.SMTPUsername, m.cfg.SMTPPassword, m.cfg.SMTPHost)
	}

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, m.cfg.SMTPFrom, recipients, []byte(msg))
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
