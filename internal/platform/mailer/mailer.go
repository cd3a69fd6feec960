// Copyright (c) 2026 Workhive. All rights reserved.
// Author: platform@workhive.app

/*
Package mailer provides outbound email delivery for the platform.

Architecture:

  - Mailer: Capability interface consumed by the auth and account services.
  - LogMailer: Development/test implementation that writes messages to the
    structured log instead of sending them.
  - SMTPMailer: Production implementation delivering over a configured relay.

Every send in the auth flows is best-effort: failures are logged by the
caller and never allowed to fail the enclosing operation. Provider selection
happens in [New] from configuration — the auth core never branches on the
delivery mechanism.
*/
package mailer

import (
	"context"
	"fmt"
	"log/slog"
	"net/smtp"
	"strings"

	"github.com/workhive/workhive/internal/platform/config"
)

// Mailer is the outbound notification contract used by the domain services.
type Mailer interface {
	// SendWelcome greets a newly registered user.
	SendWelcome(ctx context.Context, email, displayName string) error

	// SendVerification delivers the email ownership verification token.
	SendVerification(ctx context.Context, email, token string) error

	// SendPasswordReset delivers the plaintext password reset token.
	// The token is single-use and expires after one hour.
	SendPasswordReset(ctx context.Context, email, token string) error

	// SendBackupCodes delivers the freshly generated MFA backup codes.
	// This is the only time the plaintext codes leave the server.
	SendBackupCodes(ctx context.Context, email string, codes []string) error
}

// New selects a [Mailer] implementation from configuration.
func New(cfg *config.Config, logger *slog.Logger) Mailer {
	if cfg.MailerDriver == "smtp" {
		return &SMTPMailer{
			addr: cfg.SMTPHost + ":" + cfg.SMTPPort,
			auth: smtp.PlainAuth("", cfg.SMTPUsername, cfg.SMTPPassword, cfg.SMTPHost),
			from: cfg.MailFrom,
		}
	}
	return &LogMailer{logger: logger}
}

// # Log Mailer (development / tests)

// LogMailer writes outbound messages to the structured log.
type LogMailer struct {
	logger *slog.Logger
}

// NewLogMailer constructs a LogMailer. Intended for tests.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// SendWelcome implements [Mailer].
func (m *LogMailer) SendWelcome(ctx context.Context, email, displayName string) error {
	m.logger.InfoContext(ctx, "mail_welcome", slog.String("to", email), slog.String("name", displayName))
	return nil
}

// SendVerification implements [Mailer].
func (m *LogMailer) SendVerification(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "mail_verification", slog.String("to", email), slog.String("token", token))
	return nil
}

// SendPasswordReset implements [Mailer].
func (m *LogMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	m.logger.InfoContext(ctx, "mail_password_reset", slog.String("to", email), slog.String("token", token))
	return nil
}

// SendBackupCodes implements [Mailer].
func (m *LogMailer) SendBackupCodes(ctx context.Context, email string, codes []string) error {
	m.logger.InfoContext(ctx, "mail_backup_codes",
		slog.String("to", email),
		slog.Int("count", len(codes)),
	)
	return nil
}

// # SMTP Mailer (production)

// SMTPMailer delivers plain-text messages over an SMTP relay.
type SMTPMailer struct {
	addr string
	auth smtp.Auth
	from string
}

// SendWelcome implements [Mailer].
func (m *SMTPMailer) SendWelcome(ctx context.Context, email, displayName string) error {
	body := fmt.Sprintf("Hi %s,\n\nWelcome to Workhive! Your 14-day trial has started.\n", displayName)
	return m.send(email, "Welcome to Workhive", body)
}

// SendVerification implements [Mailer].
func (m *SMTPMailer) SendVerification(ctx context.Context, email, token string) error {
	body := fmt.Sprintf("Confirm your email address:\n\nhttps://workhive.app/verify-email?token=%s\n", token)
	return m.send(email, "Verify your Workhive email", body)
}

// SendPasswordReset implements [Mailer].
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, email, token string) error {
	body := fmt.Sprintf("Reset your password (link expires in 1 hour):\n\nhttps://workhive.app/reset-password?token=%s\n\nIf you did not request this, ignore this email.\n", token)
	return m.send(email, "Reset your Workhive password", body)
}

// SendBackupCodes implements [Mailer].
func (m *SMTPMailer) SendBackupCodes(ctx context.Context, email string, codes []string) error {
	body := fmt.Sprintf("Your MFA backup codes. Each works exactly once — store them safely:\n\n%s\n\nThey will never be shown again.\n", strings.Join(codes, "\n"))
	return m.send(email, "Your Workhive backup codes", body)
}

// send assembles the RFC 5322 message and hands it to the relay.
func (m *SMTPMailer) send(to, subject, body string) error {
	message := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	if err := smtp.SendMail(m.addr, m.auth, m.from, []string{to}, []byte(message)); err != nil {
		return fmt.Errorf("mailer: smtp send failed: %w", err)
	}
	return nil
}
