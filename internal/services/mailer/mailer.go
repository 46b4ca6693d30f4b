// Copyright 2025 The Unimatch Authors
// Licensed under the EUPL-1.2

// Package mailer delivers password-reset links. Without an SMTP host
// configured, the message body is logged instead of sent, which keeps
// local development working without a mail server.
package mailer

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"

	"github.com/hexago/unimatch/internal/config"
)

const resetBodyTemplate = `Hello,
You requested a password reset. Click the link below to reset your password:

    %s

If you did not request a password reset, please ignore this email.
`

// Service sends transactional email.
type Service struct {
	cfg     *config.SMTPConfig
	baseURL string
}

// NewService creates a mailer. cfg.Host may be empty.
func NewService(cfg *config.SMTPConfig, baseURL string) *Service {
	return &Service{
		cfg:     cfg,
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
}

// ResetLink builds the password-reset link for a key.
func (s *Service) ResetLink(resetKey string) string {
	return fmt.Sprintf("%s/update-password?key=%s", s.baseURL, resetKey)
}

// SendResetKey delivers the reset link to the user.
func (s *Service) SendResetKey(toEmail, resetKey string) error {
	body := fmt.Sprintf(resetBodyTemplate, s.ResetLink(resetKey))

	if s.cfg.Host == "" {
		slog.Info("reset_email_logged", "to", toEmail, "body", body)
		return nil
	}

	return s.send(toEmail, "Password reset", body)
}

// send sends an email via SMTP using go-mail.
func (s *Service) send(to, subject, body string) error {
	msg := mail.NewMsg()

	if s.cfg.FromName != "" {
		if err := msg.FromFormat(s.cfg.FromName, s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	} else {
		if err := msg.From(s.cfg.From); err != nil {
			return fmt.Errorf("setting from address: %w", err)
		}
	}

	if err := msg.To(to); err != nil {
		return fmt.Errorf("setting to address: %w", err)
	}

	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
	}

	if s.cfg.TLS {
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
		// Implicit TLS for port 465, STARTTLS for others
		if s.cfg.Port == 465 {
			opts = append(opts, mail.WithSSL())
		}
	} else {
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	}

	if s.cfg.Username != "" && s.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("creating mail client: %w", err)
	}

	if err := client.DialAndSend(msg); err != nil {
		return fmt.Errorf("sending email: %w", err)
	}

	return nil
}
