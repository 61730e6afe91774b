// Package mailer sends transactional email. Implementations can be swapped
// (SendGrid, log-only) without changing callers.
package mailer

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Message represents an email to be sent.
type Message struct {
	To      string
	ToName  string
	Subject string
	Body    string
}

// EmailSender is the interface consumed by the password-reset flow.
type EmailSender interface {
	Send(ctx context.Context, msg Message) error
}

// SendGridSender sends email via the SendGrid API.
type SendGridSender struct {
	client    *sendgrid.Client
	fromEmail string
	fromName  string
	logger    zerolog.Logger
}

// Config holds SendGrid settings.
type Config struct {
	APIKey    string
	FromEmail string
	FromName  string
}

func NewSendGridSender(cfg Config, logger zerolog.Logger) *SendGridSender {
	if cfg.FromName == "" {
		cfg.FromName = "Clinica"
	}
	return &SendGridSender{
		client:    sendgrid.NewSendClient(cfg.APIKey),
		fromEmail: cfg.FromEmail,
		fromName:  cfg.FromName,
		logger:    logger,
	}
}

func (s *SendGridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	to := mail.NewEmail(msg.ToName, msg.To)
	message := mail.NewSingleEmail(from, msg.Subject, to, msg.Body, msg.Body)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		s.logger.Error().Err(err).Str("to", msg.To).Msg("sendgrid send failed")
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		s.logger.Error().Int("status", response.StatusCode).Str("to", msg.To).Msg("sendgrid rejected message")
		return fmt.Errorf("sendgrid returned status %d", response.StatusCode)
	}
	return nil
}

// LogSender writes the message to the log instead of delivering it. Used in
// development when no SendGrid key is configured.
type LogSender struct {
	Logger zerolog.Logger
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.Logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("email (log only)")
	return nil
}
