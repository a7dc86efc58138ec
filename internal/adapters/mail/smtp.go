package mail

import (
	"context"
	"fmt"

	"atw-marketplace/internal/config"
	"atw-marketplace/internal/core/services"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer delivers emails through an SMTP relay
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
}

// NewSMTPMailer creates a mailer from MAIL_* settings
func NewSMTPMailer(cfg config.MailConfig) *SMTPMailer {
	return &SMTPMailer{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

// Send dials the relay and sends one message. gomail has no context support,
// so a cancelled ctx abandons the wait but not the in-flight SMTP session.
func (m *SMTPMailer) Send(ctx context.Context, email services.Email) error {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", email.To)
	msg.SetHeader("Subject", email.Subject)
	msg.SetBody("text/html", email.HTML)

	done := make(chan error, 1)
	go func() { done <- m.dialer.DialAndSend(msg) }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("smtp send: %w", err)
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// LogMailer only logs outgoing emails; used when no SMTP host is configured
type LogMailer struct {
	log *zap.Logger
}

// NewLogMailer creates a logging mailer
func NewLogMailer(log *zap.Logger) *LogMailer {
	return &LogMailer{log: log.Named("mail")}
}

func (m *LogMailer) Send(_ context.Context, email services.Email) error {
	m.log.Info("email not sent, SMTP disabled",
		zap.String("to", email.To),
		zap.String("kind", email.Kind),
		zap.String("subject", email.Subject),
	)
	return nil
}

// NewMailer picks the SMTP mailer when configured and the log mailer otherwise
func NewMailer(cfg config.MailConfig, log *zap.Logger) services.Mailer {
	if cfg.Enabled() {
		return NewSMTPMailer(cfg)
	}
	return NewLogMailer(log)
}
