package utils

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"registration-backend/config"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// Mailer sends notification mail over SMTP, throttled to protect the relay.
type Mailer struct {
	dialer  *gomail.Dialer
	from    string
	limiter *rate.Limiter
}

// NewMailerFromEnv sets up the mailer using SMTP_* environment variables.
// It returns nil when SMTP_HOST is not configured.
func NewMailerFromEnv() *Mailer {
	mailHost := config.GetEnv("SMTP_HOST")
	if mailHost == "" {
		config.Logger.Warn("SMTP_HOST not set, import report emails are disabled")
		return nil
	}

	mailPort := config.GetEnvDefault("SMTP_PORT", "25")
	port, err := strconv.Atoi(mailPort)
	if err != nil {
		config.Logger.Error("Invalid SMTP_PORT value, defaulting to port 25",
			zap.String("provided_port", mailPort),
			zap.Error(err),
		)
		port = 25
	}

	mailer := &Mailer{
		dialer:  gomail.NewDialer(mailHost, port, config.GetEnv("SMTP_USER"), config.GetEnv("SMTP_PASSWORD")),
		from:    config.GetEnv("SMTP_FROM"),
		limiter: rate.NewLimiter(rate.Every(2*time.Second), 5),
	}
	config.Logger.Info("Mailer initialized successfully", zap.String("host", mailHost), zap.Int("port", port))
	return mailer
}

// SendEmail sends a plain-text email with an optional attachment.
func (m *Mailer) SendEmail(ctx context.Context, to, subject, body, attachmentPath string) error {
	if err := m.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("email rate limiter: %w", err)
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if attachmentPath != "" {
		if _, err := os.Stat(attachmentPath); err == nil {
			msg.Attach(attachmentPath)
		} else {
			// A missing attachment does not block the notification.
			config.Logger.Warn("Attachment file not found for email",
				zap.String("filepath", attachmentPath),
				zap.String("to_email", to),
				zap.Error(err),
			)
		}
	}

	if err := m.dialer.DialAndSend(msg); err != nil {
		config.Logger.Error("Failed to send email via SMTP",
			zap.String("to_email", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return fmt.Errorf("failed to send email: %w", err)
	}

	config.Logger.Info("Email sent successfully", zap.String("to_email", to), zap.String("subject", subject))
	return nil
}
