// Package service implements the application's business logic on top of
// the repository layer. Services own transactional flows like signup and
// the password reset handshake; handlers stay thin.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/acgeoffrey/budget-tracker-api/internal/config"
	"github.com/acgeoffrey/budget-tracker-api/internal/utils"
)

// EmailSender delivers outbound mail. The auth service depends on this
// interface so tests can capture the reset token instead of sending it.
type EmailSender interface {
	SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string, expiresIn time.Duration) error
}

// SendGridSender delivers mail through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
	from   *mail.Email
}

// NewSendGridSender creates an EmailSender backed by SendGrid.
func NewSendGridSender(cfg *config.EmailSettings) *SendGridSender {
	return &SendGridSender{
		client: sendgrid.NewSendClient(cfg.SendGridAPIKey),
		from:   mail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// SendPasswordReset sends the password reset email carrying the one-time
// reset link.
func (s *SendGridSender) SendPasswordReset(ctx context.Context, toEmail, toName, resetURL string, expiresIn time.Duration) error {
	to := mail.NewEmail(toName, toEmail)
	subject := fmt.Sprintf("Your password reset token (valid for %d minutes)", int(expiresIn.Minutes()))

	plainText := fmt.Sprintf(
		"Forgot your password? Submit a PATCH request with your new password to: %s\n"+
			"If you didn't forget your password, please ignore this email.",
		resetURL,
	)
	htmlContent := fmt.Sprintf(
		`<p>Forgot your password? <a href="%s">Reset it here</a>.</p>`+
			`<p>If you didn't forget your password, please ignore this email.</p>`,
		resetURL,
	)

	message := mail.NewSingleEmail(s.from, subject, to, plainText, htmlContent)

	response, err := s.client.SendWithContext(ctx, message)
	if err != nil {
		log.Error().
			Err(err).
			Str("to", utils.MaskEmail(toEmail)).
			Msg("Failed to send password reset email")
		return fmt.Errorf("failed to send password reset email: %w", err)
	}

	if response.StatusCode >= 400 {
		log.Error().
			Int("status_code", response.StatusCode).
			Str("to", utils.MaskEmail(toEmail)).
			Msg("Password reset email rejected by provider")
		return fmt.Errorf("password reset email rejected with status %d", response.StatusCode)
	}

	log.Info().
		Str("to", utils.MaskEmail(toEmail)).
		Int("status_code", response.StatusCode).
		Msg("Password reset email sent")

	return nil
}
