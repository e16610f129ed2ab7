// Package mail delivers digest emails through SendGrid.
package mail

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	sendgrid "github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// apiClient is the slice of the SendGrid client the sender needs.
type apiClient interface {
	Send(email *sgmail.SGMailV3) (*rest.Response, error)
}

// Config holds delivery settings. Delivery is optional; an empty API
// key or recipient disables the sender.
type Config struct {
	APIKey         string
	SenderEmail    string
	SenderName     string
	RecipientEmail string
}

// Sender sends HTML digests to the configured recipient.
type Sender struct {
	cfg    Config
	client apiClient
	logger zerolog.Logger
}

func NewSender(cfg Config, logger zerolog.Logger) *Sender {
	sender := &Sender{cfg: cfg, logger: logger}
	if sender.Enabled() {
		sender.client = sendgrid.NewSendClient(cfg.APIKey)
	}
	return sender
}

// Enabled reports whether delivery is configured.
func (s *Sender) Enabled() bool {
	return strings.TrimSpace(s.cfg.APIKey) != "" && strings.TrimSpace(s.cfg.RecipientEmail) != ""
}

// SendDigest delivers one HTML report. Calling an unconfigured sender
// is a no-op, not an error, so runs without delivery settings still
// complete.
func (s *Sender) SendDigest(subject, htmlContent string) error {
	if !s.Enabled() {
		s.logger.Info().Msg("email delivery not configured, skipping digest send")
		return nil
	}

	from := sgmail.NewEmail(s.cfg.SenderName, s.cfg.SenderEmail)
	to := sgmail.NewEmail("", s.cfg.RecipientEmail)
	message := sgmail.NewSingleEmail(from, subject, to, "", htmlContent)

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("send digest: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("send digest: status %d: %s", resp.StatusCode, strings.TrimSpace(resp.Body))
	}

	s.logger.Info().
		Str("recipient", s.cfg.RecipientEmail).
		Int("status", resp.StatusCode).
		Msg("digest email sent")
	return nil
}
