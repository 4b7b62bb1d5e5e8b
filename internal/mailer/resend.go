package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

// ResendMailer delivers through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
	logger *slog.Logger
}

// NewResendMailer builds the long-lived Resend client. baseURL is optional and
// only set for tests or a proxy.
func NewResendMailer(apiKey, baseURL string, logger *slog.Logger) (*ResendMailer, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is empty")
	}

	client := resend.NewClient(apiKey)
	if baseURL != "" {
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		u, err := url.Parse(baseURL)
		if err != nil {
			return nil, fmt.Errorf("invalid resend base url: %w", err)
		}
		client.BaseURL = u
	}

	logger.Info("resend mailer initialized", "base_url", client.BaseURL.String())

	return &ResendMailer{client: client, logger: logger}, nil
}

func (m *ResendMailer) Send(ctx context.Context, email Email) (string, error) {
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
		Text:    email.Text,
	})
	if err != nil {
		m.logger.ErrorContext(ctx, "resend rejected email", "error", err, "subject", email.Subject)
		return "", fmt.Errorf("resend: %w", err)
	}

	m.logger.InfoContext(ctx, "email sent", "provider_id", sent.Id)
	return sent.Id, nil
}
