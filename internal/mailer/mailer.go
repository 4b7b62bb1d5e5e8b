package mailer

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
)

// Email is one outbound message. From and To come from configuration.
type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends email through an external provider. Implementations are
// created once at startup and shared by all requests.
type Mailer interface {
	Send(ctx context.Context, email Email) (string, error)
}

var greetingTmpl = template.Must(template.New("greeting").Parse(
	`<div><h1>Welcome, {{.}}!</h1></div>`,
))

// RenderGreeting returns the HTML and plain text bodies for name.
func RenderGreeting(name string) (html string, text string, err error) {
	var buf bytes.Buffer
	if err := greetingTmpl.Execute(&buf, name); err != nil {
		return "", "", fmt.Errorf("render greeting: %w", err)
	}
	return buf.String(), "Welcome, " + name + "!", nil
}

// LogMailer only logs. It backs the "log" driver for local runs.
type LogMailer struct {
	logger *slog.Logger
}

func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) Send(ctx context.Context, email Email) (string, error) {
	m.logger.InfoContext(ctx, "email not sent (log driver)",
		"from", email.From,
		"to", strings.Join(email.To, ","),
		"subject", email.Subject,
	)
	return "log", nil
}
