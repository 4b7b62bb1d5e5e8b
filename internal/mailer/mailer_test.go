package mailer_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"contact-service/internal/logger"
	"contact-service/internal/mailer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderGreeting(t *testing.T) {
	html, text, err := mailer.RenderGreeting("Alice")
	require.NoError(t, err)

	assert.Equal(t, "<div><h1>Welcome, Alice!</h1></div>", html)
	assert.Equal(t, "Welcome, Alice!", text)
}

func TestRenderGreeting_EscapesName(t *testing.T) {
	html, _, err := mailer.RenderGreeting(`<script>alert(1)</script>`)
	require.NoError(t, err)

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
}

func TestLogMailer(t *testing.T) {
	m := mailer.NewLogMailer(logger.Discard())

	id, err := m.Send(context.Background(), mailer.Email{From: "a@example.com", To: []string{"b@example.com"}, Subject: "Hi"})
	require.NoError(t, err)
	assert.Equal(t, "log", id)
}

func TestNewResendMailer_RequiresKey(t *testing.T) {
	_, err := mailer.NewResendMailer("", "", logger.Discard())
	assert.Error(t, err)
}

func TestResendMailer_Send(t *testing.T) {
	var got map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/emails", r.URL.Path)
		assert.Equal(t, "Bearer re_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer srv.Close()

	m, err := mailer.NewResendMailer("re_test", srv.URL, logger.Discard())
	require.NoError(t, err)

	id, err := m.Send(context.Background(), mailer.Email{
		From:    "Portfolio <noreply@example.com>",
		To:      []string{"owner@example.com"},
		Subject: "Hello",
		HTML:    "<div><h1>Welcome, Alice!</h1></div>",
		Text:    "Welcome, Alice!",
	})
	require.NoError(t, err)

	assert.Equal(t, "email_123", id)
	assert.Equal(t, "Portfolio <noreply@example.com>", got["from"])
	assert.Equal(t, []any{"owner@example.com"}, got["to"])
	assert.Equal(t, "Hello", got["subject"])
	assert.Equal(t, "<div><h1>Welcome, Alice!</h1></div>", got["html"])
}

func TestResendMailer_ProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"Invalid from field"}`))
	}))
	defer srv.Close()

	m, err := mailer.NewResendMailer("re_test", srv.URL, logger.Discard())
	require.NoError(t, err)

	_, err = m.Send(context.Background(), mailer.Email{From: "x", To: []string{"y@example.com"}, Subject: "Hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "resend")
}
