package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"contact-service/internal/auth"
	"contact-service/internal/contact"
	"contact-service/internal/health"
	"contact-service/internal/logger"
	"contact-service/internal/mailer"
	"contact-service/internal/metrics"
	"contact-service/internal/middleware"
	"contact-service/pkg/submission"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryRepository struct {
	messages []*contact.Message
}

func (r *memoryRepository) SaveSubmission(_ context.Context, sub submission.Submission) (*contact.User, *contact.Message, error) {
	user := &contact.User{ID: 1, Email: sub.Email, Name: sub.Name}
	msg := &contact.Message{ID: int64(len(r.messages) + 1), UserID: user.ID, Subject: sub.Subject, Message: sub.Message, Email: sub.Email}
	r.messages = append(r.messages, msg)
	return user, msg, nil
}

func (r *memoryRepository) GetMessagesByEmail(_ context.Context, email string) ([]*contact.Message, error) {
	var out []*contact.Message
	for _, m := range r.messages {
		if m.Email == email {
			out = append(out, m)
		}
	}
	return out, nil
}

const testSecret = "router-test-secret"

func newTestRouter(t *testing.T, secret string) chi.Router {
	t.Helper()

	log := logger.Discard()
	m := metrics.NewMock()
	service := contact.NewService(&memoryRepository{}, mailer.NewLogMailer(log), nil, contact.Envelope{
		From: "Portfolio <noreply@example.com>",
		To:   []string{"owner@example.com"},
	}, log, m)

	return NewRouter(RouterConfig{
		Contact:     contact.NewHandler(service, log, m),
		Health:      health.NewHandler(log),
		CORSOrigins: []string{"http://localhost:3000"},
		JWTSecret:   secret,
		Logger:      log,
	})
}

func do(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(r, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))
}

func TestRouter_SendThenList(t *testing.T) {
	r := newTestRouter(t, testSecret)

	body := `{"name":"Alice","email":"Alice@Example.com","subject":"Hello there","message":"I would like to work with you."}`
	req := httptest.NewRequest(http.MethodPost, contact.SendPath, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "http://localhost:3000")

	w := do(r, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"Message Sent Successfully"}`, w.Body.String())
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	token, err := auth.IssueToken([]byte(testSecret), "admin", auth.RoleAdmin, time.Minute)
	require.NoError(t, err)

	list := httptest.NewRequest(http.MethodGet, "/api/admin/messages?email=alice@example.com", nil)
	list.Header.Set("Authorization", "Bearer "+token)

	w = do(r, list)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"subject":"Hello there"`)
}

func TestRouter_AdminRequiresToken(t *testing.T) {
	r := newTestRouter(t, testSecret)

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/admin/messages?email=a@example.com", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AdminDisabledWithoutSecret(t *testing.T) {
	r := newTestRouter(t, "")

	w := do(r, httptest.NewRequest(http.MethodGet, "/api/admin/messages?email=a@example.com", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
