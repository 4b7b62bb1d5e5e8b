package contact_test

import (
	"context"
	"sync"
	"time"

	"contact-service/internal/contact"
	"contact-service/internal/mailer"
	"contact-service/pkg/submission"
)

type fakeMailer struct {
	mu   sync.Mutex
	sent []mailer.Email
	err  error
}

func (m *fakeMailer) Send(_ context.Context, email mailer.Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.err != nil {
		return "", m.err
	}
	m.sent = append(m.sent, email)
	return "fake-id", nil
}

func (m *fakeMailer) Sent() []mailer.Email {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]mailer.Email(nil), m.sent...)
}

type fakeRepository struct {
	mu    sync.Mutex
	saved []submission.Submission
	err   error
}

func (r *fakeRepository) SaveSubmission(_ context.Context, sub submission.Submission) (*contact.User, *contact.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.err != nil {
		return nil, nil, r.err
	}
	r.saved = append(r.saved, sub)
	id := int64(len(r.saved))
	user := &contact.User{ID: 1, Email: sub.Email, Name: sub.Name, CreatedAt: time.Now()}
	msg := &contact.Message{ID: id, UserID: 1, Subject: sub.Subject, Message: sub.Message, Email: sub.Email, CreatedAt: time.Now()}
	return user, msg, nil
}

func (r *fakeRepository) GetMessagesByEmail(_ context.Context, email string) ([]*contact.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*contact.Message
	for i, s := range r.saved {
		if s.Email == email {
			out = append(out, &contact.Message{ID: int64(i + 1), Subject: s.Subject, Message: s.Message, Email: s.Email})
		}
	}
	return out, nil
}

func (r *fakeRepository) Saved() []submission.Submission {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]submission.Submission(nil), r.saved...)
}

type fakePublisher struct {
	mu     sync.Mutex
	events []any
	err    error
}

func (p *fakePublisher) SendMessage(_ context.Context, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, value)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

func (p *fakePublisher) Events() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.events...)
}
