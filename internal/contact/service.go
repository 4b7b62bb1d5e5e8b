package contact

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"contact-service/internal/logger"
	"contact-service/internal/mailer"
	"contact-service/internal/metrics"
	"contact-service/pkg/submission"
)

var (
	ErrDelivery     = errors.New("email delivery failed")
	ErrPersistence  = errors.New("message persistence failed")
	ErrInvalidInput = errors.New("invalid input")
)

// Publisher interface for messaging (NATS/Kafka)
type Publisher interface {
	SendMessage(ctx context.Context, value any) error
	Close() error
}

// Envelope is the fixed sender and recipient list of every contact email.
type Envelope struct {
	From string
	To   []string
}

type Service struct {
	repo      Repository
	mailer    mailer.Mailer
	publisher Publisher
	envelope  Envelope
	logger    *slog.Logger
	metrics   *metrics.Metrics
}

// NewService wires the pipeline. publisher may be nil when no event bus is configured.
func NewService(repo Repository, m mailer.Mailer, publisher Publisher, envelope Envelope, logger *slog.Logger, metrics *metrics.Metrics) *Service {
	return &Service{
		repo:      repo,
		mailer:    m,
		publisher: publisher,
		envelope:  envelope,
		logger:    logger,
		metrics:   metrics,
	}
}

// Submit validates sub, emails it, then stores user and message.
//
// The email goes out before the transaction: a provider failure leaves no
// rows behind, while a store failure after a delivered email is reported as a
// failure and counted, with no compensation.
func (s *Service) Submit(ctx context.Context, sub submission.Submission) (*Message, error) {
	log := logger.FromContext(ctx, s.logger)

	sub = sub.Normalize()
	if fe := submission.Validate(sub); fe != nil {
		s.metrics.RecordSubmissionInvalid(ctx)
		return nil, fmt.Errorf("%w: %w", ErrInvalidInput, fe)
	}

	html, text, err := mailer.RenderGreeting(sub.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	providerID, err := s.mailer.Send(ctx, mailer.Email{
		From:    s.envelope.From,
		To:      s.envelope.To,
		Subject: sub.Subject,
		HTML:    html,
		Text:    text,
	})
	s.metrics.RecordDelivery(ctx, err)
	if err != nil {
		log.ErrorContext(ctx, "failed to send contact email", "error", err)
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	user, msg, err := s.repo.SaveSubmission(ctx, sub)
	s.metrics.RecordPersist(ctx, err)
	if err != nil {
		log.ErrorContext(ctx, "email delivered but submission not stored",
			"error", err,
			"provider_id", providerID,
			"email", sub.Email,
		)
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	log.InfoContext(ctx, "contact message stored",
		"message_id", msg.ID,
		"user_id", user.ID,
		"provider_id", providerID,
	)

	s.publish(ctx, log, user, msg)

	return msg, nil
}

func (s *Service) publish(ctx context.Context, log *slog.Logger, user *User, msg *Message) {
	if s.publisher == nil {
		return
	}

	event := MessageEvent{
		MessageID: msg.ID,
		UserID:    user.ID,
		Email:     user.Email,
		Name:      user.Name,
		Subject:   msg.Subject,
		Message:   msg.Message,
		CreatedAt: msg.CreatedAt,
	}

	err := s.publisher.SendMessage(ctx, event)
	s.metrics.RecordEvent(ctx, err)
	if err != nil {
		log.WarnContext(ctx, "failed to publish message event", "error", err, "message_id", msg.ID)
	}
}

func (s *Service) GetMessagesByEmail(ctx context.Context, email string) ([]*Message, error) {
	email = submission.Submission{Email: email}.Normalize().Email
	if email == "" {
		return nil, ErrInvalidInput
	}
	return s.repo.GetMessagesByEmail(ctx, email)
}
