package contact

import (
	"context"
	"fmt"
	"time"

	"contact-service/internal/metrics"
	"contact-service/pkg/submission"

	"github.com/uptrace/bun"
)

type Repository interface {
	// SaveSubmission resolves the user by email and inserts the message in one
	// transaction. Either both are committed or neither is.
	SaveSubmission(ctx context.Context, sub submission.Submission) (*User, *Message, error)
	GetMessagesByEmail(ctx context.Context, email string) ([]*Message, error)
}

type repository struct {
	db      *bun.DB
	metrics *metrics.Metrics
}

func NewRepository(db *bun.DB, m *metrics.Metrics) Repository {
	return &repository{
		db:      db,
		metrics: m,
	}
}

func (r *repository) SaveSubmission(ctx context.Context, sub submission.Submission) (*User, *Message, error) {
	user := &User{Email: sub.Email, Name: sub.Name}
	msg := &Message{Subject: sub.Subject, Message: sub.Message}

	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := r.upsertUser(ctx, tx, user); err != nil {
			return fmt.Errorf("resolve user: %w", err)
		}

		msg.UserID = user.ID
		if err := r.insertMessage(ctx, tx, msg); err != nil {
			return fmt.Errorf("insert message: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	msg.Email = user.Email
	return user, msg, nil
}

// upsertUser inserts the user or, when the email exists, returns the stored
// row untouched. The no-op update makes RETURNING yield the existing row and
// locks it, so concurrent first submissions converge on one user.
func (r *repository) upsertUser(ctx context.Context, tx bun.Tx, user *User) error {
	start := time.Now()
	_, err := tx.NewInsert().
		Model(user).
		On("CONFLICT (email) DO UPDATE").
		Set("email = EXCLUDED.email").
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "upsert", "users", time.Since(start), err)
	return err
}

func (r *repository) insertMessage(ctx context.Context, tx bun.Tx, msg *Message) error {
	start := time.Now()
	_, err := tx.NewInsert().
		Model(msg).
		Returning("*").
		Exec(ctx)

	r.metrics.Database.RecordQuery(ctx, "insert", "messages", time.Since(start), err)
	return err
}

func (r *repository) GetMessagesByEmail(ctx context.Context, email string) ([]*Message, error) {
	start := time.Now()
	messages := make([]*Message, 0)
	err := r.db.NewSelect().
		Model(&messages).
		ColumnExpr("m.*").
		ColumnExpr("u.email AS email").
		Join("JOIN users AS u ON u.id = m.user_id").
		Where("u.email = ?", email).
		OrderExpr("m.created_at DESC, m.id DESC").
		Scan(ctx)

	r.metrics.Database.RecordQuery(ctx, "select", "messages", time.Since(start), err)

	return messages, err
}
