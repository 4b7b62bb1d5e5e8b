package contact

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// User is a submitter identified by email. The first name seen for an email is kept.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	Email     string    `bun:"email,unique,notnull,type:varchar(254)" json:"email"`
	Name      string    `bun:"name,notnull,type:varchar(100)" json:"name"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`
}

// Message is one stored submission. Messages are only ever inserted.
type Message struct {
	bun.BaseModel `bun:"table:messages,alias:m"`

	ID        int64     `bun:"id,pk,autoincrement" json:"id"`
	UserID    int64     `bun:"user_id,notnull" json:"userId"`
	Subject   string    `bun:"subject,notnull,type:varchar(200)" json:"subject"`
	Message   string    `bun:"message,notnull,type:text" json:"message"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp" json:"createdAt"`

	// Filled by joined reads only
	Email string `bun:"email,scanonly" json:"email,omitempty"`
}

var _ bun.BeforeCreateTableHook = (*Message)(nil)

func (*Message) BeforeCreateTable(_ context.Context, query *bun.CreateTableQuery) error {
	query.ForeignKey(`("user_id") REFERENCES "users" ("id") ON DELETE CASCADE`)
	return nil
}

// Models lists the tables in creation order.
func Models() []any {
	return []any{(*User)(nil), (*Message)(nil)}
}

// MessageEvent is published after a submission has been stored.
type MessageEvent struct {
	MessageID int64     `json:"messageId"`
	UserID    int64     `json:"userId"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Subject   string    `json:"subject"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
}

// PartitionKey keeps all events of one submitter on one Kafka partition.
func (e MessageEvent) PartitionKey() string {
	return e.Email
}

type SendResponse struct {
	Message string `json:"message"`
}

type ValidationErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields"`
}

type MessagesResponse struct {
	Messages []*Message `json:"messages"`
}
