package chat

import (
	"context"
	"errors"
	"time"
)

var ErrEmptyBody = errors.New("message body is empty")

// Role identifies who sent a message.
type Role string

const (
	RoleVisitor Role = "visitor"
	RoleStaff   Role = "staff"
)

// Message is one entry in a chat-widget transcript. Transcripts are keyed
// by the visitor's cart session id so staff can see the cart context.
type Message struct {
	SessionID string    `bson:"session_id" json:"sessionId"`
	Role      Role      `bson:"role" json:"role"`
	Body      string    `bson:"body" json:"body"`
	SentAt    time.Time `bson:"sent_at" json:"sentAt"`
}

// Repository stores and retrieves chat transcripts.
type Repository interface {
	Append(ctx context.Context, msg *Message) error
	History(ctx context.Context, sessionID string) ([]Message, error)
}
