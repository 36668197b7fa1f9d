package domain

import (
	"context"
	"time"
)

// MessageStatus tracks whether an admin has read a message.
type MessageStatus string

const (
	MessageUnread MessageStatus = "unread"
	MessageRead   MessageStatus = "read"
)

// Message is a note a guest leaves for the couple.
type Message struct {
	ID         string        `json:"id"`
	GuestToken string        `json:"guestToken"`
	GuestName  string        `json:"guestName"`
	Content    string        `json:"message"`
	Status     MessageStatus `json:"status"`
	CreatedAt  time.Time     `json:"createdAt"`
}

// MessageRepository persists messages.
type MessageRepository interface {
	Create(ctx context.Context, m *Message) error
	List(ctx context.Context) ([]*Message, error)
	CountByStatus(ctx context.Context, status MessageStatus) (int, error)
	MarkRead(ctx context.Context, id string) error
}

// MessageService defines guest messaging.
type MessageService interface {
	Send(ctx context.Context, guestToken, guestName, content string) (*Message, error)
	List(ctx context.Context) (messages []*Message, unread int, err error)
	MarkRead(ctx context.Context, id string) error
}
