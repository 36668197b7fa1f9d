package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"weddingsite/internal/domain"
)

const maxMessageLength = 5000

type messageService struct {
	messages       domain.MessageRepository
	contextTimeout time.Duration
}

func NewMessageService(messages domain.MessageRepository, timeout time.Duration) domain.MessageService {
	return &messageService{messages: messages, contextTimeout: timeout}
}

func (s *messageService) Send(ctx context.Context, guestToken, guestName, content string) (*domain.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	m := &domain.Message{
		GuestToken: strings.TrimSpace(guestToken),
		GuestName:  strings.TrimSpace(guestName),
		Content:    strings.TrimSpace(content),
		Status:     domain.MessageUnread,
		CreatedAt:  time.Now(),
	}
	v := domain.NewValidationError()
	if m.GuestToken == "" {
		v.Add("guestToken", "is required")
	}
	if m.GuestName == "" {
		v.Add("guestName", "is required")
	}
	if m.Content == "" {
		v.Add("message", "is required")
	} else if len(m.Content) > maxMessageLength {
		v.Add("message", fmt.Sprintf("must be at most %d characters", maxMessageLength))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	if err := s.messages.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

func (s *messageService) List(ctx context.Context) ([]*domain.Message, int, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	messages, err := s.messages.List(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("list messages: %w", err)
	}
	unread, err := s.messages.CountByStatus(ctx, domain.MessageUnread)
	if err != nil {
		return nil, 0, fmt.Errorf("count unread: %w", err)
	}
	return messages, unread, nil
}

func (s *messageService) MarkRead(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.messages.MarkRead(ctx, id)
}
