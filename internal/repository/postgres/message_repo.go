package postgres

import (
	"context"
	"database/sql"

	"weddingsite/internal/domain"
)

type messageRepository struct {
	DB *sql.DB
}

func NewMessageRepository(db *sql.DB) domain.MessageRepository {
	return &messageRepository{DB: db}
}

func (r *messageRepository) Create(ctx context.Context, m *domain.Message) error {
	query := `
		INSERT INTO messages (guest_token, guest_name, content, status, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query, m.GuestToken, m.GuestName, m.Content, m.Status, m.CreatedAt).Scan(&m.ID)
}

func (r *messageRepository) List(ctx context.Context) ([]*domain.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, guest_token, guest_name, content, status, created_at
		FROM messages
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	messages := make([]*domain.Message, 0)
	for rows.Next() {
		m := &domain.Message{}
		if err := rows.Scan(&m.ID, &m.GuestToken, &m.GuestName, &m.Content, &m.Status, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

func (r *messageRepository) CountByStatus(ctx context.Context, status domain.MessageStatus) (int, error) {
	var n int
	err := r.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM messages WHERE status = $1`, status).Scan(&n)
	return n, err
}

func (r *messageRepository) MarkRead(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE messages SET status = $2 WHERE id = $1`, id, domain.MessageRead)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
