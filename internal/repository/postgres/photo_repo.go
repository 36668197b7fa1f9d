package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"weddingsite/internal/domain"
)

const photoColumns = `id, file_name, object_key, thumbnail_key, content_type, file_size, status, uploaded_by, guest_token, uploaded_at, moderated_at`

func scanPhoto(s rowScanner) (*domain.Photo, error) {
	p := &domain.Photo{}
	var guestToken sql.NullString
	var moderatedAt sql.NullTime
	err := s.Scan(&p.ID, &p.FileName, &p.ObjectKey, &p.ThumbnailKey, &p.ContentType, &p.FileSize,
		&p.Status, &p.UploadedBy, &guestToken, &p.UploadedAt, &moderatedAt)
	if err != nil {
		return nil, err
	}
	p.GuestToken = guestToken.String
	if moderatedAt.Valid {
		p.ModeratedAt = &moderatedAt.Time
	}
	return p, nil
}

type photoRepository struct {
	DB *sql.DB
}

func NewPhotoRepository(db *sql.DB) domain.PhotoRepository {
	return &photoRepository{DB: db}
}

func (r *photoRepository) Create(ctx context.Context, p *domain.Photo) error {
	query := `
		INSERT INTO photos (file_name, object_key, thumbnail_key, content_type, file_size, status, uploaded_by, guest_token, uploaded_at, moderated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		p.FileName, p.ObjectKey, p.ThumbnailKey, p.ContentType, p.FileSize, p.Status,
		p.UploadedBy, nullString(p.GuestToken), p.UploadedAt, p.ModeratedAt,
	).Scan(&p.ID)
}

func (r *photoRepository) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	p, err := scanPhoto(r.DB.QueryRowContext(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return p, nil
}

func (r *photoRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Photo, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	photos := make([]*domain.Photo, 0)
	for rows.Next() {
		p, err := scanPhoto(rows)
		if err != nil {
			return nil, err
		}
		photos = append(photos, p)
	}
	return photos, rows.Err()
}

func (r *photoRepository) List(ctx context.Context) ([]*domain.Photo, error) {
	return r.list(ctx, `SELECT `+photoColumns+` FROM photos ORDER BY uploaded_at DESC`)
}

func (r *photoRepository) ListByStatus(ctx context.Context, status domain.PhotoStatus, oldestFirst bool) ([]*domain.Photo, error) {
	order := "DESC"
	if oldestFirst {
		order = "ASC"
	}
	return r.list(ctx, `SELECT `+photoColumns+` FROM photos WHERE status = $1 ORDER BY uploaded_at `+order, status)
}

func (r *photoRepository) ListByIDs(ctx context.Context, ids []string) ([]*domain.Photo, error) {
	return r.list(ctx, `SELECT `+photoColumns+` FROM photos WHERE id = ANY($1::uuid[]) ORDER BY uploaded_at ASC`, pq.Array(ids))
}

func (r *photoRepository) UpdateStatus(ctx context.Context, id string, from, to domain.PhotoStatus, at time.Time) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE photos SET status = $2, moderated_at = $3 WHERE id = $1 AND status = $4`,
		id, to, at, from,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: photo %s is no longer %s", domain.ErrConflict, id, from)
	}
	return nil
}

func (r *photoRepository) Delete(ctx context.Context, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM photos WHERE id = $1`, id)
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
