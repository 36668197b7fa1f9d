package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"weddingsite/internal/domain"
)

type settingsRepository struct {
	DB *sql.DB
}

func NewSettingsRepository(db *sql.DB) domain.SettingsRepository {
	return &settingsRepository{DB: db}
}

func (r *settingsRepository) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	var raw string
	err := r.DB.QueryRowContext(ctx, `SELECT value FROM app_settings WHERE key = $1`, key).Scan(&raw)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fallback, nil
		}
		return fallback, err
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, nil
	}
	return v, nil
}

func (r *settingsRepository) SetBool(ctx context.Context, key string, value bool) error {
	query := `
		INSERT INTO app_settings (key, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at
	`
	_, err := r.DB.ExecContext(ctx, query, key, strconv.FormatBool(value))
	return err
}
