package services

import (
	"context"
	"time"

	"weddingsite/internal/domain"
)

type settingsService struct {
	settings       domain.SettingsRepository
	contextTimeout time.Duration
}

func NewSettingsService(settings domain.SettingsRepository, timeout time.Duration) domain.SettingsService {
	return &settingsService{settings: settings, contextTimeout: timeout}
}

func (s *settingsService) PhotoAutoApprove(ctx context.Context) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.settings.GetBool(ctx, domain.SettingPhotoAutoApprove, false)
}

func (s *settingsService) SetPhotoAutoApprove(ctx context.Context, enabled bool) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.settings.SetBool(ctx, domain.SettingPhotoAutoApprove, enabled)
}
