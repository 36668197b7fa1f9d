package domain

import "context"

// SettingPhotoAutoApprove is the app_settings key of the photo auto-approve toggle.
const SettingPhotoAutoApprove = "photo_auto_approve"

// SettingsRepository stores admin-controlled toggles.
type SettingsRepository interface {
	GetBool(ctx context.Context, key string, fallback bool) (bool, error)
	SetBool(ctx context.Context, key string, value bool) error
}

// SettingsService exposes the toggles to the admin API.
type SettingsService interface {
	PhotoAutoApprove(ctx context.Context) (bool, error)
	SetPhotoAutoApprove(ctx context.Context, enabled bool) error
}
