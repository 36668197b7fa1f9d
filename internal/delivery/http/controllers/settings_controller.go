package controllers

import (
	"log/slog"
	"net/http"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// AutoApproveRequest is the request body for POST /api/admin/settings/auto-approve.
type AutoApproveRequest struct {
	Enabled *bool `json:"enabled"`
}

// Validate implements Validator.
func (req AutoApproveRequest) Validate() map[string]string {
	if req.Enabled == nil {
		return map[string]string{"enabled": "is required"}
	}
	return nil
}

// AutoApproveResponse is the current photo auto-approve setting.
type AutoApproveResponse struct {
	Enabled bool `json:"enabled"`
}

type SettingsController struct {
	Logger  *slog.Logger
	Service domain.SettingsService
}

func NewSettingsController(logger *slog.Logger, svc domain.SettingsService) *SettingsController {
	return &SettingsController{Logger: logger, Service: svc}
}

// GetAutoApprove godoc
// @Summary Photo auto-approve setting
// @Tags settings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data.enabled"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/admin/settings/auto-approve [get]
func (c *SettingsController) GetAutoApprove(w http.ResponseWriter, r *http.Request) {
	enabled, err := c.Service.PhotoAutoApprove(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, AutoApproveResponse{Enabled: enabled})
}

// SetAutoApprove godoc
// @Summary Change the photo auto-approve setting
// @Description Applies to uploads made after the change.
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body AutoApproveRequest true "Setting"
// @Success 200 {object} helpers.APIResponse "data.enabled"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/admin/settings/auto-approve [post]
func (c *SettingsController) SetAutoApprove(w http.ResponseWriter, r *http.Request) {
	var req AutoApproveRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	if err := c.Service.SetPhotoAutoApprove(r.Context(), *req.Enabled); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, AutoApproveResponse{Enabled: *req.Enabled})
}
