package controllers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	h "weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"
)

// multipartOverhead is the allowance for form fields and boundaries on top of the file itself.
const multipartOverhead = 1 << 20

// PhotoIDsRequest is the request body for the bulk photo endpoints.
type PhotoIDsRequest struct {
	PhotoIDs []string `json:"photoIds"`
}

// Validate implements Validator.
func (req PhotoIDsRequest) Validate() map[string]string {
	return h.ValidateIDs("photoIds", req.PhotoIDs)
}

type PhotoController struct {
	Logger   *slog.Logger
	Service  domain.PhotoService
	MaxBytes int64
}

func NewPhotoController(logger *slog.Logger, svc domain.PhotoService, maxBytes int64) *PhotoController {
	return &PhotoController{
		Logger:   logger,
		Service:  svc,
		MaxBytes: maxBytes,
	}
}

// Upload godoc
// @Summary Upload a photo
// @Description Multipart upload of a JPEG, PNG, GIF or WebP image. The photo is pending or approved depending on the auto-approve setting.
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Param guestName formData string true "Uploader name"
// @Param guestToken formData string false "Guest portal token"
// @Success 201 {object} helpers.APIResponse "data contains the photo"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found (unknown guest token)"
// @Failure 413 {object} helpers.APIResponse "error.code: payload_too_large"
// @Router /api/photos/upload [post]
func (c *PhotoController) Upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, c.MaxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(c.MaxBytes + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.WriteJSONError(w, http.StatusRequestEntityTooLarge, h.ErrCodeTooLarge,
				fmt.Sprintf("file must be at most %d MiB", c.MaxBytes>>20))
			return
		}
		h.WriteJSONError(w, http.StatusBadRequest, h.ErrCodeBadRequest, "invalid multipart form")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("file")
	if err != nil {
		h.WriteValidationError(w, map[string]string{"file": "is required"})
		return
	}
	defer file.Close()

	p, err := c.Service.Upload(r.Context(), &domain.PhotoUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Size:        header.Size,
		Body:        file,
		GuestName:   r.FormValue("guestName"),
		GuestToken:  r.FormValue("guestToken"),
	})
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusCreated, p)
}

// ListApproved godoc
// @Summary Public gallery
// @Description Approved photos, newest first, with presigned URLs.
// @Tags photos
// @Produce json
// @Success 200 {object} helpers.APIResponse "data is an array of photos"
// @Router /api/photos [get]
func (c *PhotoController) ListApproved(w http.ResponseWriter, r *http.Request) {
	photos, err := c.Service.ListApproved(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, photos)
}

// ListAll godoc
// @Summary All photos
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of photos"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/admin/photos [get]
func (c *PhotoController) ListAll(w http.ResponseWriter, r *http.Request) {
	photos, err := c.Service.ListAll(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, photos)
}

// ListPending godoc
// @Summary Moderation queue
// @Description Pending photos, oldest first.
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Success 200 {object} helpers.APIResponse "data is an array of photos"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Router /api/admin/photos/pending [get]
func (c *PhotoController) ListPending(w http.ResponseWriter, r *http.Request) {
	photos, err := c.Service.ListPending(r.Context())
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, photos)
}

func (c *PhotoController) moderate(w http.ResponseWriter, r *http.Request, action domain.ModerationAction) {
	id, ok := h.UUIDPathValue(w, r, "id")
	if !ok {
		return
	}
	p, err := c.Service.Moderate(r.Context(), id, action)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, p)
}

// Approve godoc
// @Summary Approve a photo
// @Description Pending → approved; any other status is a conflict.
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the photo"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/admin/photos/{id}/approve [patch]
func (c *PhotoController) Approve(w http.ResponseWriter, r *http.Request) {
	c.moderate(w, r, domain.ModerationApprove)
}

// Reject godoc
// @Summary Reject a photo
// @Description Pending → rejected; any other status is a conflict.
// @Tags photos
// @Produce json
// @Security BearerAuth
// @Param id path string true "Photo ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains the photo"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Router /api/admin/photos/{id}/reject [patch]
func (c *PhotoController) Reject(w http.ResponseWriter, r *http.Request) {
	c.moderate(w, r, domain.ModerationReject)
}

// Delete godoc
// @Summary Delete a photo
// @Description Removes the stored image and the record.
// @Tags photos
// @Security BearerAuth
// @Param id path string true "Photo ID (UUID)"
// @Success 204 "No Content"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/admin/photos/{id} [delete]
func (c *PhotoController) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.UUIDPathValue(w, r, "id")
	if !ok {
		return
	}
	if err := c.Service.Delete(r.Context(), id); err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// BulkApprove godoc
// @Summary Approve several photos
// @Description Each id is handled on its own. Missing and non-pending photos are listed in skipped.
// @Tags photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PhotoIDsRequest true "Photo ids"
// @Success 200 {object} helpers.APIResponse "data contains processed and skipped"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/admin/photos/bulk-approve [post]
func (c *PhotoController) BulkApprove(w http.ResponseWriter, r *http.Request) {
	var req PhotoIDsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.BulkApprove(r.Context(), req.PhotoIDs)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, res)
}

// BulkDelete godoc
// @Summary Delete several photos
// @Description Each id is handled on its own. Missing photos are listed in skipped.
// @Tags photos
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body PhotoIDsRequest true "Photo ids"
// @Success 200 {object} helpers.APIResponse "data contains processed and skipped"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Router /api/admin/photos/bulk-delete [post]
func (c *PhotoController) BulkDelete(w http.ResponseWriter, r *http.Request) {
	var req PhotoIDsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	res, err := c.Service.BulkDelete(r.Context(), req.PhotoIDs)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	h.WriteJSONSuccess(w, http.StatusOK, res)
}

// DownloadZip godoc
// @Summary Download photos as zip
// @Description Streams the original images of the selected photos. Missing ids are skipped; when none exist the response is 404.
// @Tags photos
// @Accept json
// @Produce application/zip
// @Security BearerAuth
// @Param body body PhotoIDsRequest true "Photo ids"
// @Success 200 {file} file "zip archive"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Router /api/admin/photos/download-zip [post]
func (c *PhotoController) DownloadZip(w http.ResponseWriter, r *http.Request) {
	var req PhotoIDsRequest
	if !h.DecodeAndValidate(w, r, &req) {
		return
	}
	photos, err := c.Service.ResolveArchive(r.Context(), req.PhotoIDs)
	if err != nil {
		h.WriteServiceError(w, r, c.Logger, err)
		return
	}
	name := fmt.Sprintf("wedding-photos-%s.zip", time.Now().Format("20060102"))
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	w.WriteHeader(http.StatusOK)
	if err := c.Service.WriteArchive(r.Context(), photos, w); err != nil {
		// Headers are gone; the client sees a truncated archive.
		c.Logger.ErrorContext(r.Context(), "zip stream aborted", "photos", len(photos), "err", err)
	}
}
