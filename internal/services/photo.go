package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"weddingsite/internal/domain"
	"weddingsite/internal/metrics"
)

// imageExtensions maps the accepted upload types to the extension used in object keys.
var imageExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

const sniffLen = 512

// PhotoConfig holds upload limits and URL lifetimes.
type PhotoConfig struct {
	MaxBytes int64
	URLTTL   time.Duration
}

type photoService struct {
	photos         domain.PhotoRepository
	guests         domain.GuestRepository
	settings       domain.SettingsRepository
	blobs          domain.BlobStore
	archiver       domain.Archiver
	cfg            PhotoConfig
	logger         *slog.Logger
	contextTimeout time.Duration
}

func NewPhotoService(
	photos domain.PhotoRepository,
	guests domain.GuestRepository,
	settings domain.SettingsRepository,
	blobs domain.BlobStore,
	archiver domain.Archiver,
	cfg PhotoConfig,
	logger *slog.Logger,
	timeout time.Duration,
) domain.PhotoService {
	return &photoService{
		photos:         photos,
		guests:         guests,
		settings:       settings,
		blobs:          blobs,
		archiver:       archiver,
		cfg:            cfg,
		logger:         logger,
		contextTimeout: timeout,
	}
}

func normalizeContentType(ct string) string {
	if mt, _, err := mime.ParseMediaType(ct); err == nil {
		return strings.ToLower(mt)
	}
	return strings.ToLower(strings.TrimSpace(ct))
}

func (s *photoService) Upload(ctx context.Context, in *domain.PhotoUpload) (*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	v := domain.NewValidationError()
	guestName := strings.TrimSpace(in.GuestName)
	guestToken := strings.TrimSpace(in.GuestToken)
	if guestName == "" && guestToken == "" {
		v.Add("guestName", "is required")
	}
	contentType := normalizeContentType(in.ContentType)
	ext, ok := imageExtensions[contentType]
	if !ok {
		v.Add("file", "must be a JPEG, PNG, GIF or WebP image")
	}
	switch {
	case in.Size <= 0:
		v.Add("file", "is empty")
	case in.Size > s.cfg.MaxBytes:
		v.Add("file", fmt.Sprintf("must be at most %d MiB", s.cfg.MaxBytes>>20))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(in.Body, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	head = head[:n]
	if _, err := in.Body.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("rewind upload: %w", err)
	}
	if _, ok := imageExtensions[http.DetectContentType(head)]; !ok {
		v.Add("file", "content is not a supported image")
		return nil, v
	}

	uploadedBy := guestName
	if guestToken != "" {
		g, err := s.guests.GetByPortalToken(ctx, guestToken)
		if err != nil {
			return nil, fmt.Errorf("resolve guest token: %w", err)
		}
		if uploadedBy == "" {
			uploadedBy = g.FullName()
		}
	}

	autoApprove, err := s.settings.GetBool(ctx, domain.SettingPhotoAutoApprove, false)
	if err != nil {
		return nil, fmt.Errorf("read auto-approve setting: %w", err)
	}

	now := time.Now().UTC()
	p := &domain.Photo{
		FileName:    path.Base(strings.ReplaceAll(in.FileName, "\\", "/")),
		ObjectKey:   fmt.Sprintf("photos/%04d/%02d/%02d/%s%s", now.Year(), now.Month(), now.Day(), uuid.NewString(), ext),
		ContentType: contentType,
		FileSize:    in.Size,
		Status:      domain.InitialPhotoStatus(autoApprove),
		UploadedBy:  uploadedBy,
		GuestToken:  guestToken,
		UploadedAt:  now,
	}
	if p.Status == domain.PhotoApproved {
		p.ModeratedAt = &now
	}

	if err := s.blobs.Put(ctx, p.ObjectKey, contentType, in.Body, in.Size); err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}
	if err := s.photos.Create(ctx, p); err != nil {
		if derr := s.blobs.Delete(ctx, p.ObjectKey); derr != nil {
			s.logger.WarnContext(ctx, "orphaned photo object", "key", p.ObjectKey, "err", derr)
		}
		return nil, fmt.Errorf("create photo: %w", err)
	}
	metrics.PhotoUploads.WithLabelValues(string(p.Status)).Inc()

	if err := s.presign(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// presign fills the photo URLs. Photos without a thumbnail show the full image.
func (s *photoService) presign(ctx context.Context, p *domain.Photo) error {
	full, err := s.blobs.PresignGet(ctx, p.ObjectKey, s.cfg.URLTTL)
	if err != nil {
		return err
	}
	p.FullURL = full
	p.ThumbnailURL = full
	if p.ThumbnailKey != "" {
		if p.ThumbnailURL, err = s.blobs.PresignGet(ctx, p.ThumbnailKey, s.cfg.URLTTL); err != nil {
			return err
		}
	}
	return nil
}

func (s *photoService) withURLs(ctx context.Context, photos []*domain.Photo) ([]*domain.Photo, error) {
	for _, p := range photos {
		if err := s.presign(ctx, p); err != nil {
			return nil, err
		}
	}
	return photos, nil
}

func (s *photoService) ListApproved(ctx context.Context) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	photos, err := s.photos.ListByStatus(ctx, domain.PhotoApproved, false)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, photos)
}

func (s *photoService) ListAll(ctx context.Context) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	photos, err := s.photos.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, photos)
}

func (s *photoService) ListPending(ctx context.Context) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	photos, err := s.photos.ListByStatus(ctx, domain.PhotoPending, true)
	if err != nil {
		return nil, err
	}
	return s.withURLs(ctx, photos)
}

func (s *photoService) Moderate(ctx context.Context, id string, action domain.ModerationAction) (*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	p, err := s.moderate(ctx, id, action)
	if err != nil {
		return nil, err
	}
	if err := s.presign(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *photoService) moderate(ctx context.Context, id string, action domain.ModerationAction) (*domain.Photo, error) {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	to, err := domain.NextPhotoStatus(p.Status, action)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	if err := s.photos.UpdateStatus(ctx, id, p.Status, to, now); err != nil {
		return nil, err
	}
	p.Status = to
	p.ModeratedAt = &now
	metrics.PhotoModerations.WithLabelValues(string(action)).Inc()
	return p, nil
}

func (s *photoService) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()
	return s.delete(ctx, id)
}

// delete removes the stored objects first so a failure leaves the record for a retry.
func (s *photoService) delete(ctx context.Context, id string) error {
	p, err := s.photos.GetByID(ctx, id)
	if err != nil {
		return err
	}
	for _, key := range []string{p.ObjectKey, p.ThumbnailKey} {
		if key == "" {
			continue
		}
		if err := s.blobs.Delete(ctx, key); err != nil {
			return fmt.Errorf("delete photo object: %w", err)
		}
	}
	return s.photos.Delete(ctx, id)
}

func newBulkResult(skipped []string) *domain.BulkResult {
	res := &domain.BulkResult{Processed: []string{}, Skipped: []string{}}
	res.Skipped = append(res.Skipped, skipped...)
	return res
}

func (s *photoService) BulkApprove(ctx context.Context, ids []string) (*domain.BulkResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	valid, invalid := validIDs(ids)
	res := newBulkResult(invalid)
	for _, id := range valid {
		_, err := s.moderate(ctx, id, domain.ModerationApprove)
		switch {
		case err == nil:
			res.Processed = append(res.Processed, id)
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrConflict):
			res.Skipped = append(res.Skipped, id)
		default:
			return nil, fmt.Errorf("approve photo %s: %w", id, err)
		}
	}
	return res, nil
}

func (s *photoService) BulkDelete(ctx context.Context, ids []string) (*domain.BulkResult, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	valid, invalid := validIDs(ids)
	res := newBulkResult(invalid)
	for _, id := range valid {
		err := s.delete(ctx, id)
		switch {
		case err == nil:
			res.Processed = append(res.Processed, id)
		case errors.Is(err, domain.ErrNotFound):
			res.Skipped = append(res.Skipped, id)
		default:
			return nil, fmt.Errorf("delete photo %s: %w", id, err)
		}
	}
	return res, nil
}

func (s *photoService) ResolveArchive(ctx context.Context, ids []string) ([]*domain.Photo, error) {
	ctx, cancel := context.WithTimeout(ctx, s.contextTimeout)
	defer cancel()

	valid, _ := validIDs(ids)
	if len(valid) == 0 {
		return nil, fmt.Errorf("%w: no photos selected", domain.ErrNotFound)
	}
	photos, err := s.photos.ListByIDs(ctx, valid)
	if err != nil {
		return nil, err
	}
	if len(photos) == 0 {
		return nil, fmt.Errorf("%w: none of the selected photos exist", domain.ErrNotFound)
	}
	return photos, nil
}

// WriteArchive streams the original assets; it runs for as long as the caller's context allows.
func (s *photoService) WriteArchive(ctx context.Context, photos []*domain.Photo, w io.Writer) error {
	entries := make([]domain.ArchiveEntry, 0, len(photos))
	for _, p := range photos {
		key := p.ObjectKey
		entries = append(entries, domain.ArchiveEntry{
			Name:     p.FileName,
			Modified: p.UploadedAt,
			Open: func(ctx context.Context) (io.ReadCloser, error) {
				return s.blobs.Open(ctx, key)
			},
		})
	}
	return s.archiver.Write(ctx, w, entries)
}
