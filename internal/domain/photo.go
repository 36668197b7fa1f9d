package domain

import (
	"context"
	"io"
	"time"
)

// PhotoStatus is the moderation state of a photo.
type PhotoStatus string

const (
	PhotoPending  PhotoStatus = "pending"
	PhotoApproved PhotoStatus = "approved"
	PhotoRejected PhotoStatus = "rejected"
)

// Photo is an uploaded guest photo. URLs are presigned on read and never stored.
// swagger:model Photo
type Photo struct {
	ID           string      `json:"id"`
	FileName     string      `json:"fileName"`
	ObjectKey    string      `json:"-"`
	ThumbnailKey string      `json:"-"`
	ContentType  string      `json:"contentType"`
	FileSize     int64       `json:"fileSize"`
	Status       PhotoStatus `json:"status"`
	UploadedBy   string      `json:"uploadedBy"`
	GuestToken   string      `json:"guestToken,omitempty"`
	UploadedAt   time.Time   `json:"uploadedAt"`
	ModeratedAt  *time.Time  `json:"moderatedAt,omitempty"`
	ThumbnailURL string      `json:"thumbnailUrl"`
	FullURL      string      `json:"fullUrl"`
}

// PhotoUpload is a validated-at-the-edge upload request.
type PhotoUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.ReadSeeker
	GuestName   string
	GuestToken  string
}

// BulkResult reports which ids a bulk operation acted on and which it skipped.
type BulkResult struct {
	Processed []string `json:"processed"`
	Skipped   []string `json:"skipped"`
}

// PhotoRepository persists photo records.
type PhotoRepository interface {
	Create(ctx context.Context, p *Photo) error
	GetByID(ctx context.Context, id string) (*Photo, error)
	List(ctx context.Context) ([]*Photo, error)
	ListByStatus(ctx context.Context, status PhotoStatus, oldestFirst bool) ([]*Photo, error)
	ListByIDs(ctx context.Context, ids []string) ([]*Photo, error)
	// UpdateStatus moves the photo from one status to another; ErrConflict if it is no longer from.
	UpdateStatus(ctx context.Context, id string, from, to PhotoStatus, at time.Time) error
	Delete(ctx context.Context, id string) error
}

// BlobStore stores photo assets.
type BlobStore interface {
	Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
}

// ArchiveEntry is one file of an archive; Open is called when the entry is written.
type ArchiveEntry struct {
	Name     string
	Modified time.Time
	Open     func(ctx context.Context) (io.ReadCloser, error)
}

// Archiver streams entries into an archive written to w.
type Archiver interface {
	Write(ctx context.Context, w io.Writer, entries []ArchiveEntry) error
}

// PhotoService handles uploads, the public gallery and moderation.
type PhotoService interface {
	Upload(ctx context.Context, in *PhotoUpload) (*Photo, error)
	ListApproved(ctx context.Context) ([]*Photo, error)
	ListAll(ctx context.Context) ([]*Photo, error)
	ListPending(ctx context.Context) ([]*Photo, error)
	Moderate(ctx context.Context, id string, action ModerationAction) (*Photo, error)
	Delete(ctx context.Context, id string) error
	BulkApprove(ctx context.Context, ids []string) (*BulkResult, error)
	BulkDelete(ctx context.Context, ids []string) (*BulkResult, error)
	// ResolveArchive returns the existing photos among ids; ErrNotFound when none exist.
	ResolveArchive(ctx context.Context, ids []string) ([]*Photo, error)
	WriteArchive(ctx context.Context, photos []*Photo, w io.Writer) error
}
