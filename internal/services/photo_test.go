package services

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"weddingsite/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 64)...)

type photoFixture struct {
	photos   *fakePhotoRepo
	guests   *fakeGuestRepo
	settings *fakeSettingsRepo
	blobs    *fakeBlobStore
	archiver *fakeArchiver
	svc      domain.PhotoService
}

func newPhotoFixture() *photoFixture {
	f := &photoFixture{
		photos:   newFakePhotoRepo(),
		guests:   newFakeGuestRepo(),
		settings: &fakeSettingsRepo{},
		blobs:    newFakeBlobStore(),
		archiver: &fakeArchiver{},
	}
	cfg := PhotoConfig{MaxBytes: 10 << 20, URLTTL: time.Hour}
	f.svc = NewPhotoService(f.photos, f.guests, f.settings, f.blobs, f.archiver, cfg, testLogger, testTimeout)
	return f
}

func (f *photoFixture) seed(status domain.PhotoStatus, key string, uploadedAt time.Time) *domain.Photo {
	p := &domain.Photo{FileName: key + ".png", ObjectKey: key, Status: status, UploadedAt: uploadedAt}
	_ = f.photos.Create(context.Background(), p)
	f.blobs.objects[key] = []byte(key)
	return p
}

func pngUpload() *domain.PhotoUpload {
	return &domain.PhotoUpload{
		FileName:    `C:\camera\IMG_1.png`,
		ContentType: "image/png",
		Size:        int64(len(pngBytes)),
		Body:        bytes.NewReader(pngBytes),
		GuestName:   "Ann Lee",
	}
}

func TestPhotoService_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("pending without auto-approve", func(t *testing.T) {
		f := newPhotoFixture()

		p, err := f.svc.Upload(ctx, pngUpload())
		require.NoError(t, err)
		assert.NotEmpty(t, p.ID)
		assert.Equal(t, domain.PhotoPending, p.Status)
		assert.Nil(t, p.ModeratedAt)
		assert.Equal(t, "IMG_1.png", p.FileName)
		assert.Equal(t, "Ann Lee", p.UploadedBy)
		assert.True(t, strings.HasPrefix(p.ObjectKey, "photos/"), p.ObjectKey)
		assert.True(t, strings.HasSuffix(p.ObjectKey, ".png"), p.ObjectKey)
		assert.Equal(t, pngBytes, f.blobs.objects[p.ObjectKey])
		assert.NotEmpty(t, p.FullURL)
		assert.Equal(t, p.FullURL, p.ThumbnailURL)
	})

	t.Run("store receives the whole seekable body", func(t *testing.T) {
		f := newPhotoFixture()
		payload := append(append([]byte{}, pngBytes...), bytes.Repeat([]byte{0xAB}, 4096)...)
		in := pngUpload()
		in.Body = bytes.NewReader(payload)
		in.Size = int64(len(payload))

		p, err := f.svc.Upload(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, payload, f.blobs.objects[p.ObjectKey])
		_, seekable := f.blobs.putBody.(io.Seeker)
		assert.True(t, seekable)
	})

	t.Run("approved with auto-approve", func(t *testing.T) {
		f := newPhotoFixture()
		f.settings.values = map[string]bool{domain.SettingPhotoAutoApprove: true}

		p, err := f.svc.Upload(ctx, pngUpload())
		require.NoError(t, err)
		assert.Equal(t, domain.PhotoApproved, p.Status)
		assert.NotNil(t, p.ModeratedAt)
	})

	t.Run("guest token fills uploader name", func(t *testing.T) {
		f := newPhotoFixture()
		f.guests.add(&domain.Guest{FirstName: "Bo", LastName: "Kim", GuestPortalToken: "portal-1"})
		in := pngUpload()
		in.GuestName = ""
		in.GuestToken = "portal-1"

		p, err := f.svc.Upload(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, "Bo Kim", p.UploadedBy)
		assert.Equal(t, "portal-1", p.GuestToken)
	})

	t.Run("unknown guest token", func(t *testing.T) {
		f := newPhotoFixture()
		in := pngUpload()
		in.GuestToken = "nope"

		_, err := f.svc.Upload(ctx, in)
		require.ErrorIs(t, err, domain.ErrNotFound)
		assert.Empty(t, f.blobs.objects)
	})

	tests := []struct {
		name   string
		mutate func(in *domain.PhotoUpload)
		field  string
	}{
		{"unsupported type", func(in *domain.PhotoUpload) { in.ContentType = "application/pdf" }, "file"},
		{"too large", func(in *domain.PhotoUpload) { in.Size = 10<<20 + 1 }, "file"},
		{"empty", func(in *domain.PhotoUpload) { in.Size = 0 }, "file"},
		{"no uploader", func(in *domain.PhotoUpload) { in.GuestName = "  " }, "guestName"},
		{"content is not an image", func(in *domain.PhotoUpload) {
			in.Body = strings.NewReader("%PDF-1.7 not really a png")
		}, "file"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPhotoFixture()
			in := pngUpload()
			tt.mutate(in)

			_, err := f.svc.Upload(ctx, in)
			var verr *domain.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.Empty(t, f.blobs.objects)
			assert.Empty(t, f.photos.byID)
		})
	}

	t.Run("record failure removes stored object", func(t *testing.T) {
		f := newPhotoFixture()
		f.photos.createErr = errBoom

		_, err := f.svc.Upload(ctx, pngUpload())
		require.ErrorIs(t, err, errBoom)
		assert.Empty(t, f.blobs.objects)
		assert.Len(t, f.blobs.deleted, 1)
	})
}

func TestPhotoService_Lists(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture()
	base := time.Date(2025, 12, 24, 12, 0, 0, 0, time.UTC)
	old := f.seed(domain.PhotoPending, "old", base)
	recent := f.seed(domain.PhotoPending, "recent", base.Add(time.Hour))
	f.seed(domain.PhotoApproved, "approved", base)

	pending, err := f.svc.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, old.ID, pending[0].ID)
	assert.Equal(t, recent.ID, pending[1].ID)
	assert.NotEmpty(t, pending[0].FullURL)

	approved, err := f.svc.ListApproved(ctx)
	require.NoError(t, err)
	require.Len(t, approved, 1)
	assert.Equal(t, domain.PhotoApproved, approved[0].Status)

	all, err := f.svc.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestPhotoService_Moderate(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name    string
		status  domain.PhotoStatus
		action  domain.ModerationAction
		want    domain.PhotoStatus
		wantErr error
	}{
		{"approve pending", domain.PhotoPending, domain.ModerationApprove, domain.PhotoApproved, nil},
		{"reject pending", domain.PhotoPending, domain.ModerationReject, domain.PhotoRejected, nil},
		{"approve rejected", domain.PhotoRejected, domain.ModerationApprove, "", domain.ErrConflict},
		{"reject approved", domain.PhotoApproved, domain.ModerationReject, "", domain.ErrConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newPhotoFixture()
			p := f.seed(tt.status, "k", now)

			got, err := f.svc.Moderate(ctx, p.ID, tt.action)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, tt.status, f.photos.byID[p.ID].Status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.NotNil(t, got.ModeratedAt)
			assert.Equal(t, tt.want, f.photos.byID[p.ID].Status)
		})
	}

	t.Run("unknown photo", func(t *testing.T) {
		f := newPhotoFixture()
		_, err := f.svc.Moderate(ctx, "00000000-0000-0000-0000-000000000099", domain.ModerationApprove)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestPhotoService_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("removes object and record", func(t *testing.T) {
		f := newPhotoFixture()
		p := f.seed(domain.PhotoApproved, "k1", time.Now())

		require.NoError(t, f.svc.Delete(ctx, p.ID))
		assert.Empty(t, f.photos.byID)
		assert.Equal(t, []string{"k1"}, f.blobs.deleted)
	})

	t.Run("storage failure keeps record", func(t *testing.T) {
		f := newPhotoFixture()
		p := f.seed(domain.PhotoApproved, "k1", time.Now())
		f.blobs.deleteErr = errBoom

		require.ErrorIs(t, f.svc.Delete(ctx, p.ID), errBoom)
		assert.Contains(t, f.photos.byID, p.ID)
	})
}

func TestPhotoService_BulkApprove(t *testing.T) {
	f := newPhotoFixture()
	pending := f.seed(domain.PhotoPending, "a", time.Now())
	rejected := f.seed(domain.PhotoRejected, "b", time.Now())
	missing := "00000000-0000-0000-0000-000000000099"

	res, err := f.svc.BulkApprove(context.Background(), []string{pending.ID, rejected.ID, missing, "not-a-uuid", pending.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{pending.ID}, res.Processed)
	assert.ElementsMatch(t, []string{"not-a-uuid", rejected.ID, missing}, res.Skipped)
	assert.Equal(t, domain.PhotoApproved, f.photos.byID[pending.ID].Status)
	assert.Equal(t, domain.PhotoRejected, f.photos.byID[rejected.ID].Status)
}

func TestPhotoService_BulkDelete(t *testing.T) {
	f := newPhotoFixture()
	a := f.seed(domain.PhotoPending, "a", time.Now())
	b := f.seed(domain.PhotoApproved, "b", time.Now())
	missing := "00000000-0000-0000-0000-000000000099"

	res, err := f.svc.BulkDelete(context.Background(), []string{a.ID, missing, b.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{a.ID, b.ID}, res.Processed)
	assert.Equal(t, []string{missing}, res.Skipped)
	assert.Empty(t, f.photos.byID)

	res, err = f.svc.BulkDelete(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, res.Processed)
	assert.Empty(t, res.Skipped)
}

func TestPhotoService_Archive(t *testing.T) {
	ctx := context.Background()
	f := newPhotoFixture()
	a := f.seed(domain.PhotoApproved, "a", time.Now())
	b := f.seed(domain.PhotoPending, "b", time.Now())

	_, err := f.svc.ResolveArchive(ctx, nil)
	require.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.svc.ResolveArchive(ctx, []string{"00000000-0000-0000-0000-000000000099", "junk"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	photos, err := f.svc.ResolveArchive(ctx, []string{a.ID, b.ID, "00000000-0000-0000-0000-000000000099"})
	require.NoError(t, err)
	require.Len(t, photos, 2)

	var buf bytes.Buffer
	require.NoError(t, f.svc.WriteArchive(ctx, photos, &buf))
	assert.Equal(t, []string{"a.png", "b.png"}, f.archiver.names)
	assert.Equal(t, "ab", buf.String())
}
