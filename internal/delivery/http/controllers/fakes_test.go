package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"weddingsite/internal/delivery/http/helpers"
	"weddingsite/internal/domain"

	"github.com/stretchr/testify/require"
)

// testLogger is a no-op logger for controller tests so we don't assert on log output.
var testLogger = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))

var errDB = errors.New("db down")

// serve routes req through a mux registered with pattern so path values resolve.
func serve(pattern string, handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	mux := http.NewServeMux()
	mux.HandleFunc(pattern, handler)
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	return rr
}

// decodeData decodes the envelope and unmarshals its data into dest when dest is non-nil.
func decodeData(t *testing.T, rr *httptest.ResponseRecorder, dest any) helpers.APIResponse {
	t.Helper()
	var raw struct {
		Data  json.RawMessage   `json:"data"`
		Error *helpers.APIError `json:"error"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&raw))
	if dest != nil {
		require.NoError(t, json.Unmarshal(raw.Data, dest))
	}
	return helpers.APIResponse{Data: raw.Data, Error: raw.Error}
}

// fakeGuestService implements domain.GuestService for handler tests.
type fakeGuestService struct {
	err            error
	guests         []*domain.Guest
	guest          *domain.Guest
	portal         *domain.GuestPortal
	sendResult     *domain.SendResult
	deleted        int
	lastReg        *domain.Registration
	lastID         string
	lastIDs        []string
	lastToken      string
	deleteAllCalls int
}

func (f *fakeGuestService) Register(ctx context.Context, reg *domain.Registration) (*domain.Guest, error) {
	f.lastReg = reg
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Guest{ID: "g-new", FirstName: reg.FirstName, RegistrationStatus: domain.RegistrationPending}, nil
}

func (f *fakeGuestService) List(ctx context.Context) ([]*domain.Guest, error) {
	return f.guests, f.err
}

func (f *fakeGuestService) ListPending(ctx context.Context) ([]*domain.Guest, error) {
	return f.guests, f.err
}

func (f *fakeGuestService) Approve(ctx context.Context, id string) (*domain.Guest, error) {
	f.lastID = id
	return f.guest, f.err
}

func (f *fakeGuestService) Reject(ctx context.Context, id string) (*domain.Guest, error) {
	f.lastID = id
	return f.guest, f.err
}

func (f *fakeGuestService) DeleteSelected(ctx context.Context, ids []string) (int, error) {
	f.lastIDs = ids
	return f.deleted, f.err
}

func (f *fakeGuestService) DeleteAll(ctx context.Context) error {
	f.deleteAllCalls++
	return f.err
}

func (f *fakeGuestService) Portal(ctx context.Context, token string) (*domain.GuestPortal, error) {
	f.lastToken = token
	return f.portal, f.err
}

func (f *fakeGuestService) SendInvitations(ctx context.Context, ids []string) (*domain.SendResult, error) {
	f.lastIDs = ids
	return f.sendResult, f.err
}

// fakeRSVPService implements domain.RSVPService for handler tests.
type fakeRSVPService struct {
	err        error
	snapshot   *domain.RSVPSnapshot
	rsvp       *domain.RSVP
	list       []*domain.RSVPWithGuest
	stats      *domain.RSVPStats
	csv        string
	sendResult *domain.SendResult
	lastToken  string
	lastSub    *domain.RSVPSubmission
}

func (f *fakeRSVPService) Snapshot(ctx context.Context, token string) (*domain.RSVPSnapshot, error) {
	f.lastToken = token
	return f.snapshot, f.err
}

func (f *fakeRSVPService) Submit(ctx context.Context, token string, sub *domain.RSVPSubmission) (*domain.RSVP, error) {
	f.lastToken = token
	f.lastSub = sub
	return f.rsvp, f.err
}

func (f *fakeRSVPService) List(ctx context.Context) ([]*domain.RSVPWithGuest, *domain.RSVPStats, error) {
	return f.list, f.stats, f.err
}

func (f *fakeRSVPService) ExportCSV(ctx context.Context, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, f.csv)
	return err
}

func (f *fakeRSVPService) SendReminders(ctx context.Context) (*domain.SendResult, error) {
	return f.sendResult, f.err
}

// fakePhotoService implements domain.PhotoService for handler tests.
type fakePhotoService struct {
	err        error
	archiveErr error
	photo      *domain.Photo
	photos     []*domain.Photo
	bulk       *domain.BulkResult
	lastUpload *domain.PhotoUpload
	uploadBody []byte
	lastID     string
	lastAction domain.ModerationAction
	lastIDs    []string
}

func (f *fakePhotoService) Upload(ctx context.Context, in *domain.PhotoUpload) (*domain.Photo, error) {
	f.lastUpload = in
	b, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.uploadBody = b
	return f.photo, f.err
}

func (f *fakePhotoService) ListApproved(ctx context.Context) ([]*domain.Photo, error) {
	return f.photos, f.err
}

func (f *fakePhotoService) ListAll(ctx context.Context) ([]*domain.Photo, error) {
	return f.photos, f.err
}

func (f *fakePhotoService) ListPending(ctx context.Context) ([]*domain.Photo, error) {
	return f.photos, f.err
}

func (f *fakePhotoService) Moderate(ctx context.Context, id string, action domain.ModerationAction) (*domain.Photo, error) {
	f.lastID = id
	f.lastAction = action
	return f.photo, f.err
}

func (f *fakePhotoService) Delete(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

func (f *fakePhotoService) BulkApprove(ctx context.Context, ids []string) (*domain.BulkResult, error) {
	f.lastIDs = ids
	return f.bulk, f.err
}

func (f *fakePhotoService) BulkDelete(ctx context.Context, ids []string) (*domain.BulkResult, error) {
	f.lastIDs = ids
	return f.bulk, f.err
}

func (f *fakePhotoService) ResolveArchive(ctx context.Context, ids []string) ([]*domain.Photo, error) {
	f.lastIDs = ids
	return f.photos, f.err
}

func (f *fakePhotoService) WriteArchive(ctx context.Context, photos []*domain.Photo, w io.Writer) error {
	if f.archiveErr != nil {
		return f.archiveErr
	}
	_, err := io.WriteString(w, "PK-fake")
	return err
}

// fakeMessageService implements domain.MessageService for handler tests.
type fakeMessageService struct {
	err      error
	messages []*domain.Message
	unread   int
	lastSend [3]string
	lastID   string
}

func (f *fakeMessageService) Send(ctx context.Context, guestToken, guestName, content string) (*domain.Message, error) {
	f.lastSend = [3]string{guestToken, guestName, content}
	if f.err != nil {
		return nil, f.err
	}
	return &domain.Message{ID: "m1", GuestToken: guestToken, GuestName: guestName, Content: content, Status: domain.MessageUnread}, nil
}

func (f *fakeMessageService) List(ctx context.Context) ([]*domain.Message, int, error) {
	return f.messages, f.unread, f.err
}

func (f *fakeMessageService) MarkRead(ctx context.Context, id string) error {
	f.lastID = id
	return f.err
}

// fakeSettingsService implements domain.SettingsService for handler tests.
type fakeSettingsService struct {
	enabled bool
	err     error
}

func (f *fakeSettingsService) PhotoAutoApprove(ctx context.Context) (bool, error) {
	return f.enabled, f.err
}

func (f *fakeSettingsService) SetPhotoAutoApprove(ctx context.Context, enabled bool) error {
	if f.err != nil {
		return f.err
	}
	f.enabled = enabled
	return nil
}

// fakeAuthService implements domain.AuthService for handler tests.
type fakeAuthService struct {
	token string
	user  *domain.AdminUser
	err   error
}

func (f *fakeAuthService) Login(ctx context.Context, email, password string) (string, *domain.AdminUser, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	return f.token, f.user, nil
}

func (f *fakeAuthService) GetByID(ctx context.Context, id string) (*domain.AdminUser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.user, nil
}

func (f *fakeAuthService) CreateAdmin(ctx context.Context, email, password string) (*domain.AdminUser, error) {
	return f.user, f.err
}
