package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"sort"
	"strings"
	"time"

	"weddingsite/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const testTimeout = 5 * time.Second

// fakeGuestRepo is an in-memory GuestRepository.
type fakeGuestRepo struct {
	byID        map[string]*domain.Guest
	photoKeys   map[string][]string // guest id -> photo object keys
	nextID      int
	createErr   error
	updateErr   error
	deleteCalls int
}

func newFakeGuestRepo() *fakeGuestRepo {
	return &fakeGuestRepo{byID: make(map[string]*domain.Guest), photoKeys: make(map[string][]string), nextID: 1}
}

func (f *fakeGuestRepo) add(g *domain.Guest) *domain.Guest {
	if g.ID == "" {
		g.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID)
		f.nextID++
	}
	if g.RSVPStatus == "" {
		g.RSVPStatus = domain.RSVPPending
	}
	f.byID[g.ID] = g
	return g
}

func (f *fakeGuestRepo) Create(ctx context.Context, g *domain.Guest) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.add(g)
	return nil
}

func (f *fakeGuestRepo) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	if g, ok := f.byID[id]; ok {
		cp := *g
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) find(match func(*domain.Guest) bool) (*domain.Guest, error) {
	for _, g := range f.byID {
		if match(g) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeGuestRepo) GetByInviteToken(ctx context.Context, token string) (*domain.Guest, error) {
	return f.find(func(g *domain.Guest) bool { return g.InviteToken != "" && g.InviteToken == token })
}

func (f *fakeGuestRepo) GetByPortalToken(ctx context.Context, token string) (*domain.Guest, error) {
	return f.find(func(g *domain.Guest) bool { return g.GuestPortalToken != "" && g.GuestPortalToken == token })
}

func (f *fakeGuestRepo) sorted() []*domain.Guest {
	out := make([]*domain.Guest, 0, len(f.byID))
	for _, g := range f.byID {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (f *fakeGuestRepo) List(ctx context.Context) ([]*domain.Guest, error) {
	return f.sorted(), nil
}

func (f *fakeGuestRepo) ListByRegistrationStatus(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Guest, error) {
	out := make([]*domain.Guest, 0)
	for _, g := range f.sorted() {
		if g.RegistrationStatus == status {
			out = append(out, g)
		}
	}
	return out, nil
}

func (f *fakeGuestRepo) UpdateRegistration(ctx context.Context, g *domain.Guest, from domain.RegistrationStatus) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	cur, ok := f.byID[g.ID]
	if !ok || cur.RegistrationStatus != from {
		return domain.ErrConflict
	}
	cp := *g
	f.byID[g.ID] = &cp
	return nil
}

func (f *fakeGuestRepo) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	missing := make([]string, 0)
	for _, id := range ids {
		if _, ok := f.byID[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (f *fakeGuestRepo) DeleteCascade(ctx context.Context, ids []string) ([]string, error) {
	f.deleteCalls++
	var keys []string
	for _, id := range ids {
		keys = append(keys, f.photoKeys[id]...)
		delete(f.byID, id)
		delete(f.photoKeys, id)
	}
	return keys, nil
}

func (f *fakeGuestRepo) DeleteAllCascade(ctx context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.byID))
	for id := range f.byID {
		ids = append(ids, id)
	}
	return f.DeleteCascade(ctx, ids)
}

// fakeRSVPRepo stores RSVPs keyed by guest and writes the guest back into a fakeGuestRepo.
type fakeRSVPRepo struct {
	guests    *fakeGuestRepo
	byGuest   map[string]*domain.RSVP
	submitErr error
	stats     *domain.RSVPStats
}

func newFakeRSVPRepo(guests *fakeGuestRepo) *fakeRSVPRepo {
	return &fakeRSVPRepo{guests: guests, byGuest: make(map[string]*domain.RSVP)}
}

func (f *fakeRSVPRepo) Submit(ctx context.Context, g *domain.Guest, r *domain.RSVP) error {
	if f.submitErr != nil {
		return f.submitErr
	}
	cp := *g
	f.guests.byID[g.ID] = &cp
	if prev, ok := f.byGuest[g.ID]; ok {
		r.ID = prev.ID
	} else {
		r.ID = "rsvp-" + g.ID
	}
	rc := *r
	f.byGuest[g.ID] = &rc
	return nil
}

func (f *fakeRSVPRepo) ListWithGuests(ctx context.Context) ([]*domain.RSVPWithGuest, error) {
	out := make([]*domain.RSVPWithGuest, 0)
	for id, r := range f.byGuest {
		out = append(out, &domain.RSVPWithGuest{RSVP: *r, Guest: f.guests.byID[id]})
	}
	return out, nil
}

func (f *fakeRSVPRepo) ByGuest(ctx context.Context) (map[string]*domain.RSVP, error) {
	return f.byGuest, nil
}

func (f *fakeRSVPRepo) Stats(ctx context.Context) (*domain.RSVPStats, error) {
	if f.stats != nil {
		return f.stats, nil
	}
	return &domain.RSVPStats{}, nil
}

// fakeNotifier records which guests were notified.
type fakeNotifier struct {
	invited       []string
	reminded      []string
	confirmed     []string
	invitationErr error
	reminderErr   map[string]error
}

func (f *fakeNotifier) SendInvitation(ctx context.Context, g *domain.Guest) error {
	if f.invitationErr != nil {
		return f.invitationErr
	}
	f.invited = append(f.invited, g.ID)
	return nil
}

func (f *fakeNotifier) SendReminder(ctx context.Context, g *domain.Guest) error {
	if err := f.reminderErr[g.ID]; err != nil {
		return err
	}
	f.reminded = append(f.reminded, g.ID)
	return nil
}

func (f *fakeNotifier) SendRSVPConfirmation(ctx context.Context, g *domain.Guest, r *domain.RSVP) error {
	f.confirmed = append(f.confirmed, g.ID)
	return nil
}

// fakeBlobStore keeps objects in memory.
type fakeBlobStore struct {
	objects   map[string][]byte
	putBody   io.Reader
	deleted   []string
	putErr    error
	deleteErr error
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: make(map[string][]byte)}
}

func (f *fakeBlobStore) Put(ctx context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	f.putBody = body
	b, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	f.objects[key] = b
	return nil
}

func (f *fakeBlobStore) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	b, ok := f.objects[key]
	if !ok {
		return nil, fs.ErrNotExist
	}
	return io.NopCloser(strings.NewReader(string(b))), nil
}

func (f *fakeBlobStore) Delete(ctx context.Context, key string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeBlobStore) PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error) {
	return "https://blobs.test/" + key + "?ttl=" + ttl.String(), nil
}

// fakePhotoRepo is an in-memory PhotoRepository.
type fakePhotoRepo struct {
	byID      map[string]*domain.Photo
	createErr error
}

func newFakePhotoRepo() *fakePhotoRepo {
	return &fakePhotoRepo{byID: make(map[string]*domain.Photo)}
}

func (f *fakePhotoRepo) Create(ctx context.Context, p *domain.Photo) error {
	if f.createErr != nil {
		return f.createErr
	}
	p.ID = fmt.Sprintf("00000000-0000-0000-0000-%012d", len(f.byID)+1)
	cp := *p
	f.byID[p.ID] = &cp
	return nil
}

func (f *fakePhotoRepo) GetByID(ctx context.Context, id string) (*domain.Photo, error) {
	if p, ok := f.byID[id]; ok {
		cp := *p
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

func (f *fakePhotoRepo) List(ctx context.Context) ([]*domain.Photo, error) {
	out := make([]*domain.Photo, 0, len(f.byID))
	for _, p := range f.byID {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.After(out[j].UploadedAt) })
	return out, nil
}

func (f *fakePhotoRepo) ListByStatus(ctx context.Context, status domain.PhotoStatus, oldestFirst bool) ([]*domain.Photo, error) {
	all, _ := f.List(ctx)
	out := make([]*domain.Photo, 0)
	for _, p := range all {
		if p.Status == status {
			out = append(out, p)
		}
	}
	if oldestFirst {
		sort.Slice(out, func(i, j int) bool { return out[i].UploadedAt.Before(out[j].UploadedAt) })
	}
	return out, nil
}

func (f *fakePhotoRepo) ListByIDs(ctx context.Context, ids []string) ([]*domain.Photo, error) {
	out := make([]*domain.Photo, 0)
	for _, id := range ids {
		if p, ok := f.byID[id]; ok {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakePhotoRepo) UpdateStatus(ctx context.Context, id string, from, to domain.PhotoStatus, at time.Time) error {
	p, ok := f.byID[id]
	if !ok || p.Status != from {
		return domain.ErrConflict
	}
	p.Status = to
	p.ModeratedAt = &at
	return nil
}

func (f *fakePhotoRepo) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return domain.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

// fakeSettingsRepo is an in-memory SettingsRepository.
type fakeSettingsRepo struct {
	values map[string]bool
	err    error
}

func (f *fakeSettingsRepo) GetBool(ctx context.Context, key string, fallback bool) (bool, error) {
	if f.err != nil {
		return fallback, f.err
	}
	if v, ok := f.values[key]; ok {
		return v, nil
	}
	return fallback, nil
}

func (f *fakeSettingsRepo) SetBool(ctx context.Context, key string, value bool) error {
	if f.values == nil {
		f.values = make(map[string]bool)
	}
	f.values[key] = value
	return nil
}

// fakeArchiver records the entry names it was asked to write.
type fakeArchiver struct {
	names []string
}

func (f *fakeArchiver) Write(ctx context.Context, w io.Writer, entries []domain.ArchiveEntry) error {
	for _, e := range entries {
		rc, err := e.Open(ctx)
		if err != nil {
			return err
		}
		if _, err := io.Copy(w, rc); err != nil {
			return err
		}
		rc.Close()
		f.names = append(f.names, e.Name)
	}
	return nil
}

// fakeMessageRepo is an in-memory MessageRepository.
type fakeMessageRepo struct {
	messages []*domain.Message
}

func (f *fakeMessageRepo) Create(ctx context.Context, m *domain.Message) error {
	m.ID = fmt.Sprintf("msg-%d", len(f.messages)+1)
	f.messages = append(f.messages, m)
	return nil
}

func (f *fakeMessageRepo) List(ctx context.Context) ([]*domain.Message, error) {
	return f.messages, nil
}

func (f *fakeMessageRepo) CountByStatus(ctx context.Context, status domain.MessageStatus) (int, error) {
	n := 0
	for _, m := range f.messages {
		if m.Status == status {
			n++
		}
	}
	return n, nil
}

func (f *fakeMessageRepo) MarkRead(ctx context.Context, id string) error {
	for _, m := range f.messages {
		if m.ID == id {
			m.Status = domain.MessageRead
			return nil
		}
	}
	return domain.ErrNotFound
}

var errBoom = errors.New("boom")
