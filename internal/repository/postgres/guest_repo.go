package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
	"weddingsite/internal/domain"
)

var guestColumnNames = []string{
	"id", "first_name", "last_name", "email", "phone",
	"invite_token", "guest_portal_token", "registration_status", "approved_at",
	"rsvp_status", "party_size", "max_party_size", "party_members",
	"main_person_dietary_preference", "dec24_attendance", "dec25_attendance",
	"accommodation_dec23", "accommodation_dec24", "accommodation_dec25",
	"concerns", "created_at", "updated_at",
}

// guestColumns renders the guest select list, optionally qualified by a table alias.
func guestColumns(alias string) string {
	if alias == "" {
		return strings.Join(guestColumnNames, ", ")
	}
	cols := make([]string, len(guestColumnNames))
	for i, c := range guestColumnNames {
		cols[i] = alias + "." + c
	}
	return strings.Join(cols, ", ")
}

// scanGuest scans a guest row; lead receives any columns selected before the guest columns.
func scanGuest(s rowScanner, lead ...any) (*domain.Guest, error) {
	g := &domain.Guest{}
	var inviteToken, portalToken sql.NullString
	var approvedAt sql.NullTime
	var members []byte
	dest := append(lead,
		&g.ID, &g.FirstName, &g.LastName, &g.Email, &g.Phone,
		&inviteToken, &portalToken, &g.RegistrationStatus, &approvedAt,
		&g.RSVPStatus, &g.PartySize, &g.MaxPartySize, &members,
		&g.MainPersonDietaryPreference, &g.Dec24Attendance, &g.Dec25Attendance,
		&g.AccommodationDec23, &g.AccommodationDec24, &g.AccommodationDec25,
		&g.Concerns, &g.CreatedAt, &g.UpdatedAt,
	)
	if err := s.Scan(dest...); err != nil {
		return nil, err
	}
	g.InviteToken = inviteToken.String
	g.GuestPortalToken = portalToken.String
	if approvedAt.Valid {
		g.ApprovedAt = &approvedAt.Time
	}
	if len(members) > 0 {
		if err := json.Unmarshal(members, &g.PartyMembers); err != nil {
			return nil, fmt.Errorf("decode party members: %w", err)
		}
	}
	if g.PartyMembers == nil {
		g.PartyMembers = []domain.PartyMember{}
	}
	return g, nil
}

func encodeMembers(members []domain.PartyMember) ([]byte, error) {
	if members == nil {
		members = []domain.PartyMember{}
	}
	return json.Marshal(members)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

type guestRepository struct {
	DB *sql.DB
}

func NewGuestRepository(db *sql.DB) domain.GuestRepository {
	return &guestRepository{DB: db}
}

func (r *guestRepository) Create(ctx context.Context, g *domain.Guest) error {
	members, err := encodeMembers(g.PartyMembers)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO guests (first_name, last_name, email, phone, registration_status, rsvp_status,
			party_size, max_party_size, party_members, main_person_dietary_preference,
			dec24_attendance, dec25_attendance, accommodation_dec23, accommodation_dec24, accommodation_dec25,
			concerns, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`
	return r.DB.QueryRowContext(ctx, query,
		g.FirstName, g.LastName, g.Email, g.Phone, g.RegistrationStatus, g.RSVPStatus,
		g.PartySize, g.MaxPartySize, members, g.MainPersonDietaryPreference,
		g.Dec24Attendance, g.Dec25Attendance, g.AccommodationDec23, g.AccommodationDec24, g.AccommodationDec25,
		g.Concerns, g.CreatedAt, g.UpdatedAt,
	).Scan(&g.ID)
}

func (r *guestRepository) getOne(ctx context.Context, where string, arg any) (*domain.Guest, error) {
	query := `SELECT ` + guestColumns("") + ` FROM guests WHERE ` + where
	g, err := scanGuest(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return g, nil
}

func (r *guestRepository) GetByID(ctx context.Context, id string) (*domain.Guest, error) {
	return r.getOne(ctx, "id = $1", id)
}

func (r *guestRepository) GetByInviteToken(ctx context.Context, token string) (*domain.Guest, error) {
	return r.getOne(ctx, "invite_token = $1", token)
}

func (r *guestRepository) GetByPortalToken(ctx context.Context, token string) (*domain.Guest, error) {
	return r.getOne(ctx, "guest_portal_token = $1", token)
}

func (r *guestRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Guest, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	guests := make([]*domain.Guest, 0)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

func (r *guestRepository) List(ctx context.Context) ([]*domain.Guest, error) {
	return r.list(ctx, `SELECT `+guestColumns("")+` FROM guests ORDER BY created_at DESC`)
}

func (r *guestRepository) ListByRegistrationStatus(ctx context.Context, status domain.RegistrationStatus) ([]*domain.Guest, error) {
	return r.list(ctx, `SELECT `+guestColumns("")+` FROM guests WHERE registration_status = $1 ORDER BY created_at ASC`, status)
}

func (r *guestRepository) UpdateRegistration(ctx context.Context, g *domain.Guest, from domain.RegistrationStatus) error {
	query := `
		UPDATE guests
		SET registration_status = $2, invite_token = $3, guest_portal_token = $4, approved_at = $5, updated_at = $6
		WHERE id = $1 AND registration_status = $7
	`
	res, err := r.DB.ExecContext(ctx, query,
		g.ID, g.RegistrationStatus, nullString(g.InviteToken), nullString(g.GuestPortalToken), g.ApprovedAt, g.UpdatedAt, from,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: guest %s is no longer %s", domain.ErrConflict, g.ID, from)
	}
	return nil
}

func (r *guestRepository) MissingIDs(ctx context.Context, ids []string) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id FROM guests WHERE id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	found := make(map[string]struct{}, len(ids))
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		found[id] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	missing := make([]string, 0)
	for _, id := range ids {
		if _, ok := found[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *guestRepository) DeleteCascade(ctx context.Context, ids []string) ([]string, error) {
	return r.deleteCascade(ctx, int64(len(ids)), "id = ANY($1::uuid[])", pq.Array(ids))
}

func (r *guestRepository) DeleteAllCascade(ctx context.Context) ([]string, error) {
	return r.deleteCascade(ctx, -1, "TRUE")
}

// deleteCascade removes the guests matching where and everything hanging off them.
// When want is non-negative, a different number of deleted guests aborts the transaction.
func (r *guestRepository) deleteCascade(ctx context.Context, want int64, where string, args ...any) ([]string, error) {
	portalTokens := `SELECT guest_portal_token FROM guests WHERE guest_portal_token IS NOT NULL AND ` + where
	var keys []string
	err := withTx(ctx, r.DB, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `SELECT object_key, thumbnail_key FROM photos WHERE guest_token IN (`+portalTokens+`)`, args...)
		if err != nil {
			return fmt.Errorf("select photo keys: %w", err)
		}
		for rows.Next() {
			var objectKey, thumbKey string
			if err := rows.Scan(&objectKey, &thumbKey); err != nil {
				rows.Close()
				return err
			}
			keys = append(keys, objectKey)
			if thumbKey != "" && thumbKey != objectKey {
				keys = append(keys, thumbKey)
			}
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		stmts := []struct{ label, query string }{
			{"rsvps", `DELETE FROM rsvps WHERE guest_id IN (SELECT id FROM guests WHERE ` + where + `)`},
			{"messages", `DELETE FROM messages WHERE guest_token IN (` + portalTokens + `)`},
			{"photos", `DELETE FROM photos WHERE guest_token IN (` + portalTokens + `)`},
		}
		for _, s := range stmts {
			if _, err := tx.ExecContext(ctx, s.query, args...); err != nil {
				return fmt.Errorf("delete %s: %w", s.label, err)
			}
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM guests WHERE `+where, args...)
		if err != nil {
			return fmt.Errorf("delete guests: %w", err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if want >= 0 && n != want {
			return fmt.Errorf("%w: %d of %d guests exist", domain.ErrNotFound, n, want)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}
