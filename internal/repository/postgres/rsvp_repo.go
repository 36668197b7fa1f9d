package postgres

import (
	"context"
	"database/sql"

	"weddingsite/internal/domain"
)

type rsvpRepository struct {
	DB *sql.DB
}

func NewRSVPRepository(db *sql.DB) domain.RSVPRepository {
	return &rsvpRepository{DB: db}
}

func (r *rsvpRepository) Submit(ctx context.Context, g *domain.Guest, rsvp *domain.RSVP) error {
	members, err := encodeMembers(g.PartyMembers)
	if err != nil {
		return err
	}
	return withTx(ctx, r.DB, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE guests
			SET rsvp_status = $2, party_size = $3, max_party_size = $4, party_members = $5,
				main_person_dietary_preference = $6, dec24_attendance = $7, dec25_attendance = $8,
				accommodation_dec23 = $9, accommodation_dec24 = $10, accommodation_dec25 = $11,
				concerns = $12, updated_at = $13
			WHERE id = $1
		`,
			g.ID, g.RSVPStatus, g.PartySize, g.MaxPartySize, members,
			g.MainPersonDietaryPreference, g.Dec24Attendance, g.Dec25Attendance,
			g.AccommodationDec23, g.AccommodationDec24, g.AccommodationDec25,
			g.Concerns, g.UpdatedAt,
		)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return domain.ErrNotFound
		}
		return tx.QueryRowContext(ctx, `
			INSERT INTO rsvps (guest_id, response, party_size, message, responded_at)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (guest_id) DO UPDATE
			SET response = EXCLUDED.response, party_size = EXCLUDED.party_size,
				message = EXCLUDED.message, responded_at = EXCLUDED.responded_at
			RETURNING id
		`, rsvp.GuestID, rsvp.Response, rsvp.PartySize, rsvp.Message, rsvp.RespondedAt).Scan(&rsvp.ID)
	})
}

func (r *rsvpRepository) ListWithGuests(ctx context.Context) ([]*domain.RSVPWithGuest, error) {
	query := `
		SELECT r.id, r.guest_id, r.response, r.party_size, r.message, r.responded_at, ` + guestColumns("g") + `
		FROM rsvps r
		INNER JOIN guests g ON g.id = r.guest_id
		ORDER BY r.responded_at DESC
	`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]*domain.RSVPWithGuest, 0)
	for rows.Next() {
		item := &domain.RSVPWithGuest{}
		g, err := scanGuest(rows,
			&item.ID, &item.GuestID, &item.Response, &item.PartySize, &item.Message, &item.RespondedAt,
		)
		if err != nil {
			return nil, err
		}
		item.Guest = g
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *rsvpRepository) ByGuest(ctx context.Context) (map[string]*domain.RSVP, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, guest_id, response, party_size, message, responded_at FROM rsvps`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]*domain.RSVP)
	for rows.Next() {
		rsvp := &domain.RSVP{}
		if err := rows.Scan(&rsvp.ID, &rsvp.GuestID, &rsvp.Response, &rsvp.PartySize, &rsvp.Message, &rsvp.RespondedAt); err != nil {
			return nil, err
		}
		out[rsvp.GuestID] = rsvp
	}
	return out, rows.Err()
}

func (r *rsvpRepository) Stats(ctx context.Context) (*domain.RSVPStats, error) {
	query := `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE rsvp_status = 'yes'),
			COUNT(*) FILTER (WHERE rsvp_status = 'no'),
			COUNT(*) FILTER (WHERE rsvp_status = 'pending'),
			COALESCE(SUM(party_size) FILTER (WHERE rsvp_status = 'yes'), 0)
		FROM guests
	`
	s := &domain.RSVPStats{}
	if err := r.DB.QueryRowContext(ctx, query).Scan(&s.Total, &s.Yes, &s.No, &s.Pending, &s.TotalAttending); err != nil {
		return nil, err
	}
	return s, nil
}
