package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/repository/base"
)

const reservationColumns = `
	r.id, r.table_id, r.contact_name, r.contact_phone, r.contact_email,
	r.start_time, r.duration_minutes, r.party_size, r.status, r.notes,
	r.created_by, r.updated_by, r.cancelled_by, r.cancel_reason,
	r.created_at, r.updated_at`

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(q base.Querier) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(q)}
}

func (r *ReservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	query := `
		INSERT INTO reservations (
			table_id, contact_name, contact_phone, contact_email,
			start_time, duration_minutes, party_size, status, notes, created_by, updated_by
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING id, created_at, updated_at
	`

	err := r.Q().QueryRow(
		ctx, query,
		reservation.TableID,
		reservation.ContactName,
		nullIfEmpty(reservation.ContactPhone),
		nullIfEmpty(reservation.ContactEmail),
		reservation.StartTime,
		int(reservation.Duration/time.Minute),
		reservation.PartySize,
		reservation.Status,
		nullIfEmpty(reservation.Notes),
		reservation.CreatedBy,
	).Scan(&reservation.ID, &reservation.CreatedAt, &reservation.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.id = $1
	`

	reservation, err := scanReservation(r.Q().QueryRow(ctx, query, id))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, &model.NotFoundError{Entity: "reservation", ID: id}
		}
		return nil, fmt.Errorf("get reservation by id: %w", err)
	}

	return reservation, nil
}

func (r *ReservationRepository) GetByIDWithTable(ctx context.Context, id int64) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `,
			t.id, t.number, t.capacity, t.status, t.created_at, t.updated_at
		FROM reservations r
		JOIN tables t ON t.id = r.table_id
		WHERE r.id = $1
	`

	var (
		reservation model.Reservation
		table       model.Table
		phone       *string
		email       *string
		notes       *string
		cancelledBy *string
		reason      *string
		durationMin int
	)
	err := r.Q().QueryRow(ctx, query, id).Scan(
		&reservation.ID,
		&reservation.TableID,
		&reservation.ContactName,
		&phone,
		&email,
		&reservation.StartTime,
		&durationMin,
		&reservation.PartySize,
		&reservation.Status,
		&notes,
		&reservation.CreatedBy,
		&reservation.UpdatedBy,
		&cancelledBy,
		&reason,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
		&table.ID,
		&table.Number,
		&table.Capacity,
		&table.Status,
		&table.CreatedAt,
		&table.UpdatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, &model.NotFoundError{Entity: "reservation", ID: id}
		}
		return nil, fmt.Errorf("get reservation with table: %w", err)
	}

	reservation.Duration = time.Duration(durationMin) * time.Minute
	reservation.ContactPhone = deref(phone)
	reservation.ContactEmail = deref(email)
	reservation.Notes = deref(notes)
	reservation.CancelledBy = deref(cancelledBy)
	reservation.CancelReason = deref(reason)
	reservation.Table = &table

	return &reservation, nil
}

func (r *ReservationRepository) GetActiveByTable(ctx context.Context, tableID int64) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.table_id = $1
		  AND r.status <> 'cancelled'
		ORDER BY r.start_time
	`

	return r.queryReservations(ctx, query, tableID)
}

func (r *ReservationRepository) GetByTableInRange(ctx context.Context, tableID int64, from, to time.Time) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations r
		WHERE r.table_id = $1
		  AND r.start_time >= $2
		  AND r.start_time < $3
		ORDER BY r.start_time
	`

	return r.queryReservations(ctx, query, tableID, from, to)
}

func (r *ReservationRepository) Update(ctx context.Context, reservation *model.Reservation) error {
	query := `
		UPDATE reservations
		SET table_id = $1,
		    contact_name = $2,
		    contact_phone = $3,
		    contact_email = $4,
		    start_time = $5,
		    duration_minutes = $6,
		    party_size = $7,
		    status = $8,
		    notes = $9,
		    updated_by = $10,
		    cancelled_by = $11,
		    cancel_reason = $12,
		    updated_at = now()
		WHERE id = $13
		RETURNING updated_at
	`

	err := r.Q().QueryRow(
		ctx, query,
		reservation.TableID,
		reservation.ContactName,
		nullIfEmpty(reservation.ContactPhone),
		nullIfEmpty(reservation.ContactEmail),
		reservation.StartTime,
		int(reservation.Duration/time.Minute),
		reservation.PartySize,
		reservation.Status,
		nullIfEmpty(reservation.Notes),
		reservation.UpdatedBy,
		nullIfEmpty(reservation.CancelledBy),
		nullIfEmpty(reservation.CancelReason),
		reservation.ID,
	).Scan(&reservation.UpdatedAt)
	if err != nil {
		if base.IsNotFound(err) {
			return &model.NotFoundError{Entity: "reservation", ID: reservation.ID}
		}
		return fmt.Errorf("update reservation: %w", err)
	}

	return nil
}

func (r *ReservationRepository) queryReservations(ctx context.Context, query string, args ...any) ([]*model.Reservation, error) {
	rows, err := r.Q().Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query reservations: %w", err)
	}
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}
		reservations = append(reservations, reservation)
	}

	return reservations, rows.Err()
}

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var (
		reservation model.Reservation
		phone       *string
		email       *string
		notes       *string
		cancelledBy *string
		reason      *string
		durationMin int
	)
	err := row.Scan(
		&reservation.ID,
		&reservation.TableID,
		&reservation.ContactName,
		&phone,
		&email,
		&reservation.StartTime,
		&durationMin,
		&reservation.PartySize,
		&reservation.Status,
		&notes,
		&reservation.CreatedBy,
		&reservation.UpdatedBy,
		&cancelledBy,
		&reason,
		&reservation.CreatedAt,
		&reservation.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	reservation.Duration = time.Duration(durationMin) * time.Minute
	reservation.ContactPhone = deref(phone)
	reservation.ContactEmail = deref(email)
	reservation.Notes = deref(notes)
	reservation.CancelledBy = deref(cancelledBy)
	reservation.CancelReason = deref(reason)

	return &reservation, nil
}

func nullIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
