package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/notify"
	"github.com/dkoshelev/restobook/internal/repository"
)

// CreateReservationRequest carries exactly the fields Create accepts.
type CreateReservationRequest struct {
	TableID      int64
	StartTime    time.Time
	Duration     time.Duration // 0 means model.DefaultDuration
	PartySize    int
	ContactName  string
	ContactPhone string
	ContactEmail string
	Notes        string
	Confirmed    bool // create directly in confirmed status
	Actor        string
}

func (r *CreateReservationRequest) validate() error {
	switch {
	case r.TableID <= 0:
		return &model.ValidationError{Field: "table_id", Reason: "must be positive"}
	case r.StartTime.IsZero():
		return &model.ValidationError{Field: "start_time", Reason: "must be set"}
	// Durations persist at whole-minute granularity; zero means the default.
	case r.Duration != 0 && r.Duration < time.Minute:
		return &model.ValidationError{Field: "duration", Reason: "must be at least one minute"}
	case r.PartySize <= 0:
		return &model.ValidationError{Field: "party_size", Reason: "must be positive"}
	case r.ContactName == "":
		return &model.ValidationError{Field: "contact_name", Reason: "must be set"}
	}
	return nil
}

// RescheduleReservationRequest updates only the fields that are non-nil.
type RescheduleReservationRequest struct {
	ReservationID int64
	TableID       *int64
	StartTime     *time.Time
	Duration      *time.Duration
	PartySize     *int
	Actor         string
}

func (r *RescheduleReservationRequest) validate() error {
	switch {
	case r.ReservationID <= 0:
		return &model.ValidationError{Field: "reservation_id", Reason: "must be positive"}
	case r.TableID != nil && *r.TableID <= 0:
		return &model.ValidationError{Field: "table_id", Reason: "must be positive"}
	case r.StartTime != nil && r.StartTime.IsZero():
		return &model.ValidationError{Field: "start_time", Reason: "must be set"}
	case r.Duration != nil && *r.Duration < time.Minute:
		return &model.ValidationError{Field: "duration", Reason: "must be at least one minute"}
	case r.PartySize != nil && *r.PartySize <= 0:
		return &model.ValidationError{Field: "party_size", Reason: "must be positive"}
	case r.TableID == nil && r.StartTime == nil && r.Duration == nil && r.PartySize == nil:
		return &model.ValidationError{Field: "request", Reason: "nothing to change"}
	}
	return nil
}

// BookingService owns the reservation lifecycle. All mutation funnels through
// its operations; the check-and-write runs inside the store's per-table
// atomic scope so two concurrent requests can never both take one slot.
type BookingService struct {
	store    repository.Store
	notifier notify.Notifier
	logger   *zap.Logger
}

func NewBookingService(store repository.Store, notifier notify.Notifier, logger *zap.Logger) *BookingService {
	return &BookingService{
		store:    store,
		notifier: notifier,
		logger:   logger,
	}
}

// Create books a table for the requested window. It fails with
// NotFoundError, ErrTableInactive, CapacityError or ConflictError; on any
// failure nothing is written.
func (s *BookingService) Create(ctx context.Context, req *CreateReservationRequest) (*model.Reservation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	window := model.NewWindow(req.StartTime, req.Duration)

	status := model.ReservationStatusPending
	if req.Confirmed {
		status = model.ReservationStatusConfirmed
	}

	var created *model.Reservation
	err := s.store.WithTableLock(ctx, req.TableID, func(tx repository.Store) error {
		table, err := tx.Tables().GetByID(ctx, req.TableID)
		if err != nil {
			return err
		}
		if !table.IsActive() {
			return model.ErrTableInactive
		}
		if req.PartySize > table.Capacity {
			return &model.CapacityError{TableID: table.ID, Capacity: table.Capacity, PartySize: req.PartySize}
		}

		conflicts, err := NewConflictDetector(tx.Reservations()).FindConflicts(ctx, table.ID, window, 0)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &model.ConflictError{TableID: table.ID, Window: window, ConflictingIDs: reservationIDs(conflicts)}
		}

		reservation := &model.Reservation{
			TableID:      table.ID,
			ContactName:  req.ContactName,
			ContactPhone: req.ContactPhone,
			ContactEmail: req.ContactEmail,
			StartTime:    req.StartTime,
			Duration:     window.Duration(),
			PartySize:    req.PartySize,
			Status:       status,
			Notes:        req.Notes,
			CreatedBy:    req.Actor,
			UpdatedBy:    req.Actor,
		}
		if err := tx.Reservations().Create(ctx, reservation); err != nil {
			return err
		}

		reservation.Table = table
		created = reservation
		return nil
	})
	if err != nil {
		return nil, wrapStorage("create reservation", err)
	}

	s.logger.Info("reservation created",
		zap.Int64("reservation_id", created.ID),
		zap.Int64("table_id", created.TableID),
		zap.Time("start", created.StartTime),
		zap.Int("party_size", created.PartySize),
		zap.String("status", string(created.Status)),
	)

	s.notifier.Notify(ctx, model.NewEvent(model.EventReservationCreated, created))
	return created, nil
}

// Reschedule moves a reservation to a new table, window or party size. The
// reservation keeps its status; the no-overlap check excludes the reservation
// itself so it may move within its own freed slot. A move across tables holds
// both table scopes, so lifecycle operations racing on the source table stay
// serialized with the move.
func (s *BookingService) Reschedule(ctx context.Context, req *RescheduleReservationRequest) (*model.Reservation, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}

	// Peek to learn which table to lock; re-read inside the lock.
	current, err := s.store.Reservations().GetByID(ctx, req.ReservationID)
	if err != nil {
		return nil, wrapStorage("load reservation", err)
	}

	targetTableID := current.TableID
	if req.TableID != nil {
		targetTableID = *req.TableID
	}

	var updated *model.Reservation
	err = s.withTables(ctx, current.TableID, targetTableID, func(tx repository.Store) error {
		reservation, err := tx.Reservations().GetByID(ctx, req.ReservationID)
		if err != nil {
			return err
		}
		if reservation.Status == model.ReservationStatusCancelled {
			return &model.StateError{ReservationID: reservation.ID, Status: reservation.Status, Op: "reschedule"}
		}

		// A concurrent reschedule moved the reservation after our peek; the
		// held locks no longer cover its table, so the caller must retry.
		if reservation.TableID != current.TableID {
			return errors.New("reservation moved concurrently")
		}

		table, err := tx.Tables().GetByID(ctx, targetTableID)
		if err != nil {
			return err
		}
		if table.ID != reservation.TableID && !table.IsActive() {
			return model.ErrTableInactive
		}

		if req.StartTime != nil {
			reservation.StartTime = *req.StartTime
		}
		if req.Duration != nil {
			reservation.Duration = *req.Duration
		}
		if req.PartySize != nil {
			reservation.PartySize = *req.PartySize
		}
		reservation.TableID = table.ID

		if reservation.PartySize > table.Capacity {
			return &model.CapacityError{TableID: table.ID, Capacity: table.Capacity, PartySize: reservation.PartySize}
		}

		window := reservation.Window()
		conflicts, err := NewConflictDetector(tx.Reservations()).FindConflicts(ctx, table.ID, window, reservation.ID)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &model.ConflictError{TableID: table.ID, Window: window, ConflictingIDs: reservationIDs(conflicts)}
		}

		reservation.UpdatedBy = req.Actor
		if err := tx.Reservations().Update(ctx, reservation); err != nil {
			return err
		}

		reservation.Table = table
		updated = reservation
		return nil
	})
	if err != nil {
		return nil, wrapStorage("reschedule reservation", err)
	}

	s.logger.Info("reservation rescheduled",
		zap.Int64("reservation_id", updated.ID),
		zap.Int64("table_id", updated.TableID),
		zap.Time("start", updated.StartTime),
	)

	s.notifier.Notify(ctx, model.NewEvent(model.EventReservationRescheduled, updated))
	return updated, nil
}

// Cancel is terminal: the slot is freed for the next conflict check and the
// reservation is kept for history, never deleted. Cancelling twice fails with
// StateError and leaves the original cancellation untouched.
func (s *BookingService) Cancel(ctx context.Context, reservationID int64, actor, reason string) (*model.Reservation, error) {
	cancelled, err := s.transition(ctx, reservationID, "cancel", func(reservation *model.Reservation) {
		reservation.Status = model.ReservationStatusCancelled
		reservation.CancelledBy = actor
		reservation.CancelReason = reason
		reservation.UpdatedBy = actor
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation cancelled",
		zap.Int64("reservation_id", cancelled.ID),
		zap.Int64("table_id", cancelled.TableID),
		zap.String("reason", reason),
	)

	s.notifier.Notify(ctx, model.NewEvent(model.EventReservationCancelled, cancelled))
	return cancelled, nil
}

// Confirm moves a pending reservation to confirmed. The window does not
// change, so no conflict re-check is needed. Confirming an already confirmed
// reservation is a no-op success.
func (s *BookingService) Confirm(ctx context.Context, reservationID int64, actor string) (*model.Reservation, error) {
	confirmed, err := s.transition(ctx, reservationID, "confirm", func(reservation *model.Reservation) {
		reservation.Status = model.ReservationStatusConfirmed
		reservation.UpdatedBy = actor
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("reservation confirmed", zap.Int64("reservation_id", confirmed.ID))
	return confirmed, nil
}

// GetReservation returns the reservation with its table attached.
func (s *BookingService) GetReservation(ctx context.Context, reservationID int64) (*model.Reservation, error) {
	reservation, err := s.store.Reservations().GetByIDWithTable(ctx, reservationID)
	if err != nil {
		return nil, wrapStorage("load reservation", err)
	}
	return reservation, nil
}

// ListForTable returns the reservations starting within [from, to) on one
// table, cancelled ones included.
func (s *BookingService) ListForTable(ctx context.Context, tableID int64, from, to time.Time) ([]*model.Reservation, error) {
	if _, err := s.store.Tables().GetByID(ctx, tableID); err != nil {
		return nil, wrapStorage("load table", err)
	}

	reservations, err := s.store.Reservations().GetByTableInRange(ctx, tableID, from, to)
	if err != nil {
		return nil, wrapStorage("list reservations", err)
	}
	return reservations, nil
}

// transition applies a status change under the table lock of the
// reservation's current table.
func (s *BookingService) transition(ctx context.Context, reservationID int64, op string, apply func(*model.Reservation)) (*model.Reservation, error) {
	current, err := s.store.Reservations().GetByID(ctx, reservationID)
	if err != nil {
		return nil, wrapStorage("load reservation", err)
	}

	var result *model.Reservation
	err = s.store.WithTableLock(ctx, current.TableID, func(tx repository.Store) error {
		reservation, err := tx.Reservations().GetByID(ctx, reservationID)
		if err != nil {
			return err
		}
		// A concurrent reschedule moved the reservation after our peek; the
		// held lock no longer covers its table, so the caller must retry.
		if reservation.TableID != current.TableID {
			return errors.New("reservation moved concurrently")
		}
		if reservation.Status == model.ReservationStatusCancelled {
			return &model.StateError{ReservationID: reservation.ID, Status: reservation.Status, Op: op}
		}

		apply(reservation)
		if err := tx.Reservations().Update(ctx, reservation); err != nil {
			return err
		}

		table, err := tx.Tables().GetByID(ctx, reservation.TableID)
		if err != nil {
			return err
		}
		reservation.Table = table
		result = reservation
		return nil
	})
	if err != nil {
		return nil, wrapStorage(op+" reservation", err)
	}

	return result, nil
}

// withTables takes the atomic scope over the tables involved in a move,
// always in ascending id order so two concurrent moves cannot deadlock.
func (s *BookingService) withTables(ctx context.Context, fromID, toID int64, fn func(repository.Store) error) error {
	if fromID == toID {
		return s.store.WithTableLock(ctx, fromID, fn)
	}
	first, second := fromID, toID
	if second < first {
		first, second = second, first
	}
	return s.store.WithTableLock(ctx, first, func(tx repository.Store) error {
		return tx.WithTableLock(ctx, second, fn)
	})
}

func reservationIDs(reservations []*model.Reservation) []int64 {
	ids := make([]int64, 0, len(reservations))
	for _, reservation := range reservations {
		ids = append(ids, reservation.ID)
	}
	return ids
}

// wrapStorage turns unexpected store failures into StorageError while
// letting the domain taxonomy pass through untouched.
func wrapStorage(op string, err error) error {
	if err == nil || model.IsDomainError(err) {
		return err
	}
	var storage *model.StorageError
	if errors.As(err, &storage) {
		return err
	}
	return &model.StorageError{Op: op, Err: err}
}
