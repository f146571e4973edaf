package model

import (
	"errors"
	"fmt"
)

var ErrTableInactive = errors.New("table is not accepting reservations")

// NotFoundError reports an absent table or reservation.
type NotFoundError struct {
	Entity string
	ID     int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// CapacityError reports a party that does not fit the requested table.
type CapacityError struct {
	TableID   int64
	Capacity  int
	PartySize int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("table %d seats %d, party of %d does not fit", e.TableID, e.Capacity, e.PartySize)
}

// ConflictError reports that a requested window overlaps active reservations.
// ConflictingIDs carries the reservations that block the request, earliest first.
type ConflictError struct {
	TableID        int64
	Window         Window
	ConflictingIDs []int64
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("table %d already reserved in [%s, %s), conflicts with %v",
		e.TableID, e.Window.Start.Format("2006-01-02 15:04"), e.Window.End.Format("2006-01-02 15:04"), e.ConflictingIDs)
}

// StateError reports an operation applied to a reservation whose status
// forbids it, e.g. cancelling twice.
type StateError struct {
	ReservationID int64
	Status        ReservationStatus
	Op            string
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s reservation %d in status %q", e.Op, e.ReservationID, e.Status)
}

// ValidationError reports a malformed request rejected before it reaches the
// store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// StorageError wraps a failure of the store itself. The atomic scope
// guarantees no partial writes happened, so callers may retry.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// IsDomainError reports whether err belongs to the reservation error
// taxonomy, as opposed to an unexpected store failure.
func IsDomainError(err error) bool {
	var (
		notFound   *NotFoundError
		capacity   *CapacityError
		conflict   *ConflictError
		state      *StateError
		validation *ValidationError
	)
	return errors.As(err, &notFound) ||
		errors.As(err, &capacity) ||
		errors.As(err, &conflict) ||
		errors.As(err, &state) ||
		errors.As(err, &validation) ||
		errors.Is(err, ErrTableInactive)
}
