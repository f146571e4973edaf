package service

import (
	"context"
	"fmt"

	"github.com/dkoshelev/restobook/internal/model"
)

// ActiveReservationSource is the single read the conflict check needs. Both
// the top-level store and a locked transaction scope satisfy it, so the same
// detector runs inside and outside the write path.
type ActiveReservationSource interface {
	GetActiveByTable(ctx context.Context, tableID int64) ([]*model.Reservation, error)
}

// ConflictDetector answers whether a requested window collides with the
// active reservations on a table. It is a pure read and safe under unlimited
// concurrency.
type ConflictDetector struct {
	src ActiveReservationSource
}

func NewConflictDetector(src ActiveReservationSource) *ConflictDetector {
	return &ConflictDetector{src: src}
}

// FindConflicts returns the active reservations whose windows overlap the
// requested one, earliest first. excludeID removes one reservation from the
// candidate set; reschedules pass their own id so a reservation can move
// within its currently held slot. Pass 0 to exclude nothing.
func (d *ConflictDetector) FindConflicts(ctx context.Context, tableID int64, window model.Window, excludeID int64) ([]*model.Reservation, error) {
	if !window.IsValid() {
		return nil, &model.ValidationError{Field: "window", Reason: "start must be set and precede end"}
	}

	active, err := d.src.GetActiveByTable(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("load active reservations: %w", err)
	}

	var conflicts []*model.Reservation
	for _, reservation := range active {
		if reservation.ID == excludeID {
			continue
		}
		if reservation.Window().Overlaps(window) {
			conflicts = append(conflicts, reservation)
		}
	}

	return conflicts, nil
}

func (d *ConflictDetector) HasConflict(ctx context.Context, tableID int64, window model.Window, excludeID int64) (bool, error) {
	conflicts, err := d.FindConflicts(ctx, tableID, window, excludeID)
	if err != nil {
		return false, err
	}
	return len(conflicts) > 0, nil
}
