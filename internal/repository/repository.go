package repository

import (
	"context"
	"time"

	"github.com/dkoshelev/restobook/internal/model"
)

type TableRepository interface {
	Create(ctx context.Context, table *model.Table) error
	GetByID(ctx context.Context, id int64) (*model.Table, error)
	GetActive(ctx context.Context) ([]*model.Table, error)
	GetAll(ctx context.Context) ([]*model.Table, error)
	UpdateStatus(ctx context.Context, id int64, status model.TableStatus) error
}

type ReservationRepository interface {
	Create(ctx context.Context, reservation *model.Reservation) error
	GetByID(ctx context.Context, id int64) (*model.Reservation, error)
	// GetByIDWithTable returns the reservation with its table attached.
	GetByIDWithTable(ctx context.Context, id int64) (*model.Reservation, error)
	// GetActiveByTable returns every non-cancelled reservation on the table,
	// ordered by start time.
	GetActiveByTable(ctx context.Context, tableID int64) ([]*model.Reservation, error)
	GetByTableInRange(ctx context.Context, tableID int64, from, to time.Time) ([]*model.Reservation, error)
	Update(ctx context.Context, reservation *model.Reservation) error
}

// Store groups the repositories behind one handle and owns the per-table
// atomic scope the booking write path runs in.
type Store interface {
	Tables() TableRepository
	Reservations() ReservationRepository
	// WithTableLock runs fn against a store view whose writes commit as a
	// single atomic unit. Calls for the same table serialize; different
	// tables proceed in parallel. An error from fn aborts the scope and
	// nothing is written. The view supports one nested WithTableLock for
	// writes spanning two tables; nested calls must lock tables in
	// ascending id order to stay deadlock free.
	WithTableLock(ctx context.Context, tableID int64, fn func(Store) error) error
}
