// Package memory holds the reference in-memory store. It backs the test
// suite and small deployments that do not want PostgreSQL; the invariants it
// enforces are the same ones the pgx store gets from advisory locks.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/repository"
)

type Store struct {
	mu           sync.RWMutex
	tables       map[int64]*model.Table
	reservations map[int64]*model.Reservation
	nextTable    int64
	nextRes      int64

	lockMu     sync.Mutex
	tableLocks map[int64]*sync.Mutex
}

func NewStore() *Store {
	return &Store{
		tables:       make(map[int64]*model.Table),
		reservations: make(map[int64]*model.Reservation),
		tableLocks:   make(map[int64]*sync.Mutex),
	}
}

func (s *Store) Tables() repository.TableRepository {
	return &tableRepository{store: s}
}

func (s *Store) Reservations() repository.ReservationRepository {
	return &reservationRepository{store: s}
}

// WithTableLock serializes writers per table with a dedicated mutex. Readers
// go through the store's RWMutex and never wait on a table lock. The view
// handed to fn is the store itself, so a nested call simply takes the second
// table's mutex; order nested locks by ascending id.
func (s *Store) WithTableLock(ctx context.Context, tableID int64, fn func(repository.Store) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	lock := s.tableLock(tableID)
	lock.Lock()
	defer lock.Unlock()

	return fn(s)
}

func (s *Store) tableLock(tableID int64) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.tableLocks[tableID]
	if !ok {
		lock = &sync.Mutex{}
		s.tableLocks[tableID] = lock
	}
	return lock
}

type tableRepository struct {
	store *Store
}

func (r *tableRepository) Create(ctx context.Context, table *model.Table) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTable++
	now := time.Now().UTC()
	table.ID = s.nextTable
	table.CreatedAt = now
	table.UpdatedAt = now

	stored := *table
	s.tables[table.ID] = &stored
	return nil
}

func (r *tableRepository) GetByID(ctx context.Context, id int64) (*model.Table, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	table, ok := s.tables[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "table", ID: id}
	}
	copied := *table
	return &copied, nil
}

func (r *tableRepository) GetActive(ctx context.Context) ([]*model.Table, error) {
	return r.collect(func(t *model.Table) bool { return t.IsActive() }), nil
}

func (r *tableRepository) GetAll(ctx context.Context) ([]*model.Table, error) {
	return r.collect(func(*model.Table) bool { return true }), nil
}

func (r *tableRepository) UpdateStatus(ctx context.Context, id int64, status model.TableStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	table, ok := s.tables[id]
	if !ok {
		return &model.NotFoundError{Entity: "table", ID: id}
	}
	table.Status = status
	table.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *tableRepository) collect(keep func(*model.Table) bool) []*model.Table {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var tables []*model.Table
	for _, table := range s.tables {
		if keep(table) {
			copied := *table
			tables = append(tables, &copied)
		}
	}
	sort.Slice(tables, func(i, j int) bool {
		if tables[i].Capacity != tables[j].Capacity {
			return tables[i].Capacity < tables[j].Capacity
		}
		return tables[i].Number < tables[j].Number
	})
	return tables
}

type reservationRepository struct {
	store *Store
}

func (r *reservationRepository) Create(ctx context.Context, reservation *model.Reservation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRes++
	now := time.Now().UTC()
	reservation.ID = s.nextRes
	reservation.CreatedAt = now
	reservation.UpdatedAt = now

	stored := *reservation
	stored.Table = nil
	s.reservations[reservation.ID] = &stored
	return nil
}

func (r *reservationRepository) GetByID(ctx context.Context, id int64) (*model.Reservation, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	reservation, ok := s.reservations[id]
	if !ok {
		return nil, &model.NotFoundError{Entity: "reservation", ID: id}
	}
	copied := *reservation
	return &copied, nil
}

func (r *reservationRepository) GetByIDWithTable(ctx context.Context, id int64) (*model.Reservation, error) {
	reservation, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	table, err := (&tableRepository{store: r.store}).GetByID(ctx, reservation.TableID)
	if err != nil {
		return nil, err
	}
	reservation.Table = table
	return reservation, nil
}

func (r *reservationRepository) GetActiveByTable(ctx context.Context, tableID int64) ([]*model.Reservation, error) {
	return r.collect(func(res *model.Reservation) bool {
		return res.TableID == tableID && res.IsActive()
	}), nil
}

func (r *reservationRepository) GetByTableInRange(ctx context.Context, tableID int64, from, to time.Time) ([]*model.Reservation, error) {
	return r.collect(func(res *model.Reservation) bool {
		return res.TableID == tableID && !res.StartTime.Before(from) && res.StartTime.Before(to)
	}), nil
}

func (r *reservationRepository) Update(ctx context.Context, reservation *model.Reservation) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.reservations[reservation.ID]; !ok {
		return &model.NotFoundError{Entity: "reservation", ID: reservation.ID}
	}

	reservation.UpdatedAt = time.Now().UTC()
	stored := *reservation
	stored.Table = nil
	s.reservations[reservation.ID] = &stored
	return nil
}

func (r *reservationRepository) collect(keep func(*model.Reservation) bool) []*model.Reservation {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var reservations []*model.Reservation
	for _, reservation := range s.reservations {
		if keep(reservation) {
			copied := *reservation
			reservations = append(reservations, &copied)
		}
	}
	sort.Slice(reservations, func(i, j int) bool {
		return reservations[i].StartTime.Before(reservations[j].StartTime)
	})
	return reservations
}
