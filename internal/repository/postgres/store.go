package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkoshelev/restobook/internal/repository"
	"github.com/dkoshelev/restobook/internal/repository/base"
)

// Advisory lock namespace for reservation writes, so the keys cannot collide
// with other lock users of the same database.
const reservationLockClass = 7214

// Store is the pgx-backed repository.Store. The zero scope runs against the
// pool; WithTableLock hands out a scope bound to one transaction.
type Store struct {
	pool         *pgxpool.Pool
	tables       *TableRepository
	reservations *ReservationRepository
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{
		pool:         pool,
		tables:       NewTableRepository(pool),
		reservations: NewReservationRepository(pool),
	}
}

func (s *Store) Tables() repository.TableRepository {
	return s.tables
}

func (s *Store) Reservations() repository.ReservationRepository {
	return s.reservations
}

// WithTableLock opens a transaction, takes the advisory lock for the table
// and runs fn against repositories bound to that transaction. The lock is
// released on commit or rollback, so check-and-write for one table is a
// single atomic unit while other tables stay fully parallel. The lock key is
// the table id truncated to 32 bits.
func (s *Store) WithTableLock(ctx context.Context, tableID int64, fn func(repository.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", reservationLockClass, int32(tableID)); err != nil {
		return fmt.Errorf("acquire table lock: %w", err)
	}

	scoped := &txStore{
		tx:           tx,
		tables:       NewTableRepository(tx),
		reservations: NewReservationRepository(tx),
	}
	if err := fn(scoped); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	return nil
}

// txStore is the view handed to WithTableLock callbacks.
type txStore struct {
	tx           pgx.Tx
	tables       *TableRepository
	reservations *ReservationRepository
}

func (s *txStore) Tables() repository.TableRepository {
	return s.tables
}

func (s *txStore) Reservations() repository.ReservationRepository {
	return s.reservations
}

// WithTableLock takes a further advisory lock inside the already open
// transaction, for writes that span two tables. Callers must lock tables in
// ascending id order so two spanning writes cannot deadlock.
func (s *txStore) WithTableLock(ctx context.Context, tableID int64, fn func(repository.Store) error) error {
	if _, err := s.tx.Exec(ctx, "SELECT pg_advisory_xact_lock($1, $2)", reservationLockClass, int32(tableID)); err != nil {
		return fmt.Errorf("acquire table lock: %w", err)
	}
	return fn(s)
}

var _ base.Querier = (*pgxpool.Pool)(nil)
