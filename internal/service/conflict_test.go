package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dkoshelev/restobook/internal/model"
	"github.com/dkoshelev/restobook/internal/repository/memory"
)

func seedTable(t *testing.T, store *memory.Store, capacity int) *model.Table {
	t.Helper()

	table := &model.Table{Number: "T1", Capacity: capacity, Status: model.TableStatusActive}
	require.NoError(t, store.Tables().Create(context.Background(), table))
	return table
}

func seedReservation(t *testing.T, store *memory.Store, tableID int64, start time.Time, duration time.Duration, status model.ReservationStatus) *model.Reservation {
	t.Helper()

	reservation := &model.Reservation{
		TableID:     tableID,
		ContactName: "Guest",
		StartTime:   start,
		Duration:    duration,
		PartySize:   2,
		Status:      status,
	}
	require.NoError(t, store.Reservations().Create(context.Background(), reservation))
	return reservation
}

func TestConflictDetector(t *testing.T) {
	ctx := context.Background()
	evening := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	store := memory.NewStore()
	table := seedTable(t, store, 4)
	booked := seedReservation(t, store, table.ID, evening, 2*time.Hour, model.ReservationStatusPending)
	cancelled := seedReservation(t, store, table.ID, evening.Add(4*time.Hour), 2*time.Hour, model.ReservationStatusCancelled)

	detector := NewConflictDetector(store.Reservations())

	t.Run("overlapping window conflicts", func(t *testing.T) {
		conflicts, err := detector.FindConflicts(ctx, table.ID, model.NewWindow(evening.Add(time.Hour), 2*time.Hour), 0)
		require.NoError(t, err)
		require.Len(t, conflicts, 1)
		assert.Equal(t, booked.ID, conflicts[0].ID)
	})

	t.Run("adjacent window is free", func(t *testing.T) {
		busy, err := detector.HasConflict(ctx, table.ID, model.NewWindow(evening.Add(2*time.Hour), 2*time.Hour), 0)
		require.NoError(t, err)
		assert.False(t, busy)
	})

	t.Run("cancelled reservations never block", func(t *testing.T) {
		busy, err := detector.HasConflict(ctx, table.ID, model.NewWindow(cancelled.StartTime, 2*time.Hour), 0)
		require.NoError(t, err)
		assert.False(t, busy)
	})

	t.Run("excluded reservation is invisible", func(t *testing.T) {
		busy, err := detector.HasConflict(ctx, table.ID, model.NewWindow(evening, 2*time.Hour), booked.ID)
		require.NoError(t, err)
		assert.False(t, busy)
	})

	t.Run("other tables unaffected", func(t *testing.T) {
		other := seedTable(t, store, 2)
		busy, err := detector.HasConflict(ctx, other.ID, model.NewWindow(evening, 2*time.Hour), 0)
		require.NoError(t, err)
		assert.False(t, busy)
	})

	t.Run("invalid window rejected", func(t *testing.T) {
		_, err := detector.FindConflicts(ctx, table.ID, model.Window{}, 0)
		var validation *model.ValidationError
		assert.ErrorAs(t, err, &validation)
	})
}
