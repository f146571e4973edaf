package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestWindowOverlaps(t *testing.T) {
	base := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)
	window := func(startOffset, duration time.Duration) Window {
		return NewWindow(base.Add(startOffset), duration)
	}

	tests := []struct {
		name     string
		a        Window
		b        Window
		overlaps bool
	}{
		{
			name:     "identical windows",
			a:        window(0, 2*time.Hour),
			b:        window(0, 2*time.Hour),
			overlaps: true,
		},
		{
			name:     "partial overlap",
			a:        window(0, 2*time.Hour),
			b:        window(time.Hour, 2*time.Hour),
			overlaps: true,
		},
		{
			name:     "contained window",
			a:        window(0, 3*time.Hour),
			b:        window(time.Hour, 30*time.Minute),
			overlaps: true,
		},
		{
			// 19:00-21:00 followed by 21:00-23:00 shares a boundary but no
			// time, half-open semantics say no conflict.
			name:     "adjacent windows do not overlap",
			a:        window(0, 2*time.Hour),
			b:        window(2*time.Hour, 2*time.Hour),
			overlaps: false,
		},
		{
			name:     "disjoint windows",
			a:        window(0, time.Hour),
			b:        window(5*time.Hour, time.Hour),
			overlaps: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.overlaps, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.overlaps, tt.b.Overlaps(tt.a), "overlap must be symmetric")
		})
	}
}

func TestNewWindowDefaultDuration(t *testing.T) {
	start := time.Date(2026, 3, 14, 19, 0, 0, 0, time.UTC)

	w := NewWindow(start, 0)
	assert.Equal(t, DefaultDuration, w.Duration())

	w = NewWindow(start, 90*time.Minute)
	assert.Equal(t, 90*time.Minute, w.Duration())
}

func TestReservationIsActive(t *testing.T) {
	r := &Reservation{Status: ReservationStatusPending}
	assert.True(t, r.IsActive())

	r.Status = ReservationStatusConfirmed
	assert.True(t, r.IsActive())

	r.Status = ReservationStatusCancelled
	assert.False(t, r.IsActive())
}
