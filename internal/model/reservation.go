package model

import "time"

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// DefaultDuration is how long a reservation holds its table when the caller
// does not override it.
const DefaultDuration = 2 * time.Hour

// Window is the half-open interval [Start, End) a reservation occupies.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewWindow builds the window starting at start. A non-positive duration
// falls back to DefaultDuration.
func NewWindow(start time.Time, duration time.Duration) Window {
	if duration <= 0 {
		duration = DefaultDuration
	}
	return Window{Start: start, End: start.Add(duration)}
}

// Overlaps reports whether two half-open windows intersect. Windows that
// merely touch ([a,b) followed by [b,c)) do not overlap.
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

func (w Window) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w Window) IsValid() bool {
	return !w.Start.IsZero() && w.End.After(w.Start)
}

type Reservation struct {
	ID           int64             `json:"id"`
	TableID      int64             `json:"table_id"`
	ContactName  string            `json:"contact_name"`
	ContactPhone string            `json:"contact_phone,omitempty"`
	ContactEmail string            `json:"contact_email,omitempty"`
	StartTime    time.Time         `json:"start_time"`
	Duration     time.Duration     `json:"duration"`
	PartySize    int               `json:"party_size"`
	Status       ReservationStatus `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	CreatedBy    string            `json:"created_by,omitempty"`
	UpdatedBy    string            `json:"updated_by,omitempty"`
	CancelledBy  string            `json:"cancelled_by,omitempty"`
	CancelReason string            `json:"cancel_reason,omitempty"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`

	// Table is attached by aggregate reads and on lifecycle events, never
	// lazily loaded.
	Table *Table `json:"table,omitempty"`
}

// Window derives the booking window from the reservation's own duration.
func (r *Reservation) Window() Window {
	return NewWindow(r.StartTime, r.Duration)
}

// IsActive reports whether the reservation still holds its table.
func (r *Reservation) IsActive() bool {
	return r.Status != ReservationStatusCancelled
}
