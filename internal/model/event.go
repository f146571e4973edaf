package model

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	EventReservationCreated     EventType = "reservation_created"
	EventReservationRescheduled EventType = "reservation_rescheduled"
	EventReservationCancelled   EventType = "reservation_cancelled"
)

// Event is a reservation lifecycle notification. The reservation carries its
// table so consumers never have to load it themselves.
type Event struct {
	ID          uuid.UUID    `json:"id"`
	Type        EventType    `json:"type"`
	Reservation *Reservation `json:"reservation"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

func NewEvent(eventType EventType, reservation *Reservation) Event {
	return Event{
		ID:          uuid.New(),
		Type:        eventType,
		Reservation: reservation,
		OccurredAt:  time.Now().UTC(),
	}
}
