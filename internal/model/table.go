package model

import "time"

type TableStatus string

const (
	TableStatusActive   TableStatus = "active"
	TableStatusInactive TableStatus = "inactive"
)

type Table struct {
	ID        int64       `json:"id"`
	Number    string      `json:"number"`
	Capacity  int         `json:"capacity"`
	Status    TableStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

func (t *Table) IsActive() bool {
	return t.Status == TableStatusActive
}
