package domain

import "time"

type CenterStatus string

const (
	CenterActive   CenterStatus = "active"
	CenterInactive CenterStatus = "inactive"
)

// Center is a physical dispute resolution location, keyed by state and LGA.
type Center struct {
	ID           int64        `json:"id"`
	Name         string       `json:"name" validate:"required,min=2"`
	State        string       `json:"state" validate:"required"`
	LGA          string       `json:"lga" validate:"required"`
	Address      string       `json:"address"`
	Phone        string       `json:"phone,omitempty"`
	Email        string       `json:"email,omitempty"`
	ContactName  string       `json:"contact_name,omitempty"`
	Capacity     int          `json:"capacity,omitempty"`
	Status       CenterStatus `json:"status"`
	Notes        string       `json:"notes,omitempty"`
	CreatedByID  *int64       `json:"created_by_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
