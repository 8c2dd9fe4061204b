package domain

import "time"

// UserRecord statuses.
const (
	UserStatusActive   = "active"
	UserStatusInactive = "inactive"
)

// UserRecord is a managed user as served by the upstream customer API.
// SerialNumber is unique upstream; a duplicate insert surfaces as ErrConflict.
type UserRecord struct {
	ID           string    `json:"id"`
	SerialNumber int       `json:"serial_number"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Designation  string    `json:"designation"`
	Status       string    `json:"status"`
	JoinDate     time.Time `json:"join_date"`
	UpdatedAt    time.Time `json:"updated_at"`
}
