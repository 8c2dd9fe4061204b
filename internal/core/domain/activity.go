package domain

import "time"

// Activity actions recorded for the dashboard's recent-activity feed.
const (
	ActionLogin  = "login"
	ActionLogout = "logout"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// ActivityEntry is one row in the recent-activity feed: who did what to
// which resource, and when.
type ActivityEntry struct {
	ID         string    `json:"id"`
	Actor      string    `json:"actor"`
	Role       string    `json:"role"`
	Action     string    `json:"action"`
	Resource   string    `json:"resource"`
	ResourceID string    `json:"resource_id,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
}
